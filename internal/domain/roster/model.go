package roster

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrRosterFull        = errors.New("roster is at league cap")
	ErrPlayerTaken       = errors.New("player already rostered in scope")
	ErrNotOwner          = errors.New("club does not hold the player")
	ErrBelowMinimumPrice = errors.New("price below minimum resale value")
)

// Entry binds one catalog player to one club inside a market scope. At most
// one active entry may exist per (scope, player); the repositories enforce
// that as a uniqueness constraint, not just as an application check.
type Entry struct {
	ID            string
	ScopeID       string
	LeagueID      string
	ClubID        string
	PlayerID      string
	ValueSnapshot int64
	WageSnapshot  int64
	Active        bool
	AcquiredAt    time.Time
	UpdatedAt     time.Time
}

func (e Entry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("roster entry id is required")
	}
	if e.ScopeID == "" {
		return fmt.Errorf("roster entry scope id is required")
	}
	if e.LeagueID == "" {
		return fmt.Errorf("roster entry league id is required")
	}
	if e.ClubID == "" {
		return fmt.Errorf("roster entry club id is required")
	}
	if e.PlayerID == "" {
		return fmt.Errorf("roster entry player id is required")
	}
	if e.ValueSnapshot <= 0 {
		return fmt.Errorf("roster entry value snapshot must be positive")
	}
	if e.WageSnapshot < 0 {
		return fmt.Errorf("roster entry wage snapshot cannot be negative")
	}
	return nil
}

type TransferType string

const (
	TransferFreeSigning TransferType = "free_signing"
	TransferSale        TransferType = "sale"
	TransferBuyout      TransferType = "buyout"
	TransferSwap        TransferType = "swap"
	TransferAuction     TransferType = "auction"
)

// TransferRecord is the append-only audit row behind every money-moving
// roster change. Records are never mutated after creation.
type TransferRecord struct {
	ID         string
	LeagueID   string
	PlayerID   string
	FromClubID string
	ToClubID   string
	Type       TransferType
	Amount     int64
	CreatedAt  time.Time
}

// MinimumResalePrice is ceil(snapshotValue * percent / 100).
func MinimumResalePrice(snapshotValue int64, minResalePercent int) int64 {
	if snapshotValue <= 0 || minResalePercent <= 0 {
		return 0
	}
	return (snapshotValue*int64(minResalePercent) + 99) / 100
}

// ReleaseClausePrice is round(snapshotValue * multiplier).
func ReleaseClausePrice(snapshotValue int64, multiplier float64) int64 {
	return int64(math.Round(float64(snapshotValue) * multiplier))
}
