package market

import (
	"errors"
	"time"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/league"
)

var (
	ErrMarketClosed = errors.New("market window does not allow this operation")
	ErrSelfLeading  = errors.New("club is already leading the auction")
	ErrBadIncrement = errors.New("bid increment is not on the allowed list")
)

// Mode is the computed market window for a league at a given instant.
type Mode string

const (
	ModeOpen    Mode = "open"
	ModeClosed  Mode = "closed"
	ModeAuction Mode = "auction"
)

// ResolveMode derives the window from the league's configured periods:
// auction wins over blackout, blackout wins over open.
func ResolveMode(now time.Time, auctionPeriods, blackoutPeriods []league.Period) Mode {
	for _, p := range auctionPeriods {
		if p.Contains(now) {
			return ModeAuction
		}
	}
	for _, p := range blackoutPeriods {
		if p.Contains(now) {
			return ModeClosed
		}
	}
	return ModeOpen
}

// Config carries the fixed auction tuning. Modelled as immutable values
// injected at construction, never as package globals.
type Config struct {
	BidDuration time.Duration
	Increments  []int64
}

func DefaultConfig() Config {
	return Config{
		BidDuration: 30 * time.Minute,
		Increments:  []int64{100_000, 200_000, 300_000, 500_000, 1_000_000},
	}
}

func (c Config) ValidIncrement(v int64) bool {
	for _, inc := range c.Increments {
		if inc == v {
			return true
		}
	}
	return false
}

func (c Config) SmallestIncrement() int64 {
	if len(c.Increments) == 0 {
		return 0
	}
	smallest := c.Increments[0]
	for _, inc := range c.Increments[1:] {
		if inc < smallest {
			smallest = inc
		}
	}
	return smallest
}

// BaseBid is the leader-less opening price: max(1, floor(0.8 * catalogValue)).
func BaseBid(catalogValue int64) int64 {
	base := catalogValue * 8 / 10
	if base < 1 {
		return 1
	}
	return base
}

type ItemStatus string

const (
	ItemOpen      ItemStatus = "open"
	ItemClosed    ItemStatus = "closed"
	ItemCancelled ItemStatus = "cancelled"
)

// Item is one auction lot, one row per (scope, player). The row is reused
// across auction cycles: a cancelled or closed item is reopened in place, not
// recreated. While status is open with a leader, the ledger holds exactly
// CurrentBid in escrow for this item.
type Item struct {
	ID             string
	ScopeID        string
	PlayerID       string
	Status         ItemStatus
	BaseValue      int64
	CurrentBid     int64
	LeaderClubID   string
	LeaderLeagueID string
	ExpiresAt      *time.Time
	CancelReason   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasLiveLeader reports whether a leader currently holds the lot: status
// open, a leader recorded, a non-zero bid, and an unexpired timer.
func (i Item) HasLiveLeader(now time.Time) bool {
	return i.Status == ItemOpen &&
		i.LeaderClubID != "" &&
		i.CurrentBid > 0 &&
		i.ExpiresAt != nil &&
		i.ExpiresAt.After(now)
}

// Expired reports whether the lot lapsed with a leader still attached and
// therefore awaits finalization.
func (i Item) Expired(now time.Time) bool {
	return i.Status == ItemOpen &&
		i.LeaderClubID != "" &&
		i.ExpiresAt != nil &&
		!i.ExpiresAt.After(now)
}

func (i Item) SecondsRemaining(now time.Time) int64 {
	if i.Status != ItemOpen || i.ExpiresAt == nil {
		return 0
	}
	remaining := int64(i.ExpiresAt.Sub(now) / time.Second)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Bid is one append-only bid row against an item.
type Bid struct {
	ID        string
	ItemID    string
	ClubID    string
	LeagueID  string
	Amount    int64
	CreatedAt time.Time
}

// Snapshot is the per-player auction view returned to a requesting club.
type Snapshot struct {
	PlayerID         string
	Status           ItemStatus
	CurrentBid       int64
	LeaderClubID     string
	IsLeader         bool
	SecondsRemaining int64
	MinimumNextBid   int64
}
