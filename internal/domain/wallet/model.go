package wallet

import (
	"errors"
	"fmt"
	"time"
)

// ErrInsufficientFunds marks a debit that would drive the balance negative
// while the caller did not allow debt.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Wallet holds the single integer balance of one (league, club) pair. It is
// created lazily the first time any money operation touches the pair, seeded
// from the league's starting balance.
type Wallet struct {
	LeagueID  string
	ClubID    string
	Balance   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (w Wallet) Validate() error {
	if w.LeagueID == "" {
		return fmt.Errorf("wallet league id is required")
	}
	if w.ClubID == "" {
		return fmt.Errorf("wallet club id is required")
	}
	return nil
}
