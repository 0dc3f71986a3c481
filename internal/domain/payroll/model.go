package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrAlreadySettled marks a duplicate settlement attempt for a (fixture,
// club) pair. Repositories enforce the pair as a uniqueness constraint so
// wages are charged exactly once per fixture.
var ErrAlreadySettled = errors.New("payroll already settled for fixture and club")

// Settlement is one wage (and possibly walkover penalty) charge against a
// club's wallet for one fixture.
type Settlement struct {
	ID        string
	FixtureID string
	ClubID    string
	LeagueID  string
	Wages     int64
	Penalty   int64
	CreatedAt time.Time
}

func (s Settlement) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("settlement id is required")
	}
	if s.FixtureID == "" {
		return fmt.Errorf("settlement fixture id is required")
	}
	if s.ClubID == "" {
		return fmt.Errorf("settlement club id is required")
	}
	if s.LeagueID == "" {
		return fmt.Errorf("settlement league id is required")
	}
	if s.Wages < 0 || s.Penalty < 0 {
		return fmt.Errorf("settlement amounts cannot be negative")
	}
	return nil
}

func (s Settlement) Total() int64 {
	return s.Wages + s.Penalty
}

// Repository persists settlements. Create fails with ErrAlreadySettled when
// the (fixture, club) pair exists.
type Repository interface {
	Create(ctx context.Context, settlement Settlement) error
	GetByFixtureAndClub(ctx context.Context, fixtureID, clubID string) (Settlement, bool, error)
}
