package fixture

import (
	"fmt"
	"time"
)

// Fixture is one scheduled match between two clubs of a league. It is created
// once per ordered club pair and mutated in place as it moves through states.
type Fixture struct {
	ID         string
	LeagueID   string
	HomeClubID string
	AwayClubID string

	State           State
	KickoffAt       *time.Time
	RescheduleCount int

	HomeScore *int
	AwayScore *int

	HomeCheckInAt *time.Time
	AwayCheckInAt *time.Time

	Forced bool
	NoSlot bool

	WalkoverClubID string
	WalkoverReason string

	ScoreSubmittedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (f Fixture) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("fixture id is required")
	}
	if f.LeagueID == "" {
		return fmt.Errorf("fixture league id is required")
	}
	if f.HomeClubID == "" || f.AwayClubID == "" {
		return fmt.Errorf("fixture clubs are required")
	}
	if f.HomeClubID == f.AwayClubID {
		return fmt.Errorf("fixture clubs must differ")
	}
	if !KnownState(f.State) {
		return fmt.Errorf("fixture state %q is unknown", f.State)
	}
	return nil
}

// InvolvesClub reports whether the club plays this fixture.
func (f Fixture) InvolvesClub(clubID string) bool {
	return f.HomeClubID == clubID || f.AwayClubID == clubID
}

// Booked reports whether the fixture occupies a calendar slot that other
// matches must not overlap.
func (f Fixture) Booked() bool {
	if f.KickoffAt == nil {
		return false
	}
	switch f.State {
	case StateScheduled, StateConfirmed, StateInProgress:
		return true
	default:
		return false
	}
}

// Event is the append-only audit row behind every legal state transition.
// Events reference their fixture by identifier only, never the reverse.
type Event struct {
	ID        string
	FixtureID string
	Action    string
	ActorID   string
	Payload   map[string]any
	CreatedAt time.Time
}
