package league

import (
	"fmt"
	"time"
)

// Period is a half-open calendar interval [From, To).
type Period struct {
	From time.Time
	To   time.Time
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.From) && t.Before(p.To)
}

// ClockRange is a daily time range expressed as "15:04" wall-clock strings.
type ClockRange struct {
	Start string
	End   string
}

// League is the configuration aggregate that rules every market and fixture
// operation inside one competition. Fields that fix player-pool identity
// (GameEdition, ConfederationID) are immutable once clubs exist.
type League struct {
	ID              string
	Name            string
	ConfederationID string
	GameEdition     string

	RosterCap              int
	StartingBalance        int64
	ReleaseMultiplier      float64
	MinResalePercent       int
	AllowNegativePurchases bool
	WalkoverPenalty        int64

	MatchDuration       time.Duration
	AllowedWeekdays     []time.Weekday
	DailyRanges         []ClockRange
	CalendarPeriods     []Period
	BlackoutPeriods     []Period
	AuctionPeriods      []Period
	MaxReschedules      int
	MinRescheduleNotice time.Duration
	ScoreConfirmWindow  time.Duration
	Timezone            string
}

// Scope is the competitive boundary inside which a player may be rostered by
// at most one club. Leagues that share a confederation share one market pool.
func (l League) Scope() string {
	if l.ConfederationID != "" {
		return "confed:" + l.ConfederationID
	}
	return "league:" + l.ID
}

func (l League) Location() (*time.Location, error) {
	if l.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load league timezone %q: %w", l.Timezone, err)
	}
	return loc, nil
}

func (l League) WeekdayAllowed(d time.Weekday) bool {
	for _, allowed := range l.AllowedWeekdays {
		if allowed == d {
			return true
		}
	}
	return false
}

func (l League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if l.GameEdition == "" {
		return fmt.Errorf("league game edition is required")
	}
	if l.RosterCap <= 0 {
		return fmt.Errorf("league roster cap must be positive")
	}
	if l.StartingBalance < 0 {
		return fmt.Errorf("league starting balance cannot be negative")
	}
	if l.ReleaseMultiplier < 1 {
		return fmt.Errorf("league release multiplier must be at least 1")
	}
	if l.MinResalePercent < 0 || l.MinResalePercent > 100 {
		return fmt.Errorf("league minimum resale percent must be within 0..100")
	}
	if l.MatchDuration <= 0 {
		return fmt.Errorf("league match duration must be positive")
	}
	if _, err := l.Location(); err != nil {
		return err
	}
	return nil
}
