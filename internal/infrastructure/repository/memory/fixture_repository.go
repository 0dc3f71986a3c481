package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/fixture"
)

type FixtureRepository struct {
	mu       sync.RWMutex
	fixtures map[string]fixture.Fixture
}

func NewFixtureRepository() *FixtureRepository {
	return &FixtureRepository{fixtures: make(map[string]fixture.Fixture)}
}

func (r *FixtureRepository) GetByID(_ context.Context, fixtureID string) (fixture.Fixture, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fx, ok := r.fixtures[fixtureID]
	return fx, ok, nil
}

func (r *FixtureRepository) GetByClubs(_ context.Context, leagueID, homeClubID, awayClubID string) (fixture.Fixture, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, fx := range r.fixtures {
		if fx.LeagueID == leagueID && fx.HomeClubID == homeClubID && fx.AwayClubID == awayClubID {
			return fx, true, nil
		}
	}
	return fixture.Fixture{}, false, nil
}

func (r *FixtureRepository) Create(_ context.Context, fx fixture.Fixture) error {
	if err := fx.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.fixtures[fx.ID]; exists {
		return fmt.Errorf("fixture %s already exists", fx.ID)
	}
	r.fixtures[fx.ID] = fx
	return nil
}

func (r *FixtureRepository) Update(_ context.Context, fx fixture.Fixture) error {
	if err := fx.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.fixtures[fx.ID]; !exists {
		return fmt.Errorf("fixture %s does not exist", fx.ID)
	}
	r.fixtures[fx.ID] = fx
	return nil
}

func (r *FixtureRepository) ListByLeague(_ context.Context, leagueID string) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []fixture.Fixture
	for _, fx := range r.fixtures {
		if fx.LeagueID == leagueID {
			out = append(out, fx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *FixtureRepository) ListBookedByClub(_ context.Context, clubID string) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []fixture.Fixture
	for _, fx := range r.fixtures {
		if fx.InvolvesClub(clubID) && fx.Booked() {
			out = append(out, fx)
		}
	}
	return out, nil
}

func (r *FixtureRepository) ListByState(_ context.Context, state fixture.State) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []fixture.Fixture
	for _, fx := range r.fixtures {
		if fx.State == state {
			out = append(out, fx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type FixtureEventLog struct {
	mu     sync.RWMutex
	events []fixture.Event
}

func NewFixtureEventLog() *FixtureEventLog {
	return &FixtureEventLog{}
}

func (l *FixtureEventLog) Append(_ context.Context, event fixture.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

func (l *FixtureEventLog) ListByFixture(_ context.Context, fixtureID string) ([]fixture.Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []fixture.Event
	for _, event := range l.events {
		if event.FixtureID == fixtureID {
			out = append(out, event)
		}
	}
	return out, nil
}
