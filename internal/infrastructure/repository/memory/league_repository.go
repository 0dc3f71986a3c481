package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/league"
)

type LeagueRepository struct {
	mu      sync.RWMutex
	leagues map[string]league.League
}

func NewLeagueRepository(leagues []league.League) *LeagueRepository {
	byID := make(map[string]league.League, len(leagues))
	for _, item := range leagues {
		byID[item.ID] = item
	}
	return &LeagueRepository{leagues: byID}
}

func (r *LeagueRepository) List(_ context.Context) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, len(r.leagues))
	for _, item := range r.leagues {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.leagues[leagueID]
	return item, ok, nil
}

// Put inserts or replaces a league. Used by seeds and tests.
func (r *LeagueRepository) Put(l league.League) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leagues[l.ID] = l
}
