package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/roster"
)

type RosterRepository struct {
	mu      sync.RWMutex
	entries map[string]roster.Entry
}

func NewRosterRepository() *RosterRepository {
	return &RosterRepository{entries: make(map[string]roster.Entry)}
}

func (r *RosterRepository) GetActiveByScopePlayer(_ context.Context, scopeID, playerID string) (roster.Entry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.entries {
		if item.Active && item.ScopeID == scopeID && item.PlayerID == playerID {
			return item, true, nil
		}
	}
	return roster.Entry{}, false, nil
}

func (r *RosterRepository) CountActiveByClub(_ context.Context, leagueID, clubID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, item := range r.entries {
		if item.Active && item.LeagueID == leagueID && item.ClubID == clubID {
			count++
		}
	}
	return count, nil
}

func (r *RosterRepository) ListActiveByClub(_ context.Context, leagueID, clubID string) ([]roster.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []roster.Entry
	for _, item := range r.entries {
		if item.Active && item.LeagueID == leagueID && item.ClubID == clubID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *RosterRepository) Create(_ context.Context, entry roster.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.Active {
		for _, item := range r.entries {
			if item.Active && item.ScopeID == entry.ScopeID && item.PlayerID == entry.PlayerID {
				return fmt.Errorf("%w: player=%s scope=%s", roster.ErrPlayerTaken, entry.PlayerID, entry.ScopeID)
			}
		}
	}
	r.entries[entry.ID] = entry
	return nil
}

func (r *RosterRepository) Update(_ context.Context, entry roster.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[entry.ID]; !ok {
		return fmt.Errorf("roster entry %s does not exist", entry.ID)
	}
	r.entries[entry.ID] = entry
	return nil
}
