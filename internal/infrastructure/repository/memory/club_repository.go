package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/club"
)

type ClubRepository struct {
	mu    sync.RWMutex
	clubs map[string]club.Club
}

func NewClubRepository(clubs []club.Club) *ClubRepository {
	byID := make(map[string]club.Club, len(clubs))
	for _, item := range clubs {
		byID[item.ID] = item
	}
	return &ClubRepository{clubs: byID}
}

func (r *ClubRepository) GetByID(_ context.Context, clubID string) (club.Club, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.clubs[clubID]
	return item, ok, nil
}

func (r *ClubRepository) ListByLeague(_ context.Context, leagueID string) ([]club.Club, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []club.Club
	for _, item := range r.clubs {
		if item.LeagueID == leagueID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ClubRepository) GetByOwner(_ context.Context, leagueID, ownerUserID string) (club.Club, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.clubs {
		if item.LeagueID == leagueID && item.OwnerUserID == ownerUserID {
			return item, true, nil
		}
	}
	return club.Club{}, false, nil
}

// Put inserts or replaces a club. Used by seeds and tests.
func (r *ClubRepository) Put(c club.Club) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clubs[c.ID] = c
}
