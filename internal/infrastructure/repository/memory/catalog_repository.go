package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/catalog"
)

type CatalogRepository struct {
	mu      sync.RWMutex
	players map[string]catalog.Player
}

func NewCatalogRepository(players []catalog.Player) *CatalogRepository {
	byID := make(map[string]catalog.Player, len(players))
	for _, item := range players {
		byID[item.ID] = item
	}
	return &CatalogRepository{players: byID}
}

func (r *CatalogRepository) GetByID(_ context.Context, playerID string) (catalog.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.players[playerID]
	return item, ok, nil
}

func (r *CatalogRepository) GetByIDs(_ context.Context, playerIDs []string) ([]catalog.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]catalog.Player, 0, len(playerIDs))
	for _, id := range playerIDs {
		if item, ok := r.players[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *CatalogRepository) ListByEdition(_ context.Context, gameEdition string) ([]catalog.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []catalog.Player
	for _, item := range r.players {
		if item.GameEdition == gameEdition {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
