package memory

import (
	"context"
	"sync"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/availability"
)

type AvailabilityRepository struct {
	mu      sync.RWMutex
	windows map[string][]availability.Window
}

func NewAvailabilityRepository() *AvailabilityRepository {
	return &AvailabilityRepository{windows: make(map[string][]availability.Window)}
}

func (r *AvailabilityRepository) ListByUser(_ context.Context, userID string) ([]availability.Window, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	windows := r.windows[userID]
	out := make([]availability.Window, 0, len(windows))
	out = append(out, windows...)
	return out, nil
}

func (r *AvailabilityRepository) ReplaceForUser(_ context.Context, userID string, windows []availability.Window) error {
	if err := availability.ValidateSet(windows); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	replacement := make([]availability.Window, 0, len(windows))
	replacement = append(replacement, windows...)
	r.windows[userID] = replacement
	return nil
}
