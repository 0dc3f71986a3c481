package memory

import (
	"context"
	"sync"
)

// Runner serializes units of work behind one store-wide mutex. Concurrent
// Atomic calls never interleave, which is all the engine's correctness needs
// in-process. Partial effects of a failed unit are not rolled back; callers
// treat a failed unit as fatal for the affected aggregate in tests.
type Runner struct {
	mu sync.Mutex
}

func NewRunner() *Runner {
	return &Runner{}
}

func (r *Runner) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx)
}
