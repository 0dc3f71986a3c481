package uow

import (
	"context"
	"errors"
)

// ErrConflict marks a transient commit conflict (row-lock contention,
// serialization failure). Callers may retry the whole unit of work a bounded
// number of times; it is never a business-rule failure.
var ErrConflict = errors.New("unit of work conflict")

// Runner executes fn as one atomic unit of work. Repositories invoked through
// the fn context take exclusive row locks on every row they will
// read-then-write, so concurrent units touching the same rows serialize.
// A unit runs to commit or full rollback, never partial effects.
type Runner interface {
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error
}
