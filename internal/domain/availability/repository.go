package availability

import "context"

// Repository describes availability persistence needs from use cases.
// Slot computation only ever reads windows, so no locking is required.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]Window, error)
	ReplaceForUser(ctx context.Context, userID string, windows []Window) error
}
