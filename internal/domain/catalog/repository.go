package catalog

import "context"

// Repository describes catalog persistence needs from use cases. Catalog rows
// are reference data, writes happen only through imports outside the core.
type Repository interface {
	GetByID(ctx context.Context, playerID string) (Player, bool, error)
	GetByIDs(ctx context.Context, playerIDs []string) ([]Player, error)
	ListByEdition(ctx context.Context, gameEdition string) ([]Player, error)
}
