package league

import "context"

// Repository loads league configuration. Leagues are reference data seeded at
// boot, so there are no write operations here.
type Repository interface {
	List(ctx context.Context) ([]League, error)
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
}
