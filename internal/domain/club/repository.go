package club

import "context"

// Repository describes club persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, clubID string) (Club, bool, error)
	ListByLeague(ctx context.Context, leagueID string) ([]Club, error)
	GetByOwner(ctx context.Context, leagueID, ownerUserID string) (Club, bool, error)
}
