package roster

import "context"

// Repository describes roster persistence needs from use cases. Create must
// fail with ErrPlayerTaken when an active entry already exists for the same
// (scope, player) pair.
type Repository interface {
	GetActiveByScopePlayer(ctx context.Context, scopeID, playerID string) (Entry, bool, error)
	CountActiveByClub(ctx context.Context, leagueID, clubID string) (int, error)
	ListActiveByClub(ctx context.Context, leagueID, clubID string) ([]Entry, error)
	Create(ctx context.Context, entry Entry) error
	Update(ctx context.Context, entry Entry) error
}

// TransferLog is the append-only record store for transfers.
type TransferLog interface {
	Append(ctx context.Context, record TransferRecord) error
	ListByLeague(ctx context.Context, leagueID string) ([]TransferRecord, error)
	ListByClub(ctx context.Context, clubID string) ([]TransferRecord, error)
}
