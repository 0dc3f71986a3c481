package market

import (
	"context"
	"time"
)

// ItemRepository persists auction items. Upsert reuses the (scope, player)
// row across cycles.
type ItemRepository interface {
	GetByScopePlayer(ctx context.Context, scopeID, playerID string) (Item, bool, error)
	GetByScopePlayers(ctx context.Context, scopeID string, playerIDs []string) ([]Item, error)
	// ListExpiredOpen returns open items whose timer lapsed with a leader
	// attached. An empty scopeID sweeps all scopes.
	ListExpiredOpen(ctx context.Context, scopeID string, now time.Time) ([]Item, error)
	Upsert(ctx context.Context, item Item) (Item, error)
}

// BidRepository is the append-only bid history.
type BidRepository interface {
	Append(ctx context.Context, bid Bid) error
	ListByItem(ctx context.Context, itemID string) ([]Bid, error)
}

// ProposalRepository persists club-to-club proposals.
type ProposalRepository interface {
	GetByID(ctx context.Context, proposalID string) (Proposal, bool, error)
	Create(ctx context.Context, proposal Proposal) error
	Update(ctx context.Context, proposal Proposal) error
	ListOpenByClub(ctx context.Context, leagueID, clubID string) ([]Proposal, error)
}
