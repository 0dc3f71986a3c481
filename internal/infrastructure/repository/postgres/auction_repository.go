package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/market"
	qb "github.com/sampaiofree/temporadaonline-sub001/internal/platform/querybuilder"
)

type auctionItemTableModel struct {
	ID             string       `db:"id"`
	ScopeID        string       `db:"scope_id"`
	PlayerID       string       `db:"player_id"`
	Status         string       `db:"status"`
	BaseValue      int64        `db:"base_value"`
	CurrentBid     int64        `db:"current_bid"`
	LeaderClubID   string       `db:"leader_club_id"`
	LeaderLeagueID string       `db:"leader_league_id"`
	ExpiresAt      sql.NullTime `db:"expires_at"`
	CancelReason   string       `db:"cancel_reason"`
	CreatedAt      time.Time    `db:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at"`
}

func (m auctionItemTableModel) toDomain() market.Item {
	return market.Item{
		ID:             m.ID,
		ScopeID:        m.ScopeID,
		PlayerID:       m.PlayerID,
		Status:         market.ItemStatus(m.Status),
		BaseValue:      m.BaseValue,
		CurrentBid:     m.CurrentBid,
		LeaderClubID:   m.LeaderClubID,
		LeaderLeagueID: m.LeaderLeagueID,
		ExpiresAt:      nullTimeToPtr(m.ExpiresAt),
		CancelReason:   m.CancelReason,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

const auctionItemColumnsSQL = "id, scope_id, player_id, status, base_value, current_bid, leader_club_id, leader_league_id, expires_at, cancel_reason, created_at, updated_at"

type AuctionItemRepository struct {
	store *Store
}

func NewAuctionItemRepository(store *Store) *AuctionItemRepository {
	return &AuctionItemRepository{store: store}
}

// GetByScopePlayer locks the item row so concurrent bids on the same lot
// serialize behind one unit of work.
func (r *AuctionItemRepository) GetByScopePlayer(ctx context.Context, scopeID, playerID string) (market.Item, bool, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM auction_items
WHERE scope_id = $1
  AND player_id = $2
FOR UPDATE`, auctionItemColumnsSQL)

	var row auctionItemTableModel
	if err := sqlx.GetContext(ctx, r.store.ext(ctx), &row, query, scopeID, playerID); err != nil {
		if isNotFound(err) {
			return market.Item{}, false, nil
		}
		return market.Item{}, false, fmt.Errorf("get auction item: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *AuctionItemRepository) GetByScopePlayers(ctx context.Context, scopeID string, playerIDs []string) ([]market.Item, error) {
	if len(playerIDs) == 0 {
		return nil, nil
	}

	ids := make([]any, 0, len(playerIDs))
	for _, id := range playerIDs {
		ids = append(ids, id)
	}
	query, args, err := qb.Select(auctionItemColumnsSQL).
		From("auction_items").
		Where(
			qb.Eq("scope_id", scopeID),
			qb.In("player_id", ids),
		).
		OrderBy("player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get auction items query: %w", err)
	}

	var rows []auctionItemTableModel
	if err := sqlx.SelectContext(ctx, r.store.ext(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get auction items: %w", err)
	}

	out := make([]market.Item, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *AuctionItemRepository) ListExpiredOpen(ctx context.Context, scopeID string, now time.Time) ([]market.Item, error) {
	conditions := []qb.Condition{
		qb.EqLiteral("status", string(market.ItemOpen)),
		qb.Expr("leader_club_id <> ''"),
		qb.Expr("expires_at IS NOT NULL AND expires_at <= ?", now),
	}
	if scopeID != "" {
		conditions = append(conditions, qb.Eq("scope_id", scopeID))
	}

	query, args, err := qb.Select(auctionItemColumnsSQL).
		From("auction_items").
		Where(conditions...).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list expired auction items query: %w", err)
	}

	var rows []auctionItemTableModel
	if err := sqlx.SelectContext(ctx, r.store.ext(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list expired auction items: %w", err)
	}

	out := make([]market.Item, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Upsert reuses the (scope, player) row across auction cycles.
func (r *AuctionItemRepository) Upsert(ctx context.Context, item market.Item) (market.Item, error) {
	const query = `
INSERT INTO auction_items (id, scope_id, player_id, status, base_value, current_bid, leader_club_id, leader_league_id, expires_at, cancel_reason)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (scope_id, player_id)
DO UPDATE SET
    status = EXCLUDED.status,
    base_value = EXCLUDED.base_value,
    current_bid = EXCLUDED.current_bid,
    leader_club_id = EXCLUDED.leader_club_id,
    leader_league_id = EXCLUDED.leader_league_id,
    expires_at = EXCLUDED.expires_at,
    cancel_reason = EXCLUDED.cancel_reason,
    updated_at = NOW()
RETURNING ` + auctionItemColumnsSQL

	var row auctionItemTableModel
	err := sqlx.GetContext(ctx, r.store.ext(ctx), &row, query,
		item.ID, item.ScopeID, item.PlayerID, string(item.Status),
		item.BaseValue, item.CurrentBid, item.LeaderClubID, item.LeaderLeagueID,
		ptrToNullTime(item.ExpiresAt), item.CancelReason,
	)
	if err != nil {
		return market.Item{}, fmt.Errorf("upsert auction item: %w", err)
	}
	return row.toDomain(), nil
}

type auctionBidTableModel struct {
	ID        string    `db:"id"`
	ItemID    string    `db:"item_id"`
	ClubID    string    `db:"club_id"`
	LeagueID  string    `db:"league_id"`
	Amount    int64     `db:"amount"`
	CreatedAt time.Time `db:"created_at"`
}

type AuctionBidRepository struct {
	store *Store
}

func NewAuctionBidRepository(store *Store) *AuctionBidRepository {
	return &AuctionBidRepository{store: store}
}

func (r *AuctionBidRepository) Append(ctx context.Context, bid market.Bid) error {
	query, args, err := qb.InsertInto("auction_bids").
		Columns("id", "item_id", "club_id", "league_id", "amount").
		Values(bid.ID, bid.ItemID, bid.ClubID, bid.LeagueID, bid.Amount).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build append auction bid query: %w", err)
	}

	if _, err := r.store.ext(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append auction bid: %w", err)
	}
	return nil
}

func (r *AuctionBidRepository) ListByItem(ctx context.Context, itemID string) ([]market.Bid, error) {
	query, args, err := qb.Select("id", "item_id", "club_id", "league_id", "amount", "created_at").
		From("auction_bids").
		Where(qb.Eq("item_id", itemID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list auction bids query: %w", err)
	}

	var rows []auctionBidTableModel
	if err := sqlx.SelectContext(ctx, r.store.ext(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list auction bids: %w", err)
	}

	out := make([]market.Bid, 0, len(rows))
	for _, row := range rows {
		out = append(out, market.Bid{
			ID:        row.ID,
			ItemID:    row.ItemID,
			ClubID:    row.ClubID,
			LeagueID:  row.LeagueID,
			Amount:    row.Amount,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}
