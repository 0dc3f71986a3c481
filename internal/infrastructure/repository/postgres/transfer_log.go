package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/roster"
	qb "github.com/sampaiofree/temporadaonline-sub001/internal/platform/querybuilder"
)

type transferRecordTableModel struct {
	ID         string    `db:"id"`
	LeagueID   string    `db:"league_id"`
	PlayerID   string    `db:"player_id"`
	FromClubID string    `db:"from_club_id"`
	ToClubID   string    `db:"to_club_id"`
	Type       string    `db:"type"`
	Amount     int64     `db:"amount"`
	CreatedAt  time.Time `db:"created_at"`
}

func (m transferRecordTableModel) toDomain() roster.TransferRecord {
	return roster.TransferRecord{
		ID:         m.ID,
		LeagueID:   m.LeagueID,
		PlayerID:   m.PlayerID,
		FromClubID: m.FromClubID,
		ToClubID:   m.ToClubID,
		Type:       roster.TransferType(m.Type),
		Amount:     m.Amount,
		CreatedAt:  m.CreatedAt,
	}
}

var transferRecordColumns = []string{"id", "league_id", "player_id", "from_club_id", "to_club_id", "type", "amount", "created_at"}

// TransferLog is append-only; rows are never updated or deleted.
type TransferLog struct {
	store *Store
}

func NewTransferLog(store *Store) *TransferLog {
	return &TransferLog{store: store}
}

func (r *TransferLog) Append(ctx context.Context, record roster.TransferRecord) error {
	query, args, err := qb.InsertInto("transfer_records").
		Columns("id", "league_id", "player_id", "from_club_id", "to_club_id", "type", "amount").
		Values(record.ID, record.LeagueID, record.PlayerID, record.FromClubID, record.ToClubID, string(record.Type), record.Amount).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build append transfer record query: %w", err)
	}

	if _, err := r.store.ext(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append transfer record: %w", err)
	}
	return nil
}

func (r *TransferLog) ListByLeague(ctx context.Context, leagueID string) ([]roster.TransferRecord, error) {
	query, args, err := qb.Select(transferRecordColumns...).
		From("transfer_records").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list transfer records by league query: %w", err)
	}
	return r.list(ctx, query, args)
}

func (r *TransferLog) ListByClub(ctx context.Context, clubID string) ([]roster.TransferRecord, error) {
	query, args, err := qb.Select(transferRecordColumns...).
		From("transfer_records").
		Where(qb.Expr("(from_club_id = ? OR to_club_id = ?)", clubID, clubID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list transfer records by club query: %w", err)
	}
	return r.list(ctx, query, args)
}

func (r *TransferLog) list(ctx context.Context, query string, args []any) ([]roster.TransferRecord, error) {
	var rows []transferRecordTableModel
	if err := sqlx.SelectContext(ctx, r.store.ext(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list transfer records: %w", err)
	}

	out := make([]roster.TransferRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
