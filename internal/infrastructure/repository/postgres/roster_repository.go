package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/roster"
)

type rosterEntryTableModel struct {
	ID            string    `db:"id"`
	ScopeID       string    `db:"scope_id"`
	LeagueID      string    `db:"league_id"`
	ClubID        string    `db:"club_id"`
	PlayerID      string    `db:"player_id"`
	ValueSnapshot int64     `db:"value_snapshot"`
	WageSnapshot  int64     `db:"wage_snapshot"`
	Active        bool      `db:"active"`
	AcquiredAt    time.Time `db:"acquired_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (m rosterEntryTableModel) toDomain() roster.Entry {
	return roster.Entry{
		ID:            m.ID,
		ScopeID:       m.ScopeID,
		LeagueID:      m.LeagueID,
		ClubID:        m.ClubID,
		PlayerID:      m.PlayerID,
		ValueSnapshot: m.ValueSnapshot,
		WageSnapshot:  m.WageSnapshot,
		Active:        m.Active,
		AcquiredAt:    m.AcquiredAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

type RosterRepository struct {
	store *Store
}

func NewRosterRepository(store *Store) *RosterRepository {
	return &RosterRepository{store: store}
}

// GetActiveByScopePlayer locks the matching row so a concurrent sale or
// auction grant of the same player waits behind this unit of work.
func (r *RosterRepository) GetActiveByScopePlayer(ctx context.Context, scopeID, playerID string) (roster.Entry, bool, error) {
	const query = `
SELECT id, scope_id, league_id, club_id, player_id, value_snapshot, wage_snapshot, active, acquired_at, updated_at
FROM roster_entries
WHERE scope_id = $1
  AND player_id = $2
  AND active
FOR UPDATE`

	var row rosterEntryTableModel
	if err := sqlx.GetContext(ctx, r.store.ext(ctx), &row, query, scopeID, playerID); err != nil {
		if isNotFound(err) {
			return roster.Entry{}, false, nil
		}
		return roster.Entry{}, false, fmt.Errorf("get active roster entry: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *RosterRepository) CountActiveByClub(ctx context.Context, leagueID, clubID string) (int, error) {
	const query = `
SELECT COUNT(*)
FROM roster_entries
WHERE league_id = $1
  AND club_id = $2
  AND active`

	var count int
	if err := sqlx.GetContext(ctx, r.store.ext(ctx), &count, query, leagueID, clubID); err != nil {
		return 0, fmt.Errorf("count active roster entries: %w", err)
	}
	return count, nil
}

func (r *RosterRepository) ListActiveByClub(ctx context.Context, leagueID, clubID string) ([]roster.Entry, error) {
	const query = `
SELECT id, scope_id, league_id, club_id, player_id, value_snapshot, wage_snapshot, active, acquired_at, updated_at
FROM roster_entries
WHERE league_id = $1
  AND club_id = $2
  AND active
ORDER BY acquired_at, id`

	var rows []rosterEntryTableModel
	if err := sqlx.SelectContext(ctx, r.store.ext(ctx), &rows, query, leagueID, clubID); err != nil {
		return nil, fmt.Errorf("list active roster entries: %w", err)
	}

	out := make([]roster.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *RosterRepository) Create(ctx context.Context, entry roster.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	const query = `
INSERT INTO roster_entries (id, scope_id, league_id, club_id, player_id, value_snapshot, wage_snapshot, active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.store.ext(ctx).ExecContext(ctx, query,
		entry.ID, entry.ScopeID, entry.LeagueID, entry.ClubID, entry.PlayerID,
		entry.ValueSnapshot, entry.WageSnapshot, entry.Active,
	)
	if err != nil {
		// Partial unique index on active (scope, player) rows.
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: player %s in scope %s", roster.ErrPlayerTaken, entry.PlayerID, entry.ScopeID)
		}
		return fmt.Errorf("create roster entry: %w", err)
	}
	return nil
}

func (r *RosterRepository) Update(ctx context.Context, entry roster.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	const query = `
UPDATE roster_entries
SET league_id = $2,
    club_id = $3,
    value_snapshot = $4,
    wage_snapshot = $5,
    active = $6,
    updated_at = NOW()
WHERE id = $1`

	result, err := r.store.ext(ctx).ExecContext(ctx, query,
		entry.ID, entry.LeagueID, entry.ClubID,
		entry.ValueSnapshot, entry.WageSnapshot, entry.Active,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: player %s in scope %s", roster.ErrPlayerTaken, entry.PlayerID, entry.ScopeID)
		}
		return fmt.Errorf("update roster entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update roster entry rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("roster entry %s does not exist", entry.ID)
	}
	return nil
}
