package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/payroll"
	qb "github.com/sampaiofree/temporadaonline-sub001/internal/platform/querybuilder"
)

type settlementTableModel struct {
	ID        string    `db:"id"`
	FixtureID string    `db:"fixture_id"`
	ClubID    string    `db:"club_id"`
	LeagueID  string    `db:"league_id"`
	Wages     int64     `db:"wages"`
	Penalty   int64     `db:"penalty"`
	CreatedAt time.Time `db:"created_at"`
}

func (m settlementTableModel) toDomain() payroll.Settlement {
	return payroll.Settlement{
		ID:        m.ID,
		FixtureID: m.FixtureID,
		ClubID:    m.ClubID,
		LeagueID:  m.LeagueID,
		Wages:     m.Wages,
		Penalty:   m.Penalty,
		CreatedAt: m.CreatedAt,
	}
}

type SettlementRepository struct {
	store *Store
}

func NewSettlementRepository(store *Store) *SettlementRepository {
	return &SettlementRepository{store: store}
}

func (r *SettlementRepository) Create(ctx context.Context, settlement payroll.Settlement) error {
	if err := settlement.Validate(); err != nil {
		return err
	}

	query, args, err := qb.InsertInto("payroll_settlements").
		Columns("id", "fixture_id", "club_id", "league_id", "wages", "penalty").
		Values(settlement.ID, settlement.FixtureID, settlement.ClubID, settlement.LeagueID, settlement.Wages, settlement.Penalty).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build create settlement query: %w", err)
	}

	if _, err := r.store.ext(ctx).ExecContext(ctx, query, args...); err != nil {
		// Unique (fixture, club) keeps wage charges idempotent.
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: fixture %s club %s", payroll.ErrAlreadySettled, settlement.FixtureID, settlement.ClubID)
		}
		return fmt.Errorf("create settlement: %w", err)
	}
	return nil
}

func (r *SettlementRepository) GetByFixtureAndClub(ctx context.Context, fixtureID, clubID string) (payroll.Settlement, bool, error) {
	query, args, err := qb.Select("id", "fixture_id", "club_id", "league_id", "wages", "penalty", "created_at").
		From("payroll_settlements").
		Where(
			qb.Eq("fixture_id", fixtureID),
			qb.Eq("club_id", clubID),
		).
		ToSQL()
	if err != nil {
		return payroll.Settlement{}, false, fmt.Errorf("build get settlement query: %w", err)
	}

	var row settlementTableModel
	if err := sqlx.GetContext(ctx, r.store.ext(ctx), &row, query, args...); err != nil {
		if isNotFound(err) {
			return payroll.Settlement{}, false, nil
		}
		return payroll.Settlement{}, false, fmt.Errorf("get settlement: %w", err)
	}
	return row.toDomain(), true, nil
}
