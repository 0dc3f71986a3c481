package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/fixture"
	qb "github.com/sampaiofree/temporadaonline-sub001/internal/platform/querybuilder"
)

const fixtureColumnsSQL = "id, league_id, home_club_id, away_club_id, state, kickoff_at, reschedule_count, home_score, away_score, home_checkin_at, away_checkin_at, forced, no_slot, walkover_club_id, walkover_reason, score_submitted_at, created_at, updated_at"

type FixtureRepository struct {
	store *Store
}

func NewFixtureRepository(store *Store) *FixtureRepository {
	return &FixtureRepository{store: store}
}

// GetByID locks the fixture row. Transitions are read-modify-write and the
// two clubs may act on the same fixture at the same time.
func (r *FixtureRepository) GetByID(ctx context.Context, fixtureID string) (fixture.Fixture, bool, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM fixtures
WHERE id = $1
FOR UPDATE`, fixtureColumnsSQL)

	var row fixtureTableModel
	if err := sqlx.GetContext(ctx, r.store.ext(ctx), &row, query, fixtureID); err != nil {
		if isNotFound(err) {
			return fixture.Fixture{}, false, nil
		}
		return fixture.Fixture{}, false, fmt.Errorf("get fixture: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *FixtureRepository) GetByClubs(ctx context.Context, leagueID, homeClubID, awayClubID string) (fixture.Fixture, bool, error) {
	query, args, err := qb.Select(fixtureColumnsSQL).
		From("fixtures").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("home_club_id", homeClubID),
			qb.Eq("away_club_id", awayClubID),
		).
		ToSQL()
	if err != nil {
		return fixture.Fixture{}, false, fmt.Errorf("build get fixture by clubs query: %w", err)
	}

	var row fixtureTableModel
	if err := sqlx.GetContext(ctx, r.store.ext(ctx), &row, query, args...); err != nil {
		if isNotFound(err) {
			return fixture.Fixture{}, false, nil
		}
		return fixture.Fixture{}, false, fmt.Errorf("get fixture by clubs: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *FixtureRepository) Create(ctx context.Context, fx fixture.Fixture) error {
	if err := fx.Validate(); err != nil {
		return err
	}

	const query = `
INSERT INTO fixtures (id, league_id, home_club_id, away_club_id, state, kickoff_at, reschedule_count, home_score, away_score, home_checkin_at, away_checkin_at, forced, no_slot, walkover_club_id, walkover_reason, score_submitted_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.store.ext(ctx).ExecContext(ctx, query,
		fx.ID, fx.LeagueID, fx.HomeClubID, fx.AwayClubID, string(fx.State),
		ptrToNullTime(fx.KickoffAt), fx.RescheduleCount,
		ptrToNullInt64(fx.HomeScore), ptrToNullInt64(fx.AwayScore),
		ptrToNullTime(fx.HomeCheckInAt), ptrToNullTime(fx.AwayCheckInAt),
		fx.Forced, fx.NoSlot, fx.WalkoverClubID, fx.WalkoverReason,
		ptrToNullTime(fx.ScoreSubmittedAt),
	)
	if err != nil {
		return fmt.Errorf("create fixture: %w", err)
	}
	return nil
}

func (r *FixtureRepository) Update(ctx context.Context, fx fixture.Fixture) error {
	if err := fx.Validate(); err != nil {
		return err
	}

	const query = `
UPDATE fixtures
SET state = $2,
    kickoff_at = $3,
    reschedule_count = $4,
    home_score = $5,
    away_score = $6,
    home_checkin_at = $7,
    away_checkin_at = $8,
    forced = $9,
    no_slot = $10,
    walkover_club_id = $11,
    walkover_reason = $12,
    score_submitted_at = $13,
    updated_at = NOW()
WHERE id = $1`

	result, err := r.store.ext(ctx).ExecContext(ctx, query,
		fx.ID, string(fx.State), ptrToNullTime(fx.KickoffAt), fx.RescheduleCount,
		ptrToNullInt64(fx.HomeScore), ptrToNullInt64(fx.AwayScore),
		ptrToNullTime(fx.HomeCheckInAt), ptrToNullTime(fx.AwayCheckInAt),
		fx.Forced, fx.NoSlot, fx.WalkoverClubID, fx.WalkoverReason,
		ptrToNullTime(fx.ScoreSubmittedAt),
	)
	if err != nil {
		return fmt.Errorf("update fixture: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update fixture rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("fixture %s does not exist", fx.ID)
	}
	return nil
}

func (r *FixtureRepository) ListByLeague(ctx context.Context, leagueID string) ([]fixture.Fixture, error) {
	query, args, err := qb.Select(fixtureColumnsSQL).
		From("fixtures").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list fixtures by league query: %w", err)
	}
	return r.list(ctx, query, args)
}

func (r *FixtureRepository) ListBookedByClub(ctx context.Context, clubID string) ([]fixture.Fixture, error) {
	bookedStates := []any{
		string(fixture.StateScheduled),
		string(fixture.StateConfirmed),
		string(fixture.StateInProgress),
	}
	query, args, err := qb.Select(fixtureColumnsSQL).
		From("fixtures").
		Where(
			qb.Expr("(home_club_id = ? OR away_club_id = ?)", clubID, clubID),
			qb.In("state", bookedStates),
			qb.Expr("kickoff_at IS NOT NULL"),
		).
		OrderBy("kickoff_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list booked fixtures query: %w", err)
	}
	return r.list(ctx, query, args)
}

func (r *FixtureRepository) ListByState(ctx context.Context, state fixture.State) ([]fixture.Fixture, error) {
	query, args, err := qb.Select(fixtureColumnsSQL).
		From("fixtures").
		Where(qb.Eq("state", string(state))).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list fixtures by state query: %w", err)
	}
	return r.list(ctx, query, args)
}

func (r *FixtureRepository) list(ctx context.Context, query string, args []any) ([]fixture.Fixture, error) {
	var rows []fixtureTableModel
	if err := sqlx.SelectContext(ctx, r.store.ext(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}

	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

type fixtureEventTableModel struct {
	ID        string    `db:"id"`
	FixtureID string    `db:"fixture_id"`
	Action    string    `db:"action"`
	ActorID   string    `db:"actor_id"`
	Payload   []byte    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
}

type FixtureEventLog struct {
	store *Store
}

func NewFixtureEventLog(store *Store) *FixtureEventLog {
	return &FixtureEventLog{store: store}
}

func (r *FixtureEventLog) Append(ctx context.Context, event fixture.Event) error {
	var payload []byte
	if event.Payload != nil {
		encoded, err := sonic.Marshal(event.Payload)
		if err != nil {
			return fmt.Errorf("encode fixture event payload: %w", err)
		}
		payload = encoded
	}

	const query = `
INSERT INTO fixture_events (id, fixture_id, action, actor_id, payload)
VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.store.ext(ctx).ExecContext(ctx, query, event.ID, event.FixtureID, event.Action, event.ActorID, payload); err != nil {
		return fmt.Errorf("append fixture event: %w", err)
	}
	return nil
}

func (r *FixtureEventLog) ListByFixture(ctx context.Context, fixtureID string) ([]fixture.Event, error) {
	query, args, err := qb.Select("id", "fixture_id", "action", "actor_id", "payload", "created_at").
		From("fixture_events").
		Where(qb.Eq("fixture_id", fixtureID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list fixture events query: %w", err)
	}

	var rows []fixtureEventTableModel
	if err := sqlx.SelectContext(ctx, r.store.ext(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list fixture events: %w", err)
	}

	out := make([]fixture.Event, 0, len(rows))
	for _, row := range rows {
		event := fixture.Event{
			ID:        row.ID,
			FixtureID: row.FixtureID,
			Action:    row.Action,
			ActorID:   row.ActorID,
			CreatedAt: row.CreatedAt,
		}
		if len(row.Payload) > 0 {
			if err := sonic.Unmarshal(row.Payload, &event.Payload); err != nil {
				return nil, fmt.Errorf("decode fixture event %s payload: %w", row.ID, err)
			}
		}
		out = append(out, event)
	}
	return out, nil
}
