package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/availability"
	qb "github.com/sampaiofree/temporadaonline-sub001/internal/platform/querybuilder"
)

type availabilityWindowTableModel struct {
	ID          string `db:"id"`
	UserID      string `db:"user_id"`
	Weekday     int    `db:"weekday"`
	StartMinute int    `db:"start_minute"`
	EndMinute   int    `db:"end_minute"`
}

type AvailabilityRepository struct {
	store *Store
}

func NewAvailabilityRepository(store *Store) *AvailabilityRepository {
	return &AvailabilityRepository{store: store}
}

func (r *AvailabilityRepository) ListByUser(ctx context.Context, userID string) ([]availability.Window, error) {
	query, args, err := qb.Select("id", "user_id", "weekday", "start_minute", "end_minute").
		From("availability_windows").
		Where(qb.Eq("user_id", userID)).
		OrderBy("weekday", "start_minute").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list availability windows query: %w", err)
	}

	var rows []availabilityWindowTableModel
	if err := sqlx.SelectContext(ctx, r.store.ext(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list availability windows: %w", err)
	}

	out := make([]availability.Window, 0, len(rows))
	for _, row := range rows {
		out = append(out, availability.Window{
			ID:          row.ID,
			UserID:      row.UserID,
			Weekday:     time.Weekday(row.Weekday),
			StartMinute: row.StartMinute,
			EndMinute:   row.EndMinute,
		})
	}
	return out, nil
}

// ReplaceForUser swaps the user's whole weekly grid in one transaction.
func (r *AvailabilityRepository) ReplaceForUser(ctx context.Context, userID string, windows []availability.Window) error {
	if err := availability.ValidateSet(windows); err != nil {
		return err
	}

	return r.store.Atomic(ctx, func(ctx context.Context) error {
		const deleteQuery = `DELETE FROM availability_windows WHERE user_id = $1`
		if _, err := r.store.ext(ctx).ExecContext(ctx, deleteQuery, userID); err != nil {
			return fmt.Errorf("clear availability windows: %w", err)
		}

		if len(windows) == 0 {
			return nil
		}

		builder := qb.InsertInto("availability_windows").
			Columns("id", "user_id", "weekday", "start_minute", "end_minute")
		for _, w := range windows {
			builder.Values(w.ID, userID, int(w.Weekday), w.StartMinute, w.EndMinute)
		}
		query, args, err := builder.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert availability windows query: %w", err)
		}
		if _, err := r.store.ext(ctx).ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert availability windows: %w", err)
		}
		return nil
	})
}
