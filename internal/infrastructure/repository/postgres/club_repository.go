package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/club"
	qb "github.com/sampaiofree/temporadaonline-sub001/internal/platform/querybuilder"
)

type clubTableModel struct {
	ID          string `db:"id"`
	LeagueID    string `db:"league_id"`
	OwnerUserID string `db:"owner_user_id"`
	Name        string `db:"name"`
}

func (m clubTableModel) toDomain() club.Club {
	return club.Club{
		ID:          m.ID,
		LeagueID:    m.LeagueID,
		OwnerUserID: m.OwnerUserID,
		Name:        m.Name,
	}
}

type ClubRepository struct {
	store *Store
}

func NewClubRepository(store *Store) *ClubRepository {
	return &ClubRepository{store: store}
}

func (r *ClubRepository) GetByID(ctx context.Context, clubID string) (club.Club, bool, error) {
	query, args, err := qb.Select("id", "league_id", "owner_user_id", "name").
		From("clubs").
		Where(qb.Eq("id", clubID)).
		ToSQL()
	if err != nil {
		return club.Club{}, false, fmt.Errorf("build get club by id query: %w", err)
	}

	var row clubTableModel
	if err := sqlx.GetContext(ctx, r.store.ext(ctx), &row, query, args...); err != nil {
		if isNotFound(err) {
			return club.Club{}, false, nil
		}
		return club.Club{}, false, fmt.Errorf("get club by id: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *ClubRepository) ListByLeague(ctx context.Context, leagueID string) ([]club.Club, error) {
	query, args, err := qb.Select("id", "league_id", "owner_user_id", "name").
		From("clubs").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list clubs by league query: %w", err)
	}

	var rows []clubTableModel
	if err := sqlx.SelectContext(ctx, r.store.ext(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list clubs by league: %w", err)
	}

	out := make([]club.Club, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ClubRepository) GetByOwner(ctx context.Context, leagueID, ownerUserID string) (club.Club, bool, error) {
	query, args, err := qb.Select("id", "league_id", "owner_user_id", "name").
		From("clubs").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("owner_user_id", ownerUserID),
		).
		ToSQL()
	if err != nil {
		return club.Club{}, false, fmt.Errorf("build get club by owner query: %w", err)
	}

	var row clubTableModel
	if err := sqlx.GetContext(ctx, r.store.ext(ctx), &row, query, args...); err != nil {
		if isNotFound(err) {
			return club.Club{}, false, nil
		}
		return club.Club{}, false, fmt.Errorf("get club by owner: %w", err)
	}
	return row.toDomain(), true, nil
}
