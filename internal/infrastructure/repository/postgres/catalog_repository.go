package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/catalog"
	qb "github.com/sampaiofree/temporadaonline-sub001/internal/platform/querybuilder"
)

type catalogPlayerTableModel struct {
	ID          string `db:"id"`
	GameEdition string `db:"game_edition"`
	Name        string `db:"name"`
	Position    string `db:"position"`
	MarketValue int64  `db:"market_value"`
	Wage        int64  `db:"wage"`
	Overall     int    `db:"overall"`
}

func (m catalogPlayerTableModel) toDomain() catalog.Player {
	return catalog.Player{
		ID:          m.ID,
		GameEdition: m.GameEdition,
		Name:        m.Name,
		Position:    m.Position,
		MarketValue: m.MarketValue,
		Wage:        m.Wage,
		Overall:     m.Overall,
	}
}

var catalogPlayerColumns = []string{"id", "game_edition", "name", "position", "market_value", "wage", "overall"}

type CatalogRepository struct {
	store *Store
}

func NewCatalogRepository(store *Store) *CatalogRepository {
	return &CatalogRepository{store: store}
}

func (r *CatalogRepository) GetByID(ctx context.Context, playerID string) (catalog.Player, bool, error) {
	query, args, err := qb.Select(catalogPlayerColumns...).
		From("catalog_players").
		Where(qb.Eq("id", playerID)).
		ToSQL()
	if err != nil {
		return catalog.Player{}, false, fmt.Errorf("build get catalog player query: %w", err)
	}

	var row catalogPlayerTableModel
	if err := sqlx.GetContext(ctx, r.store.ext(ctx), &row, query, args...); err != nil {
		if isNotFound(err) {
			return catalog.Player{}, false, nil
		}
		return catalog.Player{}, false, fmt.Errorf("get catalog player: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *CatalogRepository) GetByIDs(ctx context.Context, playerIDs []string) ([]catalog.Player, error) {
	if len(playerIDs) == 0 {
		return nil, nil
	}

	ids := make([]any, 0, len(playerIDs))
	for _, id := range playerIDs {
		ids = append(ids, id)
	}
	query, args, err := qb.Select(catalogPlayerColumns...).
		From("catalog_players").
		Where(qb.In("id", ids)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get catalog players query: %w", err)
	}

	var rows []catalogPlayerTableModel
	if err := sqlx.SelectContext(ctx, r.store.ext(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get catalog players: %w", err)
	}

	out := make([]catalog.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *CatalogRepository) ListByEdition(ctx context.Context, gameEdition string) ([]catalog.Player, error) {
	query, args, err := qb.Select(catalogPlayerColumns...).
		From("catalog_players").
		Where(qb.Eq("game_edition", gameEdition)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list catalog players query: %w", err)
	}

	var rows []catalogPlayerTableModel
	if err := sqlx.SelectContext(ctx, r.store.ext(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list catalog players: %w", err)
	}

	out := make([]catalog.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
