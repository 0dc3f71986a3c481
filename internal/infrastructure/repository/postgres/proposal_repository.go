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

type proposalTableModel struct {
	ID                string       `db:"id"`
	LeagueID          string       `db:"league_id"`
	FromClubID        string       `db:"from_club_id"`
	ToClubID          string       `db:"to_club_id"`
	OfferedPlayerID   string       `db:"offered_player_id"`
	RequestedPlayerID string       `db:"requested_player_id"`
	CashAmount        int64        `db:"cash_amount"`
	Status            string       `db:"status"`
	CreatedAt         time.Time    `db:"created_at"`
	ResolvedAt        sql.NullTime `db:"resolved_at"`
}

func (m proposalTableModel) toDomain() market.Proposal {
	return market.Proposal{
		ID:                m.ID,
		LeagueID:          m.LeagueID,
		FromClubID:        m.FromClubID,
		ToClubID:          m.ToClubID,
		OfferedPlayerID:   m.OfferedPlayerID,
		RequestedPlayerID: m.RequestedPlayerID,
		CashAmount:        m.CashAmount,
		Status:            market.ProposalStatus(m.Status),
		CreatedAt:         m.CreatedAt,
		ResolvedAt:        nullTimeToPtr(m.ResolvedAt),
	}
}

const proposalColumnsSQL = "id, league_id, from_club_id, to_club_id, offered_player_id, requested_player_id, cash_amount, status, created_at, resolved_at"

type ProposalRepository struct {
	store *Store
}

func NewProposalRepository(store *Store) *ProposalRepository {
	return &ProposalRepository{store: store}
}

// GetByID locks the proposal row; accept, reject and cancel race for the
// same open proposal.
func (r *ProposalRepository) GetByID(ctx context.Context, proposalID string) (market.Proposal, bool, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM proposals
WHERE id = $1
FOR UPDATE`, proposalColumnsSQL)

	var row proposalTableModel
	if err := sqlx.GetContext(ctx, r.store.ext(ctx), &row, query, proposalID); err != nil {
		if isNotFound(err) {
			return market.Proposal{}, false, nil
		}
		return market.Proposal{}, false, fmt.Errorf("get proposal: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *ProposalRepository) Create(ctx context.Context, proposal market.Proposal) error {
	query, args, err := qb.InsertInto("proposals").
		Columns("id", "league_id", "from_club_id", "to_club_id", "offered_player_id", "requested_player_id", "cash_amount", "status").
		Values(proposal.ID, proposal.LeagueID, proposal.FromClubID, proposal.ToClubID,
			proposal.OfferedPlayerID, proposal.RequestedPlayerID, proposal.CashAmount, string(proposal.Status)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build create proposal query: %w", err)
	}

	if _, err := r.store.ext(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create proposal: %w", err)
	}
	return nil
}

func (r *ProposalRepository) Update(ctx context.Context, proposal market.Proposal) error {
	query, args, err := qb.Update("proposals").
		Set("status", string(proposal.Status)).
		Set("resolved_at", ptrToNullTime(proposal.ResolvedAt)).
		Where(qb.Eq("id", proposal.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update proposal query: %w", err)
	}

	result, err := r.store.ext(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update proposal: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update proposal rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("proposal %s does not exist", proposal.ID)
	}
	return nil
}

func (r *ProposalRepository) ListOpenByClub(ctx context.Context, leagueID, clubID string) ([]market.Proposal, error) {
	query, args, err := qb.Select(proposalColumnsSQL).
		From("proposals").
		Where(
			qb.Eq("league_id", leagueID),
			qb.EqLiteral("status", string(market.ProposalOpen)),
			qb.Expr("(from_club_id = ? OR to_club_id = ?)", clubID, clubID),
		).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list open proposals query: %w", err)
	}

	var rows []proposalTableModel
	if err := sqlx.SelectContext(ctx, r.store.ext(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list open proposals: %w", err)
	}

	out := make([]market.Proposal, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
