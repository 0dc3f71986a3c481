package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/market"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/roster"
	"github.com/sampaiofree/temporadaonline-sub001/internal/usecase"
)

type placeBidRequest struct {
	ClubID    string `json:"clubId" validate:"required"`
	PlayerID  string `json:"playerId" validate:"required"`
	Increment *int64 `json:"increment,omitempty"`
}

type marketSnapshotRequest struct {
	ClubID    string   `json:"clubId" validate:"required"`
	PlayerIDs []string `json:"playerIds" validate:"required,min=1"`
}

type buyFreeAgentRequest struct {
	ClubID   string `json:"clubId" validate:"required"`
	PlayerID string `json:"playerId" validate:"required"`
}

type sellPlayerRequest struct {
	SellerClubID string `json:"sellerClubId" validate:"required"`
	BuyerClubID  string `json:"buyerClubId" validate:"required"`
	PlayerID     string `json:"playerId" validate:"required"`
	Price        int64  `json:"price" validate:"gt=0"`
}

type payReleaseClauseRequest struct {
	BuyerClubID string `json:"buyerClubId" validate:"required"`
	PlayerID    string `json:"playerId" validate:"required"`
}

type swapPlayersRequest struct {
	ClubAID        string `json:"clubAId" validate:"required"`
	PlayerAID      string `json:"playerAId" validate:"required"`
	ClubBID        string `json:"clubBId" validate:"required"`
	PlayerBID      string `json:"playerBId" validate:"required"`
	CashAdjustment int64  `json:"cashAdjustment"`
}

type createProposalRequest struct {
	FromClubID        string `json:"fromClubId" validate:"required"`
	ToClubID          string `json:"toClubId" validate:"required"`
	OfferedPlayerID   string `json:"offeredPlayerId" validate:"required"`
	RequestedPlayerID string `json:"requestedPlayerId,omitempty"`
	CashAmount        int64  `json:"cashAmount"`
}

type resolveProposalRequest struct {
	ClubID string `json:"clubId" validate:"required"`
}

type marketSnapshotDTO struct {
	PlayerID         string `json:"playerId"`
	Status           string `json:"status"`
	CurrentBid       int64  `json:"currentBid"`
	LeaderClubID     string `json:"leaderClubId,omitempty"`
	IsLeader         bool   `json:"isLeader"`
	SecondsRemaining int64  `json:"secondsRemaining"`
	MinimumNextBid   int64  `json:"minimumNextBid"`
}

func marketSnapshotToDTO(s market.Snapshot) marketSnapshotDTO {
	return marketSnapshotDTO{
		PlayerID:         s.PlayerID,
		Status:           string(s.Status),
		CurrentBid:       s.CurrentBid,
		LeaderClubID:     s.LeaderClubID,
		IsLeader:         s.IsLeader,
		SecondsRemaining: s.SecondsRemaining,
		MinimumNextBid:   s.MinimumNextBid,
	}
}

type rosterEntryDTO struct {
	ID            string `json:"id"`
	ScopeID       string `json:"scopeId"`
	LeagueID      string `json:"leagueId"`
	ClubID        string `json:"clubId"`
	PlayerID      string `json:"playerId"`
	ValueSnapshot int64  `json:"valueSnapshot"`
	WageSnapshot  int64  `json:"wageSnapshot"`
	Active        bool   `json:"active"`
	AcquiredAt    string `json:"acquiredAtUtc"`
}

func rosterEntryToDTO(e roster.Entry) rosterEntryDTO {
	return rosterEntryDTO{
		ID:            e.ID,
		ScopeID:       e.ScopeID,
		LeagueID:      e.LeagueID,
		ClubID:        e.ClubID,
		PlayerID:      e.PlayerID,
		ValueSnapshot: e.ValueSnapshot,
		WageSnapshot:  e.WageSnapshot,
		Active:        e.Active,
		AcquiredAt:    e.AcquiredAt.UTC().Format(time.RFC3339),
	}
}

type proposalDTO struct {
	ID                string `json:"id"`
	LeagueID          string `json:"leagueId"`
	FromClubID        string `json:"fromClubId"`
	ToClubID          string `json:"toClubId"`
	OfferedPlayerID   string `json:"offeredPlayerId"`
	RequestedPlayerID string `json:"requestedPlayerId,omitempty"`
	CashAmount        int64  `json:"cashAmount"`
	Status            string `json:"status"`
	CreatedAt         string `json:"createdAtUtc"`
	ResolvedAt        string `json:"resolvedAtUtc,omitempty"`
}

func proposalToDTO(p market.Proposal) proposalDTO {
	dto := proposalDTO{
		ID:                p.ID,
		LeagueID:          p.LeagueID,
		FromClubID:        p.FromClubID,
		ToClubID:          p.ToClubID,
		OfferedPlayerID:   p.OfferedPlayerID,
		RequestedPlayerID: p.RequestedPlayerID,
		CashAmount:        p.CashAmount,
		Status:            string(p.Status),
		CreatedAt:         p.CreatedAt.UTC().Format(time.RFC3339),
	}
	if p.ResolvedAt != nil {
		dto.ResolvedAt = p.ResolvedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func (h *Handler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PlaceBid")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req placeBidRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	snapshot, err := h.auctionService.PlaceBid(ctx, usecase.PlaceBidInput{
		ActorUserID: principal.UserID,
		LeagueID:    r.PathValue("leagueID"),
		ClubID:      req.ClubID,
		PlayerID:    req.PlayerID,
		Increment:   req.Increment,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "place bid failed", "user_id", principal.UserID, "club_id", req.ClubID, "player_id", req.PlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, marketSnapshotToDTO(snapshot))
}

func (h *Handler) MarketSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.MarketSnapshot")
	defer span.End()

	if _, ok := principalFromContext(ctx); !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req marketSnapshotRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	snapshots, err := h.auctionService.Snapshot(ctx, usecase.SnapshotInput{
		LeagueID:  r.PathValue("leagueID"),
		ClubID:    req.ClubID,
		PlayerIDs: req.PlayerIDs,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "market snapshot failed", "club_id", req.ClubID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]marketSnapshotDTO, 0, len(snapshots))
	for _, s := range snapshots {
		items = append(items, marketSnapshotToDTO(s))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) BuyFreeAgent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BuyFreeAgent")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req buyFreeAgentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	entry, err := h.transferService.BuyFreeAgent(ctx, usecase.BuyFreeAgentInput{
		ActorUserID: principal.UserID,
		LeagueID:    r.PathValue("leagueID"),
		ClubID:      req.ClubID,
		PlayerID:    req.PlayerID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "buy free agent failed", "user_id", principal.UserID, "club_id", req.ClubID, "player_id", req.PlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, rosterEntryToDTO(entry))
}

func (h *Handler) SellPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SellPlayer")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req sellPlayerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	entry, err := h.transferService.SellPlayer(ctx, usecase.SellPlayerInput{
		ActorUserID:  principal.UserID,
		LeagueID:     r.PathValue("leagueID"),
		SellerClubID: req.SellerClubID,
		BuyerClubID:  req.BuyerClubID,
		PlayerID:     req.PlayerID,
		Price:        req.Price,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "sell player failed", "user_id", principal.UserID, "seller_club_id", req.SellerClubID, "buyer_club_id", req.BuyerClubID, "player_id", req.PlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rosterEntryToDTO(entry))
}

func (h *Handler) PayReleaseClause(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PayReleaseClause")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req payReleaseClauseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	entry, err := h.transferService.PayReleaseClause(ctx, usecase.PayReleaseClauseInput{
		ActorUserID: principal.UserID,
		LeagueID:    r.PathValue("leagueID"),
		BuyerClubID: req.BuyerClubID,
		PlayerID:    req.PlayerID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "pay release clause failed", "user_id", principal.UserID, "buyer_club_id", req.BuyerClubID, "player_id", req.PlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rosterEntryToDTO(entry))
}

func (h *Handler) SwapPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SwapPlayers")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req swapPlayersRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	err := h.transferService.SwapPlayers(ctx, usecase.SwapPlayersInput{
		ActorUserID:    principal.UserID,
		LeagueID:       r.PathValue("leagueID"),
		ClubAID:        req.ClubAID,
		PlayerAID:      req.PlayerAID,
		ClubBID:        req.ClubBID,
		PlayerBID:      req.PlayerBID,
		CashAdjustment: req.CashAdjustment,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "swap players failed", "user_id", principal.UserID, "club_a_id", req.ClubAID, "club_b_id", req.ClubBID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "swapped"})
}

func (h *Handler) CreateProposal(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateProposal")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createProposalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	proposal, err := h.proposalService.Create(ctx, usecase.CreateProposalInput{
		ActorUserID:       principal.UserID,
		LeagueID:          r.PathValue("leagueID"),
		FromClubID:        req.FromClubID,
		ToClubID:          req.ToClubID,
		OfferedPlayerID:   req.OfferedPlayerID,
		RequestedPlayerID: req.RequestedPlayerID,
		CashAmount:        req.CashAmount,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create proposal failed", "user_id", principal.UserID, "from_club_id", req.FromClubID, "to_club_id", req.ToClubID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, proposalToDTO(proposal))
}

func (h *Handler) ListOpenProposals(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListOpenProposals")
	defer span.End()

	if _, ok := principalFromContext(ctx); !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	leagueID := r.PathValue("leagueID")
	clubID := r.PathValue("clubID")
	proposals, err := h.proposalService.ListOpen(ctx, leagueID, clubID)
	if err != nil {
		h.logger.WarnContext(ctx, "list open proposals failed", "league_id", leagueID, "club_id", clubID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]proposalDTO, 0, len(proposals))
	for _, p := range proposals {
		items = append(items, proposalToDTO(p))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) AcceptProposal(w http.ResponseWriter, r *http.Request) {
	h.resolveProposal(w, r, "httpapi.Handler.AcceptProposal", h.proposalService.Accept)
}

func (h *Handler) RejectProposal(w http.ResponseWriter, r *http.Request) {
	h.resolveProposal(w, r, "httpapi.Handler.RejectProposal", h.proposalService.Reject)
}

func (h *Handler) CancelProposal(w http.ResponseWriter, r *http.Request) {
	h.resolveProposal(w, r, "httpapi.Handler.CancelProposal", h.proposalService.Cancel)
}

func (h *Handler) resolveProposal(
	w http.ResponseWriter,
	r *http.Request,
	spanName string,
	resolve func(ctx context.Context, input usecase.ResolveProposalInput) (market.Proposal, error),
) {
	ctx, span := startSpan(r.Context(), spanName)
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req resolveProposalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	proposal, err := resolve(ctx, usecase.ResolveProposalInput{
		ActorUserID: principal.UserID,
		LeagueID:    r.PathValue("leagueID"),
		ClubID:      req.ClubID,
		ProposalID:  r.PathValue("proposalID"),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "resolve proposal failed", "user_id", principal.UserID, "proposal_id", r.PathValue("proposalID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, proposalToDTO(proposal))
}
