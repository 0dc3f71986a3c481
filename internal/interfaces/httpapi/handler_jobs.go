package httpapi

import (
	"net/http"

	"github.com/sampaiofree/temporadaonline-sub001/internal/usecase"
)

// Internal job routes are issued by the scheduler or an operator, never by a
// club owner, so the actor recorded on audit events is a fixed system id.
const systemActorID = "system"

type finalizeAuctionsRequest struct {
	ScopeID string `json:"scopeId" validate:"required"`
}

type settleFixtureRequest struct {
	LeagueID  string `json:"leagueId" validate:"required"`
	FixtureID string `json:"fixtureId" validate:"required"`
}

type walletAdjustmentRequest struct {
	LeagueID string `json:"leagueId" validate:"required"`
	ClubID   string `json:"clubId" validate:"required"`
	Amount   int64  `json:"amount" validate:"required"`
	Reason   string `json:"reason" validate:"required"`
}

type resolveDisputeRequest struct {
	LeagueID  string `json:"leagueId" validate:"required"`
	FixtureID string `json:"fixtureId" validate:"required"`
	HomeScore int    `json:"homeScore" validate:"gte=0"`
	AwayScore int    `json:"awayScore" validate:"gte=0"`
}

type walkoverRequest struct {
	LeagueID         string `json:"leagueId" validate:"required"`
	FixtureID        string `json:"fixtureId" validate:"required"`
	DefaultingClubID string `json:"defaultingClubId" validate:"required"`
	Reason           string `json:"reason" validate:"required"`
}

func (h *Handler) RunFinalizeAuctionsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunFinalizeAuctionsJob")
	defer span.End()

	var req finalizeAuctionsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.auctionService.FinalizeExpired(ctx, req.ScopeID)
	if err != nil {
		h.logger.WarnContext(ctx, "finalize auctions job failed", "scope_id", req.ScopeID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{
		"closed":    result.Closed,
		"cancelled": result.Cancelled,
	})
}

func (h *Handler) RunAutoConfirmScoresJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunAutoConfirmScoresJob")
	defer span.End()

	confirmed, err := h.fixtureService.AutoConfirmExpired(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "auto confirm scores job failed", "confirmed", confirmed, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"confirmed": confirmed})
}

func (h *Handler) RunSettleFixtureJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSettleFixtureJob")
	defer span.End()

	var req settleFixtureRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	settlements, err := h.payrollService.SettleFixture(ctx, req.LeagueID, req.FixtureID)
	if err != nil {
		h.logger.WarnContext(ctx, "settle fixture job failed", "league_id", req.LeagueID, "fixture_id", req.FixtureID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]settlementDTO, 0, len(settlements))
	for _, s := range settlements {
		items = append(items, settlementToDTO(s))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) RunWalletAdjustmentJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunWalletAdjustmentJob")
	defer span.End()

	var req walletAdjustmentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	adjusted, err := h.walletService.Adjust(ctx, usecase.AdjustInput{
		LeagueID: req.LeagueID,
		ClubID:   req.ClubID,
		Amount:   req.Amount,
		Reason:   req.Reason,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "wallet adjustment job failed", "league_id", req.LeagueID, "club_id", req.ClubID, "amount", req.Amount, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, walletToDTO(adjusted))
}

func (h *Handler) RunResolveDisputeJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunResolveDisputeJob")
	defer span.End()

	var req resolveDisputeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	fx, err := h.fixtureService.ResolveDispute(ctx, usecase.ResolveDisputeInput{
		ActorUserID: systemActorID,
		LeagueID:    req.LeagueID,
		FixtureID:   req.FixtureID,
		HomeScore:   req.HomeScore,
		AwayScore:   req.AwayScore,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "resolve dispute job failed", "league_id", req.LeagueID, "fixture_id", req.FixtureID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, fixtureToDTO(fx))
}

func (h *Handler) RunWalkoverJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunWalkoverJob")
	defer span.End()

	var req walkoverRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	fx, err := h.fixtureService.Walkover(ctx, usecase.WalkoverInput{
		ActorUserID:      systemActorID,
		LeagueID:         req.LeagueID,
		FixtureID:        req.FixtureID,
		DefaultingClubID: req.DefaultingClubID,
		Reason:           req.Reason,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "walkover job failed", "league_id", req.LeagueID, "fixture_id", req.FixtureID, "defaulting_club_id", req.DefaultingClubID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, fixtureToDTO(fx))
}
