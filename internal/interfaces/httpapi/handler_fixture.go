package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/fixture"
	"github.com/sampaiofree/temporadaonline-sub001/internal/usecase"
)

type createFixtureRequest struct {
	HomeClubID string `json:"homeClubId" validate:"required"`
	AwayClubID string `json:"awayClubId" validate:"required"`
}

type scheduleFixtureRequest struct {
	KickoffAt string `json:"kickoffAt" validate:"required"`
	Force     bool   `json:"force"`
}

type fixtureClubActionRequest struct {
	ClubID string `json:"clubId" validate:"required"`
}

type submitScoreRequest struct {
	ClubID    string `json:"clubId" validate:"required"`
	HomeScore int    `json:"homeScore" validate:"gte=0"`
	AwayScore int    `json:"awayScore" validate:"gte=0"`
}

type fixtureDTO struct {
	ID              string `json:"id"`
	LeagueID        string `json:"leagueId"`
	HomeClubID      string `json:"homeClubId"`
	AwayClubID      string `json:"awayClubId"`
	State           string `json:"state"`
	KickoffAt       string `json:"kickoffAtUtc,omitempty"`
	RescheduleCount int    `json:"rescheduleCount"`
	HomeScore       *int   `json:"homeScore,omitempty"`
	AwayScore       *int   `json:"awayScore,omitempty"`
	HomeCheckInAt   string `json:"homeCheckInAtUtc,omitempty"`
	AwayCheckInAt   string `json:"awayCheckInAtUtc,omitempty"`
	Forced          bool   `json:"forced,omitempty"`
	NoSlot          bool   `json:"noSlot,omitempty"`
	WalkoverClubID  string `json:"walkoverClubId,omitempty"`
	WalkoverReason  string `json:"walkoverReason,omitempty"`
}

func fixtureToDTO(f fixture.Fixture) fixtureDTO {
	dto := fixtureDTO{
		ID:              f.ID,
		LeagueID:        f.LeagueID,
		HomeClubID:      f.HomeClubID,
		AwayClubID:      f.AwayClubID,
		State:           string(f.State),
		RescheduleCount: f.RescheduleCount,
		HomeScore:       f.HomeScore,
		AwayScore:       f.AwayScore,
		Forced:          f.Forced,
		NoSlot:          f.NoSlot,
		WalkoverClubID:  f.WalkoverClubID,
		WalkoverReason:  f.WalkoverReason,
	}
	if f.KickoffAt != nil {
		dto.KickoffAt = f.KickoffAt.UTC().Format(time.RFC3339)
	}
	if f.HomeCheckInAt != nil {
		dto.HomeCheckInAt = f.HomeCheckInAt.UTC().Format(time.RFC3339)
	}
	if f.AwayCheckInAt != nil {
		dto.AwayCheckInAt = f.AwayCheckInAt.UTC().Format(time.RFC3339)
	}
	return dto
}

type fixtureEventDTO struct {
	ID        string         `json:"id"`
	FixtureID string         `json:"fixtureId"`
	Action    string         `json:"action"`
	ActorID   string         `json:"actorId,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt string         `json:"createdAtUtc"`
}

type fixtureDetailsDTO struct {
	Fixture fixtureDTO        `json:"fixture"`
	Events  []fixtureEventDTO `json:"events"`
}

func (h *Handler) ListFixturesByLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFixturesByLeague")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	fixtures, err := h.fixtureService.ListByLeague(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list fixtures failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]fixtureDTO, 0, len(fixtures))
	for _, f := range fixtures {
		items = append(items, fixtureToDTO(f))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetFixtureByLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetFixtureByLeague")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	fixtureID := r.PathValue("fixtureID")
	fx, events, err := h.fixtureService.Get(ctx, leagueID, fixtureID)
	if err != nil {
		h.logger.WarnContext(ctx, "get fixture failed", "league_id", leagueID, "fixture_id", fixtureID, "error", err)
		writeError(ctx, w, err)
		return
	}

	eventDTOs := make([]fixtureEventDTO, 0, len(events))
	for _, ev := range events {
		eventDTOs = append(eventDTOs, fixtureEventDTO{
			ID:        ev.ID,
			FixtureID: ev.FixtureID,
			Action:    ev.Action,
			ActorID:   ev.ActorID,
			Payload:   ev.Payload,
			CreatedAt: ev.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	writeSuccess(ctx, w, http.StatusOK, fixtureDetailsDTO{
		Fixture: fixtureToDTO(fx),
		Events:  eventDTOs,
	})
}

func (h *Handler) CreateFixture(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateFixture")
	defer span.End()

	if _, ok := principalFromContext(ctx); !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createFixtureRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	fx, err := h.schedulerService.CreateFixture(ctx, usecase.CreateFixtureInput{
		LeagueID:   r.PathValue("leagueID"),
		HomeClubID: req.HomeClubID,
		AwayClubID: req.AwayClubID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create fixture failed", "home_club_id", req.HomeClubID, "away_club_id", req.AwayClubID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, fixtureToDTO(fx))
}

func (h *Handler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AvailableSlots")
	defer span.End()

	if _, ok := principalFromContext(ctx); !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	slots, err := h.schedulerService.AvailableSlots(ctx, usecase.AvailableSlotsInput{
		LeagueID:  r.PathValue("leagueID"),
		FixtureID: r.PathValue("fixtureID"),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "available slots failed", "fixture_id", r.PathValue("fixtureID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]string, 0, len(slots))
	for _, slot := range slots {
		items = append(items, slot.UTC().Format(time.RFC3339))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ScheduleFixture(w http.ResponseWriter, r *http.Request) {
	h.scheduleWith(w, r, "httpapi.Handler.ScheduleFixture", h.schedulerService.Schedule)
}

func (h *Handler) RescheduleFixture(w http.ResponseWriter, r *http.Request) {
	h.scheduleWith(w, r, "httpapi.Handler.RescheduleFixture", h.schedulerService.Reschedule)
}

func (h *Handler) scheduleWith(
	w http.ResponseWriter,
	r *http.Request,
	spanName string,
	apply func(ctx context.Context, input usecase.ScheduleFixtureInput) (fixture.Fixture, error),
) {
	ctx, span := startSpan(r.Context(), spanName)
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req scheduleFixtureRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	kickoff, err := time.Parse(time.RFC3339, req.KickoffAt)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: kickoffAt must be RFC3339: %v", usecase.ErrInvalidInput, err))
		return
	}

	fx, err := apply(ctx, usecase.ScheduleFixtureInput{
		ActorUserID: principal.UserID,
		LeagueID:    r.PathValue("leagueID"),
		FixtureID:   r.PathValue("fixtureID"),
		KickoffAt:   kickoff,
		Force:       req.Force,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "schedule fixture failed", "user_id", principal.UserID, "fixture_id", r.PathValue("fixtureID"), "kickoff_at", req.KickoffAt, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, fixtureToDTO(fx))
}

func (h *Handler) ConfirmFixture(w http.ResponseWriter, r *http.Request) {
	h.fixtureAction(w, r, "httpapi.Handler.ConfirmFixture", h.fixtureService.Confirm)
}

func (h *Handler) CheckInFixture(w http.ResponseWriter, r *http.Request) {
	h.fixtureAction(w, r, "httpapi.Handler.CheckInFixture", h.fixtureService.CheckIn)
}

func (h *Handler) ConfirmScore(w http.ResponseWriter, r *http.Request) {
	h.fixtureAction(w, r, "httpapi.Handler.ConfirmScore", h.fixtureService.ConfirmScore)
}

func (h *Handler) DisputeScore(w http.ResponseWriter, r *http.Request) {
	h.fixtureAction(w, r, "httpapi.Handler.DisputeScore", h.fixtureService.Dispute)
}

func (h *Handler) CancelFixture(w http.ResponseWriter, r *http.Request) {
	h.fixtureAction(w, r, "httpapi.Handler.CancelFixture", h.fixtureService.Cancel)
}

func (h *Handler) fixtureAction(
	w http.ResponseWriter,
	r *http.Request,
	spanName string,
	apply func(ctx context.Context, input usecase.FixtureActionInput) (fixture.Fixture, error),
) {
	ctx, span := startSpan(r.Context(), spanName)
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req fixtureClubActionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	fx, err := apply(ctx, usecase.FixtureActionInput{
		ActorUserID: principal.UserID,
		LeagueID:    r.PathValue("leagueID"),
		ClubID:      req.ClubID,
		FixtureID:   r.PathValue("fixtureID"),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "fixture action failed", "user_id", principal.UserID, "club_id", req.ClubID, "fixture_id", r.PathValue("fixtureID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, fixtureToDTO(fx))
}

func (h *Handler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitScore")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req submitScoreRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	fx, err := h.fixtureService.SubmitScore(ctx, usecase.SubmitScoreInput{
		FixtureActionInput: usecase.FixtureActionInput{
			ActorUserID: principal.UserID,
			LeagueID:    r.PathValue("leagueID"),
			ClubID:      req.ClubID,
			FixtureID:   r.PathValue("fixtureID"),
		},
		HomeScore: req.HomeScore,
		AwayScore: req.AwayScore,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit score failed", "user_id", principal.UserID, "club_id", req.ClubID, "fixture_id", r.PathValue("fixtureID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, fixtureToDTO(fx))
}
