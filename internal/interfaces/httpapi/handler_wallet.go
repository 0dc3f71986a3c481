package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/availability"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/payroll"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/wallet"
	"github.com/sampaiofree/temporadaonline-sub001/internal/usecase"
)

type walletDTO struct {
	LeagueID string `json:"leagueId"`
	ClubID   string `json:"clubId"`
	Balance  int64  `json:"balance"`
}

func walletToDTO(w wallet.Wallet) walletDTO {
	return walletDTO{
		LeagueID: w.LeagueID,
		ClubID:   w.ClubID,
		Balance:  w.Balance,
	}
}

type clubFinancesDTO struct {
	Wallet     walletDTO `json:"wallet"`
	WageBill   int64     `json:"wageBill"`
	RosterSize int       `json:"rosterSize"`
}

type settlementDTO struct {
	ID        string `json:"id"`
	FixtureID string `json:"fixtureId"`
	ClubID    string `json:"clubId"`
	LeagueID  string `json:"leagueId"`
	Wages     int64  `json:"wages"`
	Penalty   int64  `json:"penalty,omitempty"`
	CreatedAt string `json:"createdAtUtc"`
}

func settlementToDTO(s payroll.Settlement) settlementDTO {
	return settlementDTO{
		ID:        s.ID,
		FixtureID: s.FixtureID,
		ClubID:    s.ClubID,
		LeagueID:  s.LeagueID,
		Wages:     s.Wages,
		Penalty:   s.Penalty,
		CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type availabilityWindowDTO struct {
	ID      string `json:"id,omitempty"`
	Weekday int    `json:"weekday"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

type replaceAvailabilityRequest struct {
	Windows []availabilityWindowDTO `json:"windows" validate:"dive"`
}

func availabilityWindowToDTO(win availability.Window) availabilityWindowDTO {
	return availabilityWindowDTO{
		ID:      win.ID,
		Weekday: int(win.Weekday),
		Start:   availability.FormatClock(win.StartMinute),
		End:     availability.FormatClock(win.EndMinute),
	}
}

func (h *Handler) ClubFinances(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClubFinances")
	defer span.End()

	if _, ok := principalFromContext(ctx); !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	leagueID := r.PathValue("leagueID")
	clubID := r.PathValue("clubID")
	finances, err := h.walletService.Finances(ctx, leagueID, clubID)
	if err != nil {
		h.logger.WarnContext(ctx, "club finances failed", "league_id", leagueID, "club_id", clubID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, clubFinancesDTO{
		Wallet:     walletToDTO(finances.Wallet),
		WageBill:   finances.WageBill,
		RosterSize: finances.RosterLen,
	})
}

func (h *Handler) ListTransfersByClub(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTransfersByClub")
	defer span.End()

	if _, ok := principalFromContext(ctx); !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	leagueID := r.PathValue("leagueID")
	clubID := r.PathValue("clubID")
	records, err := h.walletService.History(ctx, leagueID, clubID)
	if err != nil {
		h.logger.WarnContext(ctx, "club transfer history failed", "league_id", leagueID, "club_id", clubID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]transferRecordDTO, 0, len(records))
	for _, rec := range records {
		items = append(items, transferRecordToDTO(rec))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) PayrollStatement(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PayrollStatement")
	defer span.End()

	if _, ok := principalFromContext(ctx); !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	fixtureID := r.PathValue("fixtureID")
	clubID := r.PathValue("clubID")
	settlement, err := h.payrollService.Statement(ctx, fixtureID, clubID)
	if err != nil {
		h.logger.WarnContext(ctx, "payroll statement failed", "fixture_id", fixtureID, "club_id", clubID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, settlementToDTO(settlement))
}

func (h *Handler) ListAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAvailability")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	windows, err := h.availabilityService.List(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list availability failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]availabilityWindowDTO, 0, len(windows))
	for _, win := range windows {
		items = append(items, availabilityWindowToDTO(win))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ReplaceAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReplaceAvailability")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req replaceAvailabilityRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	inputs := make([]usecase.WindowInput, 0, len(req.Windows))
	for _, win := range req.Windows {
		inputs = append(inputs, usecase.WindowInput{
			Weekday: time.Weekday(win.Weekday),
			Start:   win.Start,
			End:     win.End,
		})
	}

	windows, err := h.availabilityService.Replace(ctx, principal.UserID, inputs)
	if err != nil {
		h.logger.WarnContext(ctx, "replace availability failed", "user_id", principal.UserID, "windows", len(inputs), "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]availabilityWindowDTO, 0, len(windows))
	for _, win := range windows {
		items = append(items, availabilityWindowToDTO(win))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
