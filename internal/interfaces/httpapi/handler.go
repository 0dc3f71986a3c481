package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/catalog"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/club"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/league"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/roster"
	"github.com/sampaiofree/temporadaonline-sub001/internal/usecase"
)

type Handler struct {
	transferService     *usecase.TransferService
	auctionService      *usecase.AuctionService
	proposalService     *usecase.ProposalService
	schedulerService    *usecase.SchedulerService
	fixtureService      *usecase.FixtureService
	payrollService      *usecase.PayrollService
	walletService       *usecase.WalletService
	availabilityService *usecase.AvailabilityService

	leagueRepo  league.Repository
	clubRepo    club.Repository
	catalogRepo catalog.Repository
	transferLog roster.TransferLog

	logger    *slog.Logger
	validator *validator.Validate
}

func NewHandler(
	transferService *usecase.TransferService,
	auctionService *usecase.AuctionService,
	proposalService *usecase.ProposalService,
	schedulerService *usecase.SchedulerService,
	fixtureService *usecase.FixtureService,
	payrollService *usecase.PayrollService,
	walletService *usecase.WalletService,
	availabilityService *usecase.AvailabilityService,
	leagueRepo league.Repository,
	clubRepo club.Repository,
	catalogRepo catalog.Repository,
	transferLog roster.TransferLog,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		transferService:     transferService,
		auctionService:      auctionService,
		proposalService:     proposalService,
		schedulerService:    schedulerService,
		fixtureService:      fixtureService,
		payrollService:      payrollService,
		walletService:       walletService,
		availabilityService: availabilityService,
		leagueRepo:          leagueRepo,
		clubRepo:            clubRepo,
		catalogRepo:         catalogRepo,
		transferLog:         transferLog,
		logger:              logger,
		validator:           validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeBody rejects unknown fields so client typos surface as 400s instead
// of silently defaulting. An empty body leaves the target zero-valued.
func decodeBody(r *http.Request, target any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

type leagueDTO struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	ConfederationID string   `json:"confederationId,omitempty"`
	GameEdition     string   `json:"gameEdition"`
	ScopeID         string   `json:"scopeId"`
	RosterCap       int      `json:"rosterCap"`
	StartingBalance int64    `json:"startingBalance"`
	AllowedWeekdays []string `json:"allowedWeekdays,omitempty"`
	DailyRanges     []string `json:"dailyRanges,omitempty"`
	MatchMinutes    int      `json:"matchMinutes"`
	MaxReschedules  int      `json:"maxReschedules"`
	Timezone        string   `json:"timezone,omitempty"`
}

func leagueToDTO(l league.League) leagueDTO {
	weekdays := make([]string, 0, len(l.AllowedWeekdays))
	for _, d := range l.AllowedWeekdays {
		weekdays = append(weekdays, d.String())
	}
	ranges := make([]string, 0, len(l.DailyRanges))
	for _, cr := range l.DailyRanges {
		ranges = append(ranges, cr.Start+"-"+cr.End)
	}

	return leagueDTO{
		ID:              l.ID,
		Name:            l.Name,
		ConfederationID: l.ConfederationID,
		GameEdition:     l.GameEdition,
		ScopeID:         l.Scope(),
		RosterCap:       l.RosterCap,
		StartingBalance: l.StartingBalance,
		AllowedWeekdays: weekdays,
		DailyRanges:     ranges,
		MatchMinutes:    int(l.MatchDuration / time.Minute),
		MaxReschedules:  l.MaxReschedules,
		Timezone:        l.Timezone,
	}
}

type clubDTO struct {
	ID          string `json:"id"`
	LeagueID    string `json:"leagueId"`
	OwnerUserID string `json:"ownerUserId"`
	Name        string `json:"name"`
}

type catalogPlayerDTO struct {
	ID          string `json:"id"`
	GameEdition string `json:"gameEdition"`
	Name        string `json:"name"`
	Position    string `json:"position"`
	MarketValue int64  `json:"marketValue"`
	Wage        int64  `json:"wage"`
	Overall     int    `json:"overall"`
}

type transferRecordDTO struct {
	ID         string `json:"id"`
	LeagueID   string `json:"leagueId"`
	PlayerID   string `json:"playerId"`
	FromClubID string `json:"fromClubId,omitempty"`
	ToClubID   string `json:"toClubId,omitempty"`
	Type       string `json:"type"`
	Amount     int64  `json:"amount"`
	CreatedAt  string `json:"createdAtUtc"`
}

func transferRecordToDTO(rec roster.TransferRecord) transferRecordDTO {
	return transferRecordDTO{
		ID:         rec.ID,
		LeagueID:   rec.LeagueID,
		PlayerID:   rec.PlayerID,
		FromClubID: rec.FromClubID,
		ToClubID:   rec.ToClubID,
		Type:       string(rec.Type),
		Amount:     rec.Amount,
		CreatedAt:  rec.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	leagues, err := h.leagueRepo.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list leagues failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueDTO, 0, len(leagues))
	for _, l := range leagues {
		items = append(items, leagueToDTO(l))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeague")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	l, found, err := h.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		h.logger.ErrorContext(ctx, "get league failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if !found {
		writeError(ctx, w, fmt.Errorf("%w: league %s", usecase.ErrNotFound, leagueID))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(l))
}

func (h *Handler) ListClubsByLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListClubsByLeague")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	clubs, err := h.clubRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list clubs failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]clubDTO, 0, len(clubs))
	for _, c := range clubs {
		items = append(items, clubDTO{
			ID:          c.ID,
			LeagueID:    c.LeagueID,
			OwnerUserID: c.OwnerUserID,
			Name:        c.Name,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListPlayersByLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayersByLeague")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	l, found, err := h.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if !found {
		writeError(ctx, w, fmt.Errorf("%w: league %s", usecase.ErrNotFound, leagueID))
		return
	}

	players, err := h.catalogRepo.ListByEdition(ctx, l.GameEdition)
	if err != nil {
		h.logger.WarnContext(ctx, "list catalog players failed", "league_id", leagueID, "game_edition", l.GameEdition, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]catalogPlayerDTO, 0, len(players))
	for _, p := range players {
		items = append(items, catalogPlayerDTO{
			ID:          p.ID,
			GameEdition: p.GameEdition,
			Name:        p.Name,
			Position:    p.Position,
			MarketValue: p.MarketValue,
			Wage:        p.Wage,
			Overall:     p.Overall,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListTransfersByLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTransfersByLeague")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	records, err := h.transferLog.ListByLeague(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list league transfers failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]transferRecordDTO, 0, len(records))
	for _, rec := range records {
		items = append(items, transferRecordToDTO(rec))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
