package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/fixture"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/league"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/payroll"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/roster"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/wallet"
	idgen "github.com/sampaiofree/temporadaonline-sub001/internal/platform/id"
	"github.com/sampaiofree/temporadaonline-sub001/internal/platform/uow"
)

// PayrollService charges match wages when a fixture concludes. Wages sum the
// wage snapshots of the club's active roster at settlement time, walkovers
// add the league penalty for the defaulting club. The (fixture, club)
// uniqueness of settlements makes the charge idempotent: replaying a
// settlement is a no-op, never a double charge.
type PayrollService struct {
	leagueRepo     league.Repository
	fixtureRepo    fixture.Repository
	rosterRepo     roster.Repository
	walletRepo     wallet.Repository
	settlementRepo payroll.Repository
	runner         uow.Runner
	idGen          idgen.Generator
	logger         *slog.Logger
	now            func() time.Time
}

func NewPayrollService(
	leagueRepo league.Repository,
	fixtureRepo fixture.Repository,
	rosterRepo roster.Repository,
	walletRepo wallet.Repository,
	settlementRepo payroll.Repository,
	runner uow.Runner,
	idGen idgen.Generator,
	logger *slog.Logger,
) *PayrollService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollService{
		leagueRepo:     leagueRepo,
		fixtureRepo:    fixtureRepo,
		rosterRepo:     rosterRepo,
		walletRepo:     walletRepo,
		settlementRepo: settlementRepo,
		runner:         runner,
		idGen:          idGen,
		logger:         logger,
		now:            time.Now,
	}
}

// SettleFixture settles both clubs of a concluded fixture. It is safe to call
// repeatedly.
func (s *PayrollService) SettleFixture(ctx context.Context, leagueID, fixtureID string) ([]payroll.Settlement, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PayrollService.SettleFixture")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	fixtureID = strings.TrimSpace(fixtureID)
	if leagueID == "" || fixtureID == "" {
		return nil, fmt.Errorf("%w: league and fixture ids are required", ErrInvalidInput)
	}

	l, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	var settlements []payroll.Settlement
	err = s.runner.Atomic(ctx, func(ctx context.Context) error {
		fx, exists, err := s.fixtureRepo.GetByID(ctx, fixtureID)
		if err != nil {
			return fmt.Errorf("get fixture: %w", err)
		}
		if !exists || fx.LeagueID != l.ID {
			return fmt.Errorf("%w: fixture=%s in league=%s", ErrNotFound, fixtureID, leagueID)
		}
		// Confirmed fixtures are chargeable too: wage settlement triggers
		// at confirmation, not only at a terminal state.
		if !fixture.Terminal(fx.State) && fx.State != fixture.StateConfirmed {
			return fmt.Errorf("%w: fixture state %s is not chargeable", ErrInvalidInput, fx.State)
		}
		created, err := s.settleLocked(ctx, l, fx)
		if err != nil {
			return err
		}
		settlements = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settlements, nil
}

// settleLocked charges wages for both clubs of a concluded fixture and the
// walkover penalty against the defaulting club when present. It assumes the
// caller already runs inside a unit of work. Already-settled clubs are
// skipped silently.
func (s *PayrollService) settleLocked(ctx context.Context, l league.League, fx fixture.Fixture) ([]payroll.Settlement, error) {
	var settlements []payroll.Settlement
	for _, clubID := range []string{fx.HomeClubID, fx.AwayClubID} {
		var penalty int64
		if fx.State == fixture.StateWalkover && fx.WalkoverClubID == clubID {
			penalty = l.WalkoverPenalty
		}
		settlement, charged, err := s.settleClubLocked(ctx, l, fx, clubID, penalty)
		if err != nil {
			return nil, err
		}
		if charged {
			settlements = append(settlements, settlement)
		}
	}
	return settlements, nil
}

func (s *PayrollService) settleClubLocked(ctx context.Context, l league.League, fx fixture.Fixture, clubID string, penalty int64) (payroll.Settlement, bool, error) {
	entries, err := s.rosterRepo.ListActiveByClub(ctx, l.ID, clubID)
	if err != nil {
		return payroll.Settlement{}, false, fmt.Errorf("list club roster: %w", err)
	}
	var wages int64
	for _, entry := range entries {
		wages += entry.WageSnapshot
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return payroll.Settlement{}, false, fmt.Errorf("generate settlement id: %w", err)
	}
	settlement := payroll.Settlement{
		ID:        id,
		FixtureID: fx.ID,
		ClubID:    clubID,
		LeagueID:  l.ID,
		Wages:     wages,
		Penalty:   penalty,
		CreatedAt: s.now().UTC(),
	}
	if err := s.settlementRepo.Create(ctx, settlement); err != nil {
		if errors.Is(err, payroll.ErrAlreadySettled) {
			return payroll.Settlement{}, false, nil
		}
		return payroll.Settlement{}, false, fmt.Errorf("persist settlement: %w", err)
	}

	if total := settlement.Total(); total > 0 {
		if _, err := s.walletRepo.GetOrCreate(ctx, l.ID, clubID, l.StartingBalance); err != nil {
			return payroll.Settlement{}, false, fmt.Errorf("ensure club wallet: %w", err)
		}
		// Wage charges always land, even when they push the balance
		// negative. Only purchases respect the floor.
		if _, err := s.walletRepo.Debit(ctx, l.ID, clubID, total, true); err != nil {
			return payroll.Settlement{}, false, err
		}
	}

	s.logger.InfoContext(ctx, "payroll settled",
		"fixture_id", fx.ID,
		"club_id", clubID,
		"wages", settlement.Wages,
		"penalty", settlement.Penalty,
	)
	return settlement, true, nil
}

// Statement reports the settlement charged to a club for one fixture.
func (s *PayrollService) Statement(ctx context.Context, fixtureID, clubID string) (payroll.Settlement, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PayrollService.Statement")
	defer span.End()

	fixtureID = strings.TrimSpace(fixtureID)
	clubID = strings.TrimSpace(clubID)
	if fixtureID == "" || clubID == "" {
		return payroll.Settlement{}, fmt.Errorf("%w: fixture and club ids are required", ErrInvalidInput)
	}
	settlement, found, err := s.settlementRepo.GetByFixtureAndClub(ctx, fixtureID, clubID)
	if err != nil {
		return payroll.Settlement{}, fmt.Errorf("get settlement: %w", err)
	}
	if !found {
		return payroll.Settlement{}, fmt.Errorf("%w: no settlement for fixture=%s club=%s", ErrNotFound, fixtureID, clubID)
	}
	return settlement, nil
}
