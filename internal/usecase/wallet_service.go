package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/club"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/league"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/roster"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/wallet"
	"github.com/sampaiofree/temporadaonline-sub001/internal/platform/uow"
)

// WalletService is the read and administration surface of the club ledger.
// All competitive money movement happens inside the transfer, auction and
// payroll engines; this service only reports balances and applies manual
// league-admin adjustments.
type WalletService struct {
	leagueRepo  league.Repository
	clubRepo    club.Repository
	walletRepo  wallet.Repository
	rosterRepo  roster.Repository
	transferLog roster.TransferLog
	runner      uow.Runner
	logger      *slog.Logger
	now         func() time.Time
}

func NewWalletService(
	leagueRepo league.Repository,
	clubRepo club.Repository,
	walletRepo wallet.Repository,
	rosterRepo roster.Repository,
	transferLog roster.TransferLog,
	runner uow.Runner,
	logger *slog.Logger,
) *WalletService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WalletService{
		leagueRepo:  leagueRepo,
		clubRepo:    clubRepo,
		walletRepo:  walletRepo,
		rosterRepo:  rosterRepo,
		transferLog: transferLog,
		runner:      runner,
		logger:      logger,
		now:         time.Now,
	}
}

// ClubFinances is the club's money view: balance, committed wage bill and the
// roster backing it.
type ClubFinances struct {
	Wallet    wallet.Wallet
	WageBill  int64
	RosterLen int
}

// Finances returns the wallet and current wage commitment of a club, creating
// the wallet with the league starting balance on first touch.
func (s *WalletService) Finances(ctx context.Context, leagueID, clubID string) (ClubFinances, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WalletService.Finances")
	defer span.End()

	l, err := s.resolve(ctx, leagueID, clubID)
	if err != nil {
		return ClubFinances{}, err
	}

	var finances ClubFinances
	err = s.runner.Atomic(ctx, func(ctx context.Context) error {
		w, err := s.walletRepo.GetOrCreate(ctx, l.ID, clubID, l.StartingBalance)
		if err != nil {
			return fmt.Errorf("get wallet: %w", err)
		}
		entries, err := s.rosterRepo.ListActiveByClub(ctx, l.ID, clubID)
		if err != nil {
			return fmt.Errorf("list club roster: %w", err)
		}
		finances.Wallet = w
		finances.RosterLen = len(entries)
		for _, entry := range entries {
			finances.WageBill += entry.WageSnapshot
		}
		return nil
	})
	if err != nil {
		return ClubFinances{}, err
	}
	return finances, nil
}

// History returns the transfer records involving a club, newest first.
func (s *WalletService) History(ctx context.Context, leagueID, clubID string) ([]roster.TransferRecord, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WalletService.History")
	defer span.End()

	if _, err := s.resolve(ctx, leagueID, clubID); err != nil {
		return nil, err
	}
	records, err := s.transferLog.ListByClub(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("list transfer records: %w", err)
	}
	return records, nil
}

// AdjustInput is a manual ledger correction. Positive amounts credit the
// club, negative amounts debit it unconditionally.
type AdjustInput struct {
	LeagueID string
	ClubID   string
	Amount   int64
	Reason   string
}

// Adjust applies an admin correction. Guarded at transport as an internal
// surface.
func (s *WalletService) Adjust(ctx context.Context, input AdjustInput) (wallet.Wallet, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WalletService.Adjust")
	defer span.End()

	if input.Amount == 0 {
		return wallet.Wallet{}, fmt.Errorf("%w: adjustment amount cannot be zero", ErrInvalidInput)
	}
	l, err := s.resolve(ctx, input.LeagueID, input.ClubID)
	if err != nil {
		return wallet.Wallet{}, err
	}

	var adjusted wallet.Wallet
	err = s.runner.Atomic(ctx, func(ctx context.Context) error {
		if _, err := s.walletRepo.GetOrCreate(ctx, l.ID, input.ClubID, l.StartingBalance); err != nil {
			return fmt.Errorf("ensure wallet: %w", err)
		}
		var w wallet.Wallet
		var err error
		if input.Amount > 0 {
			w, err = s.walletRepo.Credit(ctx, l.ID, input.ClubID, input.Amount)
		} else {
			w, err = s.walletRepo.Debit(ctx, l.ID, input.ClubID, -input.Amount, true)
		}
		if err != nil {
			return err
		}
		adjusted = w
		return nil
	})
	if err != nil {
		return wallet.Wallet{}, err
	}

	s.logger.InfoContext(ctx, "wallet adjusted",
		"league_id", l.ID,
		"club_id", input.ClubID,
		"amount", input.Amount,
		"reason", input.Reason,
	)
	return adjusted, nil
}

func (s *WalletService) resolve(ctx context.Context, leagueID, clubID string) (league.League, error) {
	leagueID = strings.TrimSpace(leagueID)
	clubID = strings.TrimSpace(clubID)
	if leagueID == "" || clubID == "" {
		return league.League{}, fmt.Errorf("%w: league and club ids are required", ErrInvalidInput)
	}
	l, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}
	c, exists, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		return league.League{}, fmt.Errorf("get club: %w", err)
	}
	if !exists || c.LeagueID != l.ID {
		return league.League{}, fmt.Errorf("%w: club=%s in league=%s", ErrNotFound, clubID, leagueID)
	}
	return l, nil
}
