package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/catalog"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/club"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/league"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/market"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/roster"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/wallet"
	idgen "github.com/sampaiofree/temporadaonline-sub001/internal/platform/id"
	"github.com/sampaiofree/temporadaonline-sub001/internal/platform/uow"
)

// TransferService owns the four atomic market operations: free signing, sale,
// release-clause buyout and swap. Every operation runs inside a single unit
// of work and re-validates affordability and roster caps only after the locks
// are held.
type TransferService struct {
	leagueRepo  league.Repository
	clubRepo    club.Repository
	catalogRepo catalog.Repository
	walletRepo  wallet.Repository
	rosterRepo  roster.Repository
	transferLog roster.TransferLog
	runner      uow.Runner
	idGen       idgen.Generator
	logger      *slog.Logger
	now         func() time.Time
}

func NewTransferService(
	leagueRepo league.Repository,
	clubRepo club.Repository,
	catalogRepo catalog.Repository,
	walletRepo wallet.Repository,
	rosterRepo roster.Repository,
	transferLog roster.TransferLog,
	runner uow.Runner,
	idGen idgen.Generator,
	logger *slog.Logger,
) *TransferService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransferService{
		leagueRepo:  leagueRepo,
		clubRepo:    clubRepo,
		catalogRepo: catalogRepo,
		walletRepo:  walletRepo,
		rosterRepo:  rosterRepo,
		transferLog: transferLog,
		runner:      runner,
		idGen:       idGen,
		logger:      logger,
		now:         time.Now,
	}
}

// BuyFreeAgentInput is the incoming payload for a free-agent signing.
type BuyFreeAgentInput struct {
	ActorUserID string
	LeagueID    string
	ClubID      string
	PlayerID    string
}

func (s *TransferService) BuyFreeAgent(ctx context.Context, input BuyFreeAgentInput) (roster.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TransferService.BuyFreeAgent")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.ClubID = strings.TrimSpace(input.ClubID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	if input.LeagueID == "" || input.ClubID == "" || input.PlayerID == "" {
		return roster.Entry{}, fmt.Errorf("%w: league, club and player ids are required", ErrInvalidInput)
	}

	l, buyer, err := s.resolveClub(ctx, input.LeagueID, input.ClubID, input.ActorUserID)
	if err != nil {
		return roster.Entry{}, err
	}
	if mode := market.ResolveMode(s.now(), l.AuctionPeriods, l.BlackoutPeriods); mode != market.ModeOpen {
		return roster.Entry{}, fmt.Errorf("%w: market mode is %s", market.ErrMarketClosed, mode)
	}

	player, err := s.resolvePlayer(ctx, l, input.PlayerID)
	if err != nil {
		return roster.Entry{}, err
	}

	var entry roster.Entry
	err = s.runner.Atomic(ctx, func(ctx context.Context) error {
		if _, taken, err := s.rosterRepo.GetActiveByScopePlayer(ctx, l.Scope(), player.ID); err != nil {
			return fmt.Errorf("check player availability: %w", err)
		} else if taken {
			return fmt.Errorf("%w: player=%s scope=%s", roster.ErrPlayerTaken, player.ID, l.Scope())
		}
		if err := s.checkRosterRoom(ctx, l, buyer.ID); err != nil {
			return err
		}
		if _, err := s.walletRepo.GetOrCreate(ctx, l.ID, buyer.ID, l.StartingBalance); err != nil {
			return fmt.Errorf("ensure buyer wallet: %w", err)
		}
		if _, err := s.walletRepo.Debit(ctx, l.ID, buyer.ID, player.MarketValue, l.AllowNegativePurchases); err != nil {
			return err
		}

		now := s.now().UTC()
		entryID, err := s.idGen.NewID()
		if err != nil {
			return fmt.Errorf("generate roster entry id: %w", err)
		}
		entry = roster.Entry{
			ID:            entryID,
			ScopeID:       l.Scope(),
			LeagueID:      l.ID,
			ClubID:        buyer.ID,
			PlayerID:      player.ID,
			ValueSnapshot: player.MarketValue,
			WageSnapshot:  player.Wage,
			Active:        true,
			AcquiredAt:    now,
			UpdatedAt:     now,
		}
		if err := s.rosterRepo.Create(ctx, entry); err != nil {
			return err
		}
		return s.appendRecord(ctx, l.ID, player.ID, "", buyer.ID, roster.TransferFreeSigning, player.MarketValue)
	})
	if err != nil {
		return roster.Entry{}, err
	}

	s.logger.InfoContext(ctx, "free agent signed",
		"league_id", l.ID,
		"club_id", buyer.ID,
		"player_id", player.ID,
		"price", player.MarketValue,
	)
	return entry, nil
}

// SellPlayerInput is the incoming payload for a club-to-club sale.
type SellPlayerInput struct {
	ActorUserID  string
	LeagueID     string
	SellerClubID string
	BuyerClubID  string
	PlayerID     string
	Price        int64
}

func (s *TransferService) SellPlayer(ctx context.Context, input SellPlayerInput) (roster.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TransferService.SellPlayer")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.SellerClubID = strings.TrimSpace(input.SellerClubID)
	input.BuyerClubID = strings.TrimSpace(input.BuyerClubID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	if input.LeagueID == "" || input.SellerClubID == "" || input.BuyerClubID == "" || input.PlayerID == "" {
		return roster.Entry{}, fmt.Errorf("%w: league, clubs and player ids are required", ErrInvalidInput)
	}
	if input.SellerClubID == input.BuyerClubID {
		return roster.Entry{}, fmt.Errorf("%w: seller and buyer must differ", ErrInvalidInput)
	}
	if input.Price <= 0 {
		return roster.Entry{}, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}

	l, seller, err := s.resolveClub(ctx, input.LeagueID, input.SellerClubID, input.ActorUserID)
	if err != nil {
		return roster.Entry{}, err
	}
	if mode := market.ResolveMode(s.now(), l.AuctionPeriods, l.BlackoutPeriods); mode != market.ModeOpen {
		return roster.Entry{}, fmt.Errorf("%w: market mode is %s", market.ErrMarketClosed, mode)
	}
	buyer, buyerLeague, err := s.resolveScopeClub(ctx, l, input.BuyerClubID)
	if err != nil {
		return roster.Entry{}, err
	}

	var entry roster.Entry
	err = s.runner.Atomic(ctx, func(ctx context.Context) error {
		moved, err := s.sellLocked(ctx, l, seller, buyerLeague, buyer, input.PlayerID, input.Price)
		if err != nil {
			return err
		}
		entry = moved
		return nil
	})
	if err != nil {
		return roster.Entry{}, err
	}

	s.logger.InfoContext(ctx, "player sold",
		"league_id", l.ID,
		"seller_club_id", seller.ID,
		"buyer_club_id", buyer.ID,
		"player_id", input.PlayerID,
		"price", input.Price,
	)
	return entry, nil
}

// sellLocked moves one rostered player between clubs for a price. It assumes
// the caller already runs inside a unit of work.
func (s *TransferService) sellLocked(
	ctx context.Context,
	sellerLeague league.League,
	seller club.Club,
	buyerLeague league.League,
	buyer club.Club,
	playerID string,
	price int64,
) (roster.Entry, error) {
	entry, found, err := s.rosterRepo.GetActiveByScopePlayer(ctx, sellerLeague.Scope(), playerID)
	if err != nil {
		return roster.Entry{}, fmt.Errorf("get roster entry: %w", err)
	}
	if !found || entry.ClubID != seller.ID {
		return roster.Entry{}, fmt.Errorf("%w: club=%s player=%s", roster.ErrNotOwner, seller.ID, playerID)
	}

	minimum := roster.MinimumResalePrice(entry.ValueSnapshot, sellerLeague.MinResalePercent)
	if price < minimum {
		return roster.Entry{}, fmt.Errorf("%w: price=%d minimum=%d", roster.ErrBelowMinimumPrice, price, minimum)
	}
	if err := s.checkRosterRoom(ctx, buyerLeague, buyer.ID); err != nil {
		return roster.Entry{}, err
	}

	if _, err := s.walletRepo.GetOrCreate(ctx, buyerLeague.ID, buyer.ID, buyerLeague.StartingBalance); err != nil {
		return roster.Entry{}, fmt.Errorf("ensure buyer wallet: %w", err)
	}
	if _, err := s.walletRepo.GetOrCreate(ctx, sellerLeague.ID, seller.ID, sellerLeague.StartingBalance); err != nil {
		return roster.Entry{}, fmt.Errorf("ensure seller wallet: %w", err)
	}
	if _, err := s.walletRepo.Debit(ctx, buyerLeague.ID, buyer.ID, price, buyerLeague.AllowNegativePurchases); err != nil {
		return roster.Entry{}, err
	}
	if _, err := s.walletRepo.Credit(ctx, sellerLeague.ID, seller.ID, price); err != nil {
		return roster.Entry{}, err
	}

	entry.ClubID = buyer.ID
	entry.LeagueID = buyerLeague.ID
	entry.UpdatedAt = s.now().UTC()
	if err := s.rosterRepo.Update(ctx, entry); err != nil {
		return roster.Entry{}, fmt.Errorf("move roster entry: %w", err)
	}
	if err := s.appendRecord(ctx, sellerLeague.ID, playerID, seller.ID, buyer.ID, roster.TransferSale, price); err != nil {
		return roster.Entry{}, err
	}
	return entry, nil
}

// PayReleaseClauseInput is the incoming payload for a release-clause buyout.
type PayReleaseClauseInput struct {
	ActorUserID string
	LeagueID    string
	BuyerClubID string
	PlayerID    string
}

func (s *TransferService) PayReleaseClause(ctx context.Context, input PayReleaseClauseInput) (roster.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TransferService.PayReleaseClause")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.BuyerClubID = strings.TrimSpace(input.BuyerClubID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	if input.LeagueID == "" || input.BuyerClubID == "" || input.PlayerID == "" {
		return roster.Entry{}, fmt.Errorf("%w: league, club and player ids are required", ErrInvalidInput)
	}

	l, buyer, err := s.resolveClub(ctx, input.LeagueID, input.BuyerClubID, input.ActorUserID)
	if err != nil {
		return roster.Entry{}, err
	}
	if mode := market.ResolveMode(s.now(), l.AuctionPeriods, l.BlackoutPeriods); mode != market.ModeOpen {
		return roster.Entry{}, fmt.Errorf("%w: market mode is %s", market.ErrMarketClosed, mode)
	}

	var entry roster.Entry
	err = s.runner.Atomic(ctx, func(ctx context.Context) error {
		current, found, err := s.rosterRepo.GetActiveByScopePlayer(ctx, l.Scope(), input.PlayerID)
		if err != nil {
			return fmt.Errorf("get roster entry: %w", err)
		}
		if !found {
			return fmt.Errorf("%w: player=%s has no holding club", roster.ErrNotOwner, input.PlayerID)
		}
		if current.ClubID == buyer.ID {
			return fmt.Errorf("%w: club already holds player=%s", ErrInvalidInput, input.PlayerID)
		}

		originLeague, origin, err := s.resolveEntryOrigin(ctx, current)
		if err != nil {
			return err
		}

		price := roster.ReleaseClausePrice(current.ValueSnapshot, originLeague.ReleaseMultiplier)
		if err := s.checkRosterRoom(ctx, l, buyer.ID); err != nil {
			return err
		}
		if _, err := s.walletRepo.GetOrCreate(ctx, l.ID, buyer.ID, l.StartingBalance); err != nil {
			return fmt.Errorf("ensure buyer wallet: %w", err)
		}
		if _, err := s.walletRepo.GetOrCreate(ctx, originLeague.ID, origin.ID, originLeague.StartingBalance); err != nil {
			return fmt.Errorf("ensure origin wallet: %w", err)
		}
		if _, err := s.walletRepo.Debit(ctx, l.ID, buyer.ID, price, l.AllowNegativePurchases); err != nil {
			return err
		}
		if _, err := s.walletRepo.Credit(ctx, originLeague.ID, origin.ID, price); err != nil {
			return err
		}

		current.ClubID = buyer.ID
		current.LeagueID = l.ID
		current.UpdatedAt = s.now().UTC()
		if err := s.rosterRepo.Update(ctx, current); err != nil {
			return fmt.Errorf("move roster entry: %w", err)
		}
		if err := s.appendRecord(ctx, l.ID, input.PlayerID, origin.ID, buyer.ID, roster.TransferBuyout, price); err != nil {
			return err
		}
		entry = current
		return nil
	})
	if err != nil {
		return roster.Entry{}, err
	}

	s.logger.InfoContext(ctx, "release clause paid",
		"league_id", l.ID,
		"buyer_club_id", buyer.ID,
		"player_id", input.PlayerID,
	)
	return entry, nil
}

// SwapPlayersInput exchanges two rostered players with an optional signed
// cash adjustment: positive means club A pays club B.
type SwapPlayersInput struct {
	ActorUserID    string
	LeagueID       string
	ClubAID        string
	PlayerAID      string
	ClubBID        string
	PlayerBID      string
	CashAdjustment int64
}

func (s *TransferService) SwapPlayers(ctx context.Context, input SwapPlayersInput) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TransferService.SwapPlayers")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.ClubAID = strings.TrimSpace(input.ClubAID)
	input.ClubBID = strings.TrimSpace(input.ClubBID)
	input.PlayerAID = strings.TrimSpace(input.PlayerAID)
	input.PlayerBID = strings.TrimSpace(input.PlayerBID)
	if input.LeagueID == "" || input.ClubAID == "" || input.ClubBID == "" || input.PlayerAID == "" || input.PlayerBID == "" {
		return fmt.Errorf("%w: league, clubs and players are required", ErrInvalidInput)
	}
	if input.ClubAID == input.ClubBID {
		return fmt.Errorf("%w: swap clubs must differ", ErrInvalidInput)
	}
	if input.PlayerAID == input.PlayerBID {
		return fmt.Errorf("%w: swap players must differ", ErrInvalidInput)
	}

	l, clubA, err := s.resolveClub(ctx, input.LeagueID, input.ClubAID, input.ActorUserID)
	if err != nil {
		return err
	}
	if mode := market.ResolveMode(s.now(), l.AuctionPeriods, l.BlackoutPeriods); mode != market.ModeOpen {
		return fmt.Errorf("%w: market mode is %s", market.ErrMarketClosed, mode)
	}
	clubB, leagueB, err := s.resolveScopeClub(ctx, l, input.ClubBID)
	if err != nil {
		return err
	}

	err = s.runner.Atomic(ctx, func(ctx context.Context) error {
		return s.swapLocked(ctx, l, clubA, input.PlayerAID, leagueB, clubB, input.PlayerBID, input.CashAdjustment)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "players swapped",
		"league_id", l.ID,
		"club_a_id", clubA.ID,
		"club_b_id", clubB.ID,
		"cash_adjustment", input.CashAdjustment,
	)
	return nil
}

// swapLocked exchanges two active entries and settles the optional cash leg.
// It assumes the caller already runs inside a unit of work.
func (s *TransferService) swapLocked(
	ctx context.Context,
	leagueA league.League,
	clubA club.Club,
	playerAID string,
	leagueB league.League,
	clubB club.Club,
	playerBID string,
	cashAdjustment int64,
) error {
	entryA, foundA, err := s.rosterRepo.GetActiveByScopePlayer(ctx, leagueA.Scope(), playerAID)
	if err != nil {
		return fmt.Errorf("get roster entry: %w", err)
	}
	if !foundA || entryA.ClubID != clubA.ID {
		return fmt.Errorf("%w: club=%s player=%s", roster.ErrNotOwner, clubA.ID, playerAID)
	}
	entryB, foundB, err := s.rosterRepo.GetActiveByScopePlayer(ctx, leagueA.Scope(), playerBID)
	if err != nil {
		return fmt.Errorf("get roster entry: %w", err)
	}
	if !foundB || entryB.ClubID != clubB.ID {
		return fmt.Errorf("%w: club=%s player=%s", roster.ErrNotOwner, clubB.ID, playerBID)
	}

	if cashAdjustment != 0 {
		payerLeague, payer := leagueA, clubA
		receiverLeague, receiver := leagueB, clubB
		amount := cashAdjustment
		if amount < 0 {
			payerLeague, payer = leagueB, clubB
			receiverLeague, receiver = leagueA, clubA
			amount = -amount
		}
		if _, err := s.walletRepo.GetOrCreate(ctx, payerLeague.ID, payer.ID, payerLeague.StartingBalance); err != nil {
			return fmt.Errorf("ensure payer wallet: %w", err)
		}
		if _, err := s.walletRepo.GetOrCreate(ctx, receiverLeague.ID, receiver.ID, receiverLeague.StartingBalance); err != nil {
			return fmt.Errorf("ensure receiver wallet: %w", err)
		}
		if _, err := s.walletRepo.Debit(ctx, payerLeague.ID, payer.ID, amount, payerLeague.AllowNegativePurchases); err != nil {
			return err
		}
		if _, err := s.walletRepo.Credit(ctx, receiverLeague.ID, receiver.ID, amount); err != nil {
			return err
		}
	}

	now := s.now().UTC()
	entryA.ClubID = clubB.ID
	entryA.LeagueID = leagueB.ID
	entryA.UpdatedAt = now
	entryB.ClubID = clubA.ID
	entryB.LeagueID = leagueA.ID
	entryB.UpdatedAt = now
	if err := s.rosterRepo.Update(ctx, entryA); err != nil {
		return fmt.Errorf("move roster entry: %w", err)
	}
	if err := s.rosterRepo.Update(ctx, entryB); err != nil {
		return fmt.Errorf("move roster entry: %w", err)
	}

	cashOut := cashAdjustment
	if cashOut < 0 {
		cashOut = -cashOut
	}
	if err := s.appendRecord(ctx, leagueA.ID, playerAID, clubA.ID, clubB.ID, roster.TransferSwap, cashOut); err != nil {
		return err
	}
	return s.appendRecord(ctx, leagueA.ID, playerBID, clubB.ID, clubA.ID, roster.TransferSwap, 0)
}

func (s *TransferService) resolveClub(ctx context.Context, leagueID, clubID, actorUserID string) (league.League, club.Club, error) {
	l, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, club.Club{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return league.League{}, club.Club{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	c, exists, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		return league.League{}, club.Club{}, fmt.Errorf("get club: %w", err)
	}
	if !exists || c.LeagueID != l.ID {
		return league.League{}, club.Club{}, fmt.Errorf("%w: club=%s in league=%s", ErrNotFound, clubID, leagueID)
	}
	if actorUserID != "" && c.OwnerUserID != actorUserID {
		return league.League{}, club.Club{}, fmt.Errorf("%w: user=%s does not own club=%s", ErrUnauthorized, actorUserID, clubID)
	}
	return l, c, nil
}

// resolveScopeClub resolves the counterpart club of an operation, which may
// sit in a different league as long as both leagues share the market scope.
func (s *TransferService) resolveScopeClub(ctx context.Context, l league.League, clubID string) (club.Club, league.League, error) {
	c, exists, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		return club.Club{}, league.League{}, fmt.Errorf("get club: %w", err)
	}
	if !exists {
		return club.Club{}, league.League{}, fmt.Errorf("%w: club=%s", ErrNotFound, clubID)
	}
	if c.LeagueID == l.ID {
		return c, l, nil
	}

	other, exists, err := s.leagueRepo.GetByID(ctx, c.LeagueID)
	if err != nil {
		return club.Club{}, league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !exists || other.Scope() != l.Scope() {
		return club.Club{}, league.League{}, fmt.Errorf("%w: club=%s is outside market scope %s", ErrInvalidInput, clubID, l.Scope())
	}
	return c, other, nil
}

func (s *TransferService) resolveEntryOrigin(ctx context.Context, entry roster.Entry) (league.League, club.Club, error) {
	origin, exists, err := s.clubRepo.GetByID(ctx, entry.ClubID)
	if err != nil {
		return league.League{}, club.Club{}, fmt.Errorf("get origin club: %w", err)
	}
	if !exists {
		return league.League{}, club.Club{}, fmt.Errorf("%w: club=%s", ErrNotFound, entry.ClubID)
	}
	originLeague, exists, err := s.leagueRepo.GetByID(ctx, entry.LeagueID)
	if err != nil {
		return league.League{}, club.Club{}, fmt.Errorf("get origin league: %w", err)
	}
	if !exists {
		return league.League{}, club.Club{}, fmt.Errorf("%w: league=%s", ErrNotFound, entry.LeagueID)
	}
	return originLeague, origin, nil
}

func (s *TransferService) checkRosterRoom(ctx context.Context, l league.League, clubID string) error {
	count, err := s.rosterRepo.CountActiveByClub(ctx, l.ID, clubID)
	if err != nil {
		return fmt.Errorf("count club roster: %w", err)
	}
	if count >= l.RosterCap {
		return fmt.Errorf("%w: club=%s cap=%d", roster.ErrRosterFull, clubID, l.RosterCap)
	}
	return nil
}

func (s *TransferService) resolvePlayer(ctx context.Context, l league.League, playerID string) (catalog.Player, error) {
	player, exists, err := s.catalogRepo.GetByID(ctx, playerID)
	if err != nil {
		return catalog.Player{}, fmt.Errorf("get catalog player: %w", err)
	}
	if !exists || player.GameEdition != l.GameEdition {
		return catalog.Player{}, fmt.Errorf("%w: player=%s in edition=%s", ErrNotFound, playerID, l.GameEdition)
	}
	return player, nil
}

func (s *TransferService) appendRecord(ctx context.Context, leagueID, playerID, fromClubID, toClubID string, transferType roster.TransferType, amount int64) error {
	recordID, err := s.idGen.NewID()
	if err != nil {
		return fmt.Errorf("generate transfer record id: %w", err)
	}
	record := roster.TransferRecord{
		ID:         recordID,
		LeagueID:   leagueID,
		PlayerID:   playerID,
		FromClubID: fromClubID,
		ToClubID:   toClubID,
		Type:       transferType,
		Amount:     amount,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.transferLog.Append(ctx, record); err != nil {
		return fmt.Errorf("append transfer record: %w", err)
	}
	return nil
}
