package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/catalog"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/club"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/league"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/market"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/roster"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/wallet"
	"github.com/sampaiofree/temporadaonline-sub001/internal/platform/cache"
	idgen "github.com/sampaiofree/temporadaonline-sub001/internal/platform/id"
	"github.com/sampaiofree/temporadaonline-sub001/internal/platform/uow"
)

// placeBidAttempts bounds the internal retry on transient commit conflicts.
const placeBidAttempts = 3

const finalizeWorkers = 4

// AuctionService runs the scoped, timed ascending-bid market for unassigned
// players. The ledger always escrows exactly the current winning bid per open
// item: a superseded leader is refunded in the same unit of work that debits
// the challenger.
type AuctionService struct {
	leagueRepo  league.Repository
	clubRepo    club.Repository
	catalogRepo catalog.Repository
	walletRepo  wallet.Repository
	rosterRepo  roster.Repository
	transferLog roster.TransferLog
	itemRepo    market.ItemRepository
	bidRepo     market.BidRepository
	runner      uow.Runner
	cfg         market.Config
	catalogCache *cache.Store
	idGen       idgen.Generator
	logger      *slog.Logger
	now         func() time.Time
}

func NewAuctionService(
	leagueRepo league.Repository,
	clubRepo club.Repository,
	catalogRepo catalog.Repository,
	walletRepo wallet.Repository,
	rosterRepo roster.Repository,
	transferLog roster.TransferLog,
	itemRepo market.ItemRepository,
	bidRepo market.BidRepository,
	runner uow.Runner,
	cfg market.Config,
	catalogCache *cache.Store,
	idGen idgen.Generator,
	logger *slog.Logger,
) *AuctionService {
	if logger == nil {
		logger = slog.Default()
	}
	if catalogCache == nil {
		catalogCache = cache.NewStore(0)
	}
	return &AuctionService{
		leagueRepo:   leagueRepo,
		clubRepo:     clubRepo,
		catalogRepo:  catalogRepo,
		walletRepo:   walletRepo,
		rosterRepo:   rosterRepo,
		transferLog:  transferLog,
		itemRepo:     itemRepo,
		bidRepo:      bidRepo,
		runner:       runner,
		cfg:          cfg,
		catalogCache: catalogCache,
		idGen:        idGen,
		logger:       logger,
		now:          time.Now,
	}
}

// PlaceBidInput is the incoming payload for one bid. Increment is nil on the
// leader-less opening path and must name an allowed increment otherwise.
type PlaceBidInput struct {
	ActorUserID string
	LeagueID    string
	ClubID      string
	PlayerID    string
	Increment   *int64
}

func (s *AuctionService) PlaceBid(ctx context.Context, input PlaceBidInput) (market.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuctionService.PlaceBid")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.ClubID = strings.TrimSpace(input.ClubID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	if input.LeagueID == "" || input.ClubID == "" || input.PlayerID == "" {
		return market.Snapshot{}, fmt.Errorf("%w: league, club and player ids are required", ErrInvalidInput)
	}

	l, exists, err := s.leagueRepo.GetByID(ctx, input.LeagueID)
	if err != nil {
		return market.Snapshot{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return market.Snapshot{}, fmt.Errorf("%w: league=%s", ErrNotFound, input.LeagueID)
	}
	bidder, exists, err := s.clubRepo.GetByID(ctx, input.ClubID)
	if err != nil {
		return market.Snapshot{}, fmt.Errorf("get club: %w", err)
	}
	if !exists || bidder.LeagueID != l.ID {
		return market.Snapshot{}, fmt.Errorf("%w: club=%s in league=%s", ErrNotFound, input.ClubID, input.LeagueID)
	}
	if input.ActorUserID != "" && bidder.OwnerUserID != input.ActorUserID {
		return market.Snapshot{}, fmt.Errorf("%w: user=%s does not own club=%s", ErrUnauthorized, input.ActorUserID, input.ClubID)
	}
	if mode := market.ResolveMode(s.now(), l.AuctionPeriods, l.BlackoutPeriods); mode != market.ModeAuction {
		return market.Snapshot{}, fmt.Errorf("%w: market mode is %s", market.ErrMarketClosed, mode)
	}

	player, exists, err := s.catalogRepo.GetByID(ctx, input.PlayerID)
	if err != nil {
		return market.Snapshot{}, fmt.Errorf("get catalog player: %w", err)
	}
	if !exists || player.GameEdition != l.GameEdition {
		return market.Snapshot{}, fmt.Errorf("%w: player=%s in edition=%s", ErrNotFound, input.PlayerID, l.GameEdition)
	}

	var snapshot market.Snapshot
	var lastErr error
	for attempt := 0; attempt < placeBidAttempts; attempt++ {
		snapshot, lastErr = s.placeBidOnce(ctx, l, bidder, player, input.Increment)
		if lastErr == nil || !errors.Is(lastErr, uow.ErrConflict) {
			return snapshot, lastErr
		}
		s.logger.WarnContext(ctx, "bid unit of work conflicted, retrying",
			"league_id", l.ID,
			"club_id", bidder.ID,
			"player_id", player.ID,
			"attempt", attempt+1,
			"error", lastErr,
		)
	}
	return market.Snapshot{}, fmt.Errorf("%w: %v", ErrRetryExhausted, lastErr)
}

func (s *AuctionService) placeBidOnce(ctx context.Context, l league.League, bidder club.Club, player catalog.Player, increment *int64) (market.Snapshot, error) {
	var snapshot market.Snapshot
	err := s.runner.Atomic(ctx, func(ctx context.Context) error {
		now := s.now().UTC()
		scope := l.Scope()

		if _, taken, err := s.rosterRepo.GetActiveByScopePlayer(ctx, scope, player.ID); err != nil {
			return fmt.Errorf("check player availability: %w", err)
		} else if taken {
			return fmt.Errorf("%w: player=%s scope=%s", roster.ErrPlayerTaken, player.ID, scope)
		}
		count, err := s.rosterRepo.CountActiveByClub(ctx, l.ID, bidder.ID)
		if err != nil {
			return fmt.Errorf("count club roster: %w", err)
		}
		if count >= l.RosterCap {
			return fmt.Errorf("%w: club=%s cap=%d", roster.ErrRosterFull, bidder.ID, l.RosterCap)
		}

		item, found, err := s.itemRepo.GetByScopePlayer(ctx, scope, player.ID)
		if err != nil {
			return fmt.Errorf("get auction item: %w", err)
		}
		if !found {
			itemID, err := s.idGen.NewID()
			if err != nil {
				return fmt.Errorf("generate auction item id: %w", err)
			}
			item = market.Item{
				ID:        itemID,
				ScopeID:   scope,
				PlayerID:  player.ID,
				Status:    market.ItemOpen,
				BaseValue: market.BaseBid(player.MarketValue),
				CreatedAt: now,
			}
		}
		if item.Status == market.ItemClosed {
			return fmt.Errorf("%w: player=%s auction already closed", roster.ErrPlayerTaken, player.ID)
		}
		if item.Status == market.ItemCancelled {
			// The row is reused across cycles: reopen in place.
			item.Status = market.ItemOpen
			item.CurrentBid = 0
			item.LeaderClubID = ""
			item.LeaderLeagueID = ""
			item.ExpiresAt = nil
			item.CancelReason = ""
			item.BaseValue = market.BaseBid(player.MarketValue)
		}

		var price int64
		if item.HasLiveLeader(now) {
			if item.LeaderClubID == bidder.ID {
				return fmt.Errorf("%w: club=%s", market.ErrSelfLeading, bidder.ID)
			}
			if increment == nil || !s.cfg.ValidIncrement(*increment) {
				return fmt.Errorf("%w: allowed %v", market.ErrBadIncrement, s.cfg.Increments)
			}
			price = item.CurrentBid + *increment
		} else {
			// Leader-less path (no leader, lapsed timer, or zero bid):
			// the opening price is the base value, no increment needed.
			price = item.BaseValue
			if price <= 0 {
				price = market.BaseBid(player.MarketValue)
			}
		}

		if _, err := s.walletRepo.GetOrCreate(ctx, l.ID, bidder.ID, l.StartingBalance); err != nil {
			return fmt.Errorf("ensure bidder wallet: %w", err)
		}
		if _, err := s.walletRepo.Debit(ctx, l.ID, bidder.ID, price, false); err != nil {
			return err
		}
		if item.LeaderClubID != "" && item.CurrentBid > 0 {
			// Escrow model: superseded or stale leaders always get their
			// full held amount back in this same unit of work.
			if _, err := s.walletRepo.Credit(ctx, item.LeaderLeagueID, item.LeaderClubID, item.CurrentBid); err != nil {
				return fmt.Errorf("refund superseded leader: %w", err)
			}
		}

		expires := now.Add(s.cfg.BidDuration)
		item.Status = market.ItemOpen
		item.CurrentBid = price
		item.LeaderClubID = bidder.ID
		item.LeaderLeagueID = l.ID
		item.ExpiresAt = &expires
		item.CancelReason = ""
		item.UpdatedAt = now
		saved, err := s.itemRepo.Upsert(ctx, item)
		if err != nil {
			return fmt.Errorf("persist auction item: %w", err)
		}

		bidID, err := s.idGen.NewID()
		if err != nil {
			return fmt.Errorf("generate auction bid id: %w", err)
		}
		bid := market.Bid{
			ID:        bidID,
			ItemID:    saved.ID,
			ClubID:    bidder.ID,
			LeagueID:  l.ID,
			Amount:    price,
			CreatedAt: now,
		}
		if err := s.bidRepo.Append(ctx, bid); err != nil {
			return fmt.Errorf("append auction bid: %w", err)
		}

		snapshot = s.buildSnapshot(saved, bidder.ID, now)
		return nil
	})
	if err != nil {
		return market.Snapshot{}, err
	}

	s.logger.InfoContext(ctx, "bid placed",
		"league_id", l.ID,
		"club_id", bidder.ID,
		"player_id", player.ID,
		"amount", snapshot.CurrentBid,
	)
	return snapshot, nil
}

// FinalizeResult summarizes one expiry sweep.
type FinalizeResult struct {
	Closed    int
	Cancelled int
}

// FinalizeExpired sweeps open items whose timer lapsed with a leader present.
// Grants that can no longer stand (player taken meanwhile, roster full, club
// or league vanished) convert to a cancelled item with a full refund, so the
// sweep is self-healing rather than error-propagating. An empty scopeID
// sweeps every scope. The sweep is invoked lazily by the jobs runner or the
// internal HTTP trigger, never by a standing timer inside the engine.
func (s *AuctionService) FinalizeExpired(ctx context.Context, scopeID string) (FinalizeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuctionService.FinalizeExpired")
	defer span.End()

	expired, err := s.itemRepo.ListExpiredOpen(ctx, strings.TrimSpace(scopeID), s.now().UTC())
	if err != nil {
		return FinalizeResult{}, fmt.Errorf("list expired auctions: %w", err)
	}
	if len(expired) == 0 {
		return FinalizeResult{}, nil
	}

	pool, err := ants.NewPool(finalizeWorkers)
	if err != nil {
		return FinalizeResult{}, fmt.Errorf("create finalize worker pool: %w", err)
	}
	defer pool.Release()

	var closed, cancelled atomic.Int32
	var workers sync.WaitGroup
	for _, item := range expired {
		item := item
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			outcome, itemErr := s.finalizeItem(ctx, item)
			if itemErr != nil {
				s.logger.WarnContext(ctx, "auction finalize failed",
					"scope_id", item.ScopeID,
					"player_id", item.PlayerID,
					"error", itemErr,
				)
				return
			}
			switch outcome {
			case finalizeClosed:
				closed.Add(1)
			case finalizeCancelled:
				cancelled.Add(1)
			}
		}); err != nil {
			workers.Done()
			return FinalizeResult{}, fmt.Errorf("submit finalize task: %w", err)
		}
	}
	workers.Wait()

	result := FinalizeResult{Closed: int(closed.Load()), Cancelled: int(cancelled.Load())}
	s.logger.InfoContext(ctx, "auction sweep finished",
		"scope_id", scopeID,
		"closed", result.Closed,
		"cancelled", result.Cancelled,
	)
	return result, nil
}

type finalizeOutcome int

const (
	finalizeSkipped finalizeOutcome = iota
	finalizeClosed
	finalizeCancelled
)

// finalizeItem grants one lapsed item to its leader, or cancels it with a
// refund when the grant cannot stand.
func (s *AuctionService) finalizeItem(ctx context.Context, stale market.Item) (finalizeOutcome, error) {
	outcome := finalizeSkipped
	err := s.runner.Atomic(ctx, func(ctx context.Context) error {
		now := s.now().UTC()
		item, found, err := s.itemRepo.GetByScopePlayer(ctx, stale.ScopeID, stale.PlayerID)
		if err != nil {
			return fmt.Errorf("reload auction item: %w", err)
		}
		if !found || !item.Expired(now) {
			// Re-bid or concurrent sweep got here first.
			return nil
		}

		reason := s.grantCheck(ctx, item)
		if reason == "" {
			// A failure mid-grant aborts the whole unit. Cancelling on top
			// of a partial grant would leave the leader both rostered and
			// refunded.
			if err := s.grantLocked(ctx, item, now); err != nil {
				return fmt.Errorf("grant auction item: %w", err)
			}
			item.Status = market.ItemClosed
			item.UpdatedAt = now
			if _, err := s.itemRepo.Upsert(ctx, item); err != nil {
				return fmt.Errorf("close auction item: %w", err)
			}
			outcome = finalizeClosed
			return nil
		}

		if item.CurrentBid > 0 {
			if _, err := s.walletRepo.Credit(ctx, item.LeaderLeagueID, item.LeaderClubID, item.CurrentBid); err != nil {
				return fmt.Errorf("refund leader on cancel: %w", err)
			}
		}
		item.Status = market.ItemCancelled
		item.CancelReason = reason
		item.CurrentBid = 0
		item.UpdatedAt = now
		if _, err := s.itemRepo.Upsert(ctx, item); err != nil {
			return fmt.Errorf("cancel auction item: %w", err)
		}
		s.logger.WarnContext(ctx, "auction cancelled on finalize",
			"scope_id", item.ScopeID,
			"player_id", item.PlayerID,
			"reason", reason,
		)
		outcome = finalizeCancelled
		return nil
	})
	return outcome, err
}

// grantCheck re-validates the grant under locks and returns a cancellation
// reason, or "" when the grant can proceed.
func (s *AuctionService) grantCheck(ctx context.Context, item market.Item) string {
	if _, taken, err := s.rosterRepo.GetActiveByScopePlayer(ctx, item.ScopeID, item.PlayerID); err != nil {
		return "check player availability: " + err.Error()
	} else if taken {
		return "player no longer free"
	}
	leaderClub, exists, err := s.clubRepo.GetByID(ctx, item.LeaderClubID)
	if err != nil || !exists {
		return "leading club vanished"
	}
	l, exists, err := s.leagueRepo.GetByID(ctx, item.LeaderLeagueID)
	if err != nil || !exists {
		return "league vanished"
	}
	count, err := s.rosterRepo.CountActiveByClub(ctx, l.ID, leaderClub.ID)
	if err != nil {
		return "count club roster: " + err.Error()
	}
	if count >= l.RosterCap {
		return "leader roster is full"
	}
	return ""
}

// grantLocked writes the roster entry and the transfer record for a won item.
// Everything fallible that does not write runs first, so a grant that starts
// writing can only be stopped by aborting the unit of work.
func (s *AuctionService) grantLocked(ctx context.Context, item market.Item, now time.Time) error {
	player, exists, err := s.catalogRepo.GetByID(ctx, item.PlayerID)
	if err != nil || !exists {
		return fmt.Errorf("catalog player vanished")
	}
	entryID, err := s.idGen.NewID()
	if err != nil {
		return fmt.Errorf("generate roster entry id: %w", err)
	}
	recordID, err := s.idGen.NewID()
	if err != nil {
		return fmt.Errorf("generate transfer record id: %w", err)
	}

	entry := roster.Entry{
		ID:            entryID,
		ScopeID:       item.ScopeID,
		LeagueID:      item.LeaderLeagueID,
		ClubID:        item.LeaderClubID,
		PlayerID:      item.PlayerID,
		ValueSnapshot: item.CurrentBid,
		WageSnapshot:  player.Wage,
		Active:        true,
		AcquiredAt:    now,
		UpdatedAt:     now,
	}
	if err := s.rosterRepo.Create(ctx, entry); err != nil {
		return err
	}

	record := roster.TransferRecord{
		ID:        recordID,
		LeagueID:  item.LeaderLeagueID,
		PlayerID:  item.PlayerID,
		ToClubID:  item.LeaderClubID,
		Type:      roster.TransferAuction,
		Amount:    item.CurrentBid,
		CreatedAt: now,
	}
	if err := s.transferLog.Append(ctx, record); err != nil {
		return fmt.Errorf("append transfer record: %w", err)
	}
	return nil
}

// SnapshotInput requests the market view over a set of players for one club.
type SnapshotInput struct {
	LeagueID  string
	ClubID    string
	PlayerIDs []string
}

// Snapshot is the read-only auction view: status, current bid, leadership,
// seconds remaining and the minimum legal next bid per requested player.
func (s *AuctionService) Snapshot(ctx context.Context, input SnapshotInput) ([]market.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuctionService.Snapshot")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.ClubID = strings.TrimSpace(input.ClubID)
	if input.LeagueID == "" || len(input.PlayerIDs) == 0 {
		return nil, fmt.Errorf("%w: league id and player ids are required", ErrInvalidInput)
	}

	l, exists, err := s.leagueRepo.GetByID(ctx, input.LeagueID)
	if err != nil {
		return nil, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: league=%s", ErrNotFound, input.LeagueID)
	}

	items, err := s.itemRepo.GetByScopePlayers(ctx, l.Scope(), input.PlayerIDs)
	if err != nil {
		return nil, fmt.Errorf("get auction items: %w", err)
	}
	itemsByPlayer := make(map[string]market.Item, len(items))
	for _, item := range items {
		itemsByPlayer[item.PlayerID] = item
	}

	now := s.now().UTC()
	out := make([]market.Snapshot, 0, len(input.PlayerIDs))
	for _, playerID := range input.PlayerIDs {
		playerID = strings.TrimSpace(playerID)
		if playerID == "" {
			continue
		}
		item, ok := itemsByPlayer[playerID]
		if !ok {
			base, err := s.cachedBaseBid(ctx, playerID)
			if err != nil {
				return nil, err
			}
			out = append(out, market.Snapshot{
				PlayerID:       playerID,
				Status:         market.ItemOpen,
				MinimumNextBid: base,
			})
			continue
		}
		out = append(out, s.buildSnapshot(item, input.ClubID, now))
	}
	return out, nil
}

func (s *AuctionService) buildSnapshot(item market.Item, requestingClubID string, now time.Time) market.Snapshot {
	snap := market.Snapshot{
		PlayerID:         item.PlayerID,
		Status:           item.Status,
		CurrentBid:       item.CurrentBid,
		LeaderClubID:     item.LeaderClubID,
		IsLeader:         requestingClubID != "" && item.LeaderClubID == requestingClubID,
		SecondsRemaining: item.SecondsRemaining(now),
	}
	if item.HasLiveLeader(now) {
		snap.MinimumNextBid = item.CurrentBid + s.cfg.SmallestIncrement()
	} else {
		snap.MinimumNextBid = item.BaseValue
	}
	return snap
}

// cachedBaseBid resolves a player's opening price through the catalog cache;
// catalog rows are immutable so a TTL cache is safe here.
func (s *AuctionService) cachedBaseBid(ctx context.Context, playerID string) (int64, error) {
	value, err := s.catalogCache.GetOrLoad(ctx, "catalog:value:"+playerID, func(ctx context.Context) (any, error) {
		player, exists, err := s.catalogRepo.GetByID(ctx, playerID)
		if err != nil {
			return nil, fmt.Errorf("get catalog player: %w", err)
		}
		if !exists {
			return int64(0), nil
		}
		return player.MarketValue, nil
	})
	if err != nil {
		return 0, err
	}
	marketValue, _ := value.(int64)
	if marketValue <= 0 {
		return 0, nil
	}
	return market.BaseBid(marketValue), nil
}
