package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/market"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/roster"
	"github.com/sampaiofree/temporadaonline-sub001/internal/infrastructure/repository/memory"
	"github.com/sampaiofree/temporadaonline-sub001/internal/platform/cache"
)

func (f *marketFixture) auctionService(idPrefix string) *AuctionService {
	service := NewAuctionService(
		f.leagueRepo,
		f.clubRepo,
		f.catalogRepo,
		f.walletRepo,
		f.rosterRepo,
		f.transferLog,
		f.itemRepo,
		f.bidRepo,
		f.runner,
		market.DefaultConfig(),
		cache.NewStore(time.Minute),
		&seqIDGenerator{prefix: idPrefix},
		testLogger(),
	)
	service.now = func() time.Time { return testNow }
	return service
}

func TestAuctionService_PlaceBid_OpensAtBasePrice(t *testing.T) {
	f := newMarketFixture()
	service := f.auctionService("auction")
	l := f.withAuctionWindow(memory.LeagueIDSerieOuro)
	player := f.seededPlayer("fc26-st-002")

	snap, err := service.PlaceBid(t.Context(), PlaceBidInput{
		ActorUserID: "user-rafa",
		LeagueID:    l.ID,
		ClubID:      "ouro-furia",
		PlayerID:    player.ID,
	})
	if err != nil {
		t.Fatalf("place bid failed: %v", err)
	}

	base := market.BaseBid(player.MarketValue)
	if snap.CurrentBid != base {
		t.Fatalf("unexpected opening bid: got=%d want=%d", snap.CurrentBid, base)
	}
	if !snap.IsLeader || snap.LeaderClubID != "ouro-furia" {
		t.Fatalf("unexpected leadership: %+v", snap)
	}
	if snap.SecondsRemaining != int64(market.DefaultConfig().BidDuration/time.Second) {
		t.Fatalf("unexpected timer: %d", snap.SecondsRemaining)
	}
	if got := f.balance(l.ID, "ouro-furia"); got != l.StartingBalance-base {
		t.Fatalf("escrow not debited: balance=%d", got)
	}
}

func TestAuctionService_PlaceBid_OutbidRefundsLeader(t *testing.T) {
	f := newMarketFixture()
	service := f.auctionService("auction")
	l := f.withAuctionWindow(memory.LeagueIDSerieOuro)
	player := f.seededPlayer("fc26-st-002")

	if _, err := service.PlaceBid(t.Context(), PlaceBidInput{
		ActorUserID: "user-rafa",
		LeagueID:    l.ID,
		ClubID:      "ouro-furia",
		PlayerID:    player.ID,
	}); err != nil {
		t.Fatalf("opening bid failed: %v", err)
	}

	increment := int64(500_000)
	snap, err := service.PlaceBid(t.Context(), PlaceBidInput{
		ActorUserID: "user-dudu",
		LeagueID:    l.ID,
		ClubID:      "ouro-tempestade",
		PlayerID:    player.ID,
		Increment:   &increment,
	})
	if err != nil {
		t.Fatalf("outbid failed: %v", err)
	}

	base := market.BaseBid(player.MarketValue)
	if snap.CurrentBid != base+increment {
		t.Fatalf("unexpected bid: got=%d want=%d", snap.CurrentBid, base+increment)
	}
	if snap.LeaderClubID != "ouro-tempestade" {
		t.Fatalf("leadership did not change: %s", snap.LeaderClubID)
	}
	// The superseded leader holds no escrow anymore.
	if got := f.balance(l.ID, "ouro-furia"); got != l.StartingBalance {
		t.Fatalf("superseded leader not refunded: balance=%d", got)
	}
	if got := f.balance(l.ID, "ouro-tempestade"); got != l.StartingBalance-base-increment {
		t.Fatalf("challenger escrow wrong: balance=%d", got)
	}
}

func TestAuctionService_PlaceBid_SelfLeading(t *testing.T) {
	f := newMarketFixture()
	service := f.auctionService("auction")
	l := f.withAuctionWindow(memory.LeagueIDSerieOuro)

	if _, err := service.PlaceBid(t.Context(), PlaceBidInput{
		ActorUserID: "user-rafa",
		LeagueID:    l.ID,
		ClubID:      "ouro-furia",
		PlayerID:    "fc26-st-002",
	}); err != nil {
		t.Fatalf("opening bid failed: %v", err)
	}

	increment := int64(100_000)
	_, err := service.PlaceBid(t.Context(), PlaceBidInput{
		ActorUserID: "user-rafa",
		LeagueID:    l.ID,
		ClubID:      "ouro-furia",
		PlayerID:    "fc26-st-002",
		Increment:   &increment,
	})
	if !errors.Is(err, market.ErrSelfLeading) {
		t.Fatalf("expected ErrSelfLeading, got %v", err)
	}
}

func TestAuctionService_PlaceBid_BadIncrement(t *testing.T) {
	f := newMarketFixture()
	service := f.auctionService("auction")
	l := f.withAuctionWindow(memory.LeagueIDSerieOuro)

	if _, err := service.PlaceBid(t.Context(), PlaceBidInput{
		ActorUserID: "user-rafa",
		LeagueID:    l.ID,
		ClubID:      "ouro-furia",
		PlayerID:    "fc26-st-002",
	}); err != nil {
		t.Fatalf("opening bid failed: %v", err)
	}

	increment := int64(123_456)
	_, err := service.PlaceBid(t.Context(), PlaceBidInput{
		ActorUserID: "user-dudu",
		LeagueID:    l.ID,
		ClubID:      "ouro-tempestade",
		PlayerID:    "fc26-st-002",
		Increment:   &increment,
	})
	if !errors.Is(err, market.ErrBadIncrement) {
		t.Fatalf("expected ErrBadIncrement, got %v", err)
	}
}

func TestAuctionService_PlaceBid_OutsideAuctionWindow(t *testing.T) {
	f := newMarketFixture()
	service := f.auctionService("auction")

	_, err := service.PlaceBid(t.Context(), PlaceBidInput{
		ActorUserID: "user-rafa",
		LeagueID:    memory.LeagueIDSerieOuro,
		ClubID:      "ouro-furia",
		PlayerID:    "fc26-st-002",
	})
	if !errors.Is(err, market.ErrMarketClosed) {
		t.Fatalf("expected ErrMarketClosed, got %v", err)
	}
}

func TestAuctionService_PlaceBid_StaleLeaderRestartsAtBase(t *testing.T) {
	f := newMarketFixture()
	service := f.auctionService("auction")
	l := f.withAuctionWindow(memory.LeagueIDSerieOuro)
	player := f.seededPlayer("fc26-st-002")

	if _, err := service.PlaceBid(t.Context(), PlaceBidInput{
		ActorUserID: "user-rafa",
		LeagueID:    l.ID,
		ClubID:      "ouro-furia",
		PlayerID:    player.ID,
	}); err != nil {
		t.Fatalf("opening bid failed: %v", err)
	}

	// Move past the bid timer; keep the auction window open.
	later := testNow.Add(market.DefaultConfig().BidDuration + time.Minute)
	service.now = func() time.Time { return later }
	league := f.seededLeague(memory.LeagueIDSerieOuro)
	league.AuctionPeriods[0].To = later.Add(time.Hour)
	f.leagueRepo.Put(league)

	base := market.BaseBid(player.MarketValue)
	snap, err := service.PlaceBid(t.Context(), PlaceBidInput{
		ActorUserID: "user-dudu",
		LeagueID:    league.ID,
		ClubID:      "ouro-tempestade",
		PlayerID:    player.ID,
	})
	if err != nil {
		t.Fatalf("bid on lapsed item failed: %v", err)
	}
	if snap.CurrentBid != base || snap.LeaderClubID != "ouro-tempestade" {
		t.Fatalf("expected fresh base bid, got %+v", snap)
	}
	// The stale leader got its escrow back.
	if got := f.balance(league.ID, "ouro-furia"); got != league.StartingBalance {
		t.Fatalf("stale leader not refunded: %d", got)
	}
}

func TestAuctionService_FinalizeExpired_GrantsToLeader(t *testing.T) {
	f := newMarketFixture()
	service := f.auctionService("auction")
	l := f.withAuctionWindow(memory.LeagueIDSerieOuro)
	player := f.seededPlayer("fc26-st-002")

	if _, err := service.PlaceBid(t.Context(), PlaceBidInput{
		ActorUserID: "user-rafa",
		LeagueID:    l.ID,
		ClubID:      "ouro-furia",
		PlayerID:    player.ID,
	}); err != nil {
		t.Fatalf("opening bid failed: %v", err)
	}

	service.now = func() time.Time { return testNow.Add(market.DefaultConfig().BidDuration + time.Minute) }
	result, err := service.FinalizeExpired(t.Context(), "")
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if result.Closed != 1 || result.Cancelled != 0 {
		t.Fatalf("unexpected sweep result: %+v", result)
	}

	entry, found, _ := f.rosterRepo.GetActiveByScopePlayer(t.Context(), l.Scope(), player.ID)
	if !found || entry.ClubID != "ouro-furia" {
		t.Fatalf("player not granted: %+v", entry)
	}
	base := market.BaseBid(player.MarketValue)
	if entry.ValueSnapshot != base || entry.WageSnapshot != player.Wage {
		t.Fatalf("snapshot mismatch: %+v", entry)
	}

	item, _, _ := f.itemRepo.GetByScopePlayer(t.Context(), l.Scope(), player.ID)
	if item.Status != market.ItemClosed {
		t.Fatalf("item not closed: %s", item.Status)
	}

	records, _ := f.transferLog.ListByClub(t.Context(), "ouro-furia")
	if len(records) != 1 || records[0].Type != roster.TransferAuction || records[0].Amount != base {
		t.Fatalf("unexpected transfer record: %+v", records)
	}
}

func TestAuctionService_FinalizeExpired_CancelsAndRefundsWhenGrantImpossible(t *testing.T) {
	f := newMarketFixture()
	service := f.auctionService("auction")
	l := f.withAuctionWindow(memory.LeagueIDSerieOuro)
	player := f.seededPlayer("fc26-st-002")

	if _, err := service.PlaceBid(t.Context(), PlaceBidInput{
		ActorUserID: "user-rafa",
		LeagueID:    l.ID,
		ClubID:      "ouro-furia",
		PlayerID:    player.ID,
	}); err != nil {
		t.Fatalf("opening bid failed: %v", err)
	}

	// Collapse the cap so the grant can no longer stand.
	l = f.seededLeague(memory.LeagueIDSerieOuro)
	l.RosterCap = 0
	f.leagueRepo.Put(l)

	service.now = func() time.Time { return testNow.Add(market.DefaultConfig().BidDuration + time.Minute) }
	result, err := service.FinalizeExpired(t.Context(), "")
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if result.Closed != 0 || result.Cancelled != 1 {
		t.Fatalf("unexpected sweep result: %+v", result)
	}

	item, _, _ := f.itemRepo.GetByScopePlayer(t.Context(), l.Scope(), player.ID)
	if item.Status != market.ItemCancelled || item.CancelReason == "" {
		t.Fatalf("item not cancelled: %+v", item)
	}
	if got := f.balance(l.ID, "ouro-furia"); got != l.StartingBalance {
		t.Fatalf("leader not refunded on cancel: %d", got)
	}
	if _, found, _ := f.rosterRepo.GetActiveByScopePlayer(t.Context(), l.Scope(), player.ID); found {
		t.Fatalf("player granted despite cancel")
	}
}

type failingIDGenerator struct{}

func (failingIDGenerator) NewID() (string, error) {
	return "", errors.New("id source down")
}

func TestAuctionService_FinalizeExpired_GrantFailureKeepsEscrow(t *testing.T) {
	f := newMarketFixture()
	service := f.auctionService("auction")
	l := f.withAuctionWindow(memory.LeagueIDSerieOuro)
	player := f.seededPlayer("fc26-st-002")

	if _, err := service.PlaceBid(t.Context(), PlaceBidInput{
		ActorUserID: "user-rafa",
		LeagueID:    l.ID,
		ClubID:      "ouro-furia",
		PlayerID:    player.ID,
	}); err != nil {
		t.Fatalf("opening bid failed: %v", err)
	}

	// Same repositories, but the grant cannot mint ids anymore.
	broken := NewAuctionService(
		f.leagueRepo,
		f.clubRepo,
		f.catalogRepo,
		f.walletRepo,
		f.rosterRepo,
		f.transferLog,
		f.itemRepo,
		f.bidRepo,
		f.runner,
		market.DefaultConfig(),
		cache.NewStore(time.Minute),
		failingIDGenerator{},
		testLogger(),
	)
	broken.now = func() time.Time { return testNow.Add(market.DefaultConfig().BidDuration + time.Minute) }

	result, err := broken.FinalizeExpired(t.Context(), "")
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if result.Closed != 0 || result.Cancelled != 0 {
		t.Fatalf("unexpected sweep result: %+v", result)
	}

	// A failed grant must not degrade into a cancel. The item stays open
	// with its escrow held, and the leader is not rostered.
	item, _, _ := f.itemRepo.GetByScopePlayer(t.Context(), l.Scope(), player.ID)
	if item.Status != market.ItemOpen {
		t.Fatalf("item no longer open: %s", item.Status)
	}
	base := market.BaseBid(player.MarketValue)
	if got := f.balance(l.ID, "ouro-furia"); got != l.StartingBalance-base {
		t.Fatalf("escrow changed on failed grant: %d", got)
	}
	if _, found, _ := f.rosterRepo.GetActiveByScopePlayer(t.Context(), l.Scope(), player.ID); found {
		t.Fatalf("player rostered despite failed grant")
	}
}

func TestAuctionService_Snapshot(t *testing.T) {
	f := newMarketFixture()
	service := f.auctionService("auction")
	l := f.withAuctionWindow(memory.LeagueIDSerieOuro)
	player := f.seededPlayer("fc26-st-002")
	free := f.seededPlayer("fc26-gk-002")

	if _, err := service.PlaceBid(t.Context(), PlaceBidInput{
		ActorUserID: "user-rafa",
		LeagueID:    l.ID,
		ClubID:      "ouro-furia",
		PlayerID:    player.ID,
	}); err != nil {
		t.Fatalf("opening bid failed: %v", err)
	}

	snaps, err := service.Snapshot(t.Context(), SnapshotInput{
		LeagueID:  l.ID,
		ClubID:    "ouro-tempestade",
		PlayerIDs: []string{player.ID, free.ID},
	})
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snaps))
	}

	base := market.BaseBid(player.MarketValue)
	contested := snaps[0]
	if contested.CurrentBid != base || contested.IsLeader {
		t.Fatalf("unexpected contested snapshot: %+v", contested)
	}
	if contested.MinimumNextBid != base+market.DefaultConfig().SmallestIncrement() {
		t.Fatalf("unexpected minimum next bid: %d", contested.MinimumNextBid)
	}

	untouched := snaps[1]
	if untouched.CurrentBid != 0 || untouched.MinimumNextBid != market.BaseBid(free.MarketValue) {
		t.Fatalf("unexpected untouched snapshot: %+v", untouched)
	}
}
