package usecase

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/catalog"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/club"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/league"
	"github.com/sampaiofree/temporadaonline-sub001/internal/infrastructure/repository/memory"
)

type seqIDGenerator struct {
	prefix string
	n      int
}

func (g *seqIDGenerator) NewID() (string, error) {
	g.n++
	return fmt.Sprintf("%s-%03d", g.prefix, g.n), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testNow is inside the seeded league calendars and outside every auction or
// blackout period, so the market resolves to open by default.
var testNow = time.Date(2026, time.June, 10, 15, 0, 0, 0, time.UTC)

type marketFixture struct {
	leagueRepo  *memory.LeagueRepository
	clubRepo    *memory.ClubRepository
	catalogRepo *memory.CatalogRepository
	walletRepo  *memory.WalletRepository
	rosterRepo  *memory.RosterRepository
	transferLog *memory.TransferLog
	itemRepo    *memory.AuctionItemRepository
	bidRepo     *memory.AuctionBidRepository
	runner      *memory.Runner
}

func newMarketFixture() *marketFixture {
	return &marketFixture{
		leagueRepo:  memory.NewLeagueRepository(memory.SeedLeagues()),
		clubRepo:    memory.NewClubRepository(memory.SeedClubs()),
		catalogRepo: memory.NewCatalogRepository(memory.SeedPlayers()),
		walletRepo:  memory.NewWalletRepository(),
		rosterRepo:  memory.NewRosterRepository(),
		transferLog: memory.NewTransferLog(),
		itemRepo:    memory.NewAuctionItemRepository(),
		bidRepo:     memory.NewAuctionBidRepository(),
		runner:      memory.NewRunner(),
	}
}

func (f *marketFixture) transferService(idPrefix string) *TransferService {
	service := NewTransferService(
		f.leagueRepo,
		f.clubRepo,
		f.catalogRepo,
		f.walletRepo,
		f.rosterRepo,
		f.transferLog,
		f.runner,
		&seqIDGenerator{prefix: idPrefix},
		testLogger(),
	)
	service.now = func() time.Time { return testNow }
	return service
}

// withAuctionWindow clones the seeded league with an auction period covering
// testNow.
func (f *marketFixture) withAuctionWindow(leagueID string) league.League {
	l, _, _ := f.leagueRepo.GetByID(nil, leagueID)
	l.AuctionPeriods = []league.Period{{From: testNow.Add(-time.Hour), To: testNow.Add(time.Hour)}}
	f.leagueRepo.Put(l)
	return l
}

// withBlackout clones the seeded league with a blackout period covering
// testNow.
func (f *marketFixture) withBlackout(leagueID string) league.League {
	l, _, _ := f.leagueRepo.GetByID(nil, leagueID)
	l.BlackoutPeriods = []league.Period{{From: testNow.Add(-time.Hour), To: testNow.Add(time.Hour)}}
	f.leagueRepo.Put(l)
	return l
}

func (f *marketFixture) seededLeague(leagueID string) league.League {
	l, _, _ := f.leagueRepo.GetByID(nil, leagueID)
	return l
}

func (f *marketFixture) seededClub(clubID string) club.Club {
	c, _, _ := f.clubRepo.GetByID(nil, clubID)
	return c
}

func (f *marketFixture) seededPlayer(playerID string) catalog.Player {
	p, _, _ := f.catalogRepo.GetByID(nil, playerID)
	return p
}

// balance reads a wallet after the operation under test ran. Calling it
// before the first money operation would pin the wallet at zero.
func (f *marketFixture) balance(leagueID, clubID string) int64 {
	w, _ := f.walletRepo.GetOrCreate(nil, leagueID, clubID, 0)
	return w.Balance
}
