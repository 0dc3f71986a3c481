package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/market"
	"github.com/sampaiofree/temporadaonline-sub001/internal/infrastructure/repository/memory"
)

type proposalFixture struct {
	*marketFixture
	proposalRepo *memory.ProposalRepository
	transfers    *TransferService
	service      *ProposalService
}

func newProposalFixture(t *testing.T) *proposalFixture {
	t.Helper()
	f := &proposalFixture{
		marketFixture: newMarketFixture(),
		proposalRepo:  memory.NewProposalRepository(),
	}
	f.transfers = f.transferService("transfer")
	f.service = NewProposalService(
		f.proposalRepo,
		f.transfers,
		f.runner,
		&seqIDGenerator{prefix: "proposal"},
		testLogger(),
	)
	f.service.now = func() time.Time { return testNow }
	return f
}

func (f *proposalFixture) sign(t *testing.T, userID, leagueID, clubID, playerID string) {
	t.Helper()
	if _, err := f.transfers.BuyFreeAgent(t.Context(), BuyFreeAgentInput{
		ActorUserID: userID,
		LeagueID:    leagueID,
		ClubID:      clubID,
		PlayerID:    playerID,
	}); err != nil {
		t.Fatalf("sign %s for %s failed: %v", playerID, clubID, err)
	}
}

func TestProposalService_AcceptSwapWithCash(t *testing.T) {
	f := newProposalFixture(t)
	l := f.seededLeague(memory.LeagueIDSerieOuro)
	playerA := f.seededPlayer("fc26-cm-001")
	playerB := f.seededPlayer("fc26-cm-002")

	f.sign(t, "user-rafa", l.ID, "ouro-furia", playerA.ID)
	f.sign(t, "user-dudu", l.ID, "ouro-tempestade", playerB.ID)

	proposal, err := f.service.Create(t.Context(), CreateProposalInput{
		ActorUserID:       "user-rafa",
		LeagueID:          l.ID,
		FromClubID:        "ouro-furia",
		ToClubID:          "ouro-tempestade",
		OfferedPlayerID:   playerA.ID,
		RequestedPlayerID: playerB.ID,
		CashAmount:        -5_000_000, // tempestade tops up for the stronger midfielder
	})
	if err != nil {
		t.Fatalf("create proposal failed: %v", err)
	}
	if proposal.Status != market.ProposalOpen {
		t.Fatalf("unexpected status: %s", proposal.Status)
	}

	accepted, err := f.service.Accept(t.Context(), ResolveProposalInput{
		ActorUserID: "user-dudu",
		LeagueID:    l.ID,
		ClubID:      "ouro-tempestade",
		ProposalID:  proposal.ID,
	})
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if accepted.Status != market.ProposalAccepted || accepted.ResolvedAt == nil {
		t.Fatalf("unexpected accepted proposal: %+v", accepted)
	}

	entryA, found, _ := f.rosterRepo.GetActiveByScopePlayer(t.Context(), l.Scope(), playerA.ID)
	if !found || entryA.ClubID != "ouro-tempestade" {
		t.Fatalf("offered player did not move: %+v", entryA)
	}
	entryB, found, _ := f.rosterRepo.GetActiveByScopePlayer(t.Context(), l.Scope(), playerB.ID)
	if !found || entryB.ClubID != "ouro-furia" {
		t.Fatalf("requested player did not move: %+v", entryB)
	}

	if got := f.balance(l.ID, "ouro-furia"); got != l.StartingBalance-playerA.MarketValue+5_000_000 {
		t.Fatalf("unexpected sender balance: %d", got)
	}
	if got := f.balance(l.ID, "ouro-tempestade"); got != l.StartingBalance-playerB.MarketValue-5_000_000 {
		t.Fatalf("unexpected receiver balance: %d", got)
	}
}

func TestProposalService_AcceptCashForPlayer(t *testing.T) {
	f := newProposalFixture(t)
	l := f.seededLeague(memory.LeagueIDSerieOuro)
	player := f.seededPlayer("fc26-am-001")

	f.sign(t, "user-dudu", l.ID, "ouro-tempestade", player.ID)

	// Furia wants the playmaker and pays cash.
	proposal, err := f.service.Create(t.Context(), CreateProposalInput{
		ActorUserID:       "user-rafa",
		LeagueID:          l.ID,
		FromClubID:        "ouro-furia",
		ToClubID:          "ouro-tempestade",
		RequestedPlayerID: player.ID,
		CashAmount:        player.MarketValue,
	})
	if err != nil {
		t.Fatalf("create proposal failed: %v", err)
	}

	if _, err := f.service.Accept(t.Context(), ResolveProposalInput{
		ActorUserID: "user-dudu",
		LeagueID:    l.ID,
		ClubID:      "ouro-tempestade",
		ProposalID:  proposal.ID,
	}); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	entry, found, _ := f.rosterRepo.GetActiveByScopePlayer(t.Context(), l.Scope(), player.ID)
	if !found || entry.ClubID != "ouro-furia" {
		t.Fatalf("player did not move: %+v", entry)
	}
	if got := f.balance(l.ID, "ouro-furia"); got != l.StartingBalance-player.MarketValue {
		t.Fatalf("unexpected buyer balance: %d", got)
	}
}

func TestProposalService_CreateRejectsOneSidedWithoutCash(t *testing.T) {
	f := newProposalFixture(t)
	l := f.seededLeague(memory.LeagueIDSerieOuro)
	player := f.seededPlayer("fc26-am-001")

	f.sign(t, "user-dudu", l.ID, "ouro-tempestade", player.ID)

	_, err := f.service.Create(t.Context(), CreateProposalInput{
		ActorUserID:       "user-rafa",
		LeagueID:          l.ID,
		FromClubID:        "ouro-furia",
		ToClubID:          "ouro-tempestade",
		RequestedPlayerID: player.ID,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProposalService_OnlyReceiverAccepts(t *testing.T) {
	f := newProposalFixture(t)
	l := f.seededLeague(memory.LeagueIDSerieOuro)
	player := f.seededPlayer("fc26-am-001")

	f.sign(t, "user-dudu", l.ID, "ouro-tempestade", player.ID)

	proposal, err := f.service.Create(t.Context(), CreateProposalInput{
		ActorUserID:       "user-rafa",
		LeagueID:          l.ID,
		FromClubID:        "ouro-furia",
		ToClubID:          "ouro-tempestade",
		RequestedPlayerID: player.ID,
		CashAmount:        player.MarketValue,
	})
	if err != nil {
		t.Fatalf("create proposal failed: %v", err)
	}

	_, err = f.service.Accept(t.Context(), ResolveProposalInput{
		ActorUserID: "user-carlao",
		LeagueID:    l.ID,
		ClubID:      "ouro-leoes",
		ProposalID:  proposal.ID,
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestProposalService_RejectAndCancelCloseTheProposal(t *testing.T) {
	f := newProposalFixture(t)
	l := f.seededLeague(memory.LeagueIDSerieOuro)
	player := f.seededPlayer("fc26-am-001")

	f.sign(t, "user-dudu", l.ID, "ouro-tempestade", player.ID)

	create := func(t *testing.T) market.Proposal {
		t.Helper()
		proposal, err := f.service.Create(t.Context(), CreateProposalInput{
			ActorUserID:       "user-rafa",
			LeagueID:          l.ID,
			FromClubID:        "ouro-furia",
			ToClubID:          "ouro-tempestade",
			RequestedPlayerID: player.ID,
			CashAmount:        player.MarketValue,
		})
		if err != nil {
			t.Fatalf("create proposal failed: %v", err)
		}
		return proposal
	}

	first := create(t)
	rejected, err := f.service.Reject(t.Context(), ResolveProposalInput{
		ActorUserID: "user-dudu",
		LeagueID:    l.ID,
		ClubID:      "ouro-tempestade",
		ProposalID:  first.ID,
	})
	if err != nil || rejected.Status != market.ProposalRejected {
		t.Fatalf("reject failed: %v %+v", err, rejected)
	}

	// A closed proposal cannot be accepted anymore.
	_, err = f.service.Accept(t.Context(), ResolveProposalInput{
		ActorUserID: "user-dudu",
		LeagueID:    l.ID,
		ClubID:      "ouro-tempestade",
		ProposalID:  first.ID,
	})
	if !errors.Is(err, market.ErrProposalClosed) {
		t.Fatalf("expected ErrProposalClosed, got %v", err)
	}

	second := create(t)
	cancelled, err := f.service.Cancel(t.Context(), ResolveProposalInput{
		ActorUserID: "user-rafa",
		LeagueID:    l.ID,
		ClubID:      "ouro-furia",
		ProposalID:  second.ID,
	})
	if err != nil || cancelled.Status != market.ProposalCancelled {
		t.Fatalf("cancel failed: %v %+v", err, cancelled)
	}

	open, err := f.service.ListOpen(t.Context(), l.ID, "ouro-tempestade")
	if err != nil {
		t.Fatalf("list open failed: %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("expected no open proposals, got %d", len(open))
	}
}

func TestProposalService_AuctionWindowFreezesResolution(t *testing.T) {
	f := newProposalFixture(t)
	l := f.seededLeague(memory.LeagueIDSerieOuro)
	player := f.seededPlayer("fc26-am-001")

	f.sign(t, "user-dudu", l.ID, "ouro-tempestade", player.ID)

	proposal, err := f.service.Create(t.Context(), CreateProposalInput{
		ActorUserID:       "user-rafa",
		LeagueID:          l.ID,
		FromClubID:        "ouro-furia",
		ToClubID:          "ouro-tempestade",
		RequestedPlayerID: player.ID,
		CashAmount:        player.MarketValue,
	})
	if err != nil {
		t.Fatalf("create proposal failed: %v", err)
	}

	// While the auction window runs, the proposal can be neither accepted,
	// rejected nor withdrawn.
	f.withAuctionWindow(l.ID)
	for name, resolve := range map[string]func(context.Context, ResolveProposalInput) (market.Proposal, error){
		"accept": f.service.Accept,
		"reject": f.service.Reject,
	} {
		_, err := resolve(t.Context(), ResolveProposalInput{
			ActorUserID: "user-dudu",
			LeagueID:    l.ID,
			ClubID:      "ouro-tempestade",
			ProposalID:  proposal.ID,
		})
		if !errors.Is(err, market.ErrMarketClosed) {
			t.Fatalf("%s during auction: expected ErrMarketClosed, got %v", name, err)
		}
	}
	_, err = f.service.Cancel(t.Context(), ResolveProposalInput{
		ActorUserID: "user-rafa",
		LeagueID:    l.ID,
		ClubID:      "ouro-furia",
		ProposalID:  proposal.ID,
	})
	if !errors.Is(err, market.ErrMarketClosed) {
		t.Fatalf("cancel during auction: expected ErrMarketClosed, got %v", err)
	}

	// A blackout freezes new trades but not the resolution of an already
	// open proposal.
	quiet := f.seededLeague(l.ID)
	quiet.AuctionPeriods = nil
	f.leagueRepo.Put(quiet)
	f.withBlackout(l.ID)
	rejected, err := f.service.Reject(t.Context(), ResolveProposalInput{
		ActorUserID: "user-dudu",
		LeagueID:    l.ID,
		ClubID:      "ouro-tempestade",
		ProposalID:  proposal.ID,
	})
	if err != nil || rejected.Status != market.ProposalRejected {
		t.Fatalf("reject during blackout failed: %v %+v", err, rejected)
	}
}
