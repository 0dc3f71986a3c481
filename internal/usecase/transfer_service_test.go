package usecase

import (
	"errors"
	"sync"
	"testing"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/market"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/roster"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/wallet"
	"github.com/sampaiofree/temporadaonline-sub001/internal/infrastructure/repository/memory"
)

func TestTransferService_BuyFreeAgent(t *testing.T) {
	f := newMarketFixture()
	service := f.transferService("transfer")

	l := f.seededLeague(memory.LeagueIDSerieOuro)
	player := f.seededPlayer("fc26-st-002")

	entry, err := service.BuyFreeAgent(t.Context(), BuyFreeAgentInput{
		ActorUserID: "user-rafa",
		LeagueID:    l.ID,
		ClubID:      "ouro-furia",
		PlayerID:    player.ID,
	})
	if err != nil {
		t.Fatalf("buy free agent failed: %v", err)
	}

	if entry.ClubID != "ouro-furia" || !entry.Active {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry.ValueSnapshot != player.MarketValue || entry.WageSnapshot != player.Wage {
		t.Fatalf("snapshot mismatch: value=%d wage=%d", entry.ValueSnapshot, entry.WageSnapshot)
	}
	if got := f.balance(l.ID, "ouro-furia"); got != l.StartingBalance-player.MarketValue {
		t.Fatalf("unexpected balance: got=%d want=%d", got, l.StartingBalance-player.MarketValue)
	}

	records, err := f.transferLog.ListByClub(t.Context(), "ouro-furia")
	if err != nil {
		t.Fatalf("list transfer records: %v", err)
	}
	if len(records) != 1 || records[0].Type != roster.TransferFreeSigning {
		t.Fatalf("unexpected transfer records: %+v", records)
	}
}

func TestTransferService_BuyFreeAgent_PlayerTakenInScope(t *testing.T) {
	f := newMarketFixture()
	service := f.transferService("transfer")

	_, err := service.BuyFreeAgent(t.Context(), BuyFreeAgentInput{
		ActorUserID: "user-rafa",
		LeagueID:    memory.LeagueIDSerieOuro,
		ClubID:      "ouro-furia",
		PlayerID:    "fc26-st-001",
	})
	if err != nil {
		t.Fatalf("first signing failed: %v", err)
	}

	// Both seeded leagues share a confederation, so the player is taken
	// across leagues too.
	_, err = service.BuyFreeAgent(t.Context(), BuyFreeAgentInput{
		ActorUserID: "user-nando",
		LeagueID:    memory.LeagueIDSeriePrata,
		ClubID:      "prata-mare",
		PlayerID:    "fc26-st-001",
	})
	if !errors.Is(err, roster.ErrPlayerTaken) {
		t.Fatalf("expected ErrPlayerTaken, got %v", err)
	}
}

func TestTransferService_BuyFreeAgent_ConcurrentClaims(t *testing.T) {
	f := newMarketFixture()
	service := f.transferService("transfer")

	l := f.seededLeague(memory.LeagueIDSerieOuro)
	player := f.seededPlayer("fc26-st-001")

	// Two clubs race for the same free agent. Exactly one signing commits,
	// the other hits the taken check before any money moves.
	inputs := []BuyFreeAgentInput{
		{ActorUserID: "user-rafa", LeagueID: l.ID, ClubID: "ouro-furia", PlayerID: player.ID},
		{ActorUserID: "user-dudu", LeagueID: l.ID, ClubID: "ouro-tempestade", PlayerID: player.ID},
	}
	errs := make([]error, len(inputs))
	var wg sync.WaitGroup
	for i, input := range inputs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = service.BuyFreeAgent(t.Context(), input)
		}()
	}
	wg.Wait()

	var winner string
	taken := 0
	for i, err := range errs {
		switch {
		case err == nil:
			if winner != "" {
				t.Fatalf("both clubs signed the player")
			}
			winner = inputs[i].ClubID
		case errors.Is(err, roster.ErrPlayerTaken):
			taken++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if winner == "" || taken != 1 {
		t.Fatalf("expected one signing and one rejection, errs=%v", errs)
	}

	entry, found, _ := f.rosterRepo.GetActiveByScopePlayer(t.Context(), l.Scope(), player.ID)
	if !found || entry.ClubID != winner {
		t.Fatalf("unexpected roster entry: %+v", entry)
	}
	if got := f.balance(l.ID, winner); got != l.StartingBalance-player.MarketValue {
		t.Fatalf("unexpected winner balance: %d", got)
	}
}

func TestTransferService_BuyFreeAgent_MarketClosed(t *testing.T) {
	f := newMarketFixture()
	service := f.transferService("transfer")
	f.withBlackout(memory.LeagueIDSerieOuro)

	_, err := service.BuyFreeAgent(t.Context(), BuyFreeAgentInput{
		ActorUserID: "user-rafa",
		LeagueID:    memory.LeagueIDSerieOuro,
		ClubID:      "ouro-furia",
		PlayerID:    "fc26-st-001",
	})
	if !errors.Is(err, market.ErrMarketClosed) {
		t.Fatalf("expected ErrMarketClosed, got %v", err)
	}
}

func TestTransferService_BuyFreeAgent_InsufficientFunds(t *testing.T) {
	f := newMarketFixture()
	service := f.transferService("transfer")

	l := f.seededLeague(memory.LeagueIDSerieOuro)
	l.StartingBalance = 1_000_000
	f.leagueRepo.Put(l)

	_, err := service.BuyFreeAgent(t.Context(), BuyFreeAgentInput{
		ActorUserID: "user-rafa",
		LeagueID:    l.ID,
		ClubID:      "ouro-furia",
		PlayerID:    "fc26-st-001",
	})
	if !errors.Is(err, wallet.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestTransferService_BuyFreeAgent_NegativeBalanceAllowed(t *testing.T) {
	f := newMarketFixture()
	service := f.transferService("transfer")

	// Série Prata allows debt on purchases.
	l := f.seededLeague(memory.LeagueIDSeriePrata)
	l.StartingBalance = 1_000_000
	f.leagueRepo.Put(l)

	_, err := service.BuyFreeAgent(t.Context(), BuyFreeAgentInput{
		ActorUserID: "user-nando",
		LeagueID:    l.ID,
		ClubID:      "prata-mare",
		PlayerID:    "fc26-cb-002",
	})
	if err != nil {
		t.Fatalf("buy free agent failed: %v", err)
	}
	if got := f.balance(l.ID, "prata-mare"); got >= 0 {
		t.Fatalf("expected negative balance, got %d", got)
	}
}

func TestTransferService_BuyFreeAgent_RosterFull(t *testing.T) {
	f := newMarketFixture()
	service := f.transferService("transfer")

	l := f.seededLeague(memory.LeagueIDSerieOuro)
	l.RosterCap = 1
	f.leagueRepo.Put(l)

	_, err := service.BuyFreeAgent(t.Context(), BuyFreeAgentInput{
		ActorUserID: "user-rafa",
		LeagueID:    l.ID,
		ClubID:      "ouro-furia",
		PlayerID:    "fc26-gk-002",
	})
	if err != nil {
		t.Fatalf("first signing failed: %v", err)
	}

	_, err = service.BuyFreeAgent(t.Context(), BuyFreeAgentInput{
		ActorUserID: "user-rafa",
		LeagueID:    l.ID,
		ClubID:      "ouro-furia",
		PlayerID:    "fc26-lb-001",
	})
	if !errors.Is(err, roster.ErrRosterFull) {
		t.Fatalf("expected ErrRosterFull, got %v", err)
	}
}

func TestTransferService_SellPlayer_ConservesMoney(t *testing.T) {
	f := newMarketFixture()
	service := f.transferService("transfer")

	l := f.seededLeague(memory.LeagueIDSerieOuro)
	player := f.seededPlayer("fc26-cm-002")

	if _, err := service.BuyFreeAgent(t.Context(), BuyFreeAgentInput{
		ActorUserID: "user-rafa",
		LeagueID:    l.ID,
		ClubID:      "ouro-furia",
		PlayerID:    player.ID,
	}); err != nil {
		t.Fatalf("buy free agent failed: %v", err)
	}

	price := player.MarketValue // above the 60% minimum
	entry, err := service.SellPlayer(t.Context(), SellPlayerInput{
		ActorUserID:  "user-rafa",
		LeagueID:     l.ID,
		SellerClubID: "ouro-furia",
		BuyerClubID:  "ouro-tempestade",
		PlayerID:     player.ID,
		Price:        price,
	})
	if err != nil {
		t.Fatalf("sell player failed: %v", err)
	}

	if entry.ClubID != "ouro-tempestade" {
		t.Fatalf("entry did not move, club=%s", entry.ClubID)
	}
	if entry.ValueSnapshot != player.MarketValue {
		t.Fatalf("value snapshot changed on sale: %d", entry.ValueSnapshot)
	}

	sellerBalance := f.balance(l.ID, "ouro-furia")
	buyerBalance := f.balance(l.ID, "ouro-tempestade")
	if sellerBalance != l.StartingBalance-player.MarketValue+price {
		t.Fatalf("unexpected seller balance: %d", sellerBalance)
	}
	if buyerBalance != l.StartingBalance-price {
		t.Fatalf("unexpected buyer balance: %d", buyerBalance)
	}
}

func TestTransferService_SellPlayer_BelowMinimumPrice(t *testing.T) {
	f := newMarketFixture()
	service := f.transferService("transfer")

	l := f.seededLeague(memory.LeagueIDSerieOuro)
	player := f.seededPlayer("fc26-cm-002")

	if _, err := service.BuyFreeAgent(t.Context(), BuyFreeAgentInput{
		ActorUserID: "user-rafa",
		LeagueID:    l.ID,
		ClubID:      "ouro-furia",
		PlayerID:    player.ID,
	}); err != nil {
		t.Fatalf("buy free agent failed: %v", err)
	}

	minimum := roster.MinimumResalePrice(player.MarketValue, l.MinResalePercent)
	_, err := service.SellPlayer(t.Context(), SellPlayerInput{
		ActorUserID:  "user-rafa",
		LeagueID:     l.ID,
		SellerClubID: "ouro-furia",
		BuyerClubID:  "ouro-tempestade",
		PlayerID:     player.ID,
		Price:        minimum - 1,
	})
	if !errors.Is(err, roster.ErrBelowMinimumPrice) {
		t.Fatalf("expected ErrBelowMinimumPrice, got %v", err)
	}
}

func TestTransferService_SellPlayer_NotOwner(t *testing.T) {
	f := newMarketFixture()
	service := f.transferService("transfer")

	_, err := service.SellPlayer(t.Context(), SellPlayerInput{
		ActorUserID:  "user-rafa",
		LeagueID:     memory.LeagueIDSerieOuro,
		SellerClubID: "ouro-furia",
		BuyerClubID:  "ouro-tempestade",
		PlayerID:     "fc26-am-001",
		Price:        50_000_000,
	})
	if !errors.Is(err, roster.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestTransferService_PayReleaseClause(t *testing.T) {
	f := newMarketFixture()
	service := f.transferService("transfer")

	l := f.seededLeague(memory.LeagueIDSerieOuro)
	player := f.seededPlayer("fc26-cb-001")

	if _, err := service.BuyFreeAgent(t.Context(), BuyFreeAgentInput{
		ActorUserID: "user-dudu",
		LeagueID:    l.ID,
		ClubID:      "ouro-tempestade",
		PlayerID:    player.ID,
	}); err != nil {
		t.Fatalf("buy free agent failed: %v", err)
	}

	entry, err := service.PayReleaseClause(t.Context(), PayReleaseClauseInput{
		ActorUserID: "user-rafa",
		LeagueID:    l.ID,
		BuyerClubID: "ouro-furia",
		PlayerID:    player.ID,
	})
	if err != nil {
		t.Fatalf("pay release clause failed: %v", err)
	}
	if entry.ClubID != "ouro-furia" {
		t.Fatalf("entry did not move, club=%s", entry.ClubID)
	}

	clause := roster.ReleaseClausePrice(player.MarketValue, l.ReleaseMultiplier)
	if got := f.balance(l.ID, "ouro-furia"); got != l.StartingBalance-clause {
		t.Fatalf("unexpected buyer balance: got=%d want=%d", got, l.StartingBalance-clause)
	}
	if got := f.balance(l.ID, "ouro-tempestade"); got != l.StartingBalance-player.MarketValue+clause {
		t.Fatalf("unexpected origin balance: got=%d", got)
	}
}

func TestTransferService_SwapPlayers_WithCashLeg(t *testing.T) {
	f := newMarketFixture()
	service := f.transferService("transfer")

	l := f.seededLeague(memory.LeagueIDSerieOuro)
	playerA := f.seededPlayer("fc26-st-001")
	playerB := f.seededPlayer("fc26-gk-001")

	if _, err := service.BuyFreeAgent(t.Context(), BuyFreeAgentInput{
		ActorUserID: "user-rafa",
		LeagueID:    l.ID,
		ClubID:      "ouro-furia",
		PlayerID:    playerA.ID,
	}); err != nil {
		t.Fatalf("buy player A failed: %v", err)
	}
	if _, err := service.BuyFreeAgent(t.Context(), BuyFreeAgentInput{
		ActorUserID: "user-dudu",
		LeagueID:    l.ID,
		ClubID:      "ouro-tempestade",
		PlayerID:    playerB.ID,
	}); err != nil {
		t.Fatalf("buy player B failed: %v", err)
	}

	// Negative adjustment: tempestade pays furia for the stronger striker.
	cash := int64(-20_000_000)
	if err := service.SwapPlayers(t.Context(), SwapPlayersInput{
		ActorUserID:    "user-rafa",
		LeagueID:       l.ID,
		ClubAID:        "ouro-furia",
		PlayerAID:      playerA.ID,
		ClubBID:        "ouro-tempestade",
		PlayerBID:      playerB.ID,
		CashAdjustment: cash,
	}); err != nil {
		t.Fatalf("swap failed: %v", err)
	}

	entryA, found, _ := f.rosterRepo.GetActiveByScopePlayer(t.Context(), l.Scope(), playerA.ID)
	if !found || entryA.ClubID != "ouro-tempestade" {
		t.Fatalf("player A did not move: %+v", entryA)
	}
	entryB, found, _ := f.rosterRepo.GetActiveByScopePlayer(t.Context(), l.Scope(), playerB.ID)
	if !found || entryB.ClubID != "ouro-furia" {
		t.Fatalf("player B did not move: %+v", entryB)
	}

	furiaBalance := f.balance(l.ID, "ouro-furia")
	if furiaBalance != l.StartingBalance-playerA.MarketValue+20_000_000 {
		t.Fatalf("unexpected furia balance: %d", furiaBalance)
	}
	tempestadeBalance := f.balance(l.ID, "ouro-tempestade")
	if tempestadeBalance != l.StartingBalance-playerB.MarketValue-20_000_000 {
		t.Fatalf("unexpected tempestade balance: %d", tempestadeBalance)
	}
}
