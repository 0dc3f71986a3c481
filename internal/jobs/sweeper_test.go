package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/sampaiofree/temporadaonline-sub001/internal/infrastructure/repository/memory"
	"github.com/sampaiofree/temporadaonline-sub001/internal/usecase"
)

type fakeFinalizer struct {
	mu     sync.Mutex
	scopes []string
	result usecase.FinalizeResult
	err    error
}

func (f *fakeFinalizer) FinalizeExpired(_ context.Context, scopeID string) (usecase.FinalizeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scopes = append(f.scopes, scopeID)
	return f.result, f.err
}

type fakeConfirmer struct {
	confirmed int
	err       error
	calls     int
}

func (f *fakeConfirmer) AutoConfirmExpired(context.Context) (int, error) {
	f.calls++
	return f.confirmed, f.err
}

func TestSweepAuctionsVisitsEachScopeOnce(t *testing.T) {
	leagueRepo := memory.NewLeagueRepository(memory.SeedLeagues())
	finalizer := &fakeFinalizer{result: usecase.FinalizeResult{Closed: 1}}
	sweeper := NewSweeper(leagueRepo, finalizer, &fakeConfirmer{}, time.Minute, time.Minute, nil)

	if err := sweeper.SweepAuctions(context.Background()); err != nil {
		t.Fatalf("sweep auctions: %v", err)
	}

	leagues, err := leagueRepo.List(context.Background())
	if err != nil {
		t.Fatalf("list leagues: %v", err)
	}
	want := make(map[string]struct{})
	for _, l := range leagues {
		want[l.Scope()] = struct{}{}
	}

	sort.Strings(finalizer.scopes)
	if len(finalizer.scopes) != len(want) {
		t.Fatalf("expected %d distinct scopes, got %v", len(want), finalizer.scopes)
	}
	for _, scope := range finalizer.scopes {
		if _, ok := want[scope]; !ok {
			t.Fatalf("unexpected scope %q", scope)
		}
	}
}

func TestSweepAuctionsPropagatesScopeErrors(t *testing.T) {
	leagueRepo := memory.NewLeagueRepository(memory.SeedLeagues())
	finalizer := &fakeFinalizer{err: fmt.Errorf("boom")}
	sweeper := NewSweeper(leagueRepo, finalizer, &fakeConfirmer{}, time.Minute, time.Minute, nil)

	if err := sweeper.SweepAuctions(context.Background()); err == nil {
		t.Fatalf("expected error from failing scope sweep")
	}
}

func TestSweepScores(t *testing.T) {
	leagueRepo := memory.NewLeagueRepository(memory.SeedLeagues())
	confirmer := &fakeConfirmer{confirmed: 3}
	sweeper := NewSweeper(leagueRepo, &fakeFinalizer{}, confirmer, time.Minute, time.Minute, nil)

	got, err := sweeper.SweepScores(context.Background())
	if err != nil {
		t.Fatalf("sweep scores: %v", err)
	}
	if got != 3 {
		t.Fatalf("expected 3 confirmed fixtures, got %d", got)
	}
	if confirmer.calls != 1 {
		t.Fatalf("expected one confirm pass, got %d", confirmer.calls)
	}
}

func TestSweeperStartStop(t *testing.T) {
	leagueRepo := memory.NewLeagueRepository(memory.SeedLeagues())
	sweeper := NewSweeper(leagueRepo, &fakeFinalizer{}, &fakeConfirmer{}, time.Hour, time.Hour, nil)

	if err := sweeper.Start(); err != nil {
		t.Fatalf("start sweeper: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := sweeper.Stop(ctx); err != nil {
		t.Fatalf("stop sweeper: %v", err)
	}
}
