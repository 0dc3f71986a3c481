package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robfig/cron/v3"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/league"
	"github.com/sampaiofree/temporadaonline-sub001/internal/usecase"
	"github.com/sourcegraph/conc/pool"
)

// AuctionFinalizer closes or cancels auction lots whose timers lapsed.
type AuctionFinalizer interface {
	FinalizeExpired(ctx context.Context, scopeID string) (usecase.FinalizeResult, error)
}

// ScoreConfirmer promotes unchallenged score reports after the league's
// confirmation window.
type ScoreConfirmer interface {
	AutoConfirmExpired(ctx context.Context) (int, error)
}

// Sweeper runs the periodic maintenance passes in-process: auction
// finalization per market scope and score auto-confirmation. The same passes
// are also exposed as internal job routes for external schedulers.
type Sweeper struct {
	leagueRepo league.Repository
	auctions   AuctionFinalizer
	fixtures   ScoreConfirmer

	auctionEvery time.Duration
	scoreEvery   time.Duration

	cron   *cron.Cron
	logger *slog.Logger
}

func NewSweeper(
	leagueRepo league.Repository,
	auctions AuctionFinalizer,
	fixtures ScoreConfirmer,
	auctionEvery time.Duration,
	scoreEvery time.Duration,
	logger *slog.Logger,
) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		leagueRepo:   leagueRepo,
		auctions:     auctions,
		fixtures:     fixtures,
		auctionEvery: auctionEvery,
		scoreEvery:   scoreEvery,
		cron:         cron.New(),
		logger:       logger,
	}
}

// Start registers the cron entries and begins the schedule. It returns an
// error if either interval fails to register; the cron runs until Stop.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.auctionEvery), func() {
		if err := s.SweepAuctions(context.Background()); err != nil {
			s.logger.Error("auction sweep failed", "error", err)
		}
	}); err != nil {
		return errors.Wrap(err, "register auction sweep")
	}

	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.scoreEvery), func() {
		if _, err := s.SweepScores(context.Background()); err != nil {
			s.logger.Error("score sweep failed", "error", err)
		}
	}); err != nil {
		return errors.Wrap(err, "register score sweep")
	}

	s.cron.Start()
	s.logger.Info("sweeper started",
		"auction_interval", s.auctionEvery.String(),
		"score_interval", s.scoreEvery.String(),
	)
	return nil
}

// Stop halts the schedule and waits for in-flight sweeps to finish or the
// context to expire.
func (s *Sweeper) Stop(ctx context.Context) error {
	done := s.cron.Stop().Done()
	select {
	case <-done:
		s.logger.Info("sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SweepAuctions finalizes expired lots in every distinct market scope.
// Scopes are swept concurrently; leagues sharing a confederation share one
// scope and are visited once.
func (s *Sweeper) SweepAuctions(ctx context.Context) error {
	leagues, err := s.leagueRepo.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list leagues")
	}

	scopes := make([]string, 0, len(leagues))
	seen := make(map[string]struct{}, len(leagues))
	for _, l := range leagues {
		scope := l.Scope()
		if _, ok := seen[scope]; ok {
			continue
		}
		seen[scope] = struct{}{}
		scopes = append(scopes, scope)
	}

	p := pool.New().WithErrors().WithContext(ctx)
	for _, scope := range scopes {
		scope := scope
		p.Go(func(ctx context.Context) error {
			result, err := s.auctions.FinalizeExpired(ctx, scope)
			if err != nil {
				return errors.Wrapf(err, "finalize scope %s", scope)
			}
			if result.Closed > 0 || result.Cancelled > 0 {
				s.logger.InfoContext(ctx, "auction sweep finished scope",
					"scope_id", scope,
					"closed", result.Closed,
					"cancelled", result.Cancelled,
				)
			}
			return nil
		})
	}

	return p.Wait()
}

// SweepScores auto-confirms score reports whose dispute window lapsed.
func (s *Sweeper) SweepScores(ctx context.Context) (int, error) {
	confirmed, err := s.fixtures.AutoConfirmExpired(ctx)
	if err != nil {
		return confirmed, errors.Wrap(err, "auto confirm scores")
	}
	if confirmed > 0 {
		s.logger.InfoContext(ctx, "score sweep confirmed fixtures", "confirmed", confirmed)
	}
	return confirmed, nil
}
