package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/club"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/fixture"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/league"
	idgen "github.com/sampaiofree/temporadaonline-sub001/internal/platform/id"
	"github.com/sampaiofree/temporadaonline-sub001/internal/platform/uow"
)

// FixtureService drives a fixture through its lifecycle. Every mutation runs
// through the transition allow-list, appends an audit event, and happens in
// one unit of work. Wage settlement hooks into the terminal transitions so a
// concluded fixture and its charges commit together.
type FixtureService struct {
	leagueRepo  league.Repository
	clubRepo    club.Repository
	fixtureRepo fixture.Repository
	eventLog    fixture.EventLog
	payroll     *PayrollService
	runner      uow.Runner
	idGen       idgen.Generator
	logger      *slog.Logger
	now         func() time.Time
}

func NewFixtureService(
	leagueRepo league.Repository,
	clubRepo club.Repository,
	fixtureRepo fixture.Repository,
	eventLog fixture.EventLog,
	payroll *PayrollService,
	runner uow.Runner,
	idGen idgen.Generator,
	logger *slog.Logger,
) *FixtureService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FixtureService{
		leagueRepo:  leagueRepo,
		clubRepo:    clubRepo,
		fixtureRepo: fixtureRepo,
		eventLog:    eventLog,
		payroll:     payroll,
		runner:      runner,
		idGen:       idGen,
		logger:      logger,
		now:         time.Now,
	}
}

// FixtureActionInput identifies one fixture action on behalf of a club owner.
type FixtureActionInput struct {
	ActorUserID string
	LeagueID    string
	ClubID      string
	FixtureID   string
}

// Confirm lets the counterpart club approve a scheduled kickoff. Reaching
// confirmed charges both clubs' wages; the (fixture, club) uniqueness of
// settlements keeps the charge single even if the fixture concludes later.
func (s *FixtureService) Confirm(ctx context.Context, input FixtureActionInput) (fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.Confirm")
	defer span.End()

	l, actor, fx, err := s.resolveParticipant(ctx, input)
	if err != nil {
		return fixture.Fixture{}, err
	}

	var confirmed fixture.Fixture
	err = s.runner.Atomic(ctx, func(ctx context.Context) error {
		current, err := s.reload(ctx, fx.ID)
		if err != nil {
			return err
		}
		if err := fixture.Transition(current.State, fixture.StateConfirmed); err != nil {
			return err
		}
		current.State = fixture.StateConfirmed
		current.UpdatedAt = s.now().UTC()
		if err := s.fixtureRepo.Update(ctx, current); err != nil {
			return fmt.Errorf("persist fixture: %w", err)
		}
		if _, err := s.payroll.settleLocked(ctx, l, current); err != nil {
			return err
		}
		confirmed = current
		return s.appendEvent(ctx, current.ID, "fixture_confirmed", input.ActorUserID, map[string]any{
			"club_id": actor.ID,
		})
	})
	if err != nil {
		return fixture.Fixture{}, err
	}

	s.logger.InfoContext(ctx, "fixture confirmed", "fixture_id", confirmed.ID, "league_id", l.ID)
	return confirmed, nil
}

// CheckIn records one club's presence at kickoff. When both clubs checked in
// the fixture moves to in progress.
func (s *FixtureService) CheckIn(ctx context.Context, input FixtureActionInput) (fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.CheckIn")
	defer span.End()

	_, actor, fx, err := s.resolveParticipant(ctx, input)
	if err != nil {
		return fixture.Fixture{}, err
	}

	var updated fixture.Fixture
	err = s.runner.Atomic(ctx, func(ctx context.Context) error {
		current, err := s.reload(ctx, fx.ID)
		if err != nil {
			return err
		}
		if err := fixture.Transition(current.State, fixture.StateInProgress); err != nil {
			return err
		}

		now := s.now().UTC()
		if actor.ID == current.HomeClubID {
			current.HomeCheckInAt = &now
		} else {
			current.AwayCheckInAt = &now
		}
		if current.HomeCheckInAt != nil && current.AwayCheckInAt != nil {
			current.State = fixture.StateInProgress
		}
		current.UpdatedAt = now
		if err := s.fixtureRepo.Update(ctx, current); err != nil {
			return fmt.Errorf("persist fixture: %w", err)
		}
		updated = current
		return s.appendEvent(ctx, current.ID, "fixture_check_in", input.ActorUserID, map[string]any{
			"club_id": actor.ID,
		})
	})
	if err != nil {
		return fixture.Fixture{}, err
	}

	s.logger.InfoContext(ctx, "fixture check-in",
		"fixture_id", updated.ID,
		"club_id", actor.ID,
		"state", string(updated.State),
	)
	return updated, nil
}

// SubmitScoreInput reports a final score for an in-progress fixture.
type SubmitScoreInput struct {
	FixtureActionInput
	HomeScore int
	AwayScore int
}

func (s *FixtureService) SubmitScore(ctx context.Context, input SubmitScoreInput) (fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.SubmitScore")
	defer span.End()

	if input.HomeScore < 0 || input.AwayScore < 0 {
		return fixture.Fixture{}, fmt.Errorf("%w: scores cannot be negative", ErrInvalidInput)
	}
	_, actor, fx, err := s.resolveParticipant(ctx, input.FixtureActionInput)
	if err != nil {
		return fixture.Fixture{}, err
	}

	var updated fixture.Fixture
	err = s.runner.Atomic(ctx, func(ctx context.Context) error {
		current, err := s.reload(ctx, fx.ID)
		if err != nil {
			return err
		}
		if err := fixture.Transition(current.State, fixture.StateScoreSubmitted); err != nil {
			return err
		}

		now := s.now().UTC()
		home, away := input.HomeScore, input.AwayScore
		current.State = fixture.StateScoreSubmitted
		current.HomeScore = &home
		current.AwayScore = &away
		current.ScoreSubmittedAt = &now
		current.UpdatedAt = now
		if err := s.fixtureRepo.Update(ctx, current); err != nil {
			return fmt.Errorf("persist fixture: %w", err)
		}
		updated = current
		return s.appendEvent(ctx, current.ID, "score_submitted", input.ActorUserID, map[string]any{
			"club_id":    actor.ID,
			"home_score": home,
			"away_score": away,
		})
	})
	if err != nil {
		return fixture.Fixture{}, err
	}

	s.logger.InfoContext(ctx, "score submitted",
		"fixture_id", updated.ID,
		"home_score", input.HomeScore,
		"away_score", input.AwayScore,
	)
	return updated, nil
}

// ConfirmScore accepts the submitted score and settles wages for both clubs.
func (s *FixtureService) ConfirmScore(ctx context.Context, input FixtureActionInput) (fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.ConfirmScore")
	defer span.End()

	l, actor, fx, err := s.resolveParticipant(ctx, input)
	if err != nil {
		return fixture.Fixture{}, err
	}
	return s.concludeScore(ctx, l, fx.ID, "score_confirmed", input.ActorUserID, map[string]any{
		"club_id": actor.ID,
	})
}

// Dispute challenges a submitted score, parking the fixture until a league
// admin resolves it.
func (s *FixtureService) Dispute(ctx context.Context, input FixtureActionInput) (fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.Dispute")
	defer span.End()

	_, actor, fx, err := s.resolveParticipant(ctx, input)
	if err != nil {
		return fixture.Fixture{}, err
	}

	var updated fixture.Fixture
	err = s.runner.Atomic(ctx, func(ctx context.Context) error {
		current, err := s.reload(ctx, fx.ID)
		if err != nil {
			return err
		}
		if err := fixture.Transition(current.State, fixture.StateDisputed); err != nil {
			return err
		}
		current.State = fixture.StateDisputed
		current.UpdatedAt = s.now().UTC()
		if err := s.fixtureRepo.Update(ctx, current); err != nil {
			return fmt.Errorf("persist fixture: %w", err)
		}
		updated = current
		return s.appendEvent(ctx, current.ID, "score_disputed", input.ActorUserID, map[string]any{
			"club_id": actor.ID,
		})
	})
	if err != nil {
		return fixture.Fixture{}, err
	}

	s.logger.WarnContext(ctx, "score disputed", "fixture_id", updated.ID, "club_id", actor.ID)
	return updated, nil
}

// ResolveDisputeInput carries the admin ruling on a disputed fixture.
type ResolveDisputeInput struct {
	ActorUserID string
	LeagueID    string
	FixtureID   string
	HomeScore   int
	AwayScore   int
}

// ResolveDispute records the ruled score and concludes the fixture. No
// ownership check: this is an administrative surface, guarded at transport.
func (s *FixtureService) ResolveDispute(ctx context.Context, input ResolveDisputeInput) (fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.ResolveDispute")
	defer span.End()

	if input.HomeScore < 0 || input.AwayScore < 0 {
		return fixture.Fixture{}, fmt.Errorf("%w: scores cannot be negative", ErrInvalidInput)
	}
	l, fx, err := s.resolveFixture(ctx, input.LeagueID, input.FixtureID)
	if err != nil {
		return fixture.Fixture{}, err
	}

	var updated fixture.Fixture
	err = s.runner.Atomic(ctx, func(ctx context.Context) error {
		current, err := s.reload(ctx, fx.ID)
		if err != nil {
			return err
		}
		if err := fixture.Transition(current.State, fixture.StateScoreConfirmed); err != nil {
			return err
		}

		now := s.now().UTC()
		home, away := input.HomeScore, input.AwayScore
		current.State = fixture.StateScoreConfirmed
		current.HomeScore = &home
		current.AwayScore = &away
		current.UpdatedAt = now
		if err := s.fixtureRepo.Update(ctx, current); err != nil {
			return fmt.Errorf("persist fixture: %w", err)
		}
		if _, err := s.payroll.settleLocked(ctx, l, current); err != nil {
			return err
		}
		updated = current
		return s.appendEvent(ctx, current.ID, "dispute_resolved", input.ActorUserID, map[string]any{
			"home_score": home,
			"away_score": away,
		})
	})
	if err != nil {
		return fixture.Fixture{}, err
	}

	s.logger.InfoContext(ctx, "dispute resolved", "fixture_id", updated.ID, "league_id", l.ID)
	return updated, nil
}

// WalkoverInput awards the fixture against a defaulting club.
type WalkoverInput struct {
	ActorUserID      string
	LeagueID         string
	FixtureID        string
	DefaultingClubID string
	Reason           string
}

// Walkover concludes the fixture against the defaulting club and settles
// wages plus the league walkover penalty in the same unit of work.
func (s *FixtureService) Walkover(ctx context.Context, input WalkoverInput) (fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.Walkover")
	defer span.End()

	l, fx, err := s.resolveFixture(ctx, input.LeagueID, input.FixtureID)
	if err != nil {
		return fixture.Fixture{}, err
	}
	input.DefaultingClubID = strings.TrimSpace(input.DefaultingClubID)
	if !fx.InvolvesClub(input.DefaultingClubID) {
		return fixture.Fixture{}, fmt.Errorf("%w: club=%s does not play fixture=%s", ErrInvalidInput, input.DefaultingClubID, fx.ID)
	}

	var updated fixture.Fixture
	err = s.runner.Atomic(ctx, func(ctx context.Context) error {
		current, err := s.reload(ctx, fx.ID)
		if err != nil {
			return err
		}
		if err := fixture.Transition(current.State, fixture.StateWalkover); err != nil {
			return err
		}
		current.State = fixture.StateWalkover
		current.WalkoverClubID = input.DefaultingClubID
		current.WalkoverReason = strings.TrimSpace(input.Reason)
		current.UpdatedAt = s.now().UTC()
		if err := s.fixtureRepo.Update(ctx, current); err != nil {
			return fmt.Errorf("persist fixture: %w", err)
		}
		if _, err := s.payroll.settleLocked(ctx, l, current); err != nil {
			return err
		}
		updated = current
		return s.appendEvent(ctx, current.ID, "walkover_awarded", input.ActorUserID, map[string]any{
			"defaulting_club_id": current.WalkoverClubID,
			"reason":             current.WalkoverReason,
		})
	})
	if err != nil {
		return fixture.Fixture{}, err
	}

	s.logger.InfoContext(ctx, "walkover awarded",
		"fixture_id", updated.ID,
		"defaulting_club_id", updated.WalkoverClubID,
	)
	return updated, nil
}

// Cancel abandons a fixture without charges.
func (s *FixtureService) Cancel(ctx context.Context, input FixtureActionInput) (fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.Cancel")
	defer span.End()

	_, fx, err := s.resolveFixture(ctx, input.LeagueID, input.FixtureID)
	if err != nil {
		return fixture.Fixture{}, err
	}

	var updated fixture.Fixture
	err = s.runner.Atomic(ctx, func(ctx context.Context) error {
		current, err := s.reload(ctx, fx.ID)
		if err != nil {
			return err
		}
		if err := fixture.Transition(current.State, fixture.StateCancelled); err != nil {
			return err
		}
		current.State = fixture.StateCancelled
		current.UpdatedAt = s.now().UTC()
		if err := s.fixtureRepo.Update(ctx, current); err != nil {
			return fmt.Errorf("persist fixture: %w", err)
		}
		updated = current
		return s.appendEvent(ctx, current.ID, "fixture_cancelled", input.ActorUserID, nil)
	})
	if err != nil {
		return fixture.Fixture{}, err
	}

	s.logger.InfoContext(ctx, "fixture cancelled", "fixture_id", updated.ID)
	return updated, nil
}

// AutoConfirmExpired concludes submitted scores whose confirmation window
// lapsed without a dispute. Lazily driven by the jobs runner.
func (s *FixtureService) AutoConfirmExpired(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.AutoConfirmExpired")
	defer span.End()

	pending, err := s.fixtureRepo.ListByState(ctx, fixture.StateScoreSubmitted)
	if err != nil {
		return 0, fmt.Errorf("list submitted fixtures: %w", err)
	}

	confirmed := 0
	for _, fx := range pending {
		l, exists, err := s.leagueRepo.GetByID(ctx, fx.LeagueID)
		if err != nil {
			return confirmed, fmt.Errorf("get league: %w", err)
		}
		if !exists {
			continue
		}
		if fx.ScoreSubmittedAt == nil || s.now().Sub(*fx.ScoreSubmittedAt) < l.ScoreConfirmWindow {
			continue
		}
		if _, err := s.concludeScore(ctx, l, fx.ID, "score_auto_confirmed", "", nil); err != nil {
			s.logger.WarnContext(ctx, "auto-confirm failed",
				"fixture_id", fx.ID,
				"error", err,
			)
			continue
		}
		confirmed++
	}
	if confirmed > 0 {
		s.logger.InfoContext(ctx, "scores auto-confirmed", "count", confirmed)
	}
	return confirmed, nil
}

// concludeScore moves a submitted score to confirmed and settles both clubs.
func (s *FixtureService) concludeScore(ctx context.Context, l league.League, fixtureID, action, actorUserID string, payload map[string]any) (fixture.Fixture, error) {
	var updated fixture.Fixture
	err := s.runner.Atomic(ctx, func(ctx context.Context) error {
		current, err := s.reload(ctx, fixtureID)
		if err != nil {
			return err
		}
		if err := fixture.Transition(current.State, fixture.StateScoreConfirmed); err != nil {
			return err
		}
		current.State = fixture.StateScoreConfirmed
		current.UpdatedAt = s.now().UTC()
		if err := s.fixtureRepo.Update(ctx, current); err != nil {
			return fmt.Errorf("persist fixture: %w", err)
		}
		if _, err := s.payroll.settleLocked(ctx, l, current); err != nil {
			return err
		}
		updated = current
		return s.appendEvent(ctx, current.ID, action, actorUserID, payload)
	})
	if err != nil {
		return fixture.Fixture{}, err
	}

	s.logger.InfoContext(ctx, "score confirmed", "fixture_id", updated.ID, "league_id", l.ID)
	return updated, nil
}

// maybeAutoConfirm advances a submitted score whose confirmation window has
// lapsed, so reads surface the confirmed state without waiting for the sweep.
func (s *FixtureService) maybeAutoConfirm(ctx context.Context, l league.League, fx fixture.Fixture) (fixture.Fixture, error) {
	if fx.State != fixture.StateScoreSubmitted || fx.ScoreSubmittedAt == nil {
		return fx, nil
	}
	if s.now().Sub(*fx.ScoreSubmittedAt) < l.ScoreConfirmWindow {
		return fx, nil
	}
	return s.concludeScore(ctx, l, fx.ID, "score_auto_confirmed", "", nil)
}

// Get returns one fixture with its audit trail.
func (s *FixtureService) Get(ctx context.Context, leagueID, fixtureID string) (fixture.Fixture, []fixture.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.Get")
	defer span.End()

	l, fx, err := s.resolveFixture(ctx, leagueID, fixtureID)
	if err != nil {
		return fixture.Fixture{}, nil, err
	}
	fx, err = s.maybeAutoConfirm(ctx, l, fx)
	if err != nil {
		return fixture.Fixture{}, nil, err
	}
	events, err := s.eventLog.ListByFixture(ctx, fx.ID)
	if err != nil {
		return fixture.Fixture{}, nil, fmt.Errorf("list fixture events: %w", err)
	}
	return fx, events, nil
}

// ListByLeague returns all fixtures of a league.
func (s *FixtureService) ListByLeague(ctx context.Context, leagueID string) ([]fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.ListByLeague")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	l, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}
	fixtures, err := s.fixtureRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}
	for i, fx := range fixtures {
		advanced, err := s.maybeAutoConfirm(ctx, l, fx)
		if err != nil {
			// A stale entry in a listing is tolerable; the sweep retries.
			s.logger.WarnContext(ctx, "auto-confirm on read failed",
				"fixture_id", fx.ID,
				"error", err,
			)
			continue
		}
		fixtures[i] = advanced
	}
	return fixtures, nil
}

func (s *FixtureService) reload(ctx context.Context, fixtureID string) (fixture.Fixture, error) {
	current, exists, err := s.fixtureRepo.GetByID(ctx, fixtureID)
	if err != nil {
		return fixture.Fixture{}, fmt.Errorf("get fixture: %w", err)
	}
	if !exists {
		return fixture.Fixture{}, fmt.Errorf("%w: fixture=%s", ErrNotFound, fixtureID)
	}
	return current, nil
}

// resolveParticipant loads the fixture and checks that the acting club plays
// it and belongs to the acting user.
func (s *FixtureService) resolveParticipant(ctx context.Context, input FixtureActionInput) (league.League, club.Club, fixture.Fixture, error) {
	l, fx, err := s.resolveFixture(ctx, input.LeagueID, input.FixtureID)
	if err != nil {
		return league.League{}, club.Club{}, fixture.Fixture{}, err
	}

	clubID := strings.TrimSpace(input.ClubID)
	c, exists, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		return league.League{}, club.Club{}, fixture.Fixture{}, fmt.Errorf("get club: %w", err)
	}
	if !exists || !fx.InvolvesClub(c.ID) {
		return league.League{}, club.Club{}, fixture.Fixture{}, fmt.Errorf("%w: club=%s does not play fixture=%s", ErrNotFound, clubID, fx.ID)
	}
	if input.ActorUserID != "" && c.OwnerUserID != input.ActorUserID {
		return league.League{}, club.Club{}, fixture.Fixture{}, fmt.Errorf("%w: user=%s does not own club=%s", ErrUnauthorized, input.ActorUserID, clubID)
	}
	return l, c, fx, nil
}

func (s *FixtureService) resolveFixture(ctx context.Context, leagueID, fixtureID string) (league.League, fixture.Fixture, error) {
	leagueID = strings.TrimSpace(leagueID)
	fixtureID = strings.TrimSpace(fixtureID)
	if leagueID == "" || fixtureID == "" {
		return league.League{}, fixture.Fixture{}, fmt.Errorf("%w: league and fixture ids are required", ErrInvalidInput)
	}
	l, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fixture.Fixture{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return league.League{}, fixture.Fixture{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}
	fx, exists, err := s.fixtureRepo.GetByID(ctx, fixtureID)
	if err != nil {
		return league.League{}, fixture.Fixture{}, fmt.Errorf("get fixture: %w", err)
	}
	if !exists || fx.LeagueID != l.ID {
		return league.League{}, fixture.Fixture{}, fmt.Errorf("%w: fixture=%s in league=%s", ErrNotFound, fixtureID, leagueID)
	}
	return l, fx, nil
}

func (s *FixtureService) appendEvent(ctx context.Context, fixtureID, action, actorID string, payload map[string]any) error {
	eventID, err := s.idGen.NewID()
	if err != nil {
		return fmt.Errorf("generate event id: %w", err)
	}
	event := fixture.Event{
		ID:        eventID,
		FixtureID: fixtureID,
		Action:    action,
		ActorID:   actorID,
		Payload:   payload,
		CreatedAt: s.now().UTC(),
	}
	if err := s.eventLog.Append(ctx, event); err != nil {
		return fmt.Errorf("append fixture event: %w", err)
	}
	return nil
}
