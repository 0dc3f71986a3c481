package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/availability"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/club"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/fixture"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/league"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/schedule"
	idgen "github.com/sampaiofree/temporadaonline-sub001/internal/platform/id"
	"github.com/sampaiofree/temporadaonline-sub001/internal/platform/uow"
)

// SchedulerService finds legal kickoff slots and pins fixtures onto them.
// Slot legality is always recomputed at write time: the candidate list shown
// to a user is advisory, the checks under the unit of work are authoritative.
type SchedulerService struct {
	leagueRepo       league.Repository
	clubRepo         club.Repository
	fixtureRepo      fixture.Repository
	eventLog         fixture.EventLog
	availabilityRepo availability.Repository
	runner           uow.Runner
	idGen            idgen.Generator
	logger           *slog.Logger
	now              func() time.Time
}

func NewSchedulerService(
	leagueRepo league.Repository,
	clubRepo club.Repository,
	fixtureRepo fixture.Repository,
	eventLog fixture.EventLog,
	availabilityRepo availability.Repository,
	runner uow.Runner,
	idGen idgen.Generator,
	logger *slog.Logger,
) *SchedulerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SchedulerService{
		leagueRepo:       leagueRepo,
		clubRepo:         clubRepo,
		fixtureRepo:      fixtureRepo,
		eventLog:         eventLog,
		availabilityRepo: availabilityRepo,
		runner:           runner,
		idGen:            idGen,
		logger:           logger,
		now:              time.Now,
	}
}

// CreateFixtureInput registers a pairing that still needs a kickoff slot.
type CreateFixtureInput struct {
	LeagueID   string
	HomeClubID string
	AwayClubID string
}

func (s *SchedulerService) CreateFixture(ctx context.Context, input CreateFixtureInput) (fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SchedulerService.CreateFixture")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.HomeClubID = strings.TrimSpace(input.HomeClubID)
	input.AwayClubID = strings.TrimSpace(input.AwayClubID)
	if input.LeagueID == "" || input.HomeClubID == "" || input.AwayClubID == "" {
		return fixture.Fixture{}, fmt.Errorf("%w: league and both clubs are required", ErrInvalidInput)
	}
	if input.HomeClubID == input.AwayClubID {
		return fixture.Fixture{}, fmt.Errorf("%w: fixture clubs must differ", ErrInvalidInput)
	}

	l, _, err := s.resolveLeagueClub(ctx, input.LeagueID, input.HomeClubID)
	if err != nil {
		return fixture.Fixture{}, err
	}
	if _, _, err := s.resolveLeagueClub(ctx, input.LeagueID, input.AwayClubID); err != nil {
		return fixture.Fixture{}, err
	}

	var fx fixture.Fixture
	err = s.runner.Atomic(ctx, func(ctx context.Context) error {
		if _, exists, err := s.fixtureRepo.GetByClubs(ctx, l.ID, input.HomeClubID, input.AwayClubID); err != nil {
			return fmt.Errorf("get fixture: %w", err)
		} else if exists {
			return fmt.Errorf("%w: fixture for this pairing already exists", ErrInvalidInput)
		}

		id, err := s.idGen.NewID()
		if err != nil {
			return fmt.Errorf("generate fixture id: %w", err)
		}
		now := s.now().UTC()
		fx = fixture.Fixture{
			ID:         id,
			LeagueID:   l.ID,
			HomeClubID: input.HomeClubID,
			AwayClubID: input.AwayClubID,
			State:      fixture.StateConfirmationNeeded,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.fixtureRepo.Create(ctx, fx); err != nil {
			return fmt.Errorf("persist fixture: %w", err)
		}
		return s.appendEvent(ctx, fx.ID, "fixture_created", "", nil)
	})
	if err != nil {
		return fixture.Fixture{}, err
	}

	s.logger.InfoContext(ctx, "fixture created",
		"fixture_id", fx.ID,
		"league_id", l.ID,
		"home_club_id", fx.HomeClubID,
		"away_club_id", fx.AwayClubID,
	)
	return fx, nil
}

// AvailableSlotsInput asks for legal kickoffs of one fixture.
type AvailableSlotsInput struct {
	LeagueID  string
	FixtureID string
}

// AvailableSlots lists legal kickoff instants: league calendar and daily
// ranges intersected with the home owner's weekly availability, minus both
// clubs' existing bookings.
func (s *SchedulerService) AvailableSlots(ctx context.Context, input AvailableSlotsInput) ([]time.Time, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SchedulerService.AvailableSlots")
	defer span.End()

	l, fx, err := s.resolveFixture(ctx, input.LeagueID, input.FixtureID)
	if err != nil {
		return nil, err
	}
	loc, err := l.Location()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	home, exists, err := s.clubRepo.GetByID(ctx, fx.HomeClubID)
	if err != nil {
		return nil, fmt.Errorf("get home club: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: club=%s", ErrNotFound, fx.HomeClubID)
	}
	windows, err := s.availabilityRepo.ListByUser(ctx, home.OwnerUserID)
	if err != nil {
		return nil, fmt.Errorf("list owner availability: %w", err)
	}

	bookings, err := s.clubBookings(ctx, l, fx.HomeClubID, fx.AwayClubID, fx.ID)
	if err != nil {
		return nil, err
	}

	slots := schedule.AvailableSlots(schedule.SlotInput{
		Now:             s.now(),
		Location:        loc,
		Duration:        l.MatchDuration,
		CalendarPeriods: l.CalendarPeriods,
		AllowedWeekdays: l.AllowedWeekdays,
		DailyRanges:     l.DailyRanges,
		OwnerWindows:    windows,
		Bookings:        bookings,
	})
	if len(slots) == 0 && !fx.NoSlot {
		// Remembered so the league admin can spot pairings that will need a
		// forced slot.
		fx.NoSlot = true
		fx.UpdatedAt = s.now().UTC()
		if err := s.fixtureRepo.Update(ctx, fx); err != nil {
			return nil, fmt.Errorf("flag fixture without slots: %w", err)
		}
	}
	return slots, nil
}

// ScheduleFixtureInput pins a fixture to a kickoff instant. Force bypasses
// the owner-availability check, never the league calendar or conflict checks.
type ScheduleFixtureInput struct {
	ActorUserID string
	LeagueID    string
	FixtureID   string
	KickoffAt   time.Time
	Force       bool
}

func (s *SchedulerService) Schedule(ctx context.Context, input ScheduleFixtureInput) (fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SchedulerService.Schedule")
	defer span.End()

	l, fx, err := s.resolveFixture(ctx, input.LeagueID, input.FixtureID)
	if err != nil {
		return fixture.Fixture{}, err
	}
	if err := fixture.Transition(fx.State, fixture.StateScheduled); err != nil {
		return fixture.Fixture{}, err
	}

	var scheduled fixture.Fixture
	err = s.runner.Atomic(ctx, func(ctx context.Context) error {
		current, exists, err := s.fixtureRepo.GetByID(ctx, fx.ID)
		if err != nil {
			return fmt.Errorf("get fixture: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: fixture=%s", ErrNotFound, fx.ID)
		}
		if err := fixture.Transition(current.State, fixture.StateScheduled); err != nil {
			return err
		}
		if err := s.checkSlot(ctx, l, current, input.KickoffAt, input.Force); err != nil {
			return err
		}

		kickoff := input.KickoffAt.UTC()
		current.State = fixture.StateScheduled
		current.KickoffAt = &kickoff
		current.Forced = input.Force
		current.NoSlot = false
		current.UpdatedAt = s.now().UTC()
		if err := s.fixtureRepo.Update(ctx, current); err != nil {
			return fmt.Errorf("persist fixture: %w", err)
		}
		scheduled = current
		return s.appendEvent(ctx, current.ID, "fixture_scheduled", input.ActorUserID, map[string]any{
			"kickoff_at": kickoff,
			"forced":     input.Force,
		})
	})
	if err != nil {
		return fixture.Fixture{}, err
	}

	s.logger.InfoContext(ctx, "fixture scheduled",
		"fixture_id", scheduled.ID,
		"kickoff_at", scheduled.KickoffAt,
		"forced", scheduled.Forced,
	)
	return scheduled, nil
}

// Reschedule moves a booked fixture to a new kickoff. It consumes one unit of
// the fixture's reschedule budget and demands the configured notice before
// the current kickoff.
func (s *SchedulerService) Reschedule(ctx context.Context, input ScheduleFixtureInput) (fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SchedulerService.Reschedule")
	defer span.End()

	l, fx, err := s.resolveFixture(ctx, input.LeagueID, input.FixtureID)
	if err != nil {
		return fixture.Fixture{}, err
	}
	if fx.State != fixture.StateScheduled && fx.State != fixture.StateConfirmed {
		return fixture.Fixture{}, fmt.Errorf("%w: %s -> %s", fixture.ErrInvalidTransition, fx.State, fixture.StateScheduled)
	}

	var rescheduled fixture.Fixture
	err = s.runner.Atomic(ctx, func(ctx context.Context) error {
		current, exists, err := s.fixtureRepo.GetByID(ctx, fx.ID)
		if err != nil {
			return fmt.Errorf("get fixture: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: fixture=%s", ErrNotFound, fx.ID)
		}
		if current.State != fixture.StateScheduled && current.State != fixture.StateConfirmed {
			return fmt.Errorf("%w: %s -> %s", fixture.ErrInvalidTransition, current.State, fixture.StateScheduled)
		}
		if current.RescheduleCount >= l.MaxReschedules {
			return fmt.Errorf("%w: used %d of %d", schedule.ErrRescheduleBudget, current.RescheduleCount, l.MaxReschedules)
		}
		if current.KickoffAt != nil && s.now().Add(l.MinRescheduleNotice).After(*current.KickoffAt) {
			return fmt.Errorf("%w: need %s before kickoff", schedule.ErrNoticeTooShort, l.MinRescheduleNotice)
		}
		if err := s.checkSlot(ctx, l, current, input.KickoffAt, input.Force); err != nil {
			return err
		}

		kickoff := input.KickoffAt.UTC()
		current.State = fixture.StateScheduled
		current.KickoffAt = &kickoff
		current.RescheduleCount++
		current.Forced = input.Force
		current.UpdatedAt = s.now().UTC()
		if err := s.fixtureRepo.Update(ctx, current); err != nil {
			return fmt.Errorf("persist fixture: %w", err)
		}
		rescheduled = current
		return s.appendEvent(ctx, current.ID, "fixture_rescheduled", input.ActorUserID, map[string]any{
			"kickoff_at":       kickoff,
			"reschedule_count": current.RescheduleCount,
		})
	})
	if err != nil {
		return fixture.Fixture{}, err
	}

	s.logger.InfoContext(ctx, "fixture rescheduled",
		"fixture_id", rescheduled.ID,
		"kickoff_at", rescheduled.KickoffAt,
		"reschedule_count", rescheduled.RescheduleCount,
	)
	return rescheduled, nil
}

// checkSlot is the authoritative write-time slot validation: future kickoff,
// inside league hours, inside both owners' windows unless forced, and
// conflict-free against both clubs' other bookings.
func (s *SchedulerService) checkSlot(ctx context.Context, l league.League, fx fixture.Fixture, kickoff time.Time, force bool) error {
	if !kickoff.After(s.now()) {
		return fmt.Errorf("%w: kickoff must be in the future", ErrInvalidInput)
	}
	inCalendar := false
	for _, p := range l.CalendarPeriods {
		if p.Contains(kickoff) {
			inCalendar = true
			break
		}
	}
	if !inCalendar || !schedule.InsideLeagueHours(l, kickoff, l.MatchDuration) {
		return fmt.Errorf("%w: kickoff=%s", schedule.ErrOutsideLeagueHours, kickoff.Format(time.RFC3339))
	}

	if !force {
		loc, err := l.Location()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		for _, clubID := range []string{fx.HomeClubID, fx.AwayClubID} {
			c, exists, err := s.clubRepo.GetByID(ctx, clubID)
			if err != nil {
				return fmt.Errorf("get club: %w", err)
			}
			if !exists {
				return fmt.Errorf("%w: club=%s", ErrNotFound, clubID)
			}
			windows, err := s.availabilityRepo.ListByUser(ctx, c.OwnerUserID)
			if err != nil {
				return fmt.Errorf("list owner availability: %w", err)
			}
			if !schedule.InsideWindows(windows, kickoff, l.MatchDuration, loc) {
				return fmt.Errorf("%w: kickoff=%s", schedule.ErrOwnerUnavailable, kickoff.Format(time.RFC3339))
			}
		}
	}

	bookings, err := s.clubBookings(ctx, l, fx.HomeClubID, fx.AwayClubID, fx.ID)
	if err != nil {
		return err
	}
	if schedule.HasConflict(bookings, kickoff, l.MatchDuration) {
		return fmt.Errorf("%w: kickoff=%s", schedule.ErrSlotConflict, kickoff.Format(time.RFC3339))
	}
	return nil
}

// clubBookings gathers both clubs' booked fixtures, excluding the fixture
// being (re)scheduled itself.
func (s *SchedulerService) clubBookings(ctx context.Context, l league.League, homeClubID, awayClubID, excludeFixtureID string) ([]schedule.Booking, error) {
	var bookings []schedule.Booking
	for _, clubID := range []string{homeClubID, awayClubID} {
		booked, err := s.fixtureRepo.ListBookedByClub(ctx, clubID)
		if err != nil {
			return nil, fmt.Errorf("list booked fixtures: %w", err)
		}
		for _, b := range booked {
			if b.ID == excludeFixtureID || b.KickoffAt == nil {
				continue
			}
			bookings = append(bookings, schedule.Booking{Start: *b.KickoffAt, Duration: l.MatchDuration})
		}
	}
	return bookings, nil
}

func (s *SchedulerService) resolveLeagueClub(ctx context.Context, leagueID, clubID string) (league.League, club.Club, error) {
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
	return l, c, nil
}

func (s *SchedulerService) resolveFixture(ctx context.Context, leagueID, fixtureID string) (league.League, fixture.Fixture, error) {
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

func (s *SchedulerService) appendEvent(ctx context.Context, fixtureID, action, actorID string, payload map[string]any) error {
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
