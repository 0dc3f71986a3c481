package usecase

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/availability"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/fixture"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/league"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/schedule"
	"github.com/sampaiofree/temporadaonline-sub001/internal/infrastructure/repository/memory"
)

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

// narrowCalendar pins the league calendar to one week in June 2026 so slot
// lists stay small and assertable.
func (h *fixtureHarness) narrowCalendar(t *testing.T) league.League {
	t.Helper()
	l, _, _ := h.leagueRepo.GetByID(t.Context(), memory.LeagueIDSerieOuro)
	l.CalendarPeriods = []league.Period{{
		From: time.Date(2026, time.June, 14, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, time.June, 21, 0, 0, 0, 0, time.UTC),
	}}
	h.leagueRepo.Put(l)
	return l
}

func (h *fixtureHarness) setOwnerWindows(t *testing.T, userID string, windows ...availability.Window) {
	t.Helper()
	for i := range windows {
		windows[i].UserID = userID
		windows[i].ID = fmt.Sprintf("%s-w%d", userID, i)
	}
	if err := h.availabilityRepo.ReplaceForUser(t.Context(), userID, windows); err != nil {
		t.Fatalf("replace windows: %v", err)
	}
}

func TestSchedulerService_AvailableSlots(t *testing.T) {
	h := newFixtureHarness()
	h.narrowCalendar(t)
	loc := saoPaulo(t)

	// The home owner only plays Tuesday evenings.
	h.setOwnerWindows(t, "user-rafa", availability.Window{
		Weekday:     time.Tuesday,
		StartMinute: 19 * 60,
		EndMinute:   22 * 60,
	})

	fx, err := h.scheduler.CreateFixture(t.Context(), CreateFixtureInput{
		LeagueID:   memory.LeagueIDSerieOuro,
		HomeClubID: "ouro-furia",
		AwayClubID: "ouro-tempestade",
	})
	if err != nil {
		t.Fatalf("create fixture failed: %v", err)
	}

	slots, err := h.scheduler.AvailableSlots(t.Context(), AvailableSlotsInput{
		LeagueID:  memory.LeagueIDSerieOuro,
		FixtureID: fx.ID,
	})
	if err != nil {
		t.Fatalf("available slots failed: %v", err)
	}

	// Tuesday June 16, owner window 19:00-22:00 intersected with league
	// hours 18:00-23:00, 90 minute match on a 30 minute grid.
	want := []time.Time{
		time.Date(2026, time.June, 16, 19, 0, 0, 0, loc),
		time.Date(2026, time.June, 16, 19, 30, 0, 0, loc),
		time.Date(2026, time.June, 16, 20, 0, 0, 0, loc),
		time.Date(2026, time.June, 16, 20, 30, 0, 0, loc),
	}
	if len(slots) != len(want) {
		t.Fatalf("unexpected slot count: got=%d want=%d slots=%v", len(slots), len(want), slots)
	}
	for i, slot := range slots {
		if !slot.Equal(want[i]) {
			t.Fatalf("slot %d mismatch: got=%v want=%v", i, slot, want[i])
		}
	}
}

func TestSchedulerService_AvailableSlots_FlagsNoSlot(t *testing.T) {
	h := newFixtureHarness()
	h.narrowCalendar(t)
	// No owner windows at all.

	fx, err := h.scheduler.CreateFixture(t.Context(), CreateFixtureInput{
		LeagueID:   memory.LeagueIDSerieOuro,
		HomeClubID: "ouro-furia",
		AwayClubID: "ouro-tempestade",
	})
	if err != nil {
		t.Fatalf("create fixture failed: %v", err)
	}

	slots, err := h.scheduler.AvailableSlots(t.Context(), AvailableSlotsInput{
		LeagueID:  memory.LeagueIDSerieOuro,
		FixtureID: fx.ID,
	})
	if err != nil {
		t.Fatalf("available slots failed: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots, got %v", slots)
	}

	stored, _, _ := h.fixtureRepo.GetByID(t.Context(), fx.ID)
	if !stored.NoSlot {
		t.Fatalf("fixture not flagged as slotless")
	}
}

func TestSchedulerService_ScheduleValidations(t *testing.T) {
	h := newFixtureHarness()
	h.narrowCalendar(t)
	loc := saoPaulo(t)

	h.setOwnerWindows(t, "user-rafa", availability.Window{
		Weekday:     time.Tuesday,
		StartMinute: 19 * 60,
		EndMinute:   22 * 60,
	})

	fx, err := h.scheduler.CreateFixture(t.Context(), CreateFixtureInput{
		LeagueID:   memory.LeagueIDSerieOuro,
		HomeClubID: "ouro-furia",
		AwayClubID: "ouro-tempestade",
	})
	if err != nil {
		t.Fatalf("create fixture failed: %v", err)
	}

	// Late kickoff runs past the league daily range.
	_, err = h.scheduler.Schedule(t.Context(), ScheduleFixtureInput{
		LeagueID:  memory.LeagueIDSerieOuro,
		FixtureID: fx.ID,
		KickoffAt: time.Date(2026, time.June, 16, 22, 30, 0, 0, loc),
	})
	if !errors.Is(err, schedule.ErrOutsideLeagueHours) {
		t.Fatalf("expected ErrOutsideLeagueHours, got %v", err)
	}

	// Wednesday is league-legal but outside the owner's windows.
	wednesday := time.Date(2026, time.June, 17, 19, 0, 0, 0, loc)
	_, err = h.scheduler.Schedule(t.Context(), ScheduleFixtureInput{
		LeagueID:  memory.LeagueIDSerieOuro,
		FixtureID: fx.ID,
		KickoffAt: wednesday,
	})
	if !errors.Is(err, schedule.ErrOwnerUnavailable) {
		t.Fatalf("expected ErrOwnerUnavailable, got %v", err)
	}

	// Force bypasses only the owner check.
	forced, err := h.scheduler.Schedule(t.Context(), ScheduleFixtureInput{
		ActorUserID: "admin-1",
		LeagueID:    memory.LeagueIDSerieOuro,
		FixtureID:   fx.ID,
		KickoffAt:   wednesday,
		Force:       true,
	})
	if err != nil {
		t.Fatalf("forced schedule failed: %v", err)
	}
	if forced.State != fixture.StateScheduled || !forced.Forced {
		t.Fatalf("unexpected forced fixture: %+v", forced)
	}
}

func TestSchedulerService_ConflictsWithBookedFixture(t *testing.T) {
	h := newFixtureHarness()
	h.narrowCalendar(t)
	loc := saoPaulo(t)

	for _, owner := range []string{"user-rafa", "user-dudu", "user-carlao"} {
		h.setOwnerWindows(t, owner, availability.Window{
			Weekday:     time.Tuesday,
			StartMinute: 19 * 60,
			EndMinute:   22 * 60,
		})
	}

	kickoff := time.Date(2026, time.June, 16, 19, 0, 0, 0, loc)

	first, err := h.scheduler.CreateFixture(t.Context(), CreateFixtureInput{
		LeagueID:   memory.LeagueIDSerieOuro,
		HomeClubID: "ouro-furia",
		AwayClubID: "ouro-tempestade",
	})
	if err != nil {
		t.Fatalf("create first fixture failed: %v", err)
	}
	if _, err := h.scheduler.Schedule(t.Context(), ScheduleFixtureInput{
		LeagueID:  memory.LeagueIDSerieOuro,
		FixtureID: first.ID,
		KickoffAt: kickoff,
	}); err != nil {
		t.Fatalf("schedule first failed: %v", err)
	}

	// Tempestade is already booked at that instant.
	second, err := h.scheduler.CreateFixture(t.Context(), CreateFixtureInput{
		LeagueID:   memory.LeagueIDSerieOuro,
		HomeClubID: "ouro-leoes",
		AwayClubID: "ouro-tempestade",
	})
	if err != nil {
		t.Fatalf("create second fixture failed: %v", err)
	}
	_, err = h.scheduler.Schedule(t.Context(), ScheduleFixtureInput{
		LeagueID:  memory.LeagueIDSerieOuro,
		FixtureID: second.ID,
		KickoffAt: kickoff.Add(time.Hour), // overlaps the 90 minute match
	})
	if !errors.Is(err, schedule.ErrSlotConflict) {
		t.Fatalf("expected ErrSlotConflict, got %v", err)
	}
}

func TestSchedulerService_RescheduleBudgetAndNotice(t *testing.T) {
	h := newFixtureHarness()
	l := h.narrowCalendar(t)
	loc := saoPaulo(t)

	for _, owner := range []string{"user-rafa", "user-dudu"} {
		h.setOwnerWindows(t, owner, availability.Window{
			Weekday:     time.Tuesday,
			StartMinute: 19 * 60,
			EndMinute:   22 * 60,
		})
	}

	fx, err := h.scheduler.CreateFixture(t.Context(), CreateFixtureInput{
		LeagueID:   memory.LeagueIDSerieOuro,
		HomeClubID: "ouro-furia",
		AwayClubID: "ouro-tempestade",
	})
	if err != nil {
		t.Fatalf("create fixture failed: %v", err)
	}
	kickoff := time.Date(2026, time.June, 16, 19, 0, 0, 0, loc)
	if _, err := h.scheduler.Schedule(t.Context(), ScheduleFixtureInput{
		LeagueID:  memory.LeagueIDSerieOuro,
		FixtureID: fx.ID,
		KickoffAt: kickoff,
	}); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	// Two reschedules fit the Série Ouro budget.
	next := kickoff.Add(30 * time.Minute)
	for i := 0; i < l.MaxReschedules; i++ {
		if _, err := h.scheduler.Reschedule(t.Context(), ScheduleFixtureInput{
			LeagueID:  memory.LeagueIDSerieOuro,
			FixtureID: fx.ID,
			KickoffAt: next,
		}); err != nil {
			t.Fatalf("reschedule %d failed: %v", i+1, err)
		}
		next = next.Add(-30 * time.Minute)
	}

	_, err = h.scheduler.Reschedule(t.Context(), ScheduleFixtureInput{
		LeagueID:  memory.LeagueIDSerieOuro,
		FixtureID: fx.ID,
		KickoffAt: kickoff,
	})
	if !errors.Is(err, schedule.ErrRescheduleBudget) {
		t.Fatalf("expected ErrRescheduleBudget, got %v", err)
	}
}

func TestSchedulerService_RescheduleNoticeTooShort(t *testing.T) {
	h := newFixtureHarness()
	h.narrowCalendar(t)
	loc := saoPaulo(t)

	for _, owner := range []string{"user-rafa", "user-dudu"} {
		h.setOwnerWindows(t, owner, availability.Window{
			Weekday:     time.Tuesday,
			StartMinute: 19 * 60,
			EndMinute:   22 * 60,
		})
	}

	fx, err := h.scheduler.CreateFixture(t.Context(), CreateFixtureInput{
		LeagueID:   memory.LeagueIDSerieOuro,
		HomeClubID: "ouro-furia",
		AwayClubID: "ouro-tempestade",
	})
	if err != nil {
		t.Fatalf("create fixture failed: %v", err)
	}
	kickoff := time.Date(2026, time.June, 16, 19, 0, 0, 0, loc)
	if _, err := h.scheduler.Schedule(t.Context(), ScheduleFixtureInput{
		LeagueID:  memory.LeagueIDSerieOuro,
		FixtureID: fx.ID,
		KickoffAt: kickoff,
	}); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	// Jump to two hours before kickoff, far inside the 24h notice floor.
	h.scheduler.now = func() time.Time { return kickoff.Add(-2 * time.Hour) }
	_, err = h.scheduler.Reschedule(t.Context(), ScheduleFixtureInput{
		LeagueID:  memory.LeagueIDSerieOuro,
		FixtureID: fx.ID,
		KickoffAt: kickoff.Add(30 * time.Minute),
	})
	if !errors.Is(err, schedule.ErrNoticeTooShort) {
		t.Fatalf("expected ErrNoticeTooShort, got %v", err)
	}
}

func TestSchedulerService_RescheduleChecksBothOwners(t *testing.T) {
	h := newFixtureHarness()
	h.narrowCalendar(t)
	loc := saoPaulo(t)

	for _, owner := range []string{"user-rafa", "user-dudu"} {
		h.setOwnerWindows(t, owner, availability.Window{
			Weekday:     time.Tuesday,
			StartMinute: 19 * 60,
			EndMinute:   22 * 60,
		})
	}

	fx, err := h.scheduler.CreateFixture(t.Context(), CreateFixtureInput{
		LeagueID:   memory.LeagueIDSerieOuro,
		HomeClubID: "ouro-furia",
		AwayClubID: "ouro-tempestade",
	})
	if err != nil {
		t.Fatalf("create fixture failed: %v", err)
	}
	kickoff := time.Date(2026, time.June, 16, 19, 0, 0, 0, loc)
	if _, err := h.scheduler.Schedule(t.Context(), ScheduleFixtureInput{
		LeagueID:  memory.LeagueIDSerieOuro,
		FixtureID: fx.ID,
		KickoffAt: kickoff,
	}); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	// The away owner clears their calendar. The new slot still fits the home
	// owner's windows, so only the away check can reject it.
	h.setOwnerWindows(t, "user-dudu")
	_, err = h.scheduler.Reschedule(t.Context(), ScheduleFixtureInput{
		LeagueID:  memory.LeagueIDSerieOuro,
		FixtureID: fx.ID,
		KickoffAt: kickoff.Add(30 * time.Minute),
	})
	if !errors.Is(err, schedule.ErrOwnerUnavailable) {
		t.Fatalf("expected ErrOwnerUnavailable, got %v", err)
	}
}
