package schedule

import (
	"sort"
	"time"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/availability"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/league"
)

// Granularity is the fixed kickoff grid: candidates always fall on 30-minute
// boundaries, window edges are rounded inward onto the grid.
const Granularity = 30 * time.Minute

// Booking is an occupied slot of a club, half-open [Start, Start+Duration).
type Booking struct {
	Start    time.Time
	Duration time.Duration
}

// Overlaps is the half-open interval test used for every conflict check.
func Overlaps(aStart time.Time, aDur time.Duration, bStart time.Time, bDur time.Duration) bool {
	return aStart.Before(bStart.Add(bDur)) && bStart.Before(aStart.Add(aDur))
}

// HasConflict reports whether the candidate kickoff collides with any booking.
func HasConflict(bookings []Booking, start time.Time, duration time.Duration) bool {
	for _, b := range bookings {
		if Overlaps(start, duration, b.Start, b.Duration) {
			return true
		}
	}
	return false
}

// SlotInput gathers everything AvailableSlots intersects: the league calendar
// and daily windows, the home owner's weekly availability, and the existing
// bookings of both clubs.
type SlotInput struct {
	Now             time.Time
	Location        *time.Location
	Duration        time.Duration
	CalendarPeriods []league.Period
	AllowedWeekdays []time.Weekday
	DailyRanges     []league.ClockRange
	OwnerWindows    []availability.Window
	Bookings        []Booking
}

// AvailableSlots enumerates every legal kickoff instant: inside a calendar
// period, on an allowed weekday, inside a league daily range intersected with
// the owner's availability window, on the granularity grid, in the future,
// and free of booking conflicts for both clubs. The result is deduplicated
// and time-ordered.
func AvailableSlots(in SlotInput) []time.Time {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	if in.Duration <= 0 {
		return nil
	}

	weekdayAllowed := make(map[time.Weekday]bool, len(in.AllowedWeekdays))
	for _, d := range in.AllowedWeekdays {
		weekdayAllowed[d] = true
	}
	windowsByDay := make(map[time.Weekday][]availability.Window)
	for _, w := range in.OwnerWindows {
		windowsByDay[w.Weekday] = append(windowsByDay[w.Weekday], w)
	}

	ranges := make([][2]int, 0, len(in.DailyRanges))
	for _, r := range in.DailyRanges {
		start, err := availability.ParseClock(r.Start)
		if err != nil {
			continue
		}
		end, err := availability.ParseClock(r.End)
		if err != nil || end <= start {
			continue
		}
		ranges = append(ranges, [2]int{start, end})
	}

	seen := make(map[int64]struct{})
	var slots []time.Time

	for _, period := range in.CalendarPeriods {
		day := startOfDay(period.From.In(loc))
		for !day.After(period.To) {
			if weekdayAllowed[day.Weekday()] {
				for _, r := range ranges {
					for _, w := range windowsByDay[day.Weekday()] {
						startMin := r[0]
						if w.StartMinute > startMin {
							startMin = w.StartMinute
						}
						endMin := r[1]
						if w.EndMinute < endMin {
							endMin = w.EndMinute
						}
						startMin = roundUp(startMin, int(Granularity/time.Minute))
						durMin := int(in.Duration / time.Minute)
						step := int(Granularity / time.Minute)

						for m := startMin; m+durMin <= endMin; m += step {
							candidate := day.Add(time.Duration(m) * time.Minute)
							if !period.Contains(candidate) {
								continue
							}
							if !candidate.After(in.Now) {
								continue
							}
							if HasConflict(in.Bookings, candidate, in.Duration) {
								continue
							}
							key := candidate.Unix()
							if _, dup := seen[key]; dup {
								continue
							}
							seen[key] = struct{}{}
							slots = append(slots, candidate)
						}
					}
				}
			}
			day = day.AddDate(0, 0, 1)
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })
	return slots
}

// InsideLeagueHours reports whether [start, start+duration) fits one allowed
// weekday daily range of the league, evaluated in the league timezone.
func InsideLeagueHours(l league.League, start time.Time, duration time.Duration) bool {
	loc, err := l.Location()
	if err != nil {
		return false
	}
	local := start.In(loc)
	if !l.WeekdayAllowed(local.Weekday()) {
		return false
	}
	startMin := local.Hour()*60 + local.Minute()
	endMin := startMin + int(duration/time.Minute)
	for _, r := range l.DailyRanges {
		rs, err := availability.ParseClock(r.Start)
		if err != nil {
			continue
		}
		re, err := availability.ParseClock(r.End)
		if err != nil {
			continue
		}
		if startMin >= rs && endMin <= re {
			return true
		}
	}
	return false
}

// InsideWindows reports whether [start, start+duration) fits one of the
// user's availability windows, evaluated in the given location.
func InsideWindows(windows []availability.Window, start time.Time, duration time.Duration, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	local := start.In(loc)
	startMin := local.Hour()*60 + local.Minute()
	endMin := startMin + int(duration/time.Minute)
	for _, w := range windows {
		if w.Weekday != local.Weekday() {
			continue
		}
		if startMin >= w.StartMinute && endMin <= w.EndMinute {
			return true
		}
	}
	return false
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func roundUp(minute, step int) int {
	if step <= 0 {
		return minute
	}
	rem := minute % step
	if rem == 0 {
		return minute
	}
	return minute + step - rem
}
