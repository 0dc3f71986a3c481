package availability

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// Window is one recurring weekly availability slot for a user, expressed in
// minutes from midnight in the league timezone.
type Window struct {
	ID          string
	UserID      string
	Weekday     time.Weekday
	StartMinute int
	EndMinute   int
}

func (w Window) Validate() error {
	if w.UserID == "" {
		return fmt.Errorf("availability user id is required")
	}
	if w.Weekday < time.Sunday || w.Weekday > time.Saturday {
		return fmt.Errorf("availability weekday %d is out of range", w.Weekday)
	}
	if w.StartMinute < 0 || w.StartMinute >= minutesPerDay {
		return fmt.Errorf("availability start minute %d is out of range", w.StartMinute)
	}
	if w.EndMinute <= w.StartMinute || w.EndMinute > minutesPerDay {
		return fmt.Errorf("availability end minute %d must be after start", w.EndMinute)
	}
	return nil
}

// ValidateSet checks a user's full weekly grid: no two windows on the same
// day may overlap or even touch.
func ValidateSet(windows []Window) error {
	byDay := make(map[time.Weekday][]Window)
	for _, w := range windows {
		if err := w.Validate(); err != nil {
			return err
		}
		byDay[w.Weekday] = append(byDay[w.Weekday], w)
	}
	for day, dayWindows := range byDay {
		sort.Slice(dayWindows, func(i, j int) bool {
			return dayWindows[i].StartMinute < dayWindows[j].StartMinute
		})
		for i := 1; i < len(dayWindows); i++ {
			if dayWindows[i].StartMinute <= dayWindows[i-1].EndMinute {
				return fmt.Errorf("availability windows on %s overlap or touch (%s and %s)",
					day,
					FormatClock(dayWindows[i-1].StartMinute)+"-"+FormatClock(dayWindows[i-1].EndMinute),
					FormatClock(dayWindows[i].StartMinute)+"-"+FormatClock(dayWindows[i].EndMinute),
				)
			}
		}
	}
	return nil
}

// ParseClock converts "18:30" to minutes from midnight.
func ParseClock(value string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("clock value %q must be HH:MM", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("clock value %q has invalid hour", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("clock value %q has invalid minute", value)
	}
	return hour*60 + minute, nil
}

func FormatClock(minuteOfDay int) string {
	return fmt.Sprintf("%02d:%02d", minuteOfDay/60, minuteOfDay%60)
}
