package availability

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"18:30", 18*60 + 30, false},
		{"00:00", 0, false},
		{"23:59", 23*60 + 59, false},
		{" 09:05 ", 9*60 + 5, false},
		{"25:00", 0, true},
		{"12:60", 0, true},
		{"1830", 0, true},
		{"ab:cd", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseClock(%q) accepted", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(18*60 + 5); got != "18:05" {
		t.Fatalf("unexpected clock format: %s", got)
	}
	if got := FormatClock(0); got != "00:00" {
		t.Fatalf("unexpected clock format: %s", got)
	}
}

func TestWindowValidate(t *testing.T) {
	valid := Window{UserID: "user-1", Weekday: time.Tuesday, StartMinute: 18 * 60, EndMinute: 22 * 60}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid window rejected: %v", err)
	}

	broken := valid
	broken.EndMinute = broken.StartMinute
	if err := broken.Validate(); err == nil {
		t.Fatalf("empty window accepted")
	}

	broken = valid
	broken.StartMinute = -1
	if err := broken.Validate(); err == nil {
		t.Fatalf("negative start accepted")
	}

	broken = valid
	broken.UserID = ""
	if err := broken.Validate(); err == nil {
		t.Fatalf("missing user id accepted")
	}
}

func TestValidateSet(t *testing.T) {
	ok := []Window{
		{UserID: "u", Weekday: time.Tuesday, StartMinute: 18 * 60, EndMinute: 20 * 60},
		{UserID: "u", Weekday: time.Tuesday, StartMinute: 21 * 60, EndMinute: 22 * 60},
		{UserID: "u", Weekday: time.Saturday, StartMinute: 10 * 60, EndMinute: 12 * 60},
	}
	if err := ValidateSet(ok); err != nil {
		t.Fatalf("valid set rejected: %v", err)
	}

	touching := []Window{
		{UserID: "u", Weekday: time.Tuesday, StartMinute: 18 * 60, EndMinute: 20 * 60},
		{UserID: "u", Weekday: time.Tuesday, StartMinute: 20 * 60, EndMinute: 22 * 60},
	}
	if err := ValidateSet(touching); err == nil {
		t.Fatalf("touching windows accepted")
	}

	overlapping := []Window{
		{UserID: "u", Weekday: time.Tuesday, StartMinute: 18 * 60, EndMinute: 21 * 60},
		{UserID: "u", Weekday: time.Tuesday, StartMinute: 20 * 60, EndMinute: 22 * 60},
	}
	if err := ValidateSet(overlapping); err == nil {
		t.Fatalf("overlapping windows accepted")
	}
}
