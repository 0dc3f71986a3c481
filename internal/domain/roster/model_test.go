package roster

import "testing"

func TestMinimumResalePrice(t *testing.T) {
	cases := []struct {
		value   int64
		percent int
		want    int64
	}{
		{10_000_000, 60, 6_000_000},
		{1, 60, 1},       // ceil(0.6)
		{333, 60, 200},   // ceil(199.8)
		{101, 50, 51},    // ceil(50.5)
		{0, 60, 0},
		{10_000_000, 0, 0},
	}
	for _, tc := range cases {
		if got := MinimumResalePrice(tc.value, tc.percent); got != tc.want {
			t.Fatalf("MinimumResalePrice(%d, %d) = %d, want %d", tc.value, tc.percent, got, tc.want)
		}
	}
}

func TestReleaseClausePrice(t *testing.T) {
	cases := []struct {
		value      int64
		multiplier float64
		want       int64
	}{
		{10_000_000, 1.5, 15_000_000},
		{3, 1.5, 5}, // round(4.5) away from zero
		{1, 1.2, 1}, // round(1.2)
		{0, 2.0, 0},
	}
	for _, tc := range cases {
		if got := ReleaseClausePrice(tc.value, tc.multiplier); got != tc.want {
			t.Fatalf("ReleaseClausePrice(%d, %v) = %d, want %d", tc.value, tc.multiplier, got, tc.want)
		}
	}
}

func TestEntryValidate(t *testing.T) {
	valid := Entry{
		ID:            "entry-1",
		ScopeID:       "league:l1",
		LeagueID:      "l1",
		ClubID:        "c1",
		PlayerID:      "p1",
		ValueSnapshot: 1_000_000,
		WageSnapshot:  10_000,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid entry rejected: %v", err)
	}

	broken := valid
	broken.ValueSnapshot = 0
	if err := broken.Validate(); err == nil {
		t.Fatalf("zero value snapshot accepted")
	}

	broken = valid
	broken.WageSnapshot = -1
	if err := broken.Validate(); err == nil {
		t.Fatalf("negative wage snapshot accepted")
	}

	broken = valid
	broken.PlayerID = ""
	if err := broken.Validate(); err == nil {
		t.Fatalf("missing player id accepted")
	}
}
