package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
)

func TestIsLockConflict(t *testing.T) {
	t.Run("matches serialization failure", func(t *testing.T) {
		if !isLockConflict(&pq.Error{Code: "40001"}) {
			t.Fatalf("expected true for serialization failure")
		}
	})

	t.Run("matches deadlock", func(t *testing.T) {
		if !isLockConflict(&pq.Error{Code: "40P01"}) {
			t.Fatalf("expected true for deadlock")
		}
	})

	t.Run("matches lock not available", func(t *testing.T) {
		if !isLockConflict(&pq.Error{Code: "55P03"}) {
			t.Fatalf("expected true for lock not available")
		}
	})

	t.Run("matches wrapped error", func(t *testing.T) {
		err := fmt.Errorf("update wallet: %w", &pq.Error{Code: "40001"})
		if !isLockConflict(err) {
			t.Fatalf("expected true for wrapped conflict")
		}
	})

	t.Run("ignores other codes", func(t *testing.T) {
		if isLockConflict(&pq.Error{Code: "23505"}) {
			t.Fatalf("expected false for unique violation")
		}
	})

	t.Run("ignores plain errors", func(t *testing.T) {
		if isLockConflict(errors.New("connection refused")) {
			t.Fatalf("expected false for plain error")
		}
	})
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(&pq.Error{Code: "23505"}) {
		t.Fatalf("expected true for unique violation")
	}
	if isUniqueViolation(&pq.Error{Code: "40001"}) {
		t.Fatalf("expected false for serialization failure")
	}
	if isUniqueViolation(errors.New("boom")) {
		t.Fatalf("expected false for plain error")
	}
}

func TestNullTimeRoundTrip(t *testing.T) {
	now := time.Date(2026, time.June, 10, 15, 0, 0, 0, time.UTC)

	if got := nullTimeToPtr(sql.NullTime{}); got != nil {
		t.Fatalf("expected nil for null time")
	}
	got := nullTimeToPtr(sql.NullTime{Time: now, Valid: true})
	if got == nil || !got.Equal(now) {
		t.Fatalf("unexpected time pointer: %v", got)
	}

	if back := ptrToNullTime(nil); back.Valid {
		t.Fatalf("expected invalid null time for nil pointer")
	}
	back := ptrToNullTime(&now)
	if !back.Valid || !back.Time.Equal(now) {
		t.Fatalf("unexpected null time: %v", back)
	}
}

func TestNullInt64RoundTrip(t *testing.T) {
	if got := nullInt64ToPtr(sql.NullInt64{}); got != nil {
		t.Fatalf("expected nil for null int")
	}
	got := nullInt64ToPtr(sql.NullInt64{Int64: 3, Valid: true})
	if got == nil || *got != 3 {
		t.Fatalf("unexpected int pointer: %v", got)
	}

	if back := ptrToNullInt64(nil); back.Valid {
		t.Fatalf("expected invalid null int for nil pointer")
	}
	three := 3
	back := ptrToNullInt64(&three)
	if !back.Valid || back.Int64 != 3 {
		t.Fatalf("unexpected null int: %v", back)
	}
}
