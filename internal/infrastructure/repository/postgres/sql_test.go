package postgres

import (
	"database/sql"
	"testing"
	"time"
)

func TestIsBindParameterMismatch(t *testing.T) {
	t.Run("matches bind mismatch error", func(t *testing.T) {
		err := fakeErr("pq: bind message supplies 2 parameters, but prepared statement \"\" requires 1 (08P01)")
		if !isBindParameterMismatch(err) {
			t.Fatalf("expected true for bind mismatch error")
		}
	})

	t.Run("ignores unrelated error", func(t *testing.T) {
		err := fakeErr("pq: relation picks does not exist")
		if isBindParameterMismatch(err) {
			t.Fatalf("expected false for unrelated error")
		}
	})
}

func TestIsUnnamedPreparedStatementMissing(t *testing.T) {
	t.Run("matches statement missing message", func(t *testing.T) {
		err := fakeErr("pq: unnamed prepared statement does not exist (26000)")
		if !isUnnamedPreparedStatementMissing(err) {
			t.Fatalf("expected true for statement missing error")
		}
	})

	t.Run("matches by 26000 code", func(t *testing.T) {
		err := fakeErr("pq: prepared statement missing (26000)")
		if !isUnnamedPreparedStatementMissing(err) {
			t.Fatalf("expected true for 26000 prepared statement error")
		}
	})

	t.Run("ignores unrelated error", func(t *testing.T) {
		err := fakeErr("pq: relation picks does not exist")
		if isUnnamedPreparedStatementMissing(err) {
			t.Fatalf("expected false for unrelated error")
		}
	})
}

func TestNullHelpers(t *testing.T) {
	t.Run("null time", func(t *testing.T) {
		if nullTimeToTimePtr(sql.NullTime{}) != nil {
			t.Fatalf("expected nil for null time")
		}
		ts := time.Date(2025, 9, 7, 17, 0, 0, 0, time.UTC)
		got := nullTimeToTimePtr(sql.NullTime{Time: ts, Valid: true})
		if got == nil || !got.Equal(ts) {
			t.Fatalf("unexpected time pointer: %v", got)
		}
	})

	t.Run("null float", func(t *testing.T) {
		if nullFloatToPtr(sql.NullFloat64{}) != nil {
			t.Fatalf("expected nil for null float")
		}
		got := nullFloatToPtr(sql.NullFloat64{Float64: 45.5, Valid: true})
		if got == nil || *got != 45.5 {
			t.Fatalf("unexpected float pointer: %v", got)
		}
	})

	t.Run("null string", func(t *testing.T) {
		if nullStringToPtr(sql.NullString{}) != nil {
			t.Fatalf("expected nil for null string")
		}
		got := nullStringToPtr(sql.NullString{String: "KC", Valid: true})
		if got == nil || *got != "KC" {
			t.Fatalf("unexpected string pointer: %v", got)
		}
	})

	t.Run("null int", func(t *testing.T) {
		if nullIntToPtr(sql.NullInt64{}) != nil {
			t.Fatalf("expected nil for null int")
		}
		got := nullIntToPtr(sql.NullInt64{Int64: 4, Valid: true})
		if got == nil || *got != 4 {
			t.Fatalf("unexpected int pointer: %v", got)
		}
	})
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }
