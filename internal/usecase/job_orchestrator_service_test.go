package usecase

import (
	"strings"
	"testing"
	"time"
)

func TestDedupKey_UsesQStashSafeFormat(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, time.October, 18, 17, 3, 42, 0, time.UTC)
	got := dedupKey("sync scoreboard/live", 2026, 7, at, 5*time.Minute)

	if strings.Contains(got, ":") {
		t.Fatalf("dedup key must not contain colon, got=%q", got)
	}

	want := "sync-scoreboard-live-2026-w7-20261018T170000Z"
	if got != want {
		t.Fatalf("unexpected dedup key: got=%q want=%q", got, want)
	}
}

func TestDedupKey_DefaultsBucket(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, time.October, 18, 17, 3, 42, 0, time.UTC)
	got := dedupKey("sync-scoreboard", 2026, 7, at, 0)

	want := "sync-scoreboard-2026-w7-20261018T170300Z"
	if got != want {
		t.Fatalf("unexpected dedup key: got=%q want=%q", got, want)
	}
}

func TestSanitizeDedupSegment_EmptyFallback(t *testing.T) {
	t.Parallel()

	if got := sanitizeDedupSegment(" \t "); got != "unknown" {
		t.Fatalf("unexpected sanitize fallback: got=%q want=%q", got, "unknown")
	}
}
