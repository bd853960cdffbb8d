package spacedrep

import (
	"testing"
	"time"

	"github.com/abhisek/dsatrack/internal/progress"
)

func TestStatus(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	ms := now.UnixMilli()
	tests := []struct {
		name string
		rec  progress.Record
		want ReviewStatus
	}{
		{"untouched", progress.Record{}, ReviewNone},
		{"done no schedule", progress.Record{Done: true}, ReviewNone},
		{"scheduled", progress.Record{Done: true, Interval: 4, NextReview: progress.Millis(ms + 1)}, ReviewScheduled},
		{"due now", progress.Record{Done: true, Interval: 4, NextReview: progress.Millis(ms)}, ReviewDue},
		{"unchecked with stale schedule", progress.Record{Interval: 4, NextReview: progress.Millis(ms - 1)}, ReviewNone},
	}
	for _, tt := range tests {
		if got := Status(tt.rec, now); got != tt.want {
			t.Errorf("%s: Status() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestOverdueDays(t *testing.T) {
	now := time.Date(2025, 1, 4, 12, 0, 0, 0, time.UTC)
	rec := progress.Record{Done: true, Interval: 2, NextReview: progress.Millis(now.Add(-72 * time.Hour).UnixMilli())}
	got := OverdueDays(rec, now)
	if got < 2.99 || got > 3.01 {
		t.Errorf("OverdueDays() = %f, want ~3.0", got)
	}

	rec.NextReview = progress.Millis(now.Add(time.Hour).UnixMilli())
	if got := OverdueDays(rec, now); got != 0 {
		t.Errorf("OverdueDays() = %f, want 0", got)
	}
}

func TestDaysUntilReview(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	// 4.5 days in the future rounds up to 5.
	rec := progress.Record{Done: true, Interval: 7, NextReview: progress.Millis(now.Add(108 * time.Hour).UnixMilli())}
	if got := DaysUntilReview(rec, now); got != 5 {
		t.Errorf("DaysUntilReview() = %d, want 5", got)
	}

	rec.NextReview = progress.Millis(now.Add(-time.Hour).UnixMilli())
	if got := DaysUntilReview(rec, now); got != 0 {
		t.Errorf("DaysUntilReview() = %d, want 0 when due", got)
	}

	if got := DaysUntilReview(progress.Record{Done: true}, now); got != 0 {
		t.Errorf("DaysUntilReview() = %d, want 0 when unscheduled", got)
	}
}
