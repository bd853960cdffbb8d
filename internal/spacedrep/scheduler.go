package spacedrep

import (
	"sort"
	"time"

	"github.com/abhisek/dsatrack/internal/progress"
)

// Schedule is the outcome of rating a review.
type Schedule struct {
	Interval   int    // days; 0 means nothing is scheduled
	NextReview *int64 // epoch ms, nil when Interval is 0
}

// ComputeNext returns the schedule for a rating given at nowMs (epoch ms).
// Each rating is evaluated on its own; previous intervals are ignored.
func ComputeNext(r Rating, nowMs int64) (Schedule, error) {
	if !r.IsValid() {
		return Schedule{}, ErrInvalidRating
	}
	interval := IntervalFor(r)
	if interval <= 0 {
		return Schedule{}, nil
	}
	next := nowMs + int64(interval)*DayMillis
	return Schedule{Interval: interval, NextReview: &next}, nil
}

// Scheduler applies ratings to progress records.
type Scheduler struct{}

// NewScheduler creates a scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Apply returns rec updated for a review rated r at now: the entry becomes
// done, lastReview is now, and nextReview/interval come from ComputeNext.
// Notes are preserved. rec itself is not modified.
func (s *Scheduler) Apply(rec progress.Record, r Rating, now time.Time) (progress.Record, error) {
	nowMs := now.UnixMilli()
	sched, err := ComputeNext(r, nowMs)
	if err != nil {
		return rec, err
	}

	out := rec.Clone()
	out.Done = true
	out.LastReview = progress.Millis(nowMs)
	out.NextReview = sched.NextReview
	out.Interval = sched.Interval
	return out, nil
}

// DueIDs returns the IDs of due records, most overdue first. Ties are broken
// by ID for a deterministic order.
func (s *Scheduler) DueIDs(m progress.Map, now time.Time) []string {
	type dueEntry struct {
		id      string
		overdue float64
	}
	var due []dueEntry

	for id, rec := range m {
		if rec.IsDue(now.UnixMilli()) {
			due = append(due, dueEntry{id: id, overdue: OverdueDays(rec, now)})
		}
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].overdue != due[j].overdue {
			return due[i].overdue > due[j].overdue
		}
		return due[i].id < due[j].id
	})

	ids := make([]string, len(due))
	for i, d := range due {
		ids[i] = d.id
	}
	return ids
}
