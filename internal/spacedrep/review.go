package spacedrep

import (
	"time"

	"github.com/abhisek/dsatrack/internal/progress"
)

// ReviewStatus describes an entry's review status for display.
type ReviewStatus string

const (
	ReviewNone      ReviewStatus = "none"      // not done, or done without a schedule
	ReviewScheduled ReviewStatus = "scheduled" // done, review in the future
	ReviewDue       ReviewStatus = "due"
)

// Status returns the review status of rec at now.
func Status(rec progress.Record, now time.Time) ReviewStatus {
	switch {
	case rec.IsDue(now.UnixMilli()):
		return ReviewDue
	case rec.Done && rec.NextReview != nil:
		return ReviewScheduled
	default:
		return ReviewNone
	}
}

// OverdueDays returns how many days past its review rec is. Returns 0 if
// not due.
func OverdueDays(rec progress.Record, now time.Time) float64 {
	if !rec.IsDue(now.UnixMilli()) {
		return 0
	}
	return float64(now.UnixMilli()-*rec.NextReview) / float64(DayMillis)
}

// DaysUntilReview returns the number of days until the next review, rounded
// up. Returns 0 if already due or nothing is scheduled.
func DaysUntilReview(rec progress.Record, now time.Time) int {
	if !rec.Done || rec.NextReview == nil {
		return 0
	}
	remaining := *rec.NextReview - now.UnixMilli()
	if remaining <= 0 {
		return 0
	}
	return int((remaining + DayMillis - 1) / DayMillis)
}
