package tracker

import (
	"context"
	"errors"

	"github.com/abhisek/dsatrack/internal/progress"
	"github.com/abhisek/dsatrack/internal/spacedrep"
)

// ErrPromptClosed is returned when a prompt is committed after it was
// already committed or cancelled.
var ErrPromptClosed = errors.New("tracker: review prompt already closed")

// ReviewPrompt is a pending rating for one entry. Nothing is written until
// Commit; Cancel leaves the entry's record exactly as it was.
type ReviewPrompt struct {
	t      *Tracker
	id     string
	closed bool
}

// BeginReview opens a rating prompt for id.
func (t *Tracker) BeginReview(id string) *ReviewPrompt {
	return &ReviewPrompt{t: t, id: id}
}

// ID returns the entry under review.
func (p *ReviewPrompt) ID() string { return p.id }

// Open reports whether the prompt can still be committed.
func (p *ReviewPrompt) Open() bool { return !p.closed }

// Commit applies the review. A prompt commits at most once. An invalid
// rating leaves the prompt open.
func (p *ReviewPrompt) Commit(ctx context.Context, r spacedrep.Rating) (progress.Record, error) {
	if p.closed {
		return progress.Record{}, ErrPromptClosed
	}
	if !r.IsValid() {
		return progress.Record{}, spacedrep.ErrInvalidRating
	}
	rec, err := p.t.ApplyReview(ctx, p.id, r)
	if err != nil {
		return progress.Record{}, err
	}
	p.closed = true
	return rec, nil
}

// Cancel closes the prompt without writing.
func (p *ReviewPrompt) Cancel() {
	p.closed = true
}
