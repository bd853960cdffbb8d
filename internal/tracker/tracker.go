// Package tracker ties the catalog, the progress store and the query and
// stats helpers together behind the operations the CLI, TUI and HTTP
// server call.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/dsatrack/internal/catalog"
	"github.com/abhisek/dsatrack/internal/progress"
	"github.com/abhisek/dsatrack/internal/query"
	"github.com/abhisek/dsatrack/internal/spacedrep"
	"github.com/abhisek/dsatrack/internal/stats"
	"github.com/abhisek/dsatrack/internal/store"
)

// ErrUnknownEntry is returned by Resolve when a reference matches nothing.
var ErrUnknownEntry = errors.New("tracker: unknown entry")

// Tracker is the engine facade. Callers mutate through it and then re-query
// to refresh what they display; it emits no events of its own.
type Tracker struct {
	store   *store.Store
	catalog *catalog.Catalog
	engine  *query.Engine
	log     *zap.Logger
	now     func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) { t.log = l }
}

// WithEngine replaces the query engine.
func WithEngine(e *query.Engine) Option {
	return func(t *Tracker) { t.engine = e }
}

// New creates a tracker. st should already be loaded.
func New(st *store.Store, c *catalog.Catalog, opts ...Option) *Tracker {
	t := &Tracker{
		store:   st,
		catalog: c,
		engine:  query.NewEngine(catalog.TagBlind75),
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Catalog returns the catalog.
func (t *Tracker) Catalog() *catalog.Catalog { return t.catalog }

// Store returns the underlying store.
func (t *Tracker) Store() *store.Store { return t.store }

// Engine returns the query engine.
func (t *Tracker) Engine() *query.Engine { return t.engine }

// Now returns the tracker's current time.
func (t *Tracker) Now() time.Time { return t.now() }

// Entry returns the catalog entry with id.
func (t *Tracker) Entry(id string) (catalog.Entry, bool) {
	return t.catalog.Lookup(id)
}

// Record returns the progress of id.
func (t *Tracker) Record(id string) progress.Record {
	return t.store.Get(id)
}

// Resolve finds an entry by ID or by its 1-based position in the catalog.
func (t *Tracker) Resolve(ref string) (catalog.Entry, error) {
	ref = strings.TrimSpace(ref)
	if e, ok := t.catalog.Lookup(ref); ok {
		return e, nil
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= t.catalog.Len() {
		return t.catalog.Entries[n-1], nil
	}
	return catalog.Entry{}, fmt.Errorf("%w: %q", ErrUnknownEntry, ref)
}

// SetDone marks id done or not done.
func (t *Tracker) SetDone(ctx context.Context, id string, done bool) error {
	t.noteUnknown(id, "set done")
	return t.store.SetDone(ctx, id, done)
}

// SetNotes replaces the notes of id.
func (t *Tracker) SetNotes(ctx context.Context, id, text string) error {
	t.noteUnknown(id, "set notes")
	return t.store.SetNotes(ctx, id, text)
}

// ApplyReview records a review of id rated r now.
func (t *Tracker) ApplyReview(ctx context.Context, id string, r spacedrep.Rating) (progress.Record, error) {
	t.noteUnknown(id, "apply review")
	return t.store.ApplyReview(ctx, id, r, t.now())
}

// Query returns the catalog entries matching filter, ordered by sort.
func (t *Tracker) Query(filter query.Filter, sort query.Sort) []catalog.Entry {
	return t.engine.Query(t.catalog.Entries, t.store.Snapshot(), filter, sort, t.now())
}

// GlobalStats summarises the whole catalog.
func (t *Tracker) GlobalStats() stats.GlobalStats {
	return stats.Global(t.catalog.Entries, t.store.Snapshot(), t.now())
}

// SectionStats summarises one section.
func (t *Tracker) SectionStats(sectionID string) stats.SectionStats {
	return stats.Section(t.catalog.InSection(sectionID), t.store.Snapshot())
}

// Sections reports every section in document order.
func (t *Tracker) Sections() []stats.SectionReport {
	return stats.BySection(t.catalog, t.store.Snapshot())
}

// RandomUnsolved picks a random entry that is not done. ok is false when
// everything is solved.
func (t *Tracker) RandomUnsolved() (catalog.Entry, bool) {
	return t.engine.PickUnsolved(t.catalog.Entries, t.store.Snapshot())
}

// Export returns the serialized store.
func (t *Tracker) Export() ([]byte, error) {
	return t.store.ExportAll()
}

// Import replaces the store with blob.
func (t *Tracker) Import(ctx context.Context, blob []byte) error {
	if err := t.store.ImportAll(ctx, blob); err != nil {
		return err
	}
	t.log.Info("imported progress", zap.Int("records", t.store.Len()))
	return nil
}

// Reset clears all progress.
func (t *Tracker) Reset(ctx context.Context) error {
	if err := t.store.ResetAll(ctx); err != nil {
		return err
	}
	t.log.Info("reset progress")
	return nil
}

// noteUnknown logs mutations on IDs outside the catalog. They are stored
// anyway since the catalog can change between sessions.
func (t *Tracker) noteUnknown(id, op string) {
	if _, ok := t.catalog.Lookup(id); !ok {
		t.log.Debug("mutation on unknown entry", zap.String("id", id), zap.String("op", op))
	}
}
