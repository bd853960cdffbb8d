package tracker

import (
	"context"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/dsatrack/internal/catalog"
	"github.com/abhisek/dsatrack/internal/progress"
	"github.com/abhisek/dsatrack/internal/query"
	"github.com/abhisek/dsatrack/internal/spacedrep"
	"github.com/abhisek/dsatrack/internal/store"
)

var t0 = time.UnixMilli(1_700_000_000_000)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newTestTracker(t *testing.T) (*Tracker, *fakeClock) {
	t.Helper()
	b, err := store.OpenSQLite(filepath.Join(t.TempDir(), "progress.db"))
	require.NoError(t, err)
	st := store.New(b)
	t.Cleanup(func() { st.Close() })
	st.Load(context.Background())

	c := catalog.New(
		[]catalog.Section{{ID: "1-basics", Title: "Basics"}},
		[]catalog.Entry{
			{ID: "A", Title: "Alpha", Difficulty: catalog.Easy, SectionID: "1-basics"},
			{ID: "B", Title: "Beta", Difficulty: catalog.Hard, SectionID: "1-basics", Tags: []string{catalog.TagBlind75}},
			{ID: "C", Title: "Gamma", Difficulty: catalog.Medium, SectionID: "1-basics"},
		},
	)
	clock := &fakeClock{now: t0}
	tr := New(st, c,
		WithClock(clock.Now),
		WithEngine(&query.Engine{Rand: rand.New(rand.NewPCG(1, 1)), Tag: catalog.TagBlind75}),
	)
	return tr, clock
}

func TestTracker_Scenario(t *testing.T) {
	tr, clock := newTestTracker(t)
	ctx := context.Background()

	_, err := tr.ApplyReview(ctx, "A", spacedrep.Good)
	require.NoError(t, err)

	var got []string
	for _, e := range tr.Query(query.All, query.EasyToHard) {
		got = append(got, e.ID)
	}
	assert.Equal(t, []string{"A", "C", "B"}, got)

	g := tr.GlobalStats()
	assert.Equal(t, 1, g.Solved)
	assert.Equal(t, 3, g.Total)
	assert.Equal(t, 33, g.Percent)
	assert.Equal(t, 0, g.Due)

	clock.now = t0.Add(5 * 24 * time.Hour)
	assert.Equal(t, 1, tr.GlobalStats().Due)
	assert.Len(t, tr.Query(query.Due, query.Default), 1)
}

func TestTracker_TodoKeepsCatalogOrder(t *testing.T) {
	tr, _ := newTestTracker(t)
	require.NoError(t, tr.SetDone(context.Background(), "B", true))

	var got []string
	for _, e := range tr.Query(query.Todo, query.Default) {
		got = append(got, e.ID)
	}
	assert.Equal(t, []string{"A", "C"}, got)
}

func TestTracker_SectionStats(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()
	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, tr.SetDone(ctx, id, true))
	}
	s := tr.SectionStats("1-basics")
	assert.True(t, s.Complete())
	assert.Equal(t, 100, s.Percent)

	reports := tr.Sections()
	require.Len(t, reports, 1)
	assert.Equal(t, "Basics", reports[0].Section.Title)
}

func TestTracker_UnknownIDIsStored(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.SetNotes(ctx, "not-in-catalog", "old entry"))
	assert.Equal(t, "old entry", tr.Record("not-in-catalog").Notes)
	assert.Len(t, tr.Query(query.HasNotes, query.Default), 0)
	assert.Equal(t, 0, tr.GlobalStats().Solved)
}

func TestTracker_Resolve(t *testing.T) {
	tr, _ := newTestTracker(t)

	e, err := tr.Resolve("B")
	require.NoError(t, err)
	assert.Equal(t, "Beta", e.Title)

	e, err = tr.Resolve(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, "C", e.ID)

	for _, ref := range []string{"0", "4", "nope", ""} {
		_, err := tr.Resolve(ref)
		assert.ErrorIs(t, err, ErrUnknownEntry, ref)
	}
}

func TestTracker_RandomUnsolved(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()
	require.NoError(t, tr.SetDone(ctx, "A", true))
	require.NoError(t, tr.SetDone(ctx, "B", true))

	e, ok := tr.RandomUnsolved()
	require.True(t, ok)
	assert.Equal(t, "C", e.ID)

	require.NoError(t, tr.SetDone(ctx, "C", true))
	_, ok = tr.RandomUnsolved()
	assert.False(t, ok)
}

func TestTracker_ExportImportReset(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()
	require.NoError(t, tr.SetNotes(ctx, "A", "prefix sums"))
	_, err := tr.ApplyReview(ctx, "B", spacedrep.Easy)
	require.NoError(t, err)

	blob, err := tr.Export()
	require.NoError(t, err)
	before := tr.Store().Snapshot()

	require.NoError(t, tr.Reset(ctx))
	assert.Empty(t, tr.Store().Snapshot())

	require.NoError(t, tr.Import(ctx, blob))
	assert.Equal(t, before, tr.Store().Snapshot())

	err = tr.Import(ctx, []byte(`not json`))
	assert.ErrorIs(t, err, store.ErrInvalidFormat)
	assert.Equal(t, before, tr.Store().Snapshot())
}

func TestReviewPrompt_CancelWritesNothing(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()
	require.NoError(t, tr.SetNotes(ctx, "A", "keep"))
	before := tr.Record("A")

	p := tr.BeginReview("A")
	assert.True(t, p.Open())
	p.Cancel()
	assert.False(t, p.Open())

	assert.Equal(t, before, tr.Record("A"))
	_, err := p.Commit(ctx, spacedrep.Good)
	assert.ErrorIs(t, err, ErrPromptClosed)
	assert.Equal(t, before, tr.Record("A"))
}

func TestReviewPrompt_CommitOnce(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	p := tr.BeginReview("C")
	_, err := p.Commit(ctx, spacedrep.Rating(0))
	assert.ErrorIs(t, err, spacedrep.ErrInvalidRating)
	assert.True(t, p.Open(), "invalid rating keeps the prompt open")

	rec, err := p.Commit(ctx, spacedrep.Hard)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Interval)
	assert.Equal(t, progress.Millis(t0.UnixMilli()+2*spacedrep.DayMillis), rec.NextReview)

	_, err = p.Commit(ctx, spacedrep.Easy)
	assert.ErrorIs(t, err, ErrPromptClosed)
	assert.Equal(t, 2, tr.Record("C").Interval)
}
