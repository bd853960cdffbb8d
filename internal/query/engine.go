// Package query filters and orders catalog entries for display.
package query

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/abhisek/dsatrack/internal/catalog"
	"github.com/abhisek/dsatrack/internal/progress"
)

// difficultyWeight orders entries for the difficulty sorts.
var difficultyWeight = map[catalog.Difficulty]int{
	catalog.Easy:    1,
	catalog.Medium:  2,
	catalog.Hard:    3,
	catalog.Unknown: 99,
}

func weight(d catalog.Difficulty) int {
	if w, ok := difficultyWeight[d]; ok {
		return w
	}
	return difficultyWeight[catalog.Unknown]
}

// Engine runs queries. The zero value is usable: it shuffles with the global
// random source and has no designated tag.
type Engine struct {
	// Rand drives the Random sort and PickUnsolved. Tests inject a seeded
	// source; nil uses the global source.
	Rand *rand.Rand

	// Tag is the designated tag matched by the Tagged filter.
	Tag string
}

// NewEngine returns an engine matching tag, seeded from the global source.
func NewEngine(tag string) *Engine {
	return &Engine{Tag: tag}
}

// Query returns the entries matching filter, in the order given by sort.
// The input slice is never modified. Apart from the Random sort, the result
// depends only on the arguments.
func (e *Engine) Query(entries []catalog.Entry, m progress.Map, filter Filter, sort Sort, now time.Time) []catalog.Entry {
	nowMs := now.UnixMilli()
	out := make([]catalog.Entry, 0, len(entries))
	for _, entry := range entries {
		if e.matches(entry, m.Get(entry.ID), filter, nowMs) {
			out = append(out, entry)
		}
	}

	switch sort {
	case EasyToHard:
		slices.SortStableFunc(out, func(a, b catalog.Entry) int {
			return weight(a.Difficulty) - weight(b.Difficulty)
		})
	case HardToEasy:
		slices.SortStableFunc(out, func(a, b catalog.Entry) int {
			return weight(b.Difficulty) - weight(a.Difficulty)
		})
	case Random:
		e.shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	return out
}

func (e *Engine) matches(entry catalog.Entry, rec progress.Record, filter Filter, nowMs int64) bool {
	switch filter {
	case Due:
		return rec.IsDue(nowMs)
	case Todo:
		return !rec.Done
	case Done:
		return rec.Done
	case HasNotes:
		return rec.HasNotes()
	case Tagged:
		return e.Tag != "" && entry.HasTag(e.Tag)
	default:
		return true
	}
}

// PickUnsolved returns a random entry that is not done. ok is false when
// every entry is solved or entries is empty.
func (e *Engine) PickUnsolved(entries []catalog.Entry, m progress.Map) (entry catalog.Entry, ok bool) {
	var unsolved []catalog.Entry
	for _, en := range entries {
		if !m.Get(en.ID).Done {
			unsolved = append(unsolved, en)
		}
	}
	if len(unsolved) == 0 {
		return catalog.Entry{}, false
	}
	return unsolved[e.intN(len(unsolved))], true
}

func (e *Engine) shuffle(n int, swap func(i, j int)) {
	if e.Rand != nil {
		e.Rand.Shuffle(n, swap)
		return
	}
	rand.Shuffle(n, swap)
}

func (e *Engine) intN(n int) int {
	if e.Rand != nil {
		return e.Rand.IntN(n)
	}
	return rand.IntN(n)
}
