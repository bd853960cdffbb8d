// Package stats aggregates completion and review counts.
package stats

import (
	"time"

	"github.com/abhisek/dsatrack/internal/catalog"
	"github.com/abhisek/dsatrack/internal/progress"
)

// GlobalStats summarises the whole catalog.
type GlobalStats struct {
	Solved  int `json:"solved"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
	Due     int `json:"due"`
}

// SectionStats summarises one section.
type SectionStats struct {
	Checked int `json:"checked"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

// Complete reports whether every entry of a non-empty section is done.
func (s SectionStats) Complete() bool {
	return s.Total > 0 && s.Checked == s.Total
}

// SectionReport pairs a section with its stats.
type SectionReport struct {
	Section catalog.Section
	SectionStats
}

// Percent returns part/total as a whole percentage, rounding halves up.
// Returns 0 when total is 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (part*200 + total) / (total * 2)
}

// Global counts solved and due entries.
func Global(entries []catalog.Entry, m progress.Map, now time.Time) GlobalStats {
	nowMs := now.UnixMilli()
	var g GlobalStats
	g.Total = len(entries)
	for _, e := range entries {
		rec := m.Get(e.ID)
		if rec.Done {
			g.Solved++
		}
		if rec.IsDue(nowMs) {
			g.Due++
		}
	}
	g.Percent = Percent(g.Solved, g.Total)
	return g
}

// Section counts done entries among entries, which should all belong to one
// section.
func Section(entries []catalog.Entry, m progress.Map) SectionStats {
	s := SectionStats{Total: len(entries)}
	for _, e := range entries {
		if m.Get(e.ID).Done {
			s.Checked++
		}
	}
	s.Percent = Percent(s.Checked, s.Total)
	return s
}

// BySection reports every section of c in document order.
func BySection(c *catalog.Catalog, m progress.Map) []SectionReport {
	out := make([]SectionReport, 0, len(c.Sections))
	for _, sec := range c.Sections {
		out = append(out, SectionReport{
			Section:      sec,
			SectionStats: Section(c.InSection(sec.ID), m),
		})
	}
	return out
}
