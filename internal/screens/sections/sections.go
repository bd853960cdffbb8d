// Package sections shows completion per catalog section.
package sections

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/dsatrack/internal/screen"
	"github.com/abhisek/dsatrack/internal/stats"
	"github.com/abhisek/dsatrack/internal/tracker"
	"github.com/abhisek/dsatrack/internal/ui/components"
	"github.com/abhisek/dsatrack/internal/ui/layout"
	"github.com/abhisek/dsatrack/internal/ui/theme"
)

// SectionsScreen lists every section with a progress bar.
type SectionsScreen struct {
	tr       *tracker.Tracker
	reports  []stats.SectionReport
	selected int
	offset   int
}

var (
	_ screen.Screen          = (*SectionsScreen)(nil)
	_ screen.KeyHintProvider = (*SectionsScreen)(nil)
	_ screen.Refresher       = (*SectionsScreen)(nil)
)

// New creates the sections screen.
func New(tr *tracker.Tracker) *SectionsScreen {
	s := &SectionsScreen{tr: tr}
	s.Refresh()
	return s
}

func (s *SectionsScreen) Init() tea.Cmd {
	return nil
}

func (s *SectionsScreen) Title() string {
	return "Sections"
}

func (s *SectionsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

// Refresh recomputes the section stats.
func (s *SectionsScreen) Refresh() {
	s.reports = s.tr.Sections()
	if s.selected >= len(s.reports) {
		s.selected = max(len(s.reports)-1, 0)
	}
}

func (s *SectionsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.reports)-1 {
				s.selected++
			}
		}
	}
	return s, nil
}

func (s *SectionsScreen) View(width, height int) string {
	if len(s.reports) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  The catalog has no numbered sections.")
	}

	labelWidth := 0
	for _, r := range s.reports {
		labelWidth = max(labelWidth, lipgloss.Width(r.Section.Title))
	}
	labelWidth = min(labelWidth, width/2)

	start, end := layout.Window(len(s.reports), s.selected, s.offset, height)
	s.offset = start

	var b strings.Builder
	for i := start; i < end; i++ {
		r := s.reports[i]
		prefix := "  "
		if i == s.selected {
			prefix = "▸ "
		}
		label := lipgloss.NewStyle().Width(labelWidth).Render(clip(r.Section.Title, labelWidth))
		bar := components.NewProgressBar(label, r.Checked, r.Total, r.Percent, width-4)
		b.WriteString(prefix + bar.View())
		b.WriteString("\n")
	}
	return b.String()
}

// clip shortens s to at most n runes.
func clip(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
