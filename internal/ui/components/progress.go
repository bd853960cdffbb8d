package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/dsatrack/internal/ui/theme"
)

// ProgressBar displays a horizontal completion bar with a count.
type ProgressBar struct {
	Label   string
	Checked int
	Total   int
	Percent int // whole percent, as reported by the stats package
	Width   int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, checked, total, percent, width int) ProgressBar {
	return ProgressBar{
		Label:   label,
		Checked: checked,
		Total:   total,
		Percent: percent,
		Width:   width,
	}
}

// Complete reports whether the bar is full and non-empty.
func (p ProgressBar) Complete() bool {
	return p.Total > 0 && p.Checked == p.Total
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	count := fmt.Sprintf("  %d/%d %3d%%", p.Checked, p.Total, p.Percent)
	if p.Complete() {
		count += " ✓"
	}

	barWidth := p.Width - lipgloss.Width(result) - lipgloss.Width(count)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := barWidth * p.Percent / 100
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	empty := barWidth - filled

	fill := theme.Secondary
	if p.Complete() {
		fill = theme.Success
	}
	filledStr := lipgloss.NewStyle().
		Background(fill).
		Render(strings.Repeat(" ", filled))

	emptyStr := lipgloss.NewStyle().
		Background(theme.Border).
		Render(strings.Repeat(" ", empty))

	countStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	if p.Complete() {
		countStyle = theme.Checked
	}

	return result + filledStr + emptyStr + countStyle.Render(count)
}
