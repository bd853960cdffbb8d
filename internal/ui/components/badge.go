package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/dsatrack/internal/catalog"
	"github.com/abhisek/dsatrack/internal/ui/theme"
)

// DifficultyBadge renders a coloured label for d, padded to a fixed width so
// list columns line up.
func DifficultyBadge(d catalog.Difficulty) string {
	label := string(d)
	if d == catalog.Unknown || d == "" {
		label = "?"
	}
	return theme.Badge.
		Background(theme.DifficultyColor(d)).
		Width(8).
		Align(lipgloss.Center).
		Render(label)
}

// Checkbox renders the done marker.
func Checkbox(done bool) string {
	if done {
		return theme.Checked.Render("[x]")
	}
	return lipgloss.NewStyle().Foreground(theme.TextDim).Render("[ ]")
}
