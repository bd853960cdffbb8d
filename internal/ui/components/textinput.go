package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/dsatrack/internal/ui/theme"
)

// NotesInput wraps bubbles/textinput for editing an entry's notes.
type NotesInput struct {
	Model textinput.Model
}

// NewNotesInput creates a focused input pre-filled with the current notes.
func NewNotesInput(current string) NotesInput {
	ti := textinput.New()
	ti.Placeholder = "approach, pitfalls, complexity..."
	ti.CharLimit = 500
	ti.SetValue(current)
	ti.Focus()
	return NotesInput{Model: ti}
}

// Init returns the initial command.
func (n NotesInput) Init() tea.Cmd {
	return n.Model.Focus()
}

// Update handles messages.
func (n NotesInput) Update(msg tea.Msg) (NotesInput, tea.Cmd) {
	var cmd tea.Cmd
	n.Model, cmd = n.Model.Update(msg)
	return n, cmd
}

// View renders the input with a label.
func (n NotesInput) View() string {
	label := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("Notes: ")
	return label + n.Model.View()
}

// Value returns the current input value.
func (n NotesInput) Value() string {
	return n.Model.Value()
}
