package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/dsatrack/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Refresher is implemented by screens that derive their rows from tracker
// state. The router calls Refresh when the screen becomes active again, so
// changes made on a screen above it show up.
type Refresher interface {
	Refresh()
}

// InputCapturer is implemented by screens that are editing text. While
// CapturingInput reports true the app passes every key, including esc and q,
// to the screen.
type InputCapturer interface {
	CapturingInput() bool
}
