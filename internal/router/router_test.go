package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/dsatrack/internal/screen"
)

// stubScreen is a minimal screen for testing.
type stubScreen struct {
	title     string
	initRan   bool
	refreshed int
	updates   int
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { s.updates++; return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }
func (s *stubScreen) Refresh()                                { s.refreshed++ }

func TestPush(t *testing.T) {
	r := New(&stubScreen{title: "entries"})

	s2 := &stubScreen{title: "sections"}
	r.Push(s2)

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "sections" {
		t.Errorf("expected active 'sections', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run on pushed screen")
	}
}

func TestPopRefreshesRevealedScreen(t *testing.T) {
	root := &stubScreen{title: "entries"}
	r := New(root)
	r.Push(&stubScreen{title: "sections"})

	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", r.Depth())
	}
	if r.Active().Title() != "entries" {
		t.Errorf("expected active 'entries', got %q", r.Active().Title())
	}
	if root.refreshed != 1 {
		t.Errorf("expected root refreshed once, got %d", root.refreshed)
	}
}

func TestPopNoopAtRoot(t *testing.T) {
	root := &stubScreen{title: "entries"}
	r := New(root)

	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after pop at root, got %d", r.Depth())
	}
	if root.refreshed != 0 {
		t.Error("root should not refresh when nothing was popped")
	}
}

func TestUpdateRoutesMessages(t *testing.T) {
	root := &stubScreen{title: "entries"}
	r := New(root)

	top := &stubScreen{title: "sections"}
	r.Update(PushScreenMsg{Screen: top})
	if r.Active() != top || !top.initRan {
		t.Fatal("PushScreenMsg should push and init")
	}

	r.Update(tea.KeyPressMsg{Code: 'j'})
	if top.updates != 1 || root.updates != 0 {
		t.Errorf("updates: top=%d root=%d, want 1 and 0", top.updates, root.updates)
	}

	r.Update(PopScreenMsg{})
	if r.Active() != root {
		t.Error("PopScreenMsg should pop")
	}
}

func TestView(t *testing.T) {
	r := New(&stubScreen{title: "entries"})
	if got := r.View(80, 24); got != "entries" {
		t.Errorf("View = %q", got)
	}
}
