// Package entries implements the main problem list screen.
package entries

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/dsatrack/internal/catalog"
	"github.com/abhisek/dsatrack/internal/query"
	"github.com/abhisek/dsatrack/internal/router"
	"github.com/abhisek/dsatrack/internal/screen"
	"github.com/abhisek/dsatrack/internal/screens/sections"
	"github.com/abhisek/dsatrack/internal/spacedrep"
	"github.com/abhisek/dsatrack/internal/tracker"
	"github.com/abhisek/dsatrack/internal/ui/components"
	"github.com/abhisek/dsatrack/internal/ui/layout"
	"github.com/abhisek/dsatrack/internal/ui/theme"
)

type mode int

const (
	modeBrowse mode = iota
	modeRate        // rating prompt open
	modeNotes       // editing notes
)

// footerLines is the room kept under the list for status and prompts.
const footerLines = 3

// EntriesScreen lists catalog entries with their progress.
type EntriesScreen struct {
	tr     *tracker.Tracker
	filter query.Filter
	sort   query.Sort
	rows   []catalog.Entry
	cursor int
	offset int

	mode   mode
	prompt *tracker.ReviewPrompt
	notes  components.NotesInput

	status    string
	statusErr bool
}

var (
	_ screen.Screen          = (*EntriesScreen)(nil)
	_ screen.KeyHintProvider = (*EntriesScreen)(nil)
	_ screen.Refresher       = (*EntriesScreen)(nil)
	_ screen.InputCapturer   = (*EntriesScreen)(nil)
)

// New creates the entry list over tr.
func New(tr *tracker.Tracker) *EntriesScreen {
	s := &EntriesScreen{tr: tr}
	s.Refresh()
	return s
}

func (s *EntriesScreen) Init() tea.Cmd {
	return nil
}

func (s *EntriesScreen) Title() string {
	return fmt.Sprintf("Problems · %s · %s", s.filter, s.sort)
}

// CapturingInput reports whether a prompt or the notes editor is open.
func (s *EntriesScreen) CapturingInput() bool {
	return s.mode != modeBrowse
}

func (s *EntriesScreen) KeyHints() []layout.KeyHint {
	switch s.mode {
	case modeRate:
		return []layout.KeyHint{
			{Key: "1", Description: "Again"},
			{Key: "2", Description: "Hard"},
			{Key: "3", Description: "Good"},
			{Key: "4", Description: "Easy"},
			{Key: "Esc", Description: "Cancel"},
		}
	case modeNotes:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Save"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "Space", Description: "Done"},
		{Key: "v", Description: "Review"},
		{Key: "n", Description: "Notes"},
		{Key: "f", Description: "Filter"},
		{Key: "s", Description: "Sort"},
		{Key: "r", Description: "Random"},
		{Key: "Tab", Description: "Sections"},
		{Key: "q", Description: "Quit"},
	}
}

// Refresh re-runs the query, keeping the cursor on the same entry when it is
// still listed.
func (s *EntriesScreen) Refresh() {
	var currentID string
	if cur, ok := s.current(); ok {
		currentID = cur.ID
	}

	s.rows = s.tr.Query(s.filter, s.sort)
	s.cursor = s.indexOf(currentID, s.cursor)
}

func (s *EntriesScreen) find(id string) (int, bool) {
	for i, e := range s.rows {
		if e.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (s *EntriesScreen) indexOf(id string, fallback int) int {
	if i, ok := s.find(id); ok {
		return i
	}
	if fallback >= len(s.rows) {
		fallback = len(s.rows) - 1
	}
	if fallback < 0 {
		fallback = 0
	}
	return fallback
}

func (s *EntriesScreen) current() (catalog.Entry, bool) {
	if s.cursor < 0 || s.cursor >= len(s.rows) {
		return catalog.Entry{}, false
	}
	return s.rows[s.cursor], true
}

func (s *EntriesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if s.mode == modeNotes {
			var cmd tea.Cmd
			s.notes, cmd = s.notes.Update(msg)
			return s, cmd
		}
		return s, nil
	}

	switch s.mode {
	case modeRate:
		return s.handleRateKey(kmsg)
	case modeNotes:
		return s.handleNotesKey(kmsg)
	}
	return s.handleBrowseKey(kmsg)
}

func (s *EntriesScreen) handleBrowseKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.rows)-1 {
			s.cursor++
		}
	case "home", "g":
		s.cursor = 0
	case "end", "G":
		s.cursor = max(len(s.rows)-1, 0)

	case "space", " ":
		s.toggle()
	case "v":
		if cur, ok := s.current(); ok {
			s.openPrompt(cur)
		}
	case "n":
		if cur, ok := s.current(); ok {
			s.notes = components.NewNotesInput(s.tr.Record(cur.ID).Notes)
			s.mode = modeNotes
			return s, s.notes.Init()
		}

	case "f":
		s.filter = query.NextFilter(s.filter)
		s.setStatus("filter: "+s.filter.String(), false)
		s.Refresh()
	case "s":
		s.sort = query.NextSort(s.sort)
		s.setStatus("sort: "+s.sort.String(), false)
		s.Refresh()
	case "r":
		s.jumpToRandom()

	case "tab":
		return s, func() tea.Msg {
			return router.PushScreenMsg{Screen: sections.New(s.tr)}
		}
	}
	return s, nil
}

// toggle unchecks a done entry immediately; checking opens the rating prompt
// and writes nothing until a rating is chosen.
func (s *EntriesScreen) toggle() {
	cur, ok := s.current()
	if !ok {
		return
	}
	if s.tr.Record(cur.ID).Done {
		if err := s.tr.SetDone(context.Background(), cur.ID, false); err != nil {
			s.setStatus("could not save: "+err.Error(), true)
			return
		}
		s.setStatus("unchecked "+cur.Title, false)
		s.Refresh()
		return
	}
	s.openPrompt(cur)
}

func (s *EntriesScreen) openPrompt(e catalog.Entry) {
	s.prompt = s.tr.BeginReview(e.ID)
	s.mode = modeRate
	s.setStatus("", false)
}

func (s *EntriesScreen) handleRateKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	if key == "esc" {
		s.prompt.Cancel()
		s.prompt = nil
		s.mode = modeBrowse
		s.setStatus("review cancelled", false)
		return s, nil
	}

	r, err := spacedrep.ParseRating(key)
	if err != nil {
		return s, nil
	}
	rec, err := s.prompt.Commit(context.Background(), r)
	if err != nil {
		s.setStatus("could not save: "+err.Error(), true)
		return s, nil
	}
	s.prompt = nil
	s.mode = modeBrowse
	if rec.Interval > 0 {
		s.setStatus(fmt.Sprintf("rated %s · next review in %d days", r, rec.Interval), false)
	} else {
		s.setStatus(fmt.Sprintf("rated %s · no review scheduled", r), false)
	}
	s.Refresh()
	return s, nil
}

func (s *EntriesScreen) handleNotesKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.mode = modeBrowse
		s.setStatus("notes unchanged", false)
		return s, nil
	case "enter":
		s.mode = modeBrowse
		cur, ok := s.current()
		if !ok {
			return s, nil
		}
		if err := s.tr.SetNotes(context.Background(), cur.ID, strings.TrimSpace(s.notes.Value())); err != nil {
			s.setStatus("could not save: "+err.Error(), true)
			return s, nil
		}
		s.setStatus("notes saved", false)
		s.Refresh()
		return s, nil
	}

	var cmd tea.Cmd
	s.notes, cmd = s.notes.Update(msg)
	return s, cmd
}

// jumpToRandom moves the cursor to a random unsolved entry, widening the
// filter when the pick is hidden by it.
func (s *EntriesScreen) jumpToRandom() {
	e, ok := s.tr.RandomUnsolved()
	if !ok {
		s.setStatus("all problems solved!", false)
		return
	}
	idx, ok := s.find(e.ID)
	if !ok {
		s.filter = query.All
		s.rows = s.tr.Query(s.filter, s.sort)
		idx = s.indexOf(e.ID, 0)
	}
	s.cursor = idx
	s.setStatus("try: "+e.Title, false)
}

func (s *EntriesScreen) setStatus(msg string, isErr bool) {
	s.status = msg
	s.statusErr = isErr
}

func (s *EntriesScreen) View(width, height int) string {
	listHeight := height - footerLines
	if listHeight < 1 {
		listHeight = 1
	}

	var b strings.Builder
	if len(s.rows) == 0 {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n  Nothing matches this filter. Press f to change it."))
	} else {
		start, end := layout.Window(len(s.rows), s.cursor, s.offset, listHeight)
		s.offset = start
		for i := start; i < end; i++ {
			b.WriteString(s.renderRow(i, width))
			b.WriteString("\n")
		}
	}

	content := lipgloss.NewStyle().Height(listHeight).Render(b.String())
	return content + "\n" + s.renderFooter(width)
}

func (s *EntriesScreen) renderRow(i, width int) string {
	e := s.rows[i]
	rec := s.tr.Record(e.ID)
	now := s.tr.Now()

	prefix := "  "
	titleStyle := theme.Unselected
	if i == s.cursor {
		prefix = "▸ "
		titleStyle = theme.Selected
	}

	var marks []string
	switch spacedrep.Status(rec, now) {
	case spacedrep.ReviewDue:
		marks = append(marks, theme.Due.Render("⟳ due"))
	case spacedrep.ReviewScheduled:
		marks = append(marks, theme.Hint.Render(fmt.Sprintf("review in %dd", spacedrep.DaysUntilReview(rec, now))))
	}
	if rec.HasNotes() {
		marks = append(marks, lipgloss.NewStyle().Foreground(theme.Accent).Render("✎"))
	}
	if !layout.IsCompactWidth(width) && s.tr.Engine().Tag != "" && e.HasTag(s.tr.Engine().Tag) {
		marks = append(marks, lipgloss.NewStyle().Foreground(theme.Secondary).Render("★"))
	}

	line := prefix +
		components.Checkbox(rec.Done) + " " +
		components.DifficultyBadge(e.Difficulty) + " " +
		titleStyle.Render(e.Title)
	if len(marks) > 0 {
		line += "  " + strings.Join(marks, " ")
	}
	return line
}

func (s *EntriesScreen) renderFooter(width int) string {
	var lines []string

	switch s.mode {
	case modeRate:
		title := ""
		if cur, ok := s.current(); ok {
			title = cur.Title
		}
		lines = append(lines,
			theme.Title.Render("How did "+title+" go?"),
			renderRatingChoices(),
		)
	case modeNotes:
		lines = append(lines, s.notes.View())
	default:
		if cur, ok := s.current(); ok {
			detail := cur.ReferenceURL
			if notes := s.tr.Record(cur.ID).Notes; strings.TrimSpace(notes) != "" {
				detail = "✎ " + notes
			}
			lines = append(lines, theme.Hint.Render(truncate(detail, width-2)))
		}
	}

	if s.status != "" {
		style := lipgloss.NewStyle().Foreground(theme.Secondary)
		if s.statusErr {
			style = theme.Failure
		}
		lines = append(lines, style.Render(s.status))
	}
	return strings.Join(lines, "\n")
}

func renderRatingChoices() string {
	parts := make([]string, 0, 4)
	for _, r := range spacedrep.AllRatings() {
		days := spacedrep.IntervalFor(r)
		hint := "redo"
		if days > 0 {
			hint = fmt.Sprintf("%dd", days)
		}
		parts = append(parts,
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(fmt.Sprintf("%d", int(r)))+" "+
				lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("%s (%s)", r, hint)))
	}
	return strings.Join(parts, "   ")
}

func truncate(s string, width int) string {
	if width <= 1 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) > width-1 {
		r = r[:width-1]
	}
	return string(r) + "…"
}
