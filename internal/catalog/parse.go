package catalog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// Options configures Markdown catalog extraction.
type Options struct {
	// CuratedTag is attached to entries matching CuratedTitles.
	// Defaults to TagBlind75.
	CuratedTag string

	// CuratedTitles overrides Blind75Titles when non-nil.
	CuratedTitles []string
}

func (o Options) withDefaults() Options {
	if o.CuratedTag == "" {
		o.CuratedTag = TagBlind75
	}
	if o.CuratedTitles == nil {
		o.CuratedTitles = Blind75Titles
	}
	return o
}

var (
	// "## 3. Sliding Window"
	sectionRe = regexp.MustCompile(`^##\s+(\d+)\.\s*(.+?)\s*$`)
	headingRe = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*$`)
	itemRe    = regexp.MustCompile(`^\s*[-*+]\s+`)
	linkRe    = regexp.MustCompile(`\[([^\]]+)\]\(\s*([^)\s]+)[^)]*\)`)
)

// Parse extracts a catalog from a Markdown document.
//
// A level-2 heading of the form "N. Title" opens a section and any other
// level-2 heading closes it. A level-4 heading containing Easy, Medium or
// Hard sets the difficulty for the list that follows; the first link of each
// list item under it becomes an entry. Any other heading stops collection
// until the next difficulty heading.
func Parse(r io.Reader, opts Options) (*Catalog, error) {
	opts = opts.withDefaults()

	var (
		sections   []Section
		entries    []Entry
		sectionID  string
		difficulty Difficulty
		collecting bool
		inFence    bool
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		if m := headingRe.FindStringSubmatch(trimmed); m != nil {
			level := len(m[1])
			collecting = false
			switch level {
			case 2:
				if sm := sectionRe.FindStringSubmatch(trimmed); sm != nil {
					title := sm[1] + ". " + sm[2]
					sectionID = sectionSlug(sm[1], sm[2])
					sections = append(sections, Section{ID: sectionID, Title: title})
				} else {
					sectionID = ""
				}
			case 4:
				if d := ParseDifficulty(m[2]); d != Unknown {
					difficulty = d
					collecting = true
				}
			}
			continue
		}

		if !collecting || !itemRe.MatchString(line) {
			continue
		}
		lm := linkRe.FindStringSubmatch(line)
		if lm == nil {
			continue
		}
		title := strings.TrimSpace(lm[1])
		url := strings.TrimSpace(lm[2])

		e := Entry{
			ID:           Identify(title, url),
			Title:        title,
			ReferenceURL: url,
			Difficulty:   difficulty,
			SectionID:    sectionID,
		}
		if matchesCurated(title, opts.CuratedTitles) {
			e.Tags = append(e.Tags, opts.CuratedTag)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan catalog: %w", err)
	}

	return New(sections, entries), nil
}

// ParseFile opens path and parses it as a Markdown catalog.
func ParseFile(path string, opts Options) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	c, err := Parse(f, opts)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

// sectionSlug builds a section ID such as "3-sliding-window".
func sectionSlug(number, title string) string {
	var b strings.Builder
	b.WriteString(number)
	dash := true
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if dash {
				b.WriteByte('-')
				dash = false
			}
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	return b.String()
}
