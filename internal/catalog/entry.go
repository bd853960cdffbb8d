package catalog

import "strings"

// Difficulty is the label a catalog assigns to an entry.
type Difficulty string

const (
	Easy    Difficulty = "Easy"
	Medium  Difficulty = "Medium"
	Hard    Difficulty = "Hard"
	Unknown Difficulty = "Unknown"
)

// AllDifficulties returns the known difficulties in ascending order.
func AllDifficulties() []Difficulty {
	return []Difficulty{Easy, Medium, Hard}
}

// ParseDifficulty maps a heading such as "Easy Problems" onto a Difficulty.
// Returns Unknown when no known label is contained in s.
func ParseDifficulty(s string) Difficulty {
	for _, d := range AllDifficulties() {
		if strings.Contains(s, string(d)) {
			return d
		}
	}
	return Unknown
}

// Entry is one trackable catalog item. Entries are read-only to the
// progress engine.
type Entry struct {
	ID           string
	Title        string
	ReferenceURL string
	Difficulty   Difficulty
	Tags         []string
	SectionID    string
}

// HasTag reports whether the entry carries tag.
func (e Entry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Section is a logical grouping of entries used for progress reporting.
type Section struct {
	ID    string
	Title string
}

// Catalog is the ordered set of entries and the sections that contain them.
// Entries keep document order.
type Catalog struct {
	Sections []Section
	Entries  []Entry

	byID map[string]int
}

// New builds a Catalog and indexes entries by ID. When two entries share an
// ID the first one wins the lookup.
func New(sections []Section, entries []Entry) *Catalog {
	c := &Catalog{
		Sections: sections,
		Entries:  entries,
		byID:     make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		if _, exists := c.byID[e.ID]; !exists {
			c.byID[e.ID] = i
		}
	}
	return c
}

// Lookup returns the entry with the given ID.
func (c *Catalog) Lookup(id string) (Entry, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Entry{}, false
	}
	return c.Entries[i], true
}

// InSection returns the entries of a section in document order.
func (c *Catalog) InSection(sectionID string) []Entry {
	var out []Entry
	for _, e := range c.Entries {
		if e.SectionID == sectionID {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.Entries)
}
