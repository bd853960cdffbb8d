package query

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownFilter is returned by ParseFilter for unrecognised names.
	ErrUnknownFilter = errors.New("query: unknown filter")

	// ErrUnknownSort is returned by ParseSort for unrecognised names.
	ErrUnknownSort = errors.New("query: unknown sort")
)

// Filter selects which entries a query returns.
type Filter int

const (
	All      Filter = iota
	Due             // done with a review that has come due
	Todo            // not done
	Done            // done
	HasNotes        // notes present after trimming
	Tagged          // carries the engine's designated tag
)

var filterNames = [...]string{
	All:      "all",
	Due:      "due",
	Todo:     "todo",
	Done:     "done",
	HasNotes: "notes",
	Tagged:   "tagged",
}

// AllFilters returns the filters in the order the UI cycles through them.
func AllFilters() []Filter {
	return []Filter{All, Due, Todo, Done, HasNotes, Tagged}
}

func (f Filter) String() string {
	if f >= All && f <= Tagged {
		return filterNames[f]
	}
	return fmt.Sprintf("Filter(%d)", int(f))
}

// ParseFilter parses a filter name. The empty string means All.
func ParseFilter(s string) (Filter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return All, nil
	}
	for _, f := range AllFilters() {
		if filterNames[f] == s {
			return f, nil
		}
	}
	return All, fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

// NextFilter returns the filter after f in cycle order.
func NextFilter(f Filter) Filter {
	all := AllFilters()
	for i, v := range all {
		if v == f {
			return all[(i+1)%len(all)]
		}
	}
	return All
}

// Sort orders the filtered entries.
type Sort int

const (
	Default    Sort = iota // catalog order
	EasyToHard
	HardToEasy
	Random
)

var sortNames = [...]string{
	Default:    "default",
	EasyToHard: "easy",
	HardToEasy: "hard",
	Random:     "random",
}

// AllSorts returns the sorts in cycle order.
func AllSorts() []Sort {
	return []Sort{Default, EasyToHard, HardToEasy, Random}
}

func (s Sort) String() string {
	if s >= Default && s <= Random {
		return sortNames[s]
	}
	return fmt.Sprintf("Sort(%d)", int(s))
}

// ParseSort parses a sort name. The empty string means Default.
func ParseSort(s string) (Sort, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Default, nil
	}
	for _, v := range AllSorts() {
		if sortNames[v] == s {
			return v, nil
		}
	}
	return Default, fmt.Errorf("%w: %q", ErrUnknownSort, s)
}

// NextSort cycles Default, EasyToHard, HardToEasy, Random and back.
func NextSort(s Sort) Sort {
	all := AllSorts()
	for i, v := range all {
		if v == s {
			return all[(i+1)%len(all)]
		}
	}
	return Default
}
