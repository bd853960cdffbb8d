package progress

import "strings"

// Record is the persisted progress of one catalog entry. The zero value is
// the default for entries that have never been touched.
type Record struct {
	Done       bool   `json:"done"`
	Notes      string `json:"notes,omitempty"`
	LastReview *int64 `json:"lastReview,omitempty"` // epoch ms
	NextReview *int64 `json:"nextReview,omitempty"` // epoch ms
	Interval   int    `json:"interval,omitempty"`   // days
}

// HasNotes reports whether the record carries notes other than whitespace.
func (r Record) HasNotes() bool {
	return strings.TrimSpace(r.Notes) != ""
}

// IsDue reports whether a completed entry's scheduled review has passed.
// Records without a scheduled review are never due.
func (r Record) IsDue(nowMs int64) bool {
	return r.Done && r.NextReview != nil && *r.NextReview <= nowMs
}

// Clone returns a copy that shares no pointers with r.
func (r Record) Clone() Record {
	out := r
	if r.LastReview != nil {
		v := *r.LastReview
		out.LastReview = &v
	}
	if r.NextReview != nil {
		v := *r.NextReview
		out.NextReview = &v
	}
	return out
}

// Map holds progress records keyed by entry ID. Absent keys mean defaults.
type Map map[string]Record

// Get returns the record for id, or the default record.
func (m Map) Get(id string) Record {
	return m[id]
}

// Clone deep-copies the map.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for id, r := range m {
		out[id] = r.Clone()
	}
	return out
}

// Millis returns a pointer to v, for building records.
func Millis(v int64) *int64 {
	return &v
}
