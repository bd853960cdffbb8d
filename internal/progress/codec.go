package progress

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// legacyAgainMarker is the nextReview value older builds stored for an
// "Again" rating instead of leaving it unset.
const legacyAgainMarker = 1

// Decode parses a persisted blob. The blob must be a JSON object. Values that
// are bare booleans come from the pre-record schema and are upgraded to
// {done: value}; the legacy "Again" marker is cleared so such records are
// never reported as due.
func Decode(blob []byte) (Map, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(blob, &raw); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	if raw == nil {
		// Literal null.
		return nil, fmt.Errorf("decode progress: not an object")
	}

	m := make(Map, len(raw))
	for id, v := range raw {
		rec, err := decodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("decode progress %q: %w", id, err)
		}
		m[id] = rec
	}
	return m, nil
}

func decodeValue(v json.RawMessage) (Record, error) {
	trimmed := bytes.TrimSpace(v)
	switch string(trimmed) {
	case "true":
		return Record{Done: true}, nil
	case "false":
		return Record{}, nil
	}

	var rec Record
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return Record{}, err
	}
	if rec.Interval == 0 && rec.NextReview != nil && *rec.NextReview == legacyAgainMarker {
		rec.NextReview = nil
	}
	return rec, nil
}

// Encode serializes the map in the persisted format. Output is stable: keys
// are sorted by encoding/json.
func Encode(m Map) ([]byte, error) {
	if m == nil {
		m = Map{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode progress: %w", err)
	}
	return b, nil
}
