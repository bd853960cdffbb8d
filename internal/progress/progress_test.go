package progress

import (
	"errors"
	"testing"
)

func TestGet_DefaultWhenAbsent(t *testing.T) {
	m := Map{}
	r := m.Get("missing")
	if r.Done || r.Notes != "" || r.LastReview != nil || r.NextReview != nil || r.Interval != 0 {
		t.Errorf("Get(missing) = %+v, want zero record", r)
	}
	if len(m) != 0 {
		t.Error("Get must not insert")
	}
}

func TestIsDue(t *testing.T) {
	const now int64 = 1_000_000
	tests := []struct {
		name string
		rec  Record
		want bool
	}{
		{"never reviewed", Record{}, false},
		{"done without schedule", Record{Done: true}, false},
		{"again rating", Record{Done: true, LastReview: Millis(now - 10)}, false},
		{"scheduled in future", Record{Done: true, NextReview: Millis(now + 1), Interval: 2}, false},
		{"scheduled exactly now", Record{Done: true, NextReview: Millis(now), Interval: 2}, true},
		{"scheduled in past", Record{Done: true, NextReview: Millis(now - 1), Interval: 4}, true},
		{"undone with past schedule", Record{Done: false, NextReview: Millis(now - 1), Interval: 4}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.IsDue(now); got != tt.want {
				t.Errorf("IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasNotes(t *testing.T) {
	if (Record{Notes: "  \n\t"}).HasNotes() {
		t.Error("whitespace-only notes should not count")
	}
	if !(Record{Notes: " two pointers "}).HasNotes() {
		t.Error("expected notes")
	}
}

func TestDecode_LegacyBooleans(t *testing.T) {
	m, err := Decode([]byte(`{"a": true, "b": false, "c": {"done": true, "notes": "x", "interval": 4, "nextReview": 99}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	a := m.Get("a")
	if !a.Done || a.Notes != "" || a.LastReview != nil || a.NextReview != nil || a.Interval != 0 {
		t.Errorf("a = %+v, want {Done:true} only", a)
	}
	if _, ok := m["b"]; !ok || m.Get("b").Done {
		t.Errorf("b = %+v, want present with Done=false", m.Get("b"))
	}
	c := m.Get("c")
	if !c.Done || c.Notes != "x" || c.Interval != 4 || c.NextReview == nil || *c.NextReview != 99 {
		t.Errorf("c = %+v", c)
	}
}

func TestDecode_ClearsLegacyAgainMarker(t *testing.T) {
	m, err := Decode([]byte(`{"a": {"done": true, "lastReview": 5000, "nextReview": 1, "interval": 0}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	a := m.Get("a")
	if a.NextReview != nil {
		t.Errorf("NextReview = %d, want nil", *a.NextReview)
	}
	if a.IsDue(10_000) {
		t.Error("legacy again record must not be due")
	}
}

func TestDecode_Rejects(t *testing.T) {
	bad := []string{
		``,
		`not json`,
		`[]`,
		`null`,
		`"str"`,
		`{"a": 5}`,
		`{"a": {"done": "yes"}}`,
	}
	for _, in := range bad {
		if _, err := Decode([]byte(in)); err == nil {
			t.Errorf("Decode(%q) expected error", in)
		}
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	orig := Map{
		"a": {Done: true, Notes: "sliding window", LastReview: Millis(100), NextReview: Millis(200), Interval: 2},
		"b": {Done: false, Notes: "revisit"},
		"c": {Done: true},
	}
	blob, err := Encode(orig)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(blob)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != len(orig) {
		t.Fatalf("len = %d, want %d", len(got), len(orig))
	}
	for id, want := range orig {
		g := got[id]
		if g.Done != want.Done || g.Notes != want.Notes || g.Interval != want.Interval {
			t.Errorf("%s = %+v, want %+v", id, g, want)
		}
		if (g.NextReview == nil) != (want.NextReview == nil) || (g.NextReview != nil && *g.NextReview != *want.NextReview) {
			t.Errorf("%s nextReview mismatch", id)
		}
		if (g.LastReview == nil) != (want.LastReview == nil) || (g.LastReview != nil && *g.LastReview != *want.LastReview) {
			t.Errorf("%s lastReview mismatch", id)
		}
	}
}

func TestEncode_OmitsDefaults(t *testing.T) {
	blob, err := Encode(Map{"a": {Done: true}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(blob) != `{"a":{"done":true}}` {
		t.Errorf("Encode = %s", blob)
	}

	blob, err = Encode(nil)
	if err != nil {
		t.Fatalf("encode nil: %v", err)
	}
	if string(blob) != `{}` {
		t.Errorf("Encode(nil) = %s, want {}", blob)
	}
}

func TestClone_Independent(t *testing.T) {
	m := Map{"a": {Done: true, NextReview: Millis(5)}}
	c := m.Clone()
	*c["a"].NextReview = 10
	if *m["a"].NextReview != 5 {
		t.Error("clone shares NextReview pointer")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"empty object", `{}`, false},
		{"records", `{"a": {"done": true, "interval": 4, "nextReview": 1700000000000}}`, false},
		{"legacy booleans", `{"a": true, "b": false}`, false},
		{"null review", `{"a": {"done": true, "nextReview": null}}`, false},
		{"array", `[1, 2]`, true},
		{"string", `"hello"`, true},
		{"number value", `{"a": 3}`, true},
		{"bad field type", `{"a": {"notes": 42}}`, true},
		{"negative interval", `{"a": {"interval": -1}}`, true},
		{"broken json", `{"a": `, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(tt.in))
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%s) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
		})
	}
}

func TestValidate_NotObjectSentinel(t *testing.T) {
	err := Validate([]byte(`[]`))
	if !errors.Is(err, ErrNotObject) {
		t.Errorf("err = %v, want ErrNotObject", err)
	}
}
