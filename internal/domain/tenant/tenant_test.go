package tenant

import (
	"encoding/json"
	"testing"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		raw   string
		value any
		zero  bool
	}{
		{"", nil, true},
		{"42", int64(42), false},
		{"007", int64(7), false},
		{"acme", "acme", false},
		{"42abc", "42abc", false},
		{"-3", int64(-3), false},
	}

	for _, tt := range tests {
		id := ParseID(tt.raw)
		if id.IsZero() != tt.zero {
			t.Errorf("ParseID(%q).IsZero() = %v, want %v", tt.raw, id.IsZero(), tt.zero)
		}
		if tt.zero {
			continue
		}
		if got := id.Value(); got != tt.value {
			t.Errorf("ParseID(%q).Value() = %v (%T), want %v (%T)", tt.raw, got, got, tt.value, tt.value)
		}
		if id.String() != tt.raw {
			t.Errorf("ParseID(%q).String() = %q, want the raw form", tt.raw, id.String())
		}
	}
}

func TestIDEqualNormalizes(t *testing.T) {
	if !ParseID("007").Equal(ParseID("7")) {
		t.Error("numeric ids compare by value, not raw text")
	}
	if ParseID("7").Equal(ParseID("8")) {
		t.Error("distinct numeric ids must differ")
	}
	if !ParseID("acme").Equal(ParseID("acme")) {
		t.Error("string ids compare by raw value")
	}
	if ParseID("7").Equal(ParseID("acme")) {
		t.Error("numeric and string ids must not compare equal")
	}
}

func TestIDIn(t *testing.T) {
	set := []ID{ParseID("1"), ParseID("2")}
	if !ParseID("2").In(set) {
		t.Error("member not found")
	}
	if ParseID("3").In(set) {
		t.Error("non-member found")
	}
	if ParseID("1").In(nil) {
		t.Error("empty set contains nothing")
	}
}

func TestIDJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(ParseID("42"))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `"42"` {
		t.Errorf("Marshal = %s, want quoted raw value", data)
	}

	var id ID
	if err := json.Unmarshal([]byte(`"42"`), &id); err != nil {
		t.Fatalf("Unmarshal string: %v", err)
	}
	if !id.Equal(ParseID("42")) {
		t.Error("string round trip lost the value")
	}

	// Stores with serial keys emit bare numbers.
	if err := json.Unmarshal([]byte(`42`), &id); err != nil {
		t.Fatalf("Unmarshal number: %v", err)
	}
	if !id.Equal(ParseID("42")) {
		t.Error("numeric JSON must normalize to the same id")
	}

	if err := json.Unmarshal([]byte(`{"nope":1}`), &id); err == nil {
		t.Error("objects are not valid ids")
	}
}
