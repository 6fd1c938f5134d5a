package domain

import (
	"reflect"
	"testing"
)

func TestKeyEntitiesRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		entities KeyEntities
	}{
		{name: "empty buckets", entities: NewKeyEntities()},
		{name: "people only", entities: KeyEntities{
			EntityPeople:        []string{"Rome", "Caesar", "Augustus"},
			EntityOrganizations: []string{},
			EntityLocations:     []string{},
		}},
		{name: "unicode and quotes", entities: KeyEntities{
			EntityPeople:    []string{"Zoë", `O"Neil`, "Łódź"},
			EntityLocations: []string{"Città del Vaticano"},
		}},
		{name: "custom category", entities: KeyEntities{"events": {"Punic Wars"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := EncodeKeyEntities(tt.entities)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			got, err := DecodeKeyEntities(raw)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !reflect.DeepEqual(got, tt.entities) {
				t.Fatalf("round trip mismatch: got %#v, want %#v", got, tt.entities)
			}
		})
	}
}

func TestSectionsRoundTrip(t *testing.T) {
	cases := [][]string{
		{},
		{"History"},
		{"History", "Geography", "History of the Roman Empire (27 BC – AD 476)"},
		{"  padded  ", "tab\tinside", "new\nline"},
	}
	for _, sections := range cases {
		raw, err := EncodeStrings(sections)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		got, err := DecodeStrings(raw)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !reflect.DeepEqual(got, sections) {
			t.Fatalf("round trip mismatch: got %#v, want %#v", got, sections)
		}
	}
}

func TestEncodeNilValues(t *testing.T) {
	raw, err := EncodeStrings(nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if raw != "[]" {
		t.Fatalf("expected [] for nil slice, got %s", raw)
	}
	raw, err = EncodeKeyEntities(KeyEntities{EntityPeople: nil})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if raw != `{"people":[]}` {
		t.Fatalf("unexpected encoding: %s", raw)
	}
}

func TestDecodeEmptyAndInvalid(t *testing.T) {
	sections, err := DecodeStrings("")
	if err != nil || sections == nil || len(sections) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v (%v)", sections, err)
	}
	entities, err := DecodeKeyEntities("null")
	if err != nil || entities == nil {
		t.Fatalf("expected empty map for null, got %#v (%v)", entities, err)
	}
	if _, err := DecodeStrings("{not json"); err == nil {
		t.Fatalf("expected error for invalid json")
	}
	if _, err := DecodeKeyEntities("[1,2]"); err == nil {
		t.Fatalf("expected error for wrong shape")
	}
}
