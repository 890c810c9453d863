package models

import (
	"encoding/json"
	"testing"
)

func TestNewMetadata_excludesReservedKeys(t *testing.T) {
	m := NewMetadata(map[string]any{
		"id":     "x",
		"vector": []any{1},
		"norm":   1.0,
		"header": "Intro",
	})
	if len(m) != 1 || m["header"] != "Intro" {
		t.Errorf("NewMetadata = %v, want only header", m)
	}
}

func TestRawDocument_HasVector(t *testing.T) {
	tests := []struct {
		name string
		doc  RawDocument
		want bool
	}{
		{"missing", RawDocument{"text_block": "a"}, false},
		{"null", RawDocument{"vector": nil}, false},
		{"empty array", RawDocument{"vector": []any{}}, false},
		{"non-empty array", RawDocument{"vector": []any{json.Number("0.5")}}, true},
		{"false", RawDocument{"vector": false}, false},
		{"zero number", RawDocument{"vector": json.Number("0")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.doc.HasVector(); got != tt.want {
				t.Errorf("HasVector() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecord_MarshalJSON_fieldOrder(t *testing.T) {
	r := Record{
		ID:     "doc-1",
		Vector: []float32{1, 0.5},
		Norm:   1.118,
		Metadata: Metadata{
			"zeta":   "last",
			"header": "Intro",
		},
	}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":"doc-1","vector":[1,0.5],"norm":1.118,"header":"Intro","zeta":"last"}`
	if string(b) != want {
		t.Errorf("Marshal = %s\nwant      %s", b, want)
	}
}

func TestRecord_UnmarshalJSON(t *testing.T) {
	var r Record
	in := `{"id":"a","vector":[0.1,0.2,0.3],"norm":7,"header":"H","count":12,"tags":["x"]}`
	if err := json.Unmarshal([]byte(in), &r); err != nil {
		t.Fatal(err)
	}
	if r.ID != "a" || len(r.Vector) != 3 || r.Vector[1] != float32(0.2) {
		t.Errorf("unexpected record: %+v", r)
	}
	if r.Norm != 7 {
		t.Errorf("norm should be taken verbatim, got %v", r.Norm)
	}
	if _, ok := r.Metadata["id"]; ok {
		t.Error("metadata must not contain reserved keys")
	}
	if r.Metadata["count"] != json.Number("12") {
		t.Errorf("count = %#v, want json.Number(12)", r.Metadata["count"])
	}

	out, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":"a","vector":[0.1,0.2,0.3],"norm":7,"count":12,"header":"H","tags":["x"]}`
	if string(out) != want {
		t.Errorf("re-marshal = %s\nwant         %s", out, want)
	}
}

func TestRecord_UnmarshalJSON_invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"id not string", `{"id":1,"vector":[1],"norm":1}`},
		{"vector not array", `{"id":"a","vector":"x","norm":1}`},
		{"vector element not number", `{"id":"a","vector":["x"],"norm":1}`},
		{"norm missing", `{"id":"a","vector":[1]}`},
		{"not an object", `[1,2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Record
			if err := json.Unmarshal([]byte(tt.in), &r); err == nil {
				t.Errorf("expected error for %s", tt.in)
			}
		})
	}
}
