package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Record is the flat serialized form of a StoredDocument:
// {"id": ..., "vector": [...], "norm": ..., <metadata fields>...}.
type Record struct {
	ID       string
	Vector   []float32
	Norm     float64
	Metadata Metadata
}

// MarshalJSON writes id, vector and norm first, then metadata fields in key order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	vec := r.Vector
	if vec == nil {
		vec = []float32{}
	}
	fields := []struct {
		key   string
		value any
	}{
		{KeyID, r.ID},
		{KeyVector, vec},
		{KeyNorm, r.Norm},
	}
	keys := make([]string, 0, len(r.Metadata))
	for k := range r.Metadata {
		if !IsReserved(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, struct {
			key   string
			value any
		}{k, r.Metadata[k]})
	}

	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.value)
		if err != nil {
			return nil, fmt.Errorf("marshal field %q: %w", f.key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON splits the reserved keys from the metadata. Numbers in metadata are
// kept as json.Number so they re-serialize unchanged.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw RawDocument
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	rec, err := ParseRecord(raw)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

// ParseRecord converts a decoded object carrying id, vector and norm into a Record.
// The norm is taken verbatim, never recomputed.
func ParseRecord(raw RawDocument) (Record, error) {
	id, ok := raw[KeyID].(string)
	if !ok {
		return Record{}, fmt.Errorf("record: %q must be a string, got %T", KeyID, raw[KeyID])
	}
	items, ok := raw[KeyVector].([]any)
	if !ok {
		return Record{}, fmt.Errorf("record %s: %q must be an array, got %T", id, KeyVector, raw[KeyVector])
	}
	vec := make([]float32, len(items))
	for i, item := range items {
		f, err := toFloat32(item)
		if err != nil {
			return Record{}, fmt.Errorf("record %s: vector[%d]: %w", id, i, err)
		}
		vec[i] = f
	}
	norm, err := toFloat64(raw[KeyNorm])
	if err != nil {
		return Record{}, fmt.Errorf("record %s: %q: %w", id, KeyNorm, err)
	}
	return Record{
		ID:       id,
		Vector:   vec,
		Norm:     norm,
		Metadata: NewMetadata(raw),
	}, nil
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case json.Number:
		return strconv.ParseFloat(n.String(), 64)
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}

func toFloat32(v any) (float32, error) {
	if n, ok := v.(json.Number); ok {
		f, err := strconv.ParseFloat(n.String(), 32)
		return float32(f), err
	}
	f, err := toFloat64(v)
	return float32(f), err
}
