// Package models defines core data structures for stored documents, serialized records, and search results.
package models

// Reserved keys of a serialized record. They never appear in Metadata.
const (
	KeyID     = "id"
	KeyVector = "vector"
	KeyNorm   = "norm"
)

// IsReserved reports whether key is one of id, vector, norm.
func IsReserved(key string) bool {
	return key == KeyID || key == KeyVector || key == KeyNorm
}

// Metadata holds the arbitrary fields of a document, preserved verbatim from the input.
// Use NewMetadata to build one so reserved keys are left out.
type Metadata map[string]any

// NewMetadata copies fields, leaving out the reserved keys.
func NewMetadata(fields map[string]any) Metadata {
	m := make(Metadata, len(fields))
	for k, v := range fields {
		if IsReserved(k) {
			continue
		}
		m[k] = v
	}
	return m
}

// Clone returns a shallow copy. Nested values are shared.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// StoredDocument is one entry of a vector store. Norm is the L2 norm of Vector at the
// time it was computed; it is trusted as-is when loaded from serialized data.
type StoredDocument struct {
	ID       string
	Vector   []float32
	Norm     float64
	Metadata Metadata
}

// RawDocument is a decoded input object: a text field or text fragments plus metadata,
// or a previously serialized record.
type RawDocument map[string]any

// HasVector reports whether the document carries a non-empty vector field.
func (d RawDocument) HasVector() bool {
	return d.Has(KeyVector)
}

// Has reports whether field is present with a non-empty value.
func (d RawDocument) Has(field string) bool {
	return truthy(d[field])
}

// truthy mirrors JSON truthiness: null, false, zero, "" and empty arrays/objects are false.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		f, err := toFloat64(v)
		if err != nil {
			return true
		}
		return f != 0
	}
}
