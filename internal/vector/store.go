// Package vector provides the in-memory vector store and cosine similarity search.
package vector

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/hyperjump/vecindex/internal/models"
)

var (
	// ErrEmptyVector is returned when a zero-length vector is added or loaded.
	ErrEmptyVector = errors.New("vector is empty")
	// ErrDimensionMismatch is returned when a vector's length differs from the store's dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrCaptionNotFound is returned when any stored document lacks the requested caption field.
	ErrCaptionNotFound = errors.New("caption field not found")
)

// Store is an insertion-ordered collection of documents searched by brute-force cosine
// similarity. The dimension is fixed by the first document added or loaded.
// A Store is not safe for concurrent mutation.
type Store struct {
	dimensions int
	docs       []models.StoredDocument
	ids        map[string]struct{}
	newID      func() string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithIDGenerator replaces the uuid generator used by Add.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) { s.newID = fn }
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		docs:  make([]models.StoredDocument, 0),
		ids:   make(map[string]struct{}),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add stores vec with a fresh id and its L2 norm, appending it after every existing document.
// Empty vectors and vectors whose dimension differs from the store's are rejected.
func (s *Store) Add(metadata models.Metadata, vec []float32) (string, error) {
	if err := s.checkDimensions(len(vec)); err != nil {
		return "", err
	}
	id := s.newID()
	for s.hasID(id) {
		id = s.newID()
	}
	v := make([]float32, len(vec))
	copy(v, vec)
	s.dimensions = len(v)
	s.append(models.StoredDocument{
		ID:       id,
		Vector:   v,
		Norm:     L2Norm(v),
		Metadata: models.NewMetadata(metadata),
	})
	return id, nil
}

// Search returns at most k documents ranked by cosine similarity to query, highest first.
// Equal scores keep insertion order. captionField names the metadata field reported as
// each result's caption; every document must carry it, ranked or not.
func (s *Store) Search(query []float32, k int, captionField string) ([]models.SearchResult, error) {
	if len(s.docs) == 0 {
		return []models.SearchResult{}, nil
	}
	if len(query) != s.dimensions {
		return nil, fmt.Errorf("%w: query has %d, store has %d", ErrDimensionMismatch, len(query), s.dimensions)
	}
	queryNorm := L2Norm(query)
	type scored struct {
		idx     int
		caption string
		score   float64
	}
	scores := make([]scored, len(s.docs))
	for i := range s.docs {
		doc := &s.docs[i]
		caption, ok := doc.Metadata[captionField]
		if !ok {
			return nil, fmt.Errorf("%w: %q on document %s", ErrCaptionNotFound, captionField, doc.ID)
		}
		scores[i] = scored{
			idx:     i,
			caption: captionString(caption),
			score:   Cosine(query, doc.Vector, queryNorm, doc.Norm),
		}
	}
	if k <= 0 {
		return []models.SearchResult{}, nil
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if k > len(scores) {
		k = len(scores)
	}
	results := make([]models.SearchResult, 0, k)
	for rank, sc := range scores[:k] {
		results = append(results, models.SearchResult{
			Rank:    rank + 1,
			ID:      s.docs[sc.idx].ID,
			Caption: sc.caption,
			Score:   sc.score,
		})
	}
	return results, nil
}

// Load appends serialized records verbatim: ids, vectors and norms are trusted as given and
// duplicate ids are not detected. Every vector must match the store's dimension; on error
// the store is unchanged.
func (s *Store) Load(records []models.Record) error {
	dims := s.dimensions
	for i, r := range records {
		if len(r.Vector) == 0 {
			return fmt.Errorf("record %d (%s): %w", i, r.ID, ErrEmptyVector)
		}
		if dims == 0 {
			dims = len(r.Vector)
		} else if len(r.Vector) != dims {
			return fmt.Errorf("record %d (%s): %w: got %d, expected %d", i, r.ID, ErrDimensionMismatch, len(r.Vector), dims)
		}
	}
	s.dimensions = dims
	for _, r := range records {
		v := make([]float32, len(r.Vector))
		copy(v, r.Vector)
		s.append(models.StoredDocument{
			ID:       r.ID,
			Vector:   v,
			Norm:     r.Norm,
			Metadata: models.NewMetadata(r.Metadata),
		})
	}
	return nil
}

// Serialize returns one record per document in insertion order. It is the inverse of Load.
func (s *Store) Serialize() []models.Record {
	records := make([]models.Record, len(s.docs))
	for i, doc := range s.docs {
		v := make([]float32, len(doc.Vector))
		copy(v, doc.Vector)
		records[i] = models.Record{
			ID:       doc.ID,
			Vector:   v,
			Norm:     doc.Norm,
			Metadata: doc.Metadata.Clone(),
		}
	}
	return records
}

// Documents returns a copy of the stored documents in insertion order.
func (s *Store) Documents() []models.StoredDocument {
	out := make([]models.StoredDocument, len(s.docs))
	for i, doc := range s.docs {
		v := make([]float32, len(doc.Vector))
		copy(v, doc.Vector)
		out[i] = models.StoredDocument{ID: doc.ID, Vector: v, Norm: doc.Norm, Metadata: doc.Metadata.Clone()}
	}
	return out
}

// Len returns the number of documents.
func (s *Store) Len() int {
	return len(s.docs)
}

// Dimensions returns the vector dimension, or 0 for an empty store.
func (s *Store) Dimensions() int {
	return s.dimensions
}

func (s *Store) checkDimensions(n int) error {
	if n == 0 {
		return ErrEmptyVector
	}
	if s.dimensions != 0 && n != s.dimensions {
		return fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, n, s.dimensions)
	}
	return nil
}

func (s *Store) hasID(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Store) append(doc models.StoredDocument) {
	s.docs = append(s.docs, doc)
	s.ids[doc.ID] = struct{}{}
}

func captionString(v any) string {
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}
