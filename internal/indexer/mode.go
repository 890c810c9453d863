package indexer

import (
	"errors"
	"fmt"

	"github.com/hyperjump/vecindex/internal/models"
)

// ErrMixedInput is returned when some input documents carry vectors and others do not.
var ErrMixedInput = errors.New("input mixes embedded and raw documents")

// Mode tells how an input batch is turned into a store.
type Mode int

const (
	// ModeRaw documents carry text and are embedded.
	ModeRaw Mode = iota
	// ModeEmbedded documents are serialized records loaded without calling the provider.
	ModeEmbedded
)

func (m Mode) String() string {
	switch m {
	case ModeEmbedded:
		return "embedded"
	default:
		return "raw"
	}
}

// DetectMode picks ModeEmbedded when the first document has a non-empty vector field and
// ModeRaw otherwise. Every other document must agree with the first; the first that does
// not is reported with ErrMixedInput. Empty input is ModeRaw.
func DetectMode(docs []models.RawDocument) (Mode, error) {
	if len(docs) == 0 {
		return ModeRaw, nil
	}
	embedded := docs[0].HasVector()
	for i, doc := range docs[1:] {
		if doc.HasVector() != embedded {
			return ModeRaw, fmt.Errorf("%w: document %d differs from document 0", ErrMixedInput, i+1)
		}
	}
	if embedded {
		return ModeEmbedded, nil
	}
	return ModeRaw, nil
}
