package search

import (
	"errors"
	"strings"
)

// DefaultK is the number of results returned when a query does not ask for a count.
const DefaultK = 10

// DefaultCaptionField is the metadata field reported as each result's caption by default.
const DefaultCaptionField = "header"

// ErrEmptyQuery is returned for a query with no text.
var ErrEmptyQuery = errors.New("query text is empty")

// ErrTopK is returned when the command line asks for fewer than one result.
var ErrTopK = errors.New("top-k must be at least 1")

// Query is a single nearest-neighbor request.
type Query struct {
	Text         string `json:"query"`
	K            int    `json:"k,omitempty"`
	CaptionField string `json:"caption_field,omitempty"`
}

// Validate rejects blank text and fills in K and CaptionField defaults.
func (q *Query) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return ErrEmptyQuery
	}
	if q.K <= 0 {
		q.K = DefaultK
	}
	if q.CaptionField == "" {
		q.CaptionField = DefaultCaptionField
	}
	return nil
}
