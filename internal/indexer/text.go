package indexer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/vecindex/internal/models"
)

// ErrMissingText is returned when a document lacks the text field selected for the run.
var ErrMissingText = errors.New("document has no text")

// SourceKind is the text extraction strategy.
type SourceKind int

const (
	// KindSingleField reads one string field.
	KindSingleField SourceKind = iota
	// KindJoinedFragments joins an array of strings with single spaces.
	KindJoinedFragments
)

// TextSource says where a document's embedding text comes from. It is chosen once per run.
type TextSource struct {
	Kind  SourceKind
	Field string
}

// SingleField extracts the string in field.
func SingleField(field string) TextSource {
	return TextSource{Kind: KindSingleField, Field: field}
}

// JoinedFragments extracts the strings in field joined by a single space.
func JoinedFragments(field string) TextSource {
	return TextSource{Kind: KindJoinedFragments, Field: field}
}

// SelectTextSource returns SingleField(textField) when first has a non-empty textField and
// JoinedFragments(fragmentsField) otherwise. Later documents are not inspected.
func SelectTextSource(first models.RawDocument, textField, fragmentsField string) TextSource {
	if first.Has(textField) {
		return SingleField(textField)
	}
	return JoinedFragments(fragmentsField)
}

func (s TextSource) String() string {
	if s.Kind == KindJoinedFragments {
		return "fragments:" + s.Field
	}
	return "field:" + s.Field
}

// Extract returns the text of doc. A missing fragments field yields "".
func (s TextSource) Extract(doc models.RawDocument) (string, error) {
	v, ok := doc[s.Field]
	switch s.Kind {
	case KindJoinedFragments:
		if !ok || v == nil {
			return "", nil
		}
		items, ok := v.([]any)
		if !ok {
			return "", fmt.Errorf("field %q: expected array of strings, got %T", s.Field, v)
		}
		parts := make([]string, len(items))
		for i, item := range items {
			str, ok := item.(string)
			if !ok {
				return "", fmt.Errorf("field %q[%d]: expected string, got %T", s.Field, i, item)
			}
			parts[i] = str
		}
		return strings.Join(parts, " "), nil
	default:
		str, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("%w: field %q", ErrMissingText, s.Field)
		}
		return str, nil
	}
}
