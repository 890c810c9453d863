// Package cli renders query results for the command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/vecindex/internal/models"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (SearchOutputFormat, error) {
	switch SearchOutputFormat(s) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (supported: text, json)", s)
	}
}

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, k int, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		if response.Results == nil {
			response.Results = []models.SearchResult{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	default:
		return writeSearchResultsText(w, response, k)
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse, k int) error {
	if _, err := fmt.Fprintf(w, "Top-%d results for “%s”:\n", k, response.Query); err != nil {
		return err
	}
	for _, r := range response.Results {
		if _, err := fmt.Fprintf(w, "%2d. %s %s (score=%.4f)\n", r.Rank, r.Caption, r.ID, r.Score); err != nil {
			return err
		}
	}
	return nil
}
