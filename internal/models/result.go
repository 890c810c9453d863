package models

// SearchResult is a single ranked hit. Rank is 1-based.
type SearchResult struct {
	Rank    int     `json:"rank"`
	ID      string  `json:"id"`
	Caption string  `json:"caption"`
	Score   float64 `json:"score"`
}

// SearchResponse is the response for a query.
type SearchResponse struct {
	Query     string         `json:"query"`
	Results   []SearchResult `json:"results"`
	QueryTime int64          `json:"query_time_ms"`
}
