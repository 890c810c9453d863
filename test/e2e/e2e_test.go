package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/hyperjump/vecindex/internal/config"
	"github.com/hyperjump/vecindex/internal/embedding"
	"github.com/hyperjump/vecindex/internal/indexer"
	"github.com/hyperjump/vecindex/internal/models"
	"github.com/hyperjump/vecindex/internal/search"
	"github.com/hyperjump/vecindex/internal/server"
	"github.com/hyperjump/vecindex/internal/vector"
)

const (
	e2eTopK       = 10
	e2eDimensions = 256
)

// buildIndex writes the corpus to disk, indexes it and returns the serialized index path.
func buildIndex(t *testing.T, c *Corpus, emb embedding.Embedder) string {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "docs.json")
	output := filepath.Join(dir, "index.json")
	if err := c.WriteJSON(input); err != nil {
		t.Fatal(err)
	}
	docs, err := indexer.ReadInput(input)
	if err != nil {
		t.Fatal(err)
	}
	idx := indexer.NewIndexer(emb, indexer.WithBatchSize(7), indexer.WithConcurrency(3), indexer.WithOutput(output))
	store, mode, err := idx.Build(context.Background(), docs)
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	if mode != indexer.ModeRaw {
		t.Fatalf("mode = %v, want raw", mode)
	}
	if store.Len() != c.TotalDocs {
		t.Fatalf("indexed %d docs, want %d", store.Len(), c.TotalDocs)
	}
	return output
}

func TestE2E_SearchReturnsCorrectResults(t *testing.T) {
	emb := embedding.NewMockEmbedder(e2eDimensions)
	defer emb.Close()

	corpus := BuildCorpus(2 * len(topics))
	path := buildIndex(t, corpus, emb)

	store, err := vector.LoadFile(path)
	if err != nil {
		t.Fatalf("load index: %v", err)
	}
	engine := search.NewEngine(emb)
	ctx := context.Background()

	t.Logf("indexed %d documents; running %d query test cases", corpus.TotalDocs, corpus.TotalQueries)

	for _, tc := range corpus.TestCases {
		t.Run(tc.Description, func(t *testing.T) {
			resp, err := engine.Search(ctx, store, &search.Query{Text: tc.Query, K: e2eTopK})
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			if len(resp.Results) != e2eTopK {
				t.Fatalf("got %d results, want %d", len(resp.Results), e2eTopK)
			}
			if !containsAny(captions(resp.Results), tc.ExpectedHeaders) {
				t.Errorf("query %q: expected one of %v, got %v", tc.Query, tc.ExpectedHeaders, captions(resp.Results))
			}
		})
	}
}

func TestE2E_ReloadedIndexMatchesBuiltIndex(t *testing.T) {
	emb := embedding.NewMockEmbedder(e2eDimensions)
	corpus := BuildCorpus(len(topics))
	path := buildIndex(t, corpus, emb)

	loaded, err := vector.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	docs, err := indexer.ReadInput(path)
	if err != nil {
		t.Fatal(err)
	}
	mode, err := indexer.DetectMode(docs)
	if err != nil || mode != indexer.ModeEmbedded {
		t.Fatalf("serialized index detected as %v (err %v)", mode, err)
	}
	again, err := indexer.LoadEmbedded(docs)
	if err != nil {
		t.Fatal(err)
	}
	a, b := loaded.Documents(), again.Documents()
	if len(a) != len(b) {
		t.Fatalf("len %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Norm != b[i].Norm || a[i].Metadata["key"] != b[i].Metadata["key"] {
			t.Errorf("doc %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestE2E_ServerAnswersQueries(t *testing.T) {
	emb := embedding.NewMockEmbedder(e2eDimensions)
	corpus := BuildCorpus(len(topics))
	path := buildIndex(t, corpus, emb)
	store, err := vector.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	srv := server.NewServer(search.NewEngine(emb), store, path, &cfg.Server, &cfg.Index, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	for _, tc := range corpus.TestCases[:5] {
		body, _ := json.Marshal(map[string]any{"query": tc.Query, "k": 3})
		res, err := http.Post(ts.URL+"/api/v1/search", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		var resp models.SearchResponse
		err = json.NewDecoder(res.Body).Decode(&resp)
		res.Body.Close()
		if err != nil {
			t.Fatal(err)
		}
		if res.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", res.StatusCode)
		}
		if len(resp.Results) != 3 {
			t.Fatalf("got %d results, want 3", len(resp.Results))
		}
		if !containsAny(captions(resp.Results), tc.ExpectedHeaders) {
			t.Errorf("query %q: expected one of %v, got %v", tc.Query, tc.ExpectedHeaders, captions(resp.Results))
		}
	}
}

func captions(results []models.SearchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Caption
	}
	return out
}

func containsAny(got []string, expected []string) bool {
	set := make(map[string]bool)
	for _, id := range got {
		set[id] = true
	}
	for _, id := range expected {
		if set[id] {
			return true
		}
	}
	return false
}
