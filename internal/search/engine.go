// Package search embeds query text and ranks stored documents against it.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperjump/vecindex/internal/embedding"
	"github.com/hyperjump/vecindex/internal/models"
	"go.uber.org/zap"
)

// Searcher ranks stored documents against a query vector.
type Searcher interface {
	Search(query []float32, k int, captionField string) ([]models.SearchResult, error)
}

// Engine answers text queries by embedding them and searching a store. It keeps no state
// between queries.
type Engine struct {
	embedder embedding.Embedder
	logger   *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a logger for per-query debug output.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates a search engine that embeds queries with embedder.
func NewEngine(embedder embedding.Embedder, opts ...EngineOption) *Engine {
	e := &Engine{embedder: embedder, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// Search validates q, embeds its text as a single-element batch and returns the top results.
func (e *Engine) Search(ctx context.Context, store Searcher, q *Query) (*models.SearchResponse, error) {
	start := time.Now()
	if err := q.Validate(); err != nil {
		return nil, err
	}
	vecs, err := e.embedder.EmbedBatch(ctx, []string{q.Text})
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedding failed: provider returned %d vectors for 1 text", len(vecs))
	}
	results, err := store.Search(vecs[0], q.K, q.CaptionField)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	elapsed := time.Since(start)
	e.logger.Debug("query",
		zap.String("query", q.Text),
		zap.Int("k", q.K),
		zap.Int("results", len(results)),
		zap.Duration("elapsed", elapsed))
	return &models.SearchResponse{
		Query:     q.Text,
		Results:   results,
		QueryTime: elapsed.Milliseconds(),
	}, nil
}

// Query is shorthand for Search returning only the ranked results.
func (e *Engine) Query(ctx context.Context, store Searcher, text string, k int, captionField string) ([]models.SearchResult, error) {
	resp, err := e.Search(ctx, store, &Query{Text: text, K: k, CaptionField: captionField})
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}
