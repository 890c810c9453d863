// Package server provides the HTTP query API over a serialized vector store.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/vecindex/internal/config"
	"github.com/hyperjump/vecindex/internal/search"
	"github.com/hyperjump/vecindex/internal/vector"
	"go.uber.org/zap"
)

// Server is the HTTP server for the query API. The served store is replaced as a whole
// on Reload and never mutated in place.
type Server struct {
	engine       *search.Engine
	config       *config.ServerConfig
	indexPath    string
	captionField string
	topK         int
	logger       *zap.Logger
	server       *http.Server

	mu    sync.RWMutex
	store *vector.Store
}

// NewServer creates a server answering queries against store, loaded from indexPath.
func NewServer(
	engine *search.Engine,
	store *vector.Store,
	indexPath string,
	cfg *config.ServerConfig,
	indexCfg *config.IndexConfig,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		engine:       engine,
		store:        store,
		indexPath:    indexPath,
		config:       cfg,
		captionField: indexCfg.CaptionField,
		topK:         indexCfg.TopK,
		logger:       logger,
	}
}

// Handler returns the router with all API routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/search", s.handleSearch)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Addr()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr), zap.String("index", s.indexPath))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Reload reads the index file again and swaps it in. On error the current store is kept.
func (s *Server) Reload() error {
	store, err := vector.LoadFile(s.indexPath)
	if err != nil {
		s.logger.Warn("reload failed, keeping previous index", zap.String("path", s.indexPath), zap.Error(err))
		return err
	}
	s.mu.Lock()
	s.store = store
	s.mu.Unlock()
	s.logger.Info("index reloaded", zap.String("path", s.indexPath), zap.Int("documents", store.Len()))
	return nil
}

func (s *Server) current() *vector.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}
