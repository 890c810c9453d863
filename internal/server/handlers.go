package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hyperjump/vecindex/internal/search"
	"go.uber.org/zap"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query search.Query
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if query.K <= 0 {
		query.K = s.topK
	}
	if query.CaptionField == "" {
		query.CaptionField = s.captionField
	}
	s.logger.Debug("search request", zap.String("query", query.Text), zap.Int("k", query.K))
	response, err := s.engine.Search(r.Context(), s.current(), &query)
	if err != nil {
		if errors.Is(err, search.ErrEmptyQuery) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	store := s.current()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"documents":  store.Len(),
		"dimensions": store.Dimensions(),
		"index_path": s.indexPath,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
