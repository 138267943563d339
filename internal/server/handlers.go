// ABOUTME: HTTP handlers for sessions, messages and product search
// ABOUTME: Domain errors map to status codes in one place
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/harper/shopassist/internal/llm"
	"github.com/harper/shopassist/internal/models"
	"github.com/harper/shopassist/internal/session"
	"github.com/harper/shopassist/internal/storage"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// MessageRequest is the body of POST /sessions/{id}/messages
type MessageRequest struct {
	Content string `json:"content"`
}

// MessageResponse carries the assistant's answer
type MessageResponse struct {
	SessionID string             `json:"session_id"`
	Message   models.ChatMessage `json:"message"`
}

// SearchRequest is the body of POST /search
type SearchRequest struct {
	Query string `json:"query"`
	Limit *int   `json:"limit,omitempty"`
}

// SearchResponse lists matching products best first
type SearchResponse struct {
	Query   string                 `json:"query"`
	Results []storage.SearchResult `json:"results"`
}

// HistoryResponse is a session's current conversation
type HistoryResponse struct {
	SessionID string               `json:"session_id"`
	Messages  []models.ChatMessage `json:"messages"`
}

// DefaultSearchLimit applies when a search request gives no limit
const DefaultSearchLimit = 5

func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, statusCode int, err string, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: err, Message: message})
}

// respondServiceError maps domain errors to HTTP responses
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, llm.ErrTokenLimitExceeded):
		respondError(w, http.StatusRequestEntityTooLarge, "token_limit_exceeded", err.Error())
	case errors.Is(err, storage.ErrInvalidK):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, llm.ErrBackendFailure):
		s.logger.Warn("backend failure", zap.Error(err))
		respondError(w, http.StatusBadGateway, "bad_gateway", err.Error())
	default:
		s.logger.Error("internal server error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "An internal error occurred")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"sessions": s.sessions.List()})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	respondJSON(w, http.StatusCreated, sess.Info())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Drop(chi.URLParam(r, "id")); err != nil {
		s.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	history, err := s.sessions.History(id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if history == nil {
		history = []models.ChatMessage{}
	}
	respondJSON(w, http.StatusOK, HistoryResponse{SessionID: id, Messages: history})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req MessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Content == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "content is required")
		return
	}

	answer, err := s.sessions.Respond(r.Context(), id, req.Content)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{SessionID: id, Message: answer})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Reset(id); err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"session_id": id, "reset": true})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Query == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "query is required")
		return
	}

	limit := DefaultSearchLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	results, err := s.searcher.SearchProducts(r.Context(), req.Query, limit)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, SearchResponse{Query: req.Query, Results: results})
}
