package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"autopress/internal/core"
)

// HealthResponse is the /health payload
type HealthResponse struct {
	Status string `json:"status"`
}

// CreateArticleRequest is the POST /api/articles payload
type CreateArticleRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ContentType string `json:"content_type"`
}

// ErrorResponse is the shape of every error payload
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// handleCreateArticle handles POST /api/articles: it runs the pipeline for an
// externally requested subject and returns the run outcome.
func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	var req CreateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		s.respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	contentType, ok := parseContentType(req.ContentType)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "unknown content_type: "+req.ContentType)
		return
	}

	subject := &core.Subject{
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		Origin:      core.OriginExternalRequest,
		ContentType: contentType,
	}

	outcome := s.runner.RunWithSubject(r.Context(), subject)

	status := http.StatusCreated
	if outcome.Status != core.StatusPublished {
		status = http.StatusBadGateway
	}
	s.respondJSON(w, status, outcome)
}

// handleTriggerRun handles POST /api/runs: a full unattended run, subject
// selection included.
func (s *Server) handleTriggerRun(w http.ResponseWriter, r *http.Request) {
	outcome := s.runner.RunOnce(r.Context())

	status := http.StatusCreated
	if outcome.Status != core.StatusPublished {
		status = http.StatusBadGateway
	}
	s.respondJSON(w, status, outcome)
}

// handleListRuns handles GET /api/runs
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := s.runLog.RecentRuns(limit)
	if err != nil {
		s.log.Error("listing runs failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to read run log")
		return
	}
	if runs == nil {
		runs = []core.PublishOutcome{}
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"data": runs,
	})
}

// parseContentType maps a request value onto a known content type. An empty
// value falls back to the generic article type.
func parseContentType(value string) (core.ContentType, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return core.ContentTypeArticle, true
	}
	for _, ct := range core.ContentTypes() {
		if string(ct) == value {
			return ct, true
		}
	}
	return "", false
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("encoding response failed", "error", err)
	}
}

// respondError writes a JSON error response
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: message})
}
