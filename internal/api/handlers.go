package api

import (
	"encoding/json"
	"net/http"
	"time"
)

// QueryRequest is the body for POST /api/v1/query.
type QueryRequest struct {
	Documents string   `json:"documents"`
	Questions []string `json:"questions"`
}

// QueryResponse carries one answer per question, in question order.
type QueryResponse struct {
	Answers []string `json:"answers"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.Documents == "" {
		jsonError(w, "document URL is required", http.StatusBadRequest)
		return
	}
	if len(req.Questions) == 0 {
		jsonError(w, "at least one question is required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	answers := s.service.Run(r.Context(), req.Documents, req.Questions)
	s.log.Info("query processed",
		"questions", len(req.Questions),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(QueryResponse{Answers: answers})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.service.Status(r.Context())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

func (s *Server) handleClearIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearIndex(r.Context()); err != nil {
		jsonError(w, "failed to clear index: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "cleared"})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
