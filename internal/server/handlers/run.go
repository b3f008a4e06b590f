// internal/server/handlers/run.go

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sovlens/internal/adapter/storage"
	domainanalysis "sovlens/internal/domain/analysis"
	"sovlens/internal/service/analysis"
)

// RunHandler handles analysis-run HTTP requests
type RunHandler struct {
	runner *analysis.Runner
}

// NewRunHandler creates a new run handler
func NewRunHandler(runner *analysis.Runner) *RunHandler {
	return &RunHandler{
		runner: runner,
	}
}

// CreateRun starts a new analysis run
func (h *RunHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req domainanalysis.Request
	if r.Body != nil {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	run, err := h.runner.StartRun(r.Context(), req)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to start run", err)
		return
	}

	respondWithJSON(w, http.StatusAccepted, run)
}

// ListRuns returns recent analysis runs
func (h *RunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	filter := domainanalysis.Filter{
		Status: domainanalysis.Status(r.URL.Query().Get("status")),
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		filter.Limit = limit
	}

	runs, err := h.runner.ListRuns(r.Context(), filter)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list runs", err)
		return
	}

	respondWithJSON(w, http.StatusOK, runs)
}

// GetRun returns a specific run by ID
func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing run ID", nil)
		return
	}

	run, err := h.runner.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Run not found", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to get run", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, run)
}

// GetScores returns the score matrix of a run
func (h *RunHandler) GetScores(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing run ID", nil)
		return
	}

	scores, err := h.runner.GetScores(r.Context(), id)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get scores", err)
		return
	}

	respondWithJSON(w, http.StatusOK, scores)
}

// GetInsights returns the insights of a run
func (h *RunHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing run ID", nil)
		return
	}

	insights, err := h.runner.GetInsights(r.Context(), id)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get insights", err)
		return
	}

	respondWithJSON(w, http.StatusOK, insights)
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	response := map[string]string{"error": message}
	if err != nil && code < 500 {
		response["detail"] = err.Error()
	}

	jsonResponse, _ := json.Marshal(response)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(jsonResponse)
}
