package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"adforge/pkg/catalog"
	"adforge/pkg/model"
)

// JobManager drives generation jobs.
type JobManager interface {
	Start(ctx context.Context, productID string) (string, error)
	CheckStatus(ctx context.Context, jobID string) model.JobView
}

// AdHandler handles ad generation endpoints.
type AdHandler struct {
	jobs JobManager
}

// NewAdHandler creates a new AdHandler.
func NewAdHandler(jobs JobManager) *AdHandler {
	return &AdHandler{jobs: jobs}
}

// GenerateRequest is the body of a generation request.
type GenerateRequest struct {
	ProductID string `json:"product_id"`
}

// GenerateResponse acknowledges a started job.
type GenerateResponse struct {
	Status  string `json:"status"`
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

// HandleGenerate handles POST /api/ads/generate
func (h *AdHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	jobID, err := h.jobs.Start(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		slog.Error("Failed to start video generation", "product_id", req.ProductID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start video generation")
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		Status:  "success",
		JobID:   jobID,
		Message: "Video generation started",
	})
}

// HandleStatus handles GET /api/ads/status/{job_id}
func (h *AdHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")

	view := h.jobs.CheckStatus(r.Context(), jobID)

	code := http.StatusOK
	if view.Status == model.StatusNotFound {
		code = http.StatusNotFound
	}
	writeJSON(w, code, view)
}

// ValidateRequest is the body of a validation request.
type ValidateRequest struct {
	JobID    string `json:"job_id"`
	Approved bool   `json:"approved"`
}

// HandleValidate handles POST /api/ads/validate. The decision is recorded in
// the log only; moving or deleting rejected videos is left to operators.
func (h *AdHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.JobID == "" {
		writeError(w, http.StatusBadRequest, "job_id is required")
		return
	}

	verdict := "rejected"
	if req.Approved {
		verdict = "approved"
	}
	slog.Info("Video validation", "job_id", req.JobID, "verdict", verdict)

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Video " + verdict + " successfully",
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
