package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/xela07ax/clawdjob/internal/console/service"
	"github.com/xela07ax/clawdjob/internal/domain"
)

type ActivityManager interface {
	List(ctx context.Context, limit int) ([]domain.ActivityLog, error)
	Add(ctx context.Context, in service.ActivityInput) (domain.ActivityLog, error)
	SubmitJob(ctx context.Context, jobURL, description string) error
}

type ActivityHandler struct {
	service ActivityManager
	logger  *zap.Logger
}

func NewActivityHandler(s ActivityManager, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{service: s, logger: logger.Named("activity-handler")}
}

// Logs GET /api/activity → {logs}
func (h *ActivityHandler) Logs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.service.List(r.Context(), limitParam(r))
	if err != nil {
		h.logger.Error("failed to get activity logs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to get activity logs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": logs})
}

// List GET /api/activities → голый массив, при сбое пустой
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	logs, err := h.service.List(r.Context(), limitParam(r))
	if err != nil {
		h.logger.Error("failed to fetch activities", zap.Error(err))
		logs = []domain.ActivityLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

// Create POST /api/activities
func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.ActivityInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.service.Add(r.Context(), in)
	if errors.Is(err, service.ErrInvalidActivityType) {
		writeError(w, http.StatusBadRequest, "Invalid activity type")
		return
	}
	if err != nil {
		h.logger.Error("failed to create activity", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to create activity")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

type submitJobRequest struct {
	JobURL      string `json:"jobUrl"`
	Description string `json:"description"`
}

// SubmitJob POST /api/submit-job
func (h *ActivityHandler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	var req submitJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.service.SubmitJob(r.Context(), req.JobURL, req.Description)
	if errors.Is(err, service.ErrMissingJobFields) {
		writeError(w, http.StatusBadRequest, "Missing jobUrl or description")
		return
	}
	if err != nil {
		h.logger.Error("failed to submit job", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to submit job")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Job submitted successfully",
	})
}
