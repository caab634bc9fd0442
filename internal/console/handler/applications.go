package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/xela07ax/clawdjob/internal/domain"
)

type ApplicationManager interface {
	List(ctx context.Context) ([]domain.Application, error)
	UpdateStatus(ctx context.Context, id string, status domain.ApplicationStatus, responseMessage string) (*domain.Application, error)
}

type ApplicationHandler struct {
	service ApplicationManager
	logger  *zap.Logger
}

func NewApplicationHandler(s ApplicationManager, logger *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{service: s, logger: logger.Named("application-handler")}
}

type updateApplicationRequest struct {
	ApplicationID   string                   `json:"applicationId"`
	Status          domain.ApplicationStatus `json:"status"`
	ResponseMessage string                   `json:"responseMessage"`
}

// List GET /api/applications
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	apps, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to get applications", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to get applications")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"applications": apps})
}

// Update PATCH /api/applications
func (h *ApplicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ApplicationID == "" || req.Status == "" {
		writeError(w, http.StatusBadRequest, "Missing applicationId or status")
		return
	}

	app, err := h.service.UpdateStatus(r.Context(), req.ApplicationID, req.Status, req.ResponseMessage)
	switch {
	case errors.Is(err, domain.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "Invalid status")
	case errors.Is(err, domain.ErrApplicationNotFound):
		writeError(w, http.StatusNotFound, "Application not found")
	case err != nil:
		h.logger.Error("failed to update application", zap.String("application_id", req.ApplicationID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to update application")
	default:
		writeJSON(w, http.StatusOK, map[string]interface{}{"application": app})
	}
}
