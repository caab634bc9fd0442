package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/xela07ax/clawdjob/internal/domain"
)

type JobLister interface {
	List(ctx context.Context) ([]domain.JobListing, error)
}

type JobHandler struct {
	service JobLister
	logger  *zap.Logger
}

func NewJobHandler(s JobLister, logger *zap.Logger) *JobHandler {
	return &JobHandler{service: s, logger: logger.Named("job-handler")}
}

// List GET /api/jobs
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to get discovered jobs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to get jobs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": jobs})
}
