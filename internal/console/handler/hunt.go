package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/xela07ax/clawdjob/internal/engine"
)

type HuntHandler struct {
	runner engine.HuntRunner
	logger *zap.Logger
}

func NewHuntHandler(runner engine.HuntRunner, logger *zap.Logger) *HuntHandler {
	return &HuntHandler{runner: runner, logger: logger.Named("hunt-handler")}
}

type huntResponse struct {
	Success bool `json:"success"`
	engine.HuntResult
}

// Run POST /api/hunt. Синхронный: ответ приходит после завершения цикла.
func (h *HuntHandler) Run(w http.ResponseWriter, r *http.Request) {
	res, err := h.runner.Run(r.Context())
	if err != nil {
		h.logger.Error("job hunt failed", zap.String("trace_id", engine.TraceID(r.Context())), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Job hunting cycle failed",
			Details: err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, huntResponse{Success: true, HuntResult: res})
}
