package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/xela07ax/clawdjob/internal/console/service"
	"github.com/xela07ax/clawdjob/internal/domain"
)

type AgentOverviewer interface {
	Overview(ctx context.Context) (*service.AgentOverview, error)
}

type StatsProvider interface {
	Stats(ctx context.Context) domain.AgentStats
}

type AgentHandler struct {
	agents AgentOverviewer
	stats  StatsProvider
	logger *zap.Logger
}

func NewAgentHandler(agents AgentOverviewer, stats StatsProvider, logger *zap.Logger) *AgentHandler {
	return &AgentHandler{agents: agents, stats: stats, logger: logger.Named("agent-handler")}
}

// Get GET /api/agent
func (h *AgentHandler) Get(w http.ResponseWriter, r *http.Request) {
	ov, err := h.agents.Overview(r.Context())
	if err != nil {
		h.logger.Error("failed to get agent", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to get agent info")
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

// Stats GET /api/stats, всегда 200
func (h *AgentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stats.Stats(r.Context()))
}
