package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xela07ax/clawdjob/internal/domain"
	"github.com/xela07ax/clawdjob/internal/identity"
)

// AgentRepository описывает требования к хранилищу для карточки агента
type AgentRepository interface {
	GetAgentState(ctx context.Context) (domain.AgentState, error)
	GetApplications(ctx context.Context) ([]domain.Application, error)
}

// AgentOverview ответ GET /api/agent
type AgentOverview struct {
	Agent    domain.Agent      `json:"agent"`
	Stats    domain.AgentStats `json:"stats"`
	Thoughts string            `json:"thoughts"`
	Resume   string            `json:"resume"`
}

type AgentService struct {
	agent  domain.Agent
	repo   AgentRepository
	logger *zap.Logger
}

func NewAgentService(agent domain.Agent, repo AgentRepository, logger *zap.Logger) *AgentService {
	return &AgentService{
		agent:  agent,
		repo:   repo,
		logger: logger.Named("agent-service"),
	}
}

// Overview персона с подмешанным состоянием, статистика, мысли и резюме
func (s *AgentService) Overview(ctx context.Context) (*AgentOverview, error) {
	state, err := s.repo.GetAgentState(ctx)
	if err != nil {
		return nil, fmt.Errorf("agent_service: state: %w", err)
	}
	apps, err := s.repo.GetApplications(ctx)
	if err != nil {
		return nil, fmt.Errorf("agent_service: applications: %w", err)
	}

	agent := s.agent
	agent.Status = state.Status
	agent.CurrentTask = state.CurrentTask
	lastActive := state.LastActive
	agent.LastActive = &lastActive

	return &AgentOverview{
		Agent:    agent,
		Stats:    domain.CalculateStats(apps, s.agent.ID),
		Thoughts: Thoughts(apps),
		Resume:   identity.Resume(s.agent),
	}, nil
}

// Thoughts короткая фраза "о чем думает агент" для дашборда
func Thoughts(apps []domain.Application) string {
	var pending, interviews int
	for _, app := range apps {
		switch app.Status {
		case domain.AppApplied:
			pending++
		case domain.AppInterviewScheduled:
			interviews++
		}
	}

	parts := []string{fmt.Sprintf("Currently tracking %d applications.", len(apps))}
	if pending > 0 {
		parts = append(parts, fmt.Sprintf("Waiting on %d responses.", pending))
	}
	if interviews > 0 {
		parts = append(parts, fmt.Sprintf("%d interview(s) scheduled!", interviews))
	}
	parts = append(parts, "Continuously searching for new opportunities...")
	return strings.Join(parts, " ")
}
