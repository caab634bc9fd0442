package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/xela07ax/clawdjob/internal/domain"
)

type StatsRepository interface {
	GetApplications(ctx context.Context) ([]domain.Application, error)
}

type StatsService struct {
	agentID string
	repo    StatsRepository
	logger  *zap.Logger
}

func NewStatsService(agentID string, repo StatsRepository, logger *zap.Logger) *StatsService {
	return &StatsService{agentID: agentID, repo: repo, logger: logger.Named("stats-service")}
}

// Stats сбой хранилища дает нулевую статистику, дашборд не должен падать
func (s *StatsService) Stats(ctx context.Context) domain.AgentStats {
	apps, err := s.repo.GetApplications(ctx)
	if err != nil {
		s.logger.Error("failed to load applications for stats", zap.Error(err))
		return domain.AgentStats{}
	}
	return domain.CalculateStats(apps, s.agentID)
}
