package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/xela07ax/clawdjob/internal/domain"
)

type ApplicationRepository interface {
	GetApplications(ctx context.Context) ([]domain.Application, error)
	UpdateApplicationStatus(ctx context.Context, id string, status domain.ApplicationStatus, responseMessage string) (*domain.Application, error)
}

type ApplicationService struct {
	repo   ApplicationRepository
	logger *zap.Logger
}

func NewApplicationService(repo ApplicationRepository, logger *zap.Logger) *ApplicationService {
	return &ApplicationService{repo: repo, logger: logger.Named("application-service")}
}

// List новые отклики первыми
func (s *ApplicationService) List(ctx context.Context) ([]domain.Application, error) {
	apps, err := s.repo.GetApplications(ctx)
	if err != nil {
		return nil, fmt.Errorf("application_service: list: %w", err)
	}
	sort.SliceStable(apps, func(i, j int) bool {
		return apps[i].AppliedAt.After(apps[j].AppliedAt)
	})
	return apps, nil
}

// UpdateStatus ошибки domain.ErrInvalidStatus и domain.ErrApplicationNotFound пробрасываются как есть
func (s *ApplicationService) UpdateStatus(ctx context.Context, id string, status domain.ApplicationStatus, responseMessage string) (*domain.Application, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	app, err := s.repo.UpdateApplicationStatus(ctx, id, status, responseMessage)
	if err != nil {
		if errors.Is(err, domain.ErrApplicationNotFound) || errors.Is(err, domain.ErrInvalidStatus) {
			return nil, err
		}
		return nil, fmt.Errorf("application_service: update %s: %w", id, err)
	}

	s.logger.Info("application status updated",
		zap.String("application_id", id),
		zap.String("status", string(status)))
	return app, nil
}
