package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xela07ax/clawdjob/internal/domain"
)

const (
	DefaultActivityLimit = 50

	submissionPreviewLen = 50
	submissionSource     = "user_submission"
)

var (
	ErrInvalidActivityType = errors.New("invalid activity type")
	ErrMissingJobFields    = errors.New("missing jobUrl or description")
)

type ActivityRepository interface {
	GetActivityLogs(ctx context.Context, limit int) ([]domain.ActivityLog, error)
	AddActivityLog(ctx context.Context, entry domain.ActivityLog) (domain.ActivityLog, error)
}

// ActivityInput тело POST /api/activities
type ActivityInput struct {
	AgentID string                 `json:"agentId"`
	Type    domain.ActivityType    `json:"type"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details"`
}

type ActivityService struct {
	repo   ActivityRepository
	logger *zap.Logger
}

func NewActivityService(repo ActivityRepository, logger *zap.Logger) *ActivityService {
	return &ActivityService{repo: repo, logger: logger.Named("activity-service")}
}

// List limit <= 0 заменяется на значение по умолчанию
func (s *ActivityService) List(ctx context.Context, limit int) ([]domain.ActivityLog, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	logs, err := s.repo.GetActivityLogs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("activity_service: list: %w", err)
	}
	return logs, nil
}

func (s *ActivityService) Add(ctx context.Context, in ActivityInput) (domain.ActivityLog, error) {
	if !in.Type.Valid() {
		return domain.ActivityLog{}, ErrInvalidActivityType
	}
	if in.AgentID == "" {
		in.AgentID = domain.DefaultAgentID
	}

	entry, err := s.repo.AddActivityLog(ctx, domain.ActivityLog{
		AgentID:   in.AgentID,
		Type:      in.Type,
		Message:   in.Message,
		Details:   in.Details,
		Timestamp: time.Now(),
	})
	if err != nil {
		return domain.ActivityLog{}, fmt.Errorf("activity_service: add: %w", err)
	}
	return entry, nil
}

// SubmitJob фиксирует присланную пользователем вакансию в журнале. В очередь цикла она не попадает.
func (s *ActivityService) SubmitJob(ctx context.Context, jobURL, description string) error {
	if jobURL == "" || description == "" {
		return ErrMissingJobFields
	}

	preview := []rune(description)
	if len(preview) > submissionPreviewLen {
		preview = preview[:submissionPreviewLen]
	}

	_, err := s.repo.AddActivityLog(ctx, domain.ActivityLog{
		AgentID: domain.DefaultAgentID,
		Type:    domain.ActivityJobFound,
		Message: fmt.Sprintf("User submitted job: %s...", string(preview)),
		Details: map[string]interface{}{
			"jobUrl":      jobURL,
			"description": description,
			"source":      submissionSource,
		},
		Timestamp: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("activity_service: submit job: %w", err)
	}

	s.logger.Info("job submitted by user", zap.String("job_url", jobURL))
	return nil
}
