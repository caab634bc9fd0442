package service

import (
	"context"
	"fmt"

	"github.com/xela07ax/clawdjob/internal/domain"
)

type JobRepository interface {
	GetDiscoveredJobs(ctx context.Context) ([]domain.JobListing, error)
}

type JobService struct {
	repo JobRepository
}

func NewJobService(repo JobRepository) *JobService {
	return &JobService{repo: repo}
}

func (s *JobService) List(ctx context.Context) ([]domain.JobListing, error) {
	jobs, err := s.repo.GetDiscoveredJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("job_service: list: %w", err)
	}
	return jobs, nil
}
