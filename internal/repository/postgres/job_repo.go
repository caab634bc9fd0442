package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xela07ax/clawdjob/internal/domain"
)

func (s *Store) GetDiscoveredJobs(ctx context.Context) ([]domain.JobListing, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, company, location, salary, description, requirements, platform, url, posted_at, discovered_at
		 FROM discovered_jobs ORDER BY discovered_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("postgres: query jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]domain.JobListing, 0)
	for rows.Next() {
		var (
			job  domain.JobListing
			reqs []byte
		)
		if err := rows.Scan(&job.ID, &job.Title, &job.Company, &job.Location, &job.Salary, &job.Description,
			&reqs, &job.Platform, &job.URL, &job.PostedAt, &job.DiscoveredAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(reqs, &job.Requirements); err != nil {
			return nil, fmt.Errorf("postgres: decode requirements of %s: %w", job.ID, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// SaveDiscoveredJob повтор по URL гасится ограничением UNIQUE
func (s *Store) SaveDiscoveredJob(ctx context.Context, job domain.JobListing) error {
	reqs := job.Requirements
	if reqs == nil {
		reqs = []string{}
	}
	raw, err := json.Marshal(reqs)
	if err != nil {
		return fmt.Errorf("postgres: encode requirements: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO discovered_jobs (id, title, company, location, salary, description, requirements, platform, url, posted_at, discovered_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT DO NOTHING`,
		job.ID, job.Title, job.Company, job.Location, job.Salary, job.Description, string(raw),
		string(job.Platform), job.URL, job.PostedAt, job.DiscoveredAt)
	if err != nil {
		return fmt.Errorf("postgres: save job %s: %w", job.URL, err)
	}
	return nil
}
