package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xela07ax/clawdjob/internal/domain"
)

const applicationColumns = `id, agent_id, job_id, job_data, status, cover_letter, applied_at,
	response_at, response_message, interview_date, notes`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (domain.Application, error) {
	var (
		app                 domain.Application
		jobData             []byte
		respAt, interviewAt sql.NullTime
		respMsg, notes      sql.NullString
	)
	err := row.Scan(&app.ID, &app.AgentID, &app.JobID, &jobData, &app.Status, &app.CoverLetter,
		&app.AppliedAt, &respAt, &respMsg, &interviewAt, &notes)
	if err != nil {
		return app, err
	}
	if err := json.Unmarshal(jobData, &app.Job); err != nil {
		return app, fmt.Errorf("postgres: decode job_data of %s: %w", app.ID, err)
	}
	if respAt.Valid {
		t := respAt.Time
		app.ResponseAt = &t
	}
	if interviewAt.Valid {
		t := interviewAt.Time
		app.InterviewDate = &t
	}
	app.ResponseMessage = respMsg.String
	app.Notes = notes.String
	return app, nil
}

// GetApplications новые отклики первыми
func (s *Store) GetApplications(ctx context.Context) ([]domain.Application, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM applications ORDER BY applied_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("postgres: query applications: %w", err)
	}
	defer rows.Close()

	apps := make([]domain.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func (s *Store) SaveApplication(ctx context.Context, app *domain.Application) error {
	jobData, err := json.Marshal(app.Job)
	if err != nil {
		return fmt.Errorf("postgres: encode job: %w", err)
	}

	var respAt, interviewAt interface{}
	if app.ResponseAt != nil {
		respAt = *app.ResponseAt
	}
	if app.InterviewDate != nil {
		interviewAt = *app.InterviewDate
	}

	query := `INSERT INTO applications (` + applicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			cover_letter = EXCLUDED.cover_letter,
			response_at = EXCLUDED.response_at,
			response_message = EXCLUDED.response_message,
			interview_date = EXCLUDED.interview_date,
			notes = EXCLUDED.notes`

	_, err = s.db.ExecContext(ctx, query,
		app.ID, app.AgentID, app.JobID, string(jobData), string(app.Status), app.CoverLetter, app.AppliedAt,
		respAt, nullString(app.ResponseMessage), interviewAt, nullString(app.Notes))
	if err != nil {
		return fmt.Errorf("postgres: save application %s: %w", app.ID, err)
	}
	return nil
}

// UpdateApplicationStatus пустое сообщение не затирает уже сохраненное
func (s *Store) UpdateApplicationStatus(ctx context.Context, id string, status domain.ApplicationStatus, responseMessage string) (*domain.Application, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	query := `UPDATE applications SET
			status = $1,
			response_at = NOW(),
			response_message = COALESCE(NULLIF($2::text, ''), response_message)
		WHERE id = $3
		RETURNING ` + applicationColumns

	app, err := scanApplication(s.db.QueryRowContext(ctx, query, string(status), responseMessage, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("postgres: update application %s: %w", id, err)
	}
	return &app, nil
}
