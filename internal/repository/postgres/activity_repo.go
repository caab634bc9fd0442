package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/xela07ax/clawdjob/internal/domain"
)

func (s *Store) GetActivityLogs(ctx context.Context, limit int) ([]domain.ActivityLog, error) {
	if limit <= 0 {
		limit = s.activityLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agent_id, type, message, metadata, timestamp
		 FROM activity_logs ORDER BY timestamp DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: query activity: %w", err)
	}
	defer rows.Close()

	logs := make([]domain.ActivityLog, 0, limit)
	for rows.Next() {
		var (
			entry    domain.ActivityLog
			metadata []byte
		)
		if err := rows.Scan(&entry.ID, &entry.AgentID, &entry.Type, &entry.Message, &metadata, &entry.Timestamp); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &entry.Details); err != nil {
				return nil, fmt.Errorf("postgres: decode metadata of %s: %w", entry.ID, err)
			}
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

// AddActivityLog вставка и обрезка журнала в одной транзакции
func (s *Store) AddActivityLog(ctx context.Context, entry domain.ActivityLog) (domain.ActivityLog, error) {
	entry.ID = "log-" + uuid.NewString()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	var metadata interface{}
	if len(entry.Details) > 0 {
		raw, err := json.Marshal(entry.Details)
		if err != nil {
			return entry, fmt.Errorf("postgres: encode metadata: %w", err)
		}
		metadata = string(raw)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return entry, fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO activity_logs (id, agent_id, type, message, metadata, timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.AgentID, string(entry.Type), entry.Message, metadata, entry.Timestamp); err != nil {
		return entry, fmt.Errorf("postgres: insert activity: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM activity_logs WHERE id IN (
			SELECT id FROM activity_logs ORDER BY timestamp DESC OFFSET $1
		)`, s.activityLimit); err != nil {
		return entry, fmt.Errorf("postgres: trim activity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return entry, fmt.Errorf("postgres: commit: %w", err)
	}
	return entry, nil
}
