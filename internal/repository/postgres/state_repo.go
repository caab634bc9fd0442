package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xela07ax/clawdjob/internal/domain"
)

// Состояние агента хранится одной строкой
const stateKey = "default"

func (s *Store) GetAgentState(ctx context.Context) (domain.AgentState, error) {
	var (
		state domain.AgentState
		task  sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT status, last_active, current_task FROM agent_state WHERE agent_id = $1`, stateKey).
		Scan(&state.Status, &state.LastActive, &task)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultAgentState(time.Now()), nil
	}
	if err != nil {
		return domain.DefaultAgentState(time.Now()), fmt.Errorf("postgres: get agent state: %w", err)
	}
	state.CurrentTask = task.String
	return state, nil
}

// SetAgentState upsert: пустые поля обновления оставляют текущее значение
func (s *Store) SetAgentState(ctx context.Context, update domain.AgentStateUpdate) (domain.AgentState, error) {
	var (
		state domain.AgentState
		task  sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO agent_state (agent_id, status, last_active, current_task)
		 VALUES ($1, COALESCE(NULLIF($2::text, ''), 'idle'), NOW(), NULLIF($3::text, ''))
		 ON CONFLICT (agent_id) DO UPDATE SET
			status = COALESCE(NULLIF($2::text, ''), agent_state.status),
			current_task = COALESCE(NULLIF($3::text, ''), agent_state.current_task),
			last_active = NOW()
		 RETURNING status, last_active, current_task`,
		stateKey, string(update.Status), update.CurrentTask).
		Scan(&state.Status, &state.LastActive, &task)
	if err != nil {
		return state, fmt.Errorf("postgres: set agent state: %w", err)
	}
	state.CurrentTask = task.String
	return state, nil
}
