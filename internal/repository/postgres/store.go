package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avast/retry-go/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // Драйвер Postgres
	"go.uber.org/zap"
)

const defaultActivityLimit = 1000

type Options struct {
	URL             string
	MaxConns        int
	MinConns        int
	ConnectAttempts uint
	ActivityLimit   int
}

// Store реализует хранилище поверх одного пула database/sql
type Store struct {
	db            *sql.DB
	activityLimit int
	logger        *zap.Logger
}

// Connect открывает пул и дожидается ответа базы: при старте в docker-compose
// Postgres часто поднимается позже приложения.
func Connect(ctx context.Context, opts Options, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("pgx", opts.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if opts.MaxConns > 0 {
		db.SetMaxOpenConns(opts.MaxConns)
	}
	if opts.MinConns > 0 {
		db.SetMaxIdleConns(opts.MinConns)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	attempts := opts.ConnectAttempts
	if attempts == 0 {
		attempts = 5
	}

	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(500*time.Millisecond),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("postgres not ready, retrying", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err := r.Do(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	limit := opts.ActivityLimit
	if limit <= 0 {
		limit = defaultActivityLimit
	}

	return &Store{db: db, activityLimit: limit, logger: logger.Named("postgres")}, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS applications (
		id               TEXT PRIMARY KEY,
		agent_id         TEXT NOT NULL,
		job_id           TEXT NOT NULL,
		job_data         JSONB NOT NULL,
		status           TEXT NOT NULL,
		cover_letter     TEXT NOT NULL DEFAULT '',
		applied_at       TIMESTAMPTZ NOT NULL,
		response_at      TIMESTAMPTZ,
		response_message TEXT,
		interview_date   TIMESTAMPTZ,
		notes            TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS activity_logs (
		id        TEXT PRIMARY KEY,
		agent_id  TEXT NOT NULL,
		type      TEXT NOT NULL,
		message   TEXT NOT NULL,
		metadata  JSONB,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS activity_logs_timestamp_idx ON activity_logs (timestamp DESC)`,
	`CREATE TABLE IF NOT EXISTS discovered_jobs (
		id            TEXT PRIMARY KEY,
		title         TEXT NOT NULL,
		company       TEXT NOT NULL,
		location      TEXT NOT NULL,
		salary        TEXT NOT NULL DEFAULT '',
		description   TEXT NOT NULL DEFAULT '',
		requirements  JSONB NOT NULL DEFAULT '[]',
		platform      TEXT NOT NULL,
		url           TEXT NOT NULL UNIQUE,
		posted_at     TIMESTAMPTZ NOT NULL,
		discovered_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS agent_state (
		agent_id     TEXT PRIMARY KEY DEFAULT 'default',
		status       TEXT NOT NULL DEFAULT 'idle',
		last_active  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		current_task TEXT
	)`,
}

// Migrate создает таблицы, если их еще нет. Повторный вызов безопасен.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Warn("close pool", zap.Error(err))
	}
}
