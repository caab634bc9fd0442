// Package repository описывает единый контракт хранилища и выбирает бэкенд по конфигурации.
package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xela07ax/clawdjob/internal/domain"
	"github.com/xela07ax/clawdjob/internal/infra"
	"github.com/xela07ax/clawdjob/internal/repository/filestore"
	"github.com/xela07ax/clawdjob/internal/repository/postgres"
)

// Store контракт персистентности. Ошибки возвращаются явно, решение о деградации
// (пустой список, нули) принимает вызывающая сторона.
type Store interface {
	GetApplications(ctx context.Context) ([]domain.Application, error)
	SaveApplication(ctx context.Context, app *domain.Application) error
	// UpdateApplicationStatus возвращает domain.ErrApplicationNotFound, если id не найден
	UpdateApplicationStatus(ctx context.Context, id string, status domain.ApplicationStatus, responseMessage string) (*domain.Application, error)

	GetActivityLogs(ctx context.Context, limit int) ([]domain.ActivityLog, error)
	// AddActivityLog присваивает id и возвращает сохраненную запись
	AddActivityLog(ctx context.Context, entry domain.ActivityLog) (domain.ActivityLog, error)

	GetDiscoveredJobs(ctx context.Context) ([]domain.JobListing, error)
	// SaveDiscoveredJob молча игнорирует вакансию с уже известным URL
	SaveDiscoveredJob(ctx context.Context, job domain.JobListing) error

	GetAgentState(ctx context.Context) (domain.AgentState, error)
	SetAgentState(ctx context.Context, update domain.AgentStateUpdate) (domain.AgentState, error)

	Ping(ctx context.Context) error
	Close()
}

var (
	_ Store = (*filestore.Store)(nil)
	_ Store = (*postgres.Store)(nil)
)

// Open выбирает бэкенд один раз при старте: есть database.url — Postgres, иначе JSON-файлы.
func Open(ctx context.Context, cfg *infra.Config, logger *zap.Logger) (Store, error) {
	if cfg.Database.URL != "" {
		st, err := postgres.Connect(ctx, postgres.Options{
			URL:             cfg.Database.URL,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			ConnectAttempts: cfg.Database.ConnectAttempts,
			ActivityLimit:   cfg.Storage.ActivityLimit,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("repository: postgres backend: %w", err)
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, fmt.Errorf("repository: postgres migrate: %w", err)
		}
		logger.Info("storage backend selected", zap.String("backend", "postgres"))
		return st, nil
	}

	st, err := filestore.New(cfg.Storage.DataDir, cfg.Storage.ActivityLimit)
	if err != nil {
		return nil, fmt.Errorf("repository: file backend: %w", err)
	}
	logger.Info("storage backend selected", zap.String("backend", "file"), zap.String("dir", cfg.Storage.DataDir))
	return st, nil
}
