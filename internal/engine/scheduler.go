package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// HuntRunner то, что планировщик запускает по таймеру
type HuntRunner interface {
	Run(ctx context.Context) (HuntResult, error)
}

// Scheduler первый цикл через initialDelay, дальше каждые interval
type Scheduler struct {
	runner       HuntRunner
	interval     time.Duration
	initialDelay time.Duration
	logger       *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(runner HuntRunner, interval, initialDelay time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		runner:       runner,
		interval:     interval,
		initialDelay: initialDelay,
		logger:       logger.Named("scheduler"),
	}
}

// Start запускает фоновый цикл. Нулевой interval выключает планировщик.
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("scheduler disabled")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)

	s.logger.Info("scheduler started",
		zap.Duration("interval", s.interval),
		zap.Duration("initial_delay", s.initialDelay))
}

// Stop останавливает таймер и дожидается текущего цикла
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(s.initialDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		res, err := s.runner.Run(ctx)
		switch {
		case err != nil:
			s.logger.Error("scheduled hunt failed", zap.Error(err))
		case res.Skipped:
			s.logger.Debug("scheduled hunt skipped", zap.String("trace_id", res.TraceID))
		}

		timer.Reset(s.interval)
	}
}
