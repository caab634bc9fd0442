package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xela07ax/clawdjob/internal/domain"
	"github.com/xela07ax/clawdjob/internal/jobs"
	"github.com/xela07ax/clawdjob/internal/llm"
	"github.com/xela07ax/clawdjob/internal/repository"
)

const (
	cycleOK      = "ok"
	cycleIdle    = "idle"
	cycleSkipped = "skipped"
	cycleError   = "error"

	DefaultMaxApplications = 3
	DefaultMockJobs        = 5
)

// JobSearcher опрос площадок, никогда не возвращает ошибку
type JobSearcher interface {
	SearchJobs(ctx context.Context) []domain.JobListing
}

// FitAdvisor оценка вакансии и сопроводительное письмо
type FitAdvisor interface {
	AnalyzeJobFit(ctx context.Context, job domain.JobListing) llm.FitAnalysis
	GenerateCoverLetter(ctx context.Context, job domain.JobListing) string
}

// HuntResult сводка одного цикла. Logs — только записи самого цикла, в порядке появления.
type HuntResult struct {
	JobsFound             int                  `json:"jobsFound"`
	ApplicationsSubmitted int                  `json:"applicationsSubmitted"`
	Logs                  []domain.ActivityLog `json:"logs"`
	Skipped               bool                 `json:"skipped,omitempty"`
	TraceID               string               `json:"traceId,omitempty"`
}

type HunterOptions struct {
	AgentID         string
	MaxApplications int
	// Pause пауза между откликами внутри цикла
	Pause    time.Duration
	MockJobs int
	Rand     *rand.Rand
	Locker   Locker
	Metrics  *Metrics
}

// Hunter цикл поиск → оценка → отклик. Одновременно выполняется не более одного цикла.
type Hunter struct {
	store    repository.Store
	searcher JobSearcher
	advisor  FitAdvisor
	opts     HunterOptions
	pacer    *rate.Limiter
	logger   *zap.Logger

	running atomic.Bool

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewHunter(store repository.Store, searcher JobSearcher, advisor FitAdvisor, opts HunterOptions, logger *zap.Logger) *Hunter {
	if opts.AgentID == "" {
		opts.AgentID = domain.DefaultAgentID
	}
	if opts.MaxApplications <= 0 {
		opts.MaxApplications = DefaultMaxApplications
	}
	if opts.MockJobs <= 0 {
		opts.MockJobs = DefaultMockJobs
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	// Один токен на паузу: первый отклик идет сразу, следующие ждут
	limit := rate.Inf
	if opts.Pause > 0 {
		limit = rate.Every(opts.Pause)
	}

	return &Hunter{
		store:    store,
		searcher: searcher,
		advisor:  advisor,
		opts:     opts,
		pacer:    rate.NewLimiter(limit, 1),
		logger:   logger.Named("hunter"),
		rnd:      rnd,
	}
}

// Running идет ли сейчас цикл в этом процессе
func (h *Hunter) Running() bool {
	return h.running.Load()
}

// Run выполняет один цикл. Если цикл уже идет (здесь или, при настроенном Locker,
// на другом инстансе), возвращает HuntResult{Skipped: true} и nil.
// Отмена ctx цикл не прерывает: начатый цикл доводится до конца.
func (h *Hunter) Run(ctx context.Context) (HuntResult, error) {
	ctx, traceID := ensureTraceID(context.WithoutCancel(ctx))
	logger := h.logger.With(zap.String("trace_id", traceID))
	started := time.Now()

	if !h.running.CompareAndSwap(false, true) {
		logger.Info("hunt already in progress, skipping")
		h.opts.Metrics.observeCycle(cycleSkipped, started, HuntResult{})
		return HuntResult{Skipped: true, Logs: []domain.ActivityLog{}, TraceID: traceID}, nil
	}
	defer h.running.Store(false)

	if h.opts.Locker != nil {
		release, ok, err := h.opts.Locker.Acquire(ctx)
		if err != nil {
			h.opts.Metrics.observeCycle(cycleError, started, HuntResult{})
			return HuntResult{TraceID: traceID}, err
		}
		if !ok {
			logger.Info("hunt lock held by another instance, skipping")
			h.opts.Metrics.observeCycle(cycleSkipped, started, HuntResult{})
			return HuntResult{Skipped: true, Logs: []domain.ActivityLog{}, TraceID: traceID}, nil
		}
		defer release()
	}

	c := &cycle{h: h, ctx: ctx, logger: logger}
	result, outcome, err := c.run()
	result.TraceID = traceID
	h.opts.Metrics.observeCycle(outcome, started, result)

	if err != nil {
		logger.Error("hunt cycle failed", zap.Error(err))
		return result, err
	}
	logger.Info("hunt cycle finished",
		zap.String("outcome", outcome),
		zap.Int("jobs_found", result.JobsFound),
		zap.Int("applications_submitted", result.ApplicationsSubmitted),
		zap.Duration("took", time.Since(started)))
	return result, nil
}

// cycle состояние одного прохода
type cycle struct {
	h      *Hunter
	ctx    context.Context
	logger *zap.Logger
	logs   []domain.ActivityLog
}

// record пишет запись в журнал и добавляет ее в сводку цикла.
// Сбой хранилища не прерывает цикл.
func (c *cycle) record(t domain.ActivityType, msg string) {
	c.logs = append(c.logs, c.log(t, msg, nil))
}

// log пишет запись в журнал без добавления в сводку
func (c *cycle) log(t domain.ActivityType, msg string, details map[string]interface{}) domain.ActivityLog {
	entry := domain.ActivityLog{
		AgentID:   c.h.opts.AgentID,
		Type:      t,
		Message:   msg,
		Details:   details,
		Timestamp: time.Now(),
	}
	saved, err := c.h.store.AddActivityLog(c.ctx, entry)
	if err != nil {
		c.logger.Warn("activity log write failed", zap.String("type", string(t)), zap.Error(err))
	}
	return saved
}

func (c *cycle) setState(status domain.AgentStatus, task string) {
	if _, err := c.h.store.SetAgentState(c.ctx, domain.AgentStateUpdate{Status: status, CurrentTask: task}); err != nil {
		c.logger.Warn("agent state write failed", zap.String("status", string(status)), zap.Error(err))
	}
}

func (c *cycle) run() (HuntResult, string, error) {
	h := c.h

	c.setState(domain.StatusSearching, "Searching for new job listings...")
	c.record(domain.ActivitySearchStarted, "Starting new job search cycle...")

	listings := h.searcher.SearchJobs(c.ctx)
	if len(listings) == 0 {
		h.rndMu.Lock()
		listings = jobs.GenerateMockJobs(h.opts.MockJobs, h.rnd)
		h.rndMu.Unlock()
		c.record(domain.ActivityThinking, "No live jobs found, using demo data for testing")
	}
	c.record(domain.ActivityJobFound, fmt.Sprintf("Found %d potential job listings", len(listings)))

	existing, err := h.store.GetApplications(c.ctx)
	if err != nil {
		// Без списка откликов нельзя гарантировать отсутствие дублей
		c.record(domain.ActivityError, "Could not load existing applications, aborting cycle")
		c.setState(domain.StatusIdle, "Waiting for new listings...")
		return c.result(len(listings), 0), cycleError, fmt.Errorf("engine: load applications: %w", err)
	}

	applied := make(map[string]struct{}, len(existing))
	for _, app := range existing {
		applied[app.Job.URL] = struct{}{}
	}

	candidates := make([]domain.JobListing, 0, len(listings))
	for _, job := range listings {
		if _, seen := applied[job.URL]; seen {
			continue
		}
		// Один и тот же URL может прийти дважды за цикл (разные площадки)
		applied[job.URL] = struct{}{}
		candidates = append(candidates, job)
	}

	if len(candidates) == 0 {
		c.record(domain.ActivityThinking, "No new jobs to apply to - all listings already processed")
		c.setState(domain.StatusIdle, "Waiting for new listings...")
		return c.result(len(listings), 0), cycleIdle, nil
	}

	c.setState(domain.StatusApplying, "Analyzing job listings...")

	if len(candidates) > h.opts.MaxApplications {
		candidates = candidates[:h.opts.MaxApplications]
	}

	submitted := 0
	for _, job := range candidates {
		if err := h.pacer.Wait(c.ctx); err != nil {
			return c.result(len(listings), submitted), cycleError, fmt.Errorf("engine: pacing: %w", err)
		}

		if err := h.store.SaveDiscoveredJob(c.ctx, job); err != nil {
			c.logger.Warn("save discovered job failed", zap.String("url", job.URL), zap.Error(err))
		}

		c.record(domain.ActivityJobAnalyzed, fmt.Sprintf("Analyzing: %s at %s", job.Title, job.Company))
		fit := h.advisor.AnalyzeJobFit(c.ctx, job)

		if !fit.ShouldApply {
			reason := ""
			if len(fit.Reasons) > 0 {
				reason = fit.Reasons[0]
			}
			c.record(domain.ActivityThinking, fmt.Sprintf("Skipping (score: %d/100) - %s", fit.Score, reason))
			continue
		}

		c.record(domain.ActivityThinking, fmt.Sprintf("Good fit (score: %d/100) - preparing application", fit.Score))
		if err := c.apply(job); err != nil {
			c.logger.Warn("application failed", zap.String("job_id", job.ID), zap.Error(err))
			c.record(domain.ActivityError, fmt.Sprintf("Failed to submit application: %v", err))
			continue
		}
		submitted++
		c.record(domain.ActivityApplicationSubmitted, fmt.Sprintf("✓ Applied to %s at %s", job.Title, job.Company))
	}

	c.setState(domain.StatusWaiting, "Waiting for responses...")
	c.record(domain.ActivityStatusUpdate, fmt.Sprintf("Cycle complete: %d applications submitted", submitted))

	return c.result(len(listings), submitted), cycleOK, nil
}

// apply пишет письмо и сохраняет отклик. Промежуточные записи идут в журнал, но не в сводку.
func (c *cycle) apply(job domain.JobListing) error {
	c.log(domain.ActivityApplicationStarted, fmt.Sprintf("Starting application for %s at %s", job.Title, job.Company), nil)
	c.log(domain.ActivityCoverLetterGenerated, "Generating personalized cover letter...", nil)

	app := &domain.Application{
		ID:          "app-" + uuid.NewString(),
		AgentID:     c.h.opts.AgentID,
		JobID:       job.ID,
		Job:         job,
		Status:      domain.AppApplied,
		CoverLetter: c.h.advisor.GenerateCoverLetter(c.ctx, job),
		AppliedAt:   time.Now(),
	}
	if err := c.h.store.SaveApplication(c.ctx, app); err != nil {
		return err
	}

	c.log(domain.ActivityApplicationSubmitted, fmt.Sprintf("Application submitted for %s at %s", job.Title, job.Company),
		map[string]interface{}{"applicationId": app.ID, "jobId": job.ID})
	return nil
}

func (c *cycle) result(found, submitted int) HuntResult {
	logs := c.logs
	if logs == nil {
		logs = []domain.ActivityLog{}
	}
	return HuntResult{JobsFound: found, ApplicationsSubmitted: submitted, Logs: logs}
}
