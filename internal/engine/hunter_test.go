package engine

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xela07ax/clawdjob/internal/domain"
	"github.com/xela07ax/clawdjob/internal/llm"
	"github.com/xela07ax/clawdjob/internal/repository"
	"github.com/xela07ax/clawdjob/internal/repository/filestore"
)

type staticSearcher struct{ jobs []domain.JobListing }

func (s staticSearcher) SearchJobs(context.Context) []domain.JobListing { return s.jobs }

type fixedAdvisor struct {
	score int
	apply bool
	// gate, если задан, блокирует оценку до закрытия канала
	gate    chan struct{}
	entered chan struct{}
	once    sync.Once
}

func (a *fixedAdvisor) AnalyzeJobFit(context.Context, domain.JobListing) llm.FitAnalysis {
	if a.gate != nil {
		a.once.Do(func() { close(a.entered) })
		<-a.gate
	}
	return llm.FitAnalysis{Score: a.score, Reasons: []string{"Not remote enough"}, ShouldApply: a.apply}
}

func (a *fixedAdvisor) GenerateCoverLetter(_ context.Context, job domain.JobListing) string {
	return "Dear " + job.Company
}

type failingAppsStore struct {
	repository.Store
}

func (failingAppsStore) GetApplications(context.Context) ([]domain.Application, error) {
	return nil, errors.New("disk on fire")
}

type stubLocker struct {
	ok       bool
	err      error
	released bool
}

func (l *stubLocker) Acquire(context.Context) (func(), bool, error) {
	if l.err != nil || !l.ok {
		return nil, l.ok, l.err
	}
	return func() { l.released = true }, true, nil
}

func newStore(t *testing.T) *filestore.Store {
	t.Helper()
	st, err := filestore.New(t.TempDir(), 0)
	require.NoError(t, err)
	return st
}

func newHunter(store repository.Store, searcher JobSearcher, advisor FitAdvisor, opts HunterOptions) *Hunter {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(7, 7))
	}
	return NewHunter(store, searcher, advisor, opts, zap.NewNop())
}

func listing(id, url string) domain.JobListing {
	return domain.JobListing{ID: id, Title: "Assistant " + id, Company: "Co " + id, URL: url, Location: "Remote"}
}

func TestHunter_EmptySourcesUseMockJobs(t *testing.T) {
	st := newStore(t)
	h := newHunter(st, staticSearcher{}, &fixedAdvisor{score: 90, apply: true}, HunterOptions{})

	res, err := h.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, res.JobsFound)
	assert.Equal(t, 3, res.ApplicationsSubmitted)
	assert.False(t, res.Skipped)
	assert.NotEmpty(t, res.TraceID)

	state, err := st.GetAgentState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaiting, state.Status)
	assert.Equal(t, "Waiting for responses...", state.CurrentTask)

	require.NotEmpty(t, res.Logs)
	assert.Equal(t, domain.ActivitySearchStarted, res.Logs[0].Type)
	assert.Equal(t, "No live jobs found, using demo data for testing", res.Logs[1].Message)
	assert.Equal(t, "Found 5 potential job listings", res.Logs[2].Message)
	last := res.Logs[len(res.Logs)-1]
	assert.Equal(t, domain.ActivityStatusUpdate, last.Type)
	assert.Equal(t, "Cycle complete: 3 applications submitted", last.Message)

	discovered, err := st.GetDiscoveredJobs(context.Background())
	require.NoError(t, err)
	assert.Len(t, discovered, 3)
}

func TestHunter_NeverAppliesTwiceToSameURL(t *testing.T) {
	st := newStore(t)
	h := newHunter(st, staticSearcher{}, &fixedAdvisor{score: 90, apply: true}, HunterOptions{})
	ctx := context.Background()

	first, err := h.Run(ctx)
	require.NoError(t, err)
	second, err := h.Run(ctx)
	require.NoError(t, err)
	third, err := h.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, first.ApplicationsSubmitted)
	assert.Equal(t, 2, second.ApplicationsSubmitted)
	assert.Equal(t, 0, third.ApplicationsSubmitted)

	apps, err := st.GetApplications(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 5)

	seen := map[string]bool{}
	for _, app := range apps {
		assert.False(t, seen[app.Job.URL], "duplicate application for %s", app.Job.URL)
		seen[app.Job.URL] = true
		assert.Equal(t, domain.AppApplied, app.Status)
		assert.True(t, strings.HasPrefix(app.ID, "app-"))
	}

	state, err := st.GetAgentState(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIdle, state.Status)
	assert.Equal(t, "No new jobs to apply to - all listings already processed", third.Logs[len(third.Logs)-1].Message)
}

func TestHunter_DuplicateURLWithinCycle(t *testing.T) {
	st := newStore(t)
	searcher := staticSearcher{jobs: []domain.JobListing{
		listing("1", "https://jobs.example/a"),
		listing("2", "https://jobs.example/a"),
		listing("3", "https://jobs.example/b"),
	}}
	h := newHunter(st, searcher, &fixedAdvisor{score: 80, apply: true}, HunterOptions{})

	res, err := h.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.JobsFound)
	assert.Equal(t, 2, res.ApplicationsSubmitted)
}

func TestHunter_SkipsPoorFit(t *testing.T) {
	st := newStore(t)
	searcher := staticSearcher{jobs: []domain.JobListing{listing("1", "https://jobs.example/a")}}
	h := newHunter(st, searcher, &fixedAdvisor{score: 65, apply: false}, HunterOptions{})

	res, err := h.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.ApplicationsSubmitted)

	var messages []string
	for _, l := range res.Logs {
		messages = append(messages, l.Message)
	}
	assert.Contains(t, messages, "Skipping (score: 65/100) - Not remote enough")

	apps, err := st.GetApplications(context.Background())
	require.NoError(t, err)
	assert.Empty(t, apps)

	state, err := st.GetAgentState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaiting, state.Status)
}

func TestHunter_ConcurrentRunIsSkipped(t *testing.T) {
	st := newStore(t)
	advisor := &fixedAdvisor{score: 90, apply: true, gate: make(chan struct{}), entered: make(chan struct{})}
	h := newHunter(st, staticSearcher{jobs: []domain.JobListing{listing("1", "https://jobs.example/a")}}, advisor, HunterOptions{})

	done := make(chan HuntResult, 1)
	go func() {
		res, _ := h.Run(context.Background())
		done <- res
	}()

	<-advisor.entered
	assert.True(t, h.Running())

	skipped, err := h.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, skipped.Skipped)
	assert.Equal(t, 0, skipped.JobsFound)
	assert.Empty(t, skipped.Logs)

	close(advisor.gate)
	first := <-done
	assert.False(t, first.Skipped)
	assert.Equal(t, 1, first.ApplicationsSubmitted)
	assert.False(t, h.Running())
}

func TestHunter_CancelledContextStillCompletes(t *testing.T) {
	st := newStore(t)
	h := newHunter(st, staticSearcher{}, &fixedAdvisor{score: 90, apply: true}, HunterOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := h.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, res.ApplicationsSubmitted)
}

func TestHunter_TraceIDFromContext(t *testing.T) {
	h := newHunter(newStore(t), staticSearcher{}, &fixedAdvisor{apply: false}, HunterOptions{})

	res, err := h.Run(WithTraceID(context.Background(), "trace-123"))
	require.NoError(t, err)
	assert.Equal(t, "trace-123", res.TraceID)
}

func TestHunter_ApplicationsFailureAborts(t *testing.T) {
	st := failingAppsStore{Store: newStore(t)}
	h := newHunter(st, staticSearcher{}, &fixedAdvisor{apply: true}, HunterOptions{})

	_, err := h.Run(context.Background())
	require.Error(t, err)
	assert.False(t, h.Running())
}

func TestHunter_Locker(t *testing.T) {
	t.Run("held elsewhere", func(t *testing.T) {
		h := newHunter(newStore(t), staticSearcher{}, &fixedAdvisor{apply: true}, HunterOptions{Locker: &stubLocker{ok: false}})
		res, err := h.Run(context.Background())
		require.NoError(t, err)
		assert.True(t, res.Skipped)
	})

	t.Run("acquired and released", func(t *testing.T) {
		l := &stubLocker{ok: true}
		h := newHunter(newStore(t), staticSearcher{}, &fixedAdvisor{apply: true}, HunterOptions{Locker: l})
		res, err := h.Run(context.Background())
		require.NoError(t, err)
		assert.False(t, res.Skipped)
		assert.True(t, l.released)
	})

	t.Run("backend error", func(t *testing.T) {
		h := newHunter(newStore(t), staticSearcher{}, &fixedAdvisor{apply: true}, HunterOptions{Locker: &stubLocker{err: errors.New("redis down")}})
		_, err := h.Run(context.Background())
		assert.Error(t, err)
		assert.False(t, h.Running())
	})
}

func TestHunter_PauseBetweenApplications(t *testing.T) {
	h := newHunter(newStore(t), staticSearcher{}, &fixedAdvisor{score: 90, apply: true}, HunterOptions{Pause: 30 * time.Millisecond})

	started := time.Now()
	res, err := h.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, res.ApplicationsSubmitted)
	// Три отклика: две паузы, первый без ожидания
	assert.GreaterOrEqual(t, time.Since(started), 50*time.Millisecond)
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metrics
				}
			}
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestHunter_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	h := newHunter(newStore(t), staticSearcher{}, &fixedAdvisor{score: 90, apply: true}, HunterOptions{Metrics: m})

	_, err := h.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1.0, counterValue(t, reg, "clawdjob_hunt_cycles_total", map[string]string{"result": "ok"}))
	assert.Equal(t, 5.0, counterValue(t, reg, "clawdjob_jobs_found_total", nil))
	assert.Equal(t, 3.0, counterValue(t, reg, "clawdjob_applications_submitted_total", nil))

	m.ObserveFetch("remoteok", "error", 0)
	m.ObserveModelCall("analyze", "heuristic")
	m.ObserveFeedDropped()
	assert.Equal(t, 1.0, counterValue(t, reg, "clawdjob_source_fetch_total", map[string]string{"source": "remoteok", "result": "error"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "clawdjob_model_calls_total", map[string]string{"operation": "analyze"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "clawdjob_feed_dropped_total", nil))
}
