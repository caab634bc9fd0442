package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xela07ax/clawdjob/internal/console/handler"
	"github.com/xela07ax/clawdjob/internal/console/service"
	"github.com/xela07ax/clawdjob/internal/domain"
	"github.com/xela07ax/clawdjob/internal/engine"
	"github.com/xela07ax/clawdjob/internal/identity"
	"github.com/xela07ax/clawdjob/internal/llm"
	"github.com/xela07ax/clawdjob/internal/repository/filestore"
)

type emptySearcher struct{}

func (emptySearcher) SearchJobs(context.Context) []domain.JobListing { return nil }

type testEnv struct {
	srv   *ConsoleServer
	store *filestore.Store
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	st, err := filestore.New(t.TempDir(), 0)
	require.NoError(t, err)

	agent := identity.Generate(42, "")
	reg := prometheus.NewRegistry()
	metrics := engine.NewMetrics(reg)
	advisor := llm.NewAdvisor(agent, nil, llm.AdvisorOptions{Observer: metrics}, logger)
	hunter := engine.NewHunter(st, emptySearcher{}, advisor, engine.HunterOptions{AgentID: agent.ID, Metrics: metrics}, logger)

	h := Handlers{
		Agent:        handler.NewAgentHandler(service.NewAgentService(agent, st, logger), service.NewStatsService(agent.ID, st, logger), logger),
		Applications: handler.NewApplicationHandler(service.NewApplicationService(st, logger), logger),
		Activity:     handler.NewActivityHandler(service.NewActivityService(st, logger), logger),
		Hunt:         handler.NewHuntHandler(hunter, logger),
		Jobs:         handler.NewJobHandler(service.NewJobService(st), logger),
	}
	return &testEnv{
		srv:   NewConsoleServer(logger, h, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		store: st,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestServer_Health(t *testing.T) {
	env := newEnv(t)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health", nil).Code)
}

func TestServer_HuntThenReadEverything(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, http.MethodPost, "/api/hunt", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(engine.TraceHeader))

	var hunt struct {
		Success               bool                 `json:"success"`
		JobsFound             int                  `json:"jobsFound"`
		ApplicationsSubmitted int                  `json:"applicationsSubmitted"`
		Logs                  []domain.ActivityLog `json:"logs"`
		Skipped               bool                 `json:"skipped"`
	}
	decode(t, rec, &hunt)
	assert.True(t, hunt.Success)
	assert.Equal(t, 5, hunt.JobsFound)
	assert.LessOrEqual(t, hunt.ApplicationsSubmitted, 3)
	assert.False(t, hunt.Skipped)
	assert.NotEmpty(t, hunt.Logs)

	rec = env.do(t, http.MethodGet, "/api/agent", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var agent service.AgentOverview
	decode(t, rec, &agent)
	assert.Equal(t, domain.StatusWaiting, agent.Agent.Status)
	assert.Equal(t, hunt.ApplicationsSubmitted, agent.Stats.TotalApplications)
	assert.NotEmpty(t, agent.Resume)

	rec = env.do(t, http.MethodGet, "/api/applications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var apps struct {
		Applications []domain.Application `json:"applications"`
	}
	decode(t, rec, &apps)
	assert.Len(t, apps.Applications, hunt.ApplicationsSubmitted)

	rec = env.do(t, http.MethodGet, "/api/activity?limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var activity struct {
		Logs []domain.ActivityLog `json:"logs"`
	}
	decode(t, rec, &activity)
	assert.Len(t, activity.Logs, 2)

	rec = env.do(t, http.MethodGet, "/api/activities?limit=abc", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []domain.ActivityLog
	decode(t, rec, &list)
	assert.NotEmpty(t, list)
	assert.LessOrEqual(t, len(list), 50)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].Timestamp.After(list[i-1].Timestamp))
	}

	rec = env.do(t, http.MethodGet, "/api/jobs", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "clawdjob_hunt_cycles_total")
}

func TestServer_PatchApplication(t *testing.T) {
	env := newEnv(t)
	require.NoError(t, env.store.SaveApplication(context.Background(), &domain.Application{
		ID: "app-1", AgentID: domain.DefaultAgentID, Status: domain.AppApplied,
	}))

	rec := env.do(t, http.MethodPatch, "/api/applications", map[string]string{"applicationId": "app-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/applications", map[string]string{"applicationId": "app-1", "status": "hired"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/applications", map[string]string{"applicationId": "nope", "status": "viewed"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/applications", map[string]string{
		"applicationId": "app-1", "status": "interview_scheduled", "responseMessage": "Tuesday 10am",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Application domain.Application `json:"application"`
	}
	decode(t, rec, &body)
	assert.Equal(t, domain.AppInterviewScheduled, body.Application.Status)
	assert.Equal(t, "Tuesday 10am", body.Application.ResponseMessage)
	assert.NotNil(t, body.Application.ResponseAt)

	rec = env.do(t, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats domain.AgentStats
	decode(t, rec, &stats)
	assert.Equal(t, 1, stats.Interviews)
	assert.Equal(t, 100.0, stats.SuccessRate)
}

func TestServer_PostActivities(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, http.MethodPost, "/api/activities", map[string]string{"type": "email_received", "message": "Reply from HR"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var entry domain.ActivityLog
	decode(t, rec, &entry)
	assert.Equal(t, domain.DefaultAgentID, entry.AgentID)
	assert.NotEmpty(t, entry.ID)

	rec = env.do(t, http.MethodPost, "/api/activities", map[string]string{"type": "party"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	env.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/activities", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_SubmitJob(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, http.MethodPost, "/api/submit-job", map[string]string{"jobUrl": "https://jobs.example/1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/submit-job", map[string]string{
		"jobUrl": "https://jobs.example/1", "description": "Part-time remote admin",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decode(t, rec, &body)
	assert.True(t, body.Success)
	assert.Equal(t, "Job submitted successfully", body.Message)
}

func TestServer_EmptyStoreDefaults(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, http.MethodGet, "/api/activities", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats domain.AgentStats
	decode(t, rec, &stats)
	assert.Equal(t, domain.AgentStats{}, stats)
}
