package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Циклы охоты по исходу: ok, idle, skipped, error
	HuntCycles *prometheus.CounterVec

	// Длительность цикла целиком (включая паузы между откликами)
	HuntDuration prometheus.Histogram

	JobsFound             prometheus.Counter
	ApplicationsSubmitted prometheus.Counter

	// Опрос площадок: ok, error, circuit_open
	SourceFetches *prometheus.CounterVec

	// Обращения к модели: ok, fallback, heuristic
	ModelCalls *prometheus.CounterVec

	// Лента: события, сброшенные при переполнении буфера
	FeedDropped prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - Если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		HuntCycles: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "clawdjob_hunt_cycles_total",
			Help: "Total number of hunt cycles by result.",
		}, []string{"result"}),

		HuntDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "clawdjob_hunt_duration_seconds",
			Help:    "Histogram of hunt cycle durations.",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),

		JobsFound: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "clawdjob_jobs_found_total",
			Help: "Total number of job listings found across cycles.",
		}),

		ApplicationsSubmitted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "clawdjob_applications_submitted_total",
			Help: "Total number of submitted applications.",
		}),

		SourceFetches: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "clawdjob_source_fetch_total",
			Help: "Job board fetches by source and result.",
		}, []string{"source", "result"}),

		ModelCalls: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "clawdjob_model_calls_total",
			Help: "Language model calls by operation and result.",
		}, []string{"operation", "result"}),

		FeedDropped: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "clawdjob_feed_dropped_total",
			Help: "Feed events dropped because the buffer was full or closed.",
		}),
	}
}

// ObserveFetch реализует jobs.FetchObserver
func (m *Metrics) ObserveFetch(source, result string, _ int) {
	m.SourceFetches.WithLabelValues(source, result).Inc()
}

// ObserveModelCall реализует llm.CallObserver
func (m *Metrics) ObserveModelCall(operation, result string) {
	m.ModelCalls.WithLabelValues(operation, result).Inc()
}

// ObserveFeedDropped реализует feed.DropObserver
func (m *Metrics) ObserveFeedDropped() {
	m.FeedDropped.Inc()
}

func (m *Metrics) observeCycle(result string, started time.Time, res HuntResult) {
	m.HuntCycles.WithLabelValues(result).Inc()
	if result == cycleSkipped {
		return
	}
	m.HuntDuration.Observe(time.Since(started).Seconds())
	m.JobsFound.Add(float64(res.JobsFound))
	m.ApplicationsSubmitted.Add(float64(res.ApplicationsSubmitted))
}
