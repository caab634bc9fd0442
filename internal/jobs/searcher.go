package jobs

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xela07ax/clawdjob/internal/domain"
)

// FetchObserver принимает исход опроса каждой площадки (метрики)
type FetchObserver interface {
	ObserveFetch(source, result string, count int)
}

type nopObserver struct{}

func (nopObserver) ObserveFetch(string, string, int) {}

// guardedSource площадка за своим предохранителем: сбои одной не влияют на остальные
type guardedSource struct {
	src Source
	cb  *gobreaker.CircuitBreaker
}

// Searcher опрашивает площадки параллельно и сводит результат в один список
type Searcher struct {
	sources          []guardedSource
	descriptionLimit int
	observer         FetchObserver
	logger           *zap.Logger
	now              func() time.Time
}

func NewSearcher(sources []Source, descriptionLimit int, observer FetchObserver, logger *zap.Logger) *Searcher {
	if descriptionLimit <= 0 {
		descriptionLimit = DefaultDescriptionLimit
	}
	if observer == nil {
		observer = nopObserver{}
	}

	guarded := make([]guardedSource, 0, len(sources))
	for _, src := range sources {
		guarded = append(guarded, guardedSource{
			src: src,
			cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
				Name:        "source-" + src.Name(),
				MaxRequests: 1,
				Timeout:     5 * time.Minute, // Через сколько площадку попробуем снова
				ReadyToTrip: func(counts gobreaker.Counts) bool {
					return counts.ConsecutiveFailures >= 3
				},
			}),
		})
	}

	return &Searcher{
		sources:          guarded,
		descriptionLimit: descriptionLimit,
		observer:         observer,
		logger:           logger.Named("job-searcher"),
		now:              time.Now,
	}
}

// SearchJobs никогда не возвращает ошибку: упавшая площадка просто дает ноль вакансий.
// Порядок результата — порядок площадок, дедупликация по (title, company).
func (s *Searcher) SearchJobs(ctx context.Context) []domain.JobListing {
	s.logger.Info("starting job search across platforms", zap.Int("sources", len(s.sources)))

	// All-settled: каждая горутина пишет только в свой слот и всегда возвращает nil
	results := make([][]RawJob, len(s.sources))
	var g errgroup.Group
	for i := range s.sources {
		gs := s.sources[i]
		g.Go(func() error {
			results[i] = s.fetch(ctx, gs)
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, r := range results {
		total += len(r)
	}
	s.logger.Info("job search finished", zap.Int("found", total))

	now := s.now()
	seen := make(map[string]struct{}, total)
	unique := make([]domain.JobListing, 0, total)
	for _, batch := range results {
		for _, raw := range batch {
			key := DedupKey(raw.Title, raw.Company)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			unique = append(unique, ToListing(raw, s.descriptionLimit, now))
		}
	}
	return unique
}

func (s *Searcher) fetch(ctx context.Context, gs guardedSource) []RawJob {
	name := gs.src.Name()

	res, err := gs.cb.Execute(func() (interface{}, error) {
		return gs.src.Fetch(ctx)
	})
	if err != nil {
		result := "error"
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			result = "circuit_open"
		}
		s.observer.ObserveFetch(name, result, 0)
		s.logger.Warn("job source failed", zap.String("source", name), zap.Error(err))
		return nil
	}

	jobs, _ := res.([]RawJob)
	s.observer.ObserveFetch(name, "ok", len(jobs))
	return jobs
}
