package main

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/clawdjob/internal/console/handler"
	"github.com/xela07ax/clawdjob/internal/console/server"
	"github.com/xela07ax/clawdjob/internal/console/service"
	"github.com/xela07ax/clawdjob/internal/engine"
	"github.com/xela07ax/clawdjob/internal/feed"
	"github.com/xela07ax/clawdjob/internal/identity"
	"github.com/xela07ax/clawdjob/internal/infra"
	"github.com/xela07ax/clawdjob/internal/jobs"
	"github.com/xela07ax/clawdjob/internal/llm"
	"github.com/xela07ax/clawdjob/internal/repository"
)

func main() {
	// 1. Конфигурация и логгер
	cfg, err := infra.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	// Контекст для управления жизненным циклом фоновых горутин
	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Хранилище: Postgres при заданном database.url, иначе JSON-файлы
	baseStore, err := repository.Open(appCtx, cfg, logger)
	if err != nil {
		logger.Fatal("storage unavailable", zap.Error(err))
	}

	// 3. Redis опционален: блокировка охоты между инстансами и живая лента
	var (
		rdb       *redis.Client
		publisher feed.Publisher = feed.NopPublisher{}
		locker    engine.Locker
	)
	if cfg.Redis.Enabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(appCtx, 5*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Fatal("redis unreachable", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		pingCancel()

		publisher = feed.NewRedisPublisher(rdb)
		locker = engine.NewRedisLocker(rdb, infra.RedisKeyLockHunt, cfg.Engine.LockTTL, logger)
		logger.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	}

	// 4. Метрики
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := engine.NewMetrics(reg)

	// Лента: успешные записи журнала и состояния уходят подписчикам
	broadcaster := feed.NewBroadcaster(publisher, feed.Options{
		BufferSize:    cfg.Engine.FeedBufferSize,
		FlushInterval: cfg.Engine.FeedFlushInterval,
		Observer:      metrics,
	}, logger)
	broadcaster.Start()
	store := feed.Wrap(baseStore, broadcaster)

	// 5. Персона, площадки, модель
	agent := identity.Generate(cfg.Agent.Seed, cfg.Agent.Email)

	sources, err := jobs.NewSources(cfg.Sources.Enabled, jobs.HTTPOptions{
		Client:    &http.Client{Timeout: cfg.Sources.Timeout},
		UserAgent: cfg.Sources.UserAgent,
	}, cfg.Sources.Limits)
	if err != nil {
		logger.Fatal("job sources", zap.Error(err))
	}
	searcher := jobs.NewSearcher(sources, cfg.Sources.DescriptionLimit, metrics, logger)

	completer, err := llm.NewCompleter(cfg.Model.Provider, cfg.Model.APIKey, cfg.Model.Name)
	if err != nil {
		logger.Fatal("model client", zap.Error(err))
	}
	if completer == nil {
		logger.Info("no model api key configured, running in demo mode")
	}

	rnd := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	advisor := llm.NewAdvisor(agent, completer, llm.AdvisorOptions{
		AnalysisMaxTokens: cfg.Model.AnalysisMaxTokens,
		LetterMaxTokens:   cfg.Model.LetterMaxTokens,
		Observer:          metrics,
	}, logger)

	// 6. Ядро: цикл охоты и планировщик
	hunter := engine.NewHunter(store, searcher, advisor, engine.HunterOptions{
		AgentID:         agent.ID,
		MaxApplications: cfg.Engine.MaxApplicationsPerCycle,
		Pause:           cfg.Engine.ApplicationPause,
		MockJobs:        cfg.Engine.MockJobs,
		Rand:            rnd,
		Locker:          locker,
		Metrics:         metrics,
	}, logger)
	scheduler := engine.NewScheduler(hunter, cfg.Engine.HuntInterval, cfg.Engine.InitialDelay, logger)

	// 7. Сервисы и HTTP (Dependency Injection)
	api := server.NewConsoleServer(logger, server.Handlers{
		Agent: handler.NewAgentHandler(
			service.NewAgentService(agent, store, logger),
			service.NewStatsService(agent.ID, store, logger),
			logger),
		Applications: handler.NewApplicationHandler(service.NewApplicationService(store, logger), logger),
		Activity:     handler.NewActivityHandler(service.NewActivityService(store, logger), logger),
		Hunt:         handler.NewHuntHandler(hunter, logger),
		Jobs:         handler.NewJobHandler(service.NewJobService(store), logger),
	}, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	scheduler.Start(appCtx)

	go func() {
		logger.Info("ClawdJob started", zap.String("addr", srv.Addr), zap.String("agent", agent.Name))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("ClawdJob stopping...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	// Планировщик дожидается текущего цикла, потом лента дописывает буфер
	cancel()
	scheduler.Stop()
	broadcaster.Stop()
	baseStore.Close()
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Warn("redis close", zap.Error(err))
		}
	}
	logger.Info("ClawdJob exited properly")
}
