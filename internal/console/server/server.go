package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/xela07ax/clawdjob/internal/console/handler"
	"github.com/xela07ax/clawdjob/internal/engine"
)

// Handlers обработчики бизнес-доменов дашборда
type Handlers struct {
	Agent        *handler.AgentHandler
	Applications *handler.ApplicationHandler
	Activity     *handler.ActivityHandler
	Hunt         *handler.HuntHandler
	Jobs         *handler.JobHandler
}

type ConsoleServer struct {
	router  *chi.Mux
	logger  *zap.Logger
	h       Handlers
	metrics http.Handler
}

// NewConsoleServer metrics может быть nil, тогда /metrics не регистрируется
func NewConsoleServer(logger *zap.Logger, h Handlers, metrics http.Handler) *ConsoleServer {
	s := &ConsoleServer{
		router:  chi.NewRouter(),
		logger:  logger.Named("console-api"),
		h:       h,
		metrics: metrics,
	}

	s.routes()
	return s
}

func (s *ConsoleServer) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// --- 2. Служебные роуты ---
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	// --- 3. API дашборда (без аутентификации) ---
	r.Route("/api", func(r chi.Router) {
		r.Get("/agent", s.h.Agent.Get)
		r.Get("/stats", s.h.Agent.Stats)

		r.Get("/applications", s.h.Applications.List)
		r.Patch("/applications", s.h.Applications.Update)

		r.Get("/activity", s.h.Activity.Logs)
		r.Get("/activities", s.h.Activity.List)
		r.Post("/activities", s.h.Activity.Create)
		r.Post("/submit-job", s.h.Activity.SubmitJob)

		r.Get("/jobs", s.h.Jobs.List)

		// Trace-ID запроса становится trace_id цикла охоты
		r.With(engine.TracingMiddleware).Post("/hunt", s.h.Hunt.Run)
	})
}

// ServeHTTP позволяет использовать ConsoleServer как стандартный http.Handler
func (s *ConsoleServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
