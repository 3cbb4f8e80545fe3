package api

import (
	"net/http"

	"github.com/ayo6706/banking-agent/internal/api/handler"
	"github.com/ayo6706/banking-agent/internal/api/middleware"
	"github.com/ayo6706/banking-agent/internal/api/problem"
	"github.com/ayo6706/banking-agent/internal/api/spec"
	"github.com/ayo6706/banking-agent/internal/config"
	"github.com/ayo6706/banking-agent/internal/idempotency"
	"github.com/ayo6706/banking-agent/internal/prompts"
	"github.com/ayo6706/banking-agent/internal/tools"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type Router struct {
	cfg       *config.Config
	logger    *zap.Logger
	registry  *tools.Registry
	catalogue *prompts.Catalogue
	idem      *idempotency.Store
	redis     redis.Cmdable
}

// NewRouter wires the HTTP surface. idem and redisClient may be nil when
// Redis is not configured.
func NewRouter(cfg *config.Config, logger *zap.Logger, registry *tools.Registry, catalogue *prompts.Catalogue, idem *idempotency.Store, redisClient redis.Cmdable) *Router {
	return &Router{
		cfg:       cfg,
		logger:    logger,
		registry:  registry,
		catalogue: catalogue,
		idem:      idem,
		redis:     redisClient,
	}
}

func (api *Router) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.LoggingMiddleware(api.logger))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.RecoverMiddleware(api.logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		problem.Write(w, r, http.StatusNotFound, problem.Type("not-found"), "", "No route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		problem.Write(w, r, http.StatusMethodNotAllowed, problem.Type("method-not-allowed"), "", r.Method+" is not supported on "+r.URL.Path)
	})

	health := handler.NewHealthHandler(api.redis)
	toolHandler := handler.NewToolHandler(api.registry, api.logger)
	promptHandler := handler.NewPromptHandler(api.catalogue, api.logger)

	r.Get("/health/live", health.Live)
	r.Get("/health/ready", health.Ready)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", spec.OpenAPIHandler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.PublicRateLimiter(api.cfg.RateLimitRPS))

		r.Get("/tools", toolHandler.List)
		r.With(middleware.IdempotencyMiddleware(api.idem, api.logger)).Post("/tools/{name}", toolHandler.Call)

		r.Get("/prompts", promptHandler.List)
		r.Post("/prompts/{name}", promptHandler.Get)
	})

	return r
}
