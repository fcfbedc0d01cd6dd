package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taskweave/taskweave/internal/database"
	mw "github.com/taskweave/taskweave/internal/middleware"
	inats "github.com/taskweave/taskweave/internal/nats"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	// Generation handlers
	GenerateProject    http.HandlerFunc
	GetGenerationUsage http.HandlerFunc

	// Auth middleware
	AuthMiddleware func(http.Handler) http.Handler
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins  []string
	GenerateRateLimiter func(http.Handler) http.Handler
}

func NewRouter(pool *pgxpool.Pool, natsClient *inats.Client, cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Liveness: process is up, no dependency checks.
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	// Readiness: the database must answer; NATS is optional and only
	// degrades the report when configured but down.
	ready := func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{"database": "ok"}
		status := http.StatusOK

		if err := database.Ping(r.Context(), pool); err != nil {
			checks["database"] = "unreachable"
			status = http.StatusServiceUnavailable
		}

		switch {
		case natsClient == nil:
			checks["nats"] = "not configured"
		case natsClient.Healthy():
			checks["nats"] = "ok"
		default:
			checks["nats"] = "disconnected"
			status = http.StatusServiceUnavailable
		}

		JSON(w, status, checks)
	}
	r.Get("/health/ready", ready)
	r.Get("/health", ready)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Route("/projects/generate", func(r chi.Router) {
				if cfg.GenerateRateLimiter != nil {
					r.Use(cfg.GenerateRateLimiter)
				}
				r.Post("/", h.GenerateProject)
			})

			r.Get("/usage/generation", h.GetGenerationUsage)
		})
	})

	return r
}
