package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garagem-ai/garagem/internal/database"
	mw "github.com/garagem-ai/garagem/internal/middleware"
	inats "github.com/garagem-ai/garagem/internal/nats"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	// Channel intake
	WebhookMessage http.HandlerFunc

	// Operator dashboard
	OperatorLogin   http.HandlerFunc
	CreateVehicle   http.HandlerFunc
	SearchVehicles  http.HandlerFunc
	GetConversation http.HandlerFunc
	ListLeads       http.HandlerFunc

	// Auth middleware for operator routes
	AuthMiddleware func(http.Handler) http.Handler

	// DispatcherHealthy reports whether the message dispatcher is running.
	DispatcherHealthy func() bool
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	WebhookRateLimiter func(http.Handler) http.Handler
	LoginRateLimiter   func(http.Handler) http.Handler
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

	// Liveness probe, always 200, no dependency checks
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	// Readiness probe, checks DB, NATS and the dispatcher
	readinessHandler := func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{
			"status":     "healthy",
			"database":   "healthy",
			"nats":       "healthy",
			"dispatcher": "healthy",
		}

		status := http.StatusOK

		if err := database.HealthCheck(r.Context(), pool); err != nil {
			health["database"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		if natsClient != nil && !natsClient.Healthy() {
			health["nats"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		} else if natsClient == nil {
			health["nats"] = "not configured"
		}

		if h.DispatcherHealthy != nil {
			if !h.DispatcherHealthy() {
				health["dispatcher"] = "not running"
				health["status"] = "degraded"
			}
		} else {
			health["dispatcher"] = "not configured"
		}

		JSON(w, status, health)
	}

	r.Get("/health/ready", readinessHandler)
	r.Get("/health", readinessHandler)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Channel intake (public, rate-limited per IP)
		r.Group(func(r chi.Router) {
			if cfg.WebhookRateLimiter != nil {
				r.Use(cfg.WebhookRateLimiter)
			}
			r.Post("/webhook/messages", h.WebhookMessage)
		})

		// Operator login (public, rate-limited per IP)
		r.Group(func(r chi.Router) {
			if cfg.LoginRateLimiter != nil {
				r.Use(cfg.LoginRateLimiter)
			}
			r.Post("/auth/login", h.OperatorLogin)
		})

		// Operator routes (JWT protected)
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Route("/vehicles", func(r chi.Router) {
				r.Post("/", h.CreateVehicle)
				r.Get("/", h.SearchVehicles)
			})
			r.Get("/conversations/{identity}", h.GetConversation)
			r.Get("/leads", h.ListLeads)
		})
	})

	return r
}
