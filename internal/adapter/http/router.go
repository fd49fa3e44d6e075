package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/MODEBARE/BudgetManagementSystem/internal/adapter/http/handler"
	"github.com/MODEBARE/BudgetManagementSystem/internal/adapter/http/middleware"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler  *handler.AccountHandler
	MovementHandler *handler.MovementHandler
	TransferHandler *handler.TransferHandler
	OverviewHandler *handler.OverviewHandler
	HealthHandler   *handler.HealthHandler

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	HTTPMetrics      *middleware.HTTPMetrics
	// MetricsHandler serves /metrics when set.
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	Logger             zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.HTTPMetrics != nil {
		r.Use(cfg.HTTPMetrics.Wrap)
	}
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", middleware.OwnerHeader, middleware.IdempotencyKeyHeader, chimiddleware.RequestIDHeader},
			ExposedHeaders: []string{"X-Idempotency-Replay"},
			MaxAge:         300,
		}))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.OwnerMiddleware)

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger).Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Patch("/{id}", cfg.AccountHandler.Update)
			r.Delete("/{id}", cfg.AccountHandler.Delete)
			r.Post("/{id}/deactivate", cfg.AccountHandler.Deactivate)
			r.Post("/{id}/reactivate", cfg.AccountHandler.Reactivate)
			r.Get("/{id}/stats", cfg.AccountHandler.Stats)
			r.Get("/{id}/reconciliation", cfg.OverviewHandler.ReconcileAccount)
			r.Post("/{id}/reconciliation/repair", cfg.OverviewHandler.RepairAccount)
		})

		// Movements
		r.Route("/movements", func(r chi.Router) {
			r.Get("/", cfg.MovementHandler.List)
			r.Post("/credit", cfg.MovementHandler.Credit)
			r.Post("/debit", cfg.MovementHandler.Debit)
			r.Get("/{id}", cfg.MovementHandler.Get)
			r.Put("/{id}", cfg.MovementHandler.Edit)
			r.Delete("/{id}", cfg.MovementHandler.Delete)
		})

		// Transfers
		r.Route("/transfers", func(r chi.Router) {
			r.Post("/", cfg.TransferHandler.Create)
			r.Post("/preview", cfg.TransferHandler.Preview)
			r.Post("/confirm", cfg.TransferHandler.Confirm)
		})

		r.Get("/dashboard", cfg.OverviewHandler.Dashboard)
		r.Get("/categories", cfg.OverviewHandler.Categories)
		r.Get("/reconciliation", cfg.OverviewHandler.ReconcileOwner)
		r.Get("/audit", cfg.AccountHandler.AuditLogs)
	})

	return r
}
