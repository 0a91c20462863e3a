// Package httptransport assembles the HTTP surface: middleware chain,
// public lookup routes, admin-gated mutation routes, health and metrics.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"votesmart/internal/platform/metrics"
	"votesmart/internal/platform/middleware"
	"votesmart/internal/registry/handler"
	"votesmart/pkg/platform/httputil"
)

// HealthCheck probes one dependency. The key names the component in the
// health response.
type HealthCheck func(ctx context.Context) error

// RouterConfig carries everything the router needs. RateLimit and Checks
// may be nil or empty.
type RouterConfig struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Registry  *handler.Handler
	Auth      func(http.Handler) http.Handler
	RateLimit func(http.Handler) http.Handler
	Checks    map[string]HealthCheck
}

// NewRouter wires all endpoints. Reads are public (rate limited when a
// limiter is configured); mutations sit behind authentication.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.Latency(cfg.Metrics))

	r.Get("/healthz", healthHandler(cfg.Checks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(public chi.Router) {
		if cfg.RateLimit != nil {
			public.Use(cfg.RateLimit)
		}
		cfg.Registry.RegisterLookups(public)
	})

	r.Group(func(admin chi.Router) {
		admin.Use(cfg.Auth)
		cfg.Registry.RegisterMutations(admin)
	})

	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := http.StatusOK
		components := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				components[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			components[name] = "ok"
		}

		body := map[string]any{"status": "ok"}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		if len(components) > 0 {
			body["components"] = components
		}
		httputil.WriteJSON(w, status, body)
	}
}
