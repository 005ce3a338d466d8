// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sudaredd/data-platform-core/internal/authz"
	"github.com/sudaredd/data-platform-core/internal/ingest"
	"github.com/sudaredd/data-platform-core/internal/logging"
	"github.com/sudaredd/data-platform-core/internal/query"
	"github.com/sudaredd/data-platform-core/internal/tenant"
)

// Config configures the router's CORS/rate-limit posture (spec §6).
type Config struct {
	CORSOrigins       []string
	RateLimitReqs     int
	RateLimitWindow   time.Duration
	TenantRatePerSec  float64
	TenantRateBurst   int
}

// NewRouter builds the full chi.Router for the engine's HTTP surface:
// ingest, query, and the Casbin-gated admin registry.
func NewRouter(cfg Config, registry *tenant.Registry, ingestEngine *ingest.Engine, queryEngine *query.Engine, enforcer *authz.Enforcer) http.Handler {
	if cfg.TenantRatePerSec <= 0 {
		cfg.TenantRatePerSec = 50
	}
	if cfg.TenantRateBurst <= 0 {
		cfg.TenantRateBurst = 100
	}

	ih := &ingestHandler{engine: ingestEngine}
	qh := &queryHandler{engine: queryEngine}
	ah := &adminHandler{registry: registry, enforcer: enforcer}
	tl := newTenantLimiter(cfg.TenantRatePerSec, cfg.TenantRateBurst)

	r := chi.NewRouter()
	r.Use(correlationIDMiddleware)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE"},
		AllowedHeaders: []string{"Content-Type", "X-Role"},
		MaxAge:         300,
	}))
	r.Use(httprate.LimitByIP(firstPositive(cfg.RateLimitReqs, 100), firstDuration(cfg.RateLimitWindow, time.Minute)))

	r.Get("/healthz", health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/ingest", func(r chi.Router) {
		limited := r.With(tl.middleware)
		limited.Post("/batch", ih.IngestBatch)
		limited.Post("/{tenant}", ih.IngestTenant)
	})

	r.Route("/api/query", func(r chi.Router) {
		limited := r.With(tl.middleware)
		limited.Post("/{tenant}", qh.Retrieve)
		limited.Post("/{tenant}/{periodicity}", qh.Retrieve)
	})

	r.Route("/api/admin/registry", func(r chi.Router) {
		r.Get("/", ah.List)
		r.Post("/", ah.Register)
		r.Delete("/{tenant}/{periodicity}/{dataType}", ah.Unregister)
	})

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	respondData(w, logging.CorrelationIDFromContext(r.Context()), http.StatusOK, map[string]any{"status": "ok"})
}

func correlationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Correlation-ID")
		if id == "" {
			id = logging.NewCorrelationID()
		}
		ctx := logging.ContextWithCorrelationID(r.Context(), id)
		w.Header().Set("X-Correlation-ID", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func firstPositive(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func firstDuration(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
