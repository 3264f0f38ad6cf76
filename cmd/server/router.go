package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/internal/edge"
	"storefront/internal/handlers"
	"storefront/internal/metrics"
	"storefront/internal/translate"
	"storefront/middleware"
)

func buildRouter(deps dependencies) (http.Handler, error) {
	cfg := deps.cfg
	gate := edge.NewStagingGate(cfg.Staging.ProductionHosts, cfg.Staging.LandingPath, deps.pins, cfg.IsProd())
	pinAttempts := middleware.NewRateLimiter(middleware.PINAttemptLimit(cfg.TrustProxy))

	deps.metrics.MustRegister(metrics.NewStorefrontCollector(deps.registry, deps.store, deps.evaluator))
	edgeRouter, err := edge.NewRouter(edge.Options{
		Registry:        deps.registry,
		Legacy:          deps.legacy,
		Gate:            gate,
		PINAttempts:     pinAttempts,
		Exclusions:      edge.DefaultExclusions,
		Rewrites:        deps.rewrites,
		LocaleDetection: cfg.LocaleDetection,
		Recorder:        metrics.NewRecorder(deps.metrics),
	})
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	// Middleware must be registered before any routes
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(apiOnly(middleware.CORS(middleware.CORSFromConfig(cfg.CORS))))
	r.Use(edgeRouter.Middleware)

	r.Get("/healthz", handlers.HealthCheck)
	r.Get("/api/health", handlers.HealthCheck)
	r.Get("/api/ready", handlers.ReadinessCheck(map[string]handlers.ReadinessProbe{
		"secrets": deps.secrets.CheckConnection,
		"shops": func(ctx context.Context) error {
			_, err := deps.store.List(ctx)
			return err
		},
	}))
	r.Get("/api/version", handlers.Version)
	r.Get("/metrics", promhttp.HandlerFor(deps.metrics, promhttp.HandlerOpts{}).ServeHTTP)

	handlers.RegisterShopRoutes(r, deps.store, deps.evaluator, deps.now)
	handlers.RegisterTranslateRoutes(r, translate.New(deps.registry))
	if gate != nil {
		handlers.RegisterStagingRoutes(r, gate, pinAttempts, cfg.TrustProxy)
	}
	r.Get("/*", handlers.Pages(deps.registry))

	return r, nil
}

// apiOnly applies mw to /api/ requests and leaves the rest untouched.
func apiOnly(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				wrapped.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
