package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"storefront/internal/logger"
	"storefront/internal/version"
	"storefront/middleware"
)

// HealthCheck is the liveness probe.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ReadinessProbe reports whether one backing service is usable.
type ReadinessProbe func(ctx context.Context) error

type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ReadinessCheck runs every probe with a shared timeout and answers 503 when
// any of them fails.
func ReadinessCheck(probes map[string]ReadinessProbe) http.HandlerFunc {
	names := make([]string, 0, len(probes))
	for name := range probes {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		response := readinessResponse{Status: "ready", Checks: make(map[string]string, len(names))}
		status := http.StatusOK
		for _, name := range names {
			if err := probes[name](ctx); err != nil {
				response.Checks[name] = err.Error()
				response.Status = "unavailable"
				status = http.StatusServiceUnavailable
				logger.HTTPError(r.Method, r.URL.Path, status, err).
					Str("request_id", middleware.GetRequestID(r.Context())).
					Str("check", name).
					Msg("readiness probe failed")
				continue
			}
			response.Checks[name] = "ok"
		}
		writeJSON(w, r, status, response)
	}
}

// Version returns the build information.
func Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, version.Info())
}
