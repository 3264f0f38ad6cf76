// Package handlers serves the storefront HTTP API, the localized page
// stand-in and the staging access page.
package handlers

import (
	"encoding/json"
	"net/http"

	"storefront/internal/logger"
	"storefront/middleware"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.HTTPError(r.Method, r.URL.Path, http.StatusInternalServerError, err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error, message string) {
	logger.HTTPError(r.Method, r.URL.Path, status, err).
		Str("request_id", middleware.GetRequestID(r.Context())).
		Msg(message)
	writeJSON(w, r, status, errorResponse{Error: message})
}
