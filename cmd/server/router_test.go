package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/config"
	"storefront/internal/hours"
	"storefront/internal/legacy"
	"storefront/internal/registry"
	"storefront/internal/secrets"
	"storefront/internal/shops"
)

const (
	productionHost = "www.example.be"
	stagingHost    = "staging.example.be"
)

func newTestDependencies(t *testing.T) dependencies {
	t.Helper()
	tables, err := registry.Load("")
	require.NoError(t, err)
	reg, err := registry.New(tables)
	require.NoError(t, err)
	resolver, err := legacy.New(reg, tables.Legacy)
	require.NoError(t, err)
	evaluator, err := hours.New("Europe/Brussels")
	require.NoError(t, err)
	store, err := shops.NewFileStore("")
	require.NoError(t, err)

	source := secrets.NewStatic("2580")
	pins := secrets.NewRefresher(source, time.Minute)
	require.NoError(t, pins.Refresh(context.Background()))

	return dependencies{
		cfg: config.Config{
			Env:  config.EnvDev,
			Port: "52000",
			CORS: config.CORSConfig{AllowedOrigins: []string{"https://" + productionHost}},
			Staging: config.StagingConfig{
				ProductionHosts: []string{productionHost},
				LandingPath:     "/staging-access",
			},
		},
		registry:  reg,
		rewrites:  tables.Rewrites,
		legacy:    resolver,
		evaluator: evaluator,
		store:     store,
		secrets:   source,
		pins:      pins,
		metrics:   prometheus.NewRegistry(),
		// Wednesday 2024-06-05 12:00 in Brussels.
		now: func() time.Time { return time.Date(2024, time.June, 5, 10, 0, 0, 0, time.UTC) },
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	router, err := buildRouter(newTestDependencies(t))
	require.NoError(t, err)
	return router
}

func get(router http.Handler, host, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Host = host
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestBuildRouter_Redirects(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name             string
		target           string
		expectedStatus   int
		expectedLocation string
	}{
		{"root gets default locale", "/", http.StatusTemporaryRedirect, "/fr"},
		{"missing locale keeps remainder", "/reparation/apple?x=1", http.StatusTemporaryRedirect, "/fr/reparation/apple?x=1"},
		{"legacy exact", "/pages/faq", http.StatusPermanentRedirect, "/fr/questions-frequentes"},
		{"legacy catch-all", "/collections/old-summer-sale", http.StatusPermanentRedirect, "/fr/boutique"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(router, productionHost, tt.target)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedLocation, rec.Header().Get("Location"))
			assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		})
	}
}

func TestBuildRouter_Pages(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name         string
		target       string
		expectedBody string
	}{
		{
			name:         "localized page",
			target:       "/fr/magasins",
			expectedBody: `{"locale":"fr","route":"stores","internal_path":"/fr/magasins","public_path":"/fr/magasins"}`,
		},
		{
			name:         "turkish page served from internal slugs",
			target:       "/tr/tamir/apple",
			expectedBody: `{"locale":"tr","route":"repair","internal_path":"/tr/repair/apple","public_path":"/tr/tamir/apple"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(router, productionHost, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
			assert.Contains(t, rec.Header().Get("Set-Cookie"), "NEXT_LOCALE=")
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}

	assert.Equal(t, http.StatusNotFound, get(router, productionHost, "/fr/nowhere").Code)
}

func TestBuildRouter_API(t *testing.T) {
	router := newTestRouter(t)

	t.Run("health", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, get(router, productionHost, "/healthz").Code)
		assert.Equal(t, http.StatusOK, get(router, productionHost, "/api/health").Code)
	})

	t.Run("ready", func(t *testing.T) {
		rec := get(router, productionHost, "/api/ready")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ready","checks":{"secrets":"ok","shops":"ok"}}`, rec.Body.String())
	})

	t.Run("version", func(t *testing.T) {
		rec := get(router, productionHost, "/api/version")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"version"`)
	})

	t.Run("shops", func(t *testing.T) {
		rec := get(router, productionHost, "/api/shops")
		require.Equal(t, http.StatusOK, rec.Code)
		var list []struct {
			ID   string `json:"id"`
			Open bool   `json:"open"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		assert.NotEmpty(t, list)
	})

	t.Run("translate", func(t *testing.T) {
		rec := get(router, productionHost, "/api/translate?path=/fr/magasins&locale=nl")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"translated":"/nl/winkels"`)
	})

	t.Run("cors preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/shops", nil)
		req.Host = productionHost
		req.Header.Set("Origin", "https://"+productionHost)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://"+productionHost, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("no cors outside api", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/fr/magasins", nil)
		req.Host = productionHost
		req.Header.Set("Origin", "https://"+productionHost)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestBuildRouter_Metrics(t *testing.T) {
	router := newTestRouter(t)
	get(router, productionHost, "/pages/faq")
	get(router, productionHost, "/fr/magasins")

	rec := get(router, productionHost, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `storefront_edge_decisions_total{action="redirect",reason="legacy"} 1`)
	assert.Contains(t, body, `storefront_legacy_resolutions_total{tier="exact"} 1`)
	assert.Contains(t, body, `storefront_registry_entries{table="pages"}`)
	assert.Contains(t, body, "storefront_shops_open")
}

func TestBuildRouter_StagingGate(t *testing.T) {
	router := newTestRouter(t)

	rec := get(router, stagingHost, "/fr/magasins")
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/staging-access?next=%2Ffr%2Fmagasins", rec.Header().Get("Location"))

	rec = get(router, stagingHost, "/staging-access?next=/fr/magasins")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="pin"`)

	form := url.Values{"pin": {"2580"}, "next": {"/fr/magasins"}}
	req := httptest.NewRequest(http.MethodPost, "/staging-access", strings.NewReader(form.Encode()))
	req.Host = stagingHost
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req = httptest.NewRequest(http.MethodGet, "/fr/magasins", nil)
	req.Host = stagingHost
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusOK, get(router, stagingHost, "/healthz").Code)
}

func TestBuildRouter_StagingPINLinkShareFormBudget(t *testing.T) {
	router := newTestRouter(t)

	for i := range 11 {
		rec := get(router, stagingHost, fmt.Sprintf("/fr?pin=%04d", i))
		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.NotContains(t, rec.Header().Get("Location"), "pin")
	}

	rec := get(router, stagingHost, "/fr?pin=2580")
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/staging-access?invalid=1&next=%2Ffr", rec.Header().Get("Location"))
	assert.Empty(t, rec.Result().Cookies())

	form := url.Values{"pin": {"2580"}, "next": {"/fr"}}
	req := httptest.NewRequest(http.MethodPost, "/staging-access", strings.NewReader(form.Encode()))
	req.Host = stagingHost
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
