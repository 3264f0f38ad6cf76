package edge

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/i18n"
	"storefront/internal/legacy"
	"storefront/internal/registry"
)

const (
	productionHost = "www.example.be"
	stagingHost    = "staging.example.be"
)

type recorded struct {
	mu        sync.Mutex
	decisions []string
	tiers     []string
}

func (r *recorded) EdgeDecision(action, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisions = append(r.decisions, action+"/"+reason)
}

func (r *recorded) LegacyResolution(tier string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tiers = append(r.tiers, tier)
}

func newTestRouter(t *testing.T, mutate func(*Options)) *Router {
	t.Helper()
	tables, err := registry.Load("")
	require.NoError(t, err)
	reg, err := registry.New(tables)
	require.NoError(t, err)
	resolver, err := legacy.New(reg, tables.Legacy)
	require.NoError(t, err)

	opts := Options{
		Registry: reg,
		Legacy:   resolver,
		Gate:     NewStagingGate([]string{productionHost}, "", PINFunc(func() string { return "2580" }), false),
		Rewrites: tables.Rewrites,
	}
	if mutate != nil {
		mutate(&opts)
	}
	router, err := NewRouter(opts)
	require.NoError(t, err)
	return router
}

func request(host, target string, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Host = host
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	return req
}

func TestDecide(t *testing.T) {
	router := newTestRouter(t, nil)
	localeFR := &http.Cookie{Name: i18n.CookieName, Value: "fr"}

	tests := []struct {
		name     string
		target   string
		action   Action
		reason   string
		status   int
		location string
		path     string
	}{
		{"api excluded", "/api/shops", ActionPass, ReasonExcluded, 0, "", ""},
		{"asset excluded", "/favicon.ico", ActionPass, ReasonExcluded, 0, "", ""},
		{"admin excluded", "/admin/settings", ActionPass, ReasonExcluded, 0, "", ""},
		{"legacy exact", "/pages/contact", ActionRedirect, ReasonLegacy, http.StatusPermanentRedirect, "/fr/contactez-nous", ""},
		{"legacy keeps query", "/pages/faq?utm_source=mail", ActionRedirect, ReasonLegacy, http.StatusPermanentRedirect, "/fr/questions-frequentes?utm_source=mail", ""},
		{"legacy html page", "/products/iphone-14.html", ActionRedirect, ReasonLegacy, http.StatusPermanentRedirect, "/fr/reparation/apple/iphone-14?category=smartphone", ""},
		{"legacy fuzzy under route slug", "/reparation/iphone-13-pro-max-ecran", ActionRedirect, ReasonLegacy, http.StatusPermanentRedirect, "/fr/reparation/apple/iphone-13-pro-max?category=smartphone", ""},
		{"root gets default locale", "/", ActionRedirect, ReasonLocaleMissing, http.StatusTemporaryRedirect, "/fr", ""},
		{"missing locale kept verbatim", "/stores/brussels?x=1", ActionRedirect, ReasonLocaleMissing, http.StatusTemporaryRedirect, "/fr/stores/brussels?x=1", ""},
		{"uppercase prefix is not a locale", "/FR/magasins", ActionRedirect, ReasonLocaleMissing, http.StatusTemporaryRedirect, "/fr/FR/magasins", ""},
		{"localized pass", "/fr/magasins", ActionPass, ReasonLocalized, 0, "", ""},
		{"turkish rewrite", "/tr/tamir/apple/iphone-13", ActionRewrite, ReasonLocaleRewrite, 0, "", "/tr/repair/apple/iphone-13"},
		{"turkish rewrite exact prefix", "/tr/magazalar", ActionRewrite, ReasonLocaleRewrite, 0, "", "/tr/stores"},
		{"turkish extra rewrite", "/tr/kampanya/yaz", ActionRewrite, ReasonLocaleRewrite, 0, "", "/tr/shop/yaz"},
		{"turkish rewrite needs segment boundary", "/tr/tamirci", ActionPass, ReasonLocalized, 0, "", ""},
		{"turkish faq", "/tr/sss", ActionRewrite, ReasonLocaleRewrite, 0, "", "/tr/faq"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := router.Decide(request(productionHost, tt.target, localeFR))
			assert.Equal(t, tt.action, decision.Action)
			assert.Equal(t, tt.reason, decision.Reason)
			assert.Equal(t, tt.status, decision.Status)
			assert.Equal(t, tt.location, decision.Location)
			assert.Equal(t, tt.path, decision.Path)
		})
	}
}

func TestDecide_LegacyScenarioReachesCanonicalPage(t *testing.T) {
	router := newTestRouter(t, nil)

	first := router.Decide(request(productionHost, "/pages/reparation-iphone-13-pro"))
	require.Equal(t, ActionRedirect, first.Action)
	assert.Equal(t, legacy.TierExact, first.LegacyTier)
	assert.Equal(t, "/fr/reparation/apple/iphone-13-pro", first.Location)

	prefixed := router.Decide(request(productionHost, "/fr/pages/reparation-iphone-13-pro"))
	assert.Equal(t, first.Location, prefixed.Location)

	final := router.Decide(request(productionHost, first.Location))
	assert.Equal(t, ActionPass, final.Action)
	assert.Equal(t, i18n.LocaleFrench, final.Locale)
}

func TestDecide_LocaleCookie(t *testing.T) {
	router := newTestRouter(t, nil)

	fresh := router.Decide(request(productionHost, "/nl/winkels"))
	require.Len(t, fresh.Cookies, 1)
	cookie := fresh.Cookies[0]
	assert.Equal(t, i18n.CookieName, cookie.Name)
	assert.Equal(t, "nl", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 365*24*60*60, cookie.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	same := router.Decide(request(productionHost, "/nl/winkels", &http.Cookie{Name: i18n.CookieName, Value: "nl"}))
	assert.Empty(t, same.Cookies)

	redirect := router.Decide(request(productionHost, "/winkels"))
	assert.Empty(t, redirect.Cookies)
}

func TestDecide_LocaleDetection(t *testing.T) {
	router := newTestRouter(t, func(opts *Options) { opts.LocaleDetection = true })

	byCookie := router.Decide(request(productionHost, "/stores", &http.Cookie{Name: i18n.CookieName, Value: "en"}))
	assert.Equal(t, "/en/stores", byCookie.Location)

	req := request(productionHost, "/stores")
	req.Header.Set("Accept-Language", "nl-BE,nl;q=0.9,en;q=0.5")
	assert.Equal(t, "/nl/stores", router.Decide(req).Location)

	fallback := request(productionHost, "/stores")
	fallback.Header.Set("Accept-Language", "ja")
	assert.Equal(t, "/fr/stores", router.Decide(fallback).Location)
}

func TestDecide_StagingGate(t *testing.T) {
	router := newTestRouter(t, nil)

	denied := router.Decide(request(stagingHost, "/fr/magasins"))
	assert.Equal(t, ActionRedirect, denied.Action)
	assert.Equal(t, ReasonStagingDenied, denied.Reason)
	assert.Equal(t, http.StatusTemporaryRedirect, denied.Status)
	assert.Equal(t, "/staging-access?next=%2Ffr%2Fmagasins", denied.Location)

	wrong := router.Decide(request(stagingHost, "/fr/magasins?pin=0000&utm=x"))
	assert.Equal(t, ReasonStagingDenied, wrong.Reason)
	assert.Equal(t, "/staging-access?invalid=1&next=%2Ffr%2Fmagasins%3Futm%3Dx", wrong.Location)
	assert.NotContains(t, wrong.Location, "0000")

	landing := router.Decide(request(stagingHost, "/staging-access?next=%2Ffr"))
	assert.Equal(t, ActionPass, landing.Action)
	assert.Equal(t, ReasonStagingLanding, landing.Reason)

	assets := router.Decide(request(stagingHost, "/static/app.css"))
	assert.Equal(t, ReasonExcluded, assets.Reason)

	production := router.Decide(request(productionHost+":443", "/fr/magasins"))
	assert.Equal(t, ReasonLocalized, production.Reason)
}

type attemptBudget struct {
	left  int
	calls int
}

func (b *attemptBudget) Allow(*http.Request) (bool, int) {
	b.calls++
	if b.left == 0 {
		return false, 900
	}
	b.left--
	return true, 0
}

func TestDecide_StagingPINAttemptsLimited(t *testing.T) {
	budget := &attemptBudget{left: 2}
	router := newTestRouter(t, func(opts *Options) { opts.PINAttempts = budget })

	for _, pin := range []string{"0000", "0001"} {
		decision := router.Decide(request(stagingHost, "/fr?pin="+pin))
		assert.Equal(t, ReasonStagingDenied, decision.Reason)
	}

	exhausted := router.Decide(request(stagingHost, "/fr?pin=2580"))
	assert.Equal(t, ActionRedirect, exhausted.Action)
	assert.Equal(t, ReasonStagingLimited, exhausted.Reason)
	assert.Equal(t, "/staging-access?invalid=1&next=%2Ffr", exhausted.Location)
	assert.Empty(t, exhausted.Cookies)

	plain := router.Decide(request(stagingHost, "/fr"))
	assert.Equal(t, ReasonStagingDenied, plain.Reason)
	assert.Equal(t, 3, budget.calls, "requests without a pin are not charged")

	granted := router.Decide(request(stagingHost, "/fr?pin=2580", NewStagingGate([]string{productionHost}, "", nil, false).Cookie()))
	assert.Equal(t, ReasonLocalized, granted.Reason)
}

func TestMiddleware_StagingPINScenario(t *testing.T) {
	router := newTestRouter(t, nil)
	var reached []string
	handler := router.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = append(reached, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, request(stagingHost, "/fr/magasins?pin=2580&utm=x"))

	require.Equal(t, http.StatusTemporaryRedirect, first.Code)
	assert.Equal(t, "/fr/magasins?utm=x", first.Header().Get("Location"))
	cookies := first.Result().Cookies()
	require.Len(t, cookies, 1)
	access := cookies[0]
	assert.Equal(t, StagingCookieName, access.Name)
	assert.Equal(t, "true", access.Value)
	assert.Equal(t, "/", access.Path)
	assert.Equal(t, 7*24*60*60, access.MaxAge)
	assert.True(t, access.HttpOnly)
	assert.Empty(t, reached)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, request(stagingHost, "/fr/magasins?utm=x", access))

	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, []string{"/fr/magasins"}, reached)
}

func TestMiddleware_RewriteKeepsPublicPath(t *testing.T) {
	router := newTestRouter(t, nil)
	var (
		internal string
		public   string
		locale   i18n.Locale
	)
	handler := router.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		internal = r.URL.Path
		public, _ = PublicPath(r.Context())
		locale, _ = LocaleFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request(productionHost, "/tr/tamir/apple"))

	assert.Equal(t, "/tr/repair/apple", internal)
	assert.Equal(t, "/tr/tamir/apple", public)
	assert.Equal(t, i18n.LocaleTurkish, locale)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "NEXT_LOCALE=tr")
}

func TestMiddleware_LegacyRedirectIsRecorded(t *testing.T) {
	recorder := &recorded{}
	router := newTestRouter(t, func(opts *Options) { opts.Recorder = recorder })
	handler := router.Middleware(http.NotFoundHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request(productionHost, "/collections/old-sale"))

	assert.Equal(t, http.StatusPermanentRedirect, rec.Code)
	assert.Equal(t, "/fr/boutique", rec.Header().Get("Location"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, []string{"redirect/legacy"}, recorder.decisions)
	assert.Equal(t, []string{"catchall"}, recorder.tiers)
}

func TestNewRouter_InvalidRewrite(t *testing.T) {
	tables, err := registry.Load("")
	require.NoError(t, err)
	reg, err := registry.New(tables)
	require.NoError(t, err)

	tests := []registry.RewriteDef{
		{Locale: "de", From: "/de/a", To: "/de/b"},
		{Locale: "tr", From: "/nl/a", To: "/tr/b"},
		{Locale: "tr", From: "/tr/tamir", To: "/tr/other"},
	}
	for _, def := range tests {
		_, err := NewRouter(Options{Registry: reg, Rewrites: []registry.RewriteDef{def}})
		assert.Error(t, err, "%+v", def)
	}
}
