// Package edge runs once per inbound request before any page handler. It
// excludes assets, gates staging hosts, redirects legacy URLs, enforces the
// locale prefix and rewrites localized public paths onto the internal route
// tree.
package edge

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"storefront/internal/i18n"
	"storefront/internal/legacy"
	"storefront/internal/logger"
	"storefront/internal/registry"
	"storefront/internal/translate"
)

// Action is what the router does with a request.
type Action string

const (
	ActionPass     Action = "pass"
	ActionRedirect Action = "redirect"
	ActionRewrite  Action = "rewrite"
)

// Reasons reported with each decision.
const (
	ReasonExcluded       = "excluded"
	ReasonStagingLanding = "staging_landing"
	ReasonStagingPIN     = "staging_pin"
	ReasonStagingDenied  = "staging_denied"
	ReasonStagingLimited = "staging_limited"
	ReasonLegacy         = "legacy"
	ReasonLocaleMissing  = "locale_missing"
	ReasonLocaleRewrite  = "locale_rewrite"
	ReasonLocalized      = "localized"
)

const localeCookieTTL = 365 * 24 * time.Hour

// DefaultExclusions are path prefixes that bypass the router.
var DefaultExclusions = []string{"/_next/", "/api/", "/admin", "/static/", "/assets/", "/metrics", "/healthz"}

// Decision is the outcome of routing one request.
type Decision struct {
	Action   Action
	Reason   string
	Status   int
	Location string
	// Path is the internal path for a rewrite.
	Path       string
	Locale     i18n.Locale
	LegacyTier legacy.Tier
	Cookies    []*http.Cookie
}

// Recorder receives every decision, typically to count it.
type Recorder interface {
	EdgeDecision(action, reason string)
	LegacyResolution(tier string)
}

// AttemptLimiter charges one staging PIN attempt to the client of r and
// reports whether it is still within budget.
type AttemptLimiter interface {
	Allow(r *http.Request) (bool, int)
}

// Options configures a Router.
type Options struct {
	Registry *registry.Registry
	Legacy   *legacy.Resolver
	// Gate is nil when staging gating is off.
	Gate *StagingGate
	// PINAttempts limits ?pin= checks. Share it with the landing form so
	// both entry points draw from one budget.
	PINAttempts     AttemptLimiter
	Exclusions      []string
	Rewrites        []registry.RewriteDef
	LocaleDetection bool
	Recorder        Recorder
}

// Router is immutable after NewRouter and safe for concurrent use.
type Router struct {
	legacy          *legacy.Resolver
	gate            *StagingGate
	pinAttempts     AttemptLimiter
	exclusions      []string
	rewrites        *rewriteTable
	localeDetection bool
	recorder        Recorder
}

// NewRouter builds the router and its rewrite table.
func NewRouter(opts Options) (*Router, error) {
	rewrites, err := newRewriteTable(opts.Registry, opts.Rewrites)
	if err != nil {
		return nil, err
	}
	exclusions := opts.Exclusions
	if exclusions == nil {
		exclusions = DefaultExclusions
	}
	trimmed := make([]string, 0, len(exclusions))
	for _, prefix := range exclusions {
		if prefix = strings.TrimRight(strings.TrimSpace(prefix), "/"); prefix != "" {
			trimmed = append(trimmed, prefix)
		}
	}
	return &Router{
		legacy:          opts.Legacy,
		gate:            opts.Gate,
		pinAttempts:     opts.PINAttempts,
		exclusions:      trimmed,
		rewrites:        rewrites,
		localeDetection: opts.LocaleDetection,
		recorder:        opts.Recorder,
	}, nil
}

// RewriteRules returns the number of internal rewrite rules.
func (rt *Router) RewriteRules() int {
	return rt.rewrites.count()
}

// Decide computes the routing decision for r. Its only side effect is
// charging ?pin= attempts on staging hosts to the attempt limiter.
func (rt *Router) Decide(r *http.Request) Decision {
	p := r.URL.Path
	if p == "" {
		p = "/"
	}

	if rt.excluded(p) {
		return Decision{Action: ActionPass, Reason: ReasonExcluded}
	}

	if rt.gate != nil {
		if p == rt.gate.LandingPath() {
			return Decision{Action: ActionPass, Reason: ReasonStagingLanding}
		}
		if rt.gate.IsStaging(r.Host) {
			if decision, gated := rt.stagingDecision(r); gated {
				return decision
			}
		}
	}

	if rt.legacy != nil {
		if result, ok := rt.legacy.Resolve(p); ok {
			return Decision{
				Action:     ActionRedirect,
				Reason:     ReasonLegacy,
				Status:     http.StatusPermanentRedirect,
				Location:   withQuery(result.Target, r.URL.RawQuery),
				LegacyTier: result.Tier,
			}
		}
	}

	route := translate.ParsePath(p)
	if !route.HasLocale() {
		locale := rt.preferredLocale(r)
		target := "/" + string(locale)
		if p != "/" {
			target += r.URL.EscapedPath()
		}
		return Decision{
			Action:   ActionRedirect,
			Reason:   ReasonLocaleMissing,
			Status:   http.StatusTemporaryRedirect,
			Location: withQuery(target, r.URL.RawQuery),
			Locale:   locale,
		}
	}

	decision := Decision{Action: ActionPass, Reason: ReasonLocalized, Locale: route.Locale}
	if internal, ok := rt.rewrites.match(p); ok {
		decision.Action = ActionRewrite
		decision.Reason = ReasonLocaleRewrite
		decision.Path = internal
	}
	if current, ok := i18n.FromCookie(r); !ok || current != route.Locale {
		decision.Cookies = append(decision.Cookies, localeCookie(route.Locale))
	}
	return decision
}

func (rt *Router) stagingDecision(r *http.Request) (Decision, bool) {
	query := r.URL.Query()
	pin := query.Get(StagingPINParam)
	query.Del(StagingPINParam)
	target := withQuery(r.URL.EscapedPath(), query.Encode())

	limited := pin != "" && !rt.allowAttempt(r)
	if pin != "" && !limited && rt.gate.Check(pin) {
		return Decision{
			Action:   ActionRedirect,
			Reason:   ReasonStagingPIN,
			Status:   http.StatusTemporaryRedirect,
			Location: target,
			Cookies:  []*http.Cookie{rt.gate.Cookie()},
		}, true
	}
	if rt.gate.Granted(r) {
		return Decision{}, false
	}

	// next never carries the PIN.
	landing := url.Values{"next": []string{target}}
	reason := ReasonStagingDenied
	if pin != "" {
		landing.Set("invalid", "1")
	}
	if limited {
		reason = ReasonStagingLimited
	}
	return Decision{
		Action:   ActionRedirect,
		Reason:   reason,
		Status:   http.StatusTemporaryRedirect,
		Location: rt.gate.LandingPath() + "?" + landing.Encode(),
	}, true
}

func (rt *Router) allowAttempt(r *http.Request) bool {
	if rt.pinAttempts == nil {
		return true
	}
	allowed, _ := rt.pinAttempts.Allow(r)
	return allowed
}

func (rt *Router) excluded(p string) bool {
	for _, prefix := range rt.exclusions {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	switch ext := strings.ToLower(path.Ext(path.Base(p))); ext {
	case "", ".html", ".htm":
		return false
	default:
		return true
	}
}

func (rt *Router) preferredLocale(r *http.Request) i18n.Locale {
	if !rt.localeDetection {
		return i18n.Default
	}
	if locale, ok := i18n.FromCookie(r); ok {
		return locale
	}
	return i18n.FromAcceptLanguage(r.Header.Get("Accept-Language"))
}

// Middleware applies each decision: redirects end the request, rewrites
// swap the path seen by next while keeping the public path in the context.
func (rt *Router) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := rt.Decide(r)
		rt.observe(r, decision)

		for _, cookie := range decision.Cookies {
			http.SetCookie(w, cookie)
		}
		if decision.Action == ActionRedirect {
			w.Header().Set("Cache-Control", "no-store")
			http.Redirect(w, r, decision.Location, decision.Status)
			return
		}

		ctx := context.WithValue(r.Context(), publicPathKey, r.URL.Path)
		if decision.Locale != "" {
			ctx = context.WithValue(ctx, localeKey, decision.Locale)
		}
		routed := r.WithContext(ctx)
		if decision.Action == ActionRewrite {
			routed = r.Clone(ctx)
			routed.URL.Path = decision.Path
			routed.URL.RawPath = ""
		}
		next.ServeHTTP(w, routed)
	})
}

func (rt *Router) observe(r *http.Request, decision Decision) {
	if rt.recorder != nil {
		rt.recorder.EdgeDecision(string(decision.Action), decision.Reason)
		if decision.LegacyTier != "" {
			rt.recorder.LegacyResolution(string(decision.LegacyTier))
		}
	}
	event := logger.RouteEvent(string(decision.Action), decision.Reason).
		Str("path", r.URL.Path)
	if decision.Location != "" {
		event = event.Str("location", decision.Location)
	}
	if decision.Path != "" {
		event = event.Str("internal_path", decision.Path)
	}
	event.Msg("Edge decision")
}

func localeCookie(locale i18n.Locale) *http.Cookie {
	return &http.Cookie{
		Name:     i18n.CookieName,
		Value:    string(locale),
		Path:     "/",
		MaxAge:   int(localeCookieTTL.Seconds()),
		SameSite: http.SameSiteLaxMode,
	}
}

func withQuery(target, rawQuery string) string {
	if rawQuery == "" || strings.Contains(target, "?") {
		return target
	}
	return target + "?" + rawQuery
}

type contextKey string

const (
	publicPathKey contextKey = "edge_public_path"
	localeKey     contextKey = "edge_locale"
)

// PublicPath returns the path the client requested, before any rewrite.
func PublicPath(ctx context.Context) (string, bool) {
	p, ok := ctx.Value(publicPathKey).(string)
	return p, ok
}

// LocaleFrom returns the locale the router resolved for the request.
func LocaleFrom(ctx context.Context) (i18n.Locale, bool) {
	locale, ok := ctx.Value(localeKey).(i18n.Locale)
	return locale, ok
}
