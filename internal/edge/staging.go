package edge

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	// StagingCookieName marks a client that already entered the staging PIN.
	StagingCookieName  = "staging_access_granted"
	StagingPINParam    = "pin"
	DefaultLandingPath = "/staging-access"

	stagingCookieTTL = 7 * 24 * time.Hour
)

// PINSource returns the current staging PIN, plain or bcrypt-hashed. It is
// read on every gated request and must not block.
type PINSource interface {
	PIN() string
}

// PINFunc adapts a function to PINSource.
type PINFunc func() string

func (f PINFunc) PIN() string { return f() }

// StagingGate restricts non-production hosts to clients holding the access
// cookie.
type StagingGate struct {
	production    map[string]struct{}
	landing       string
	pins          PINSource
	secureCookies bool
}

// NewStagingGate returns a gate that treats every host outside
// productionHosts as staging. It returns nil when no production host is
// configured, which disables gating.
func NewStagingGate(productionHosts []string, landing string, pins PINSource, secureCookies bool) *StagingGate {
	production := make(map[string]struct{}, len(productionHosts))
	for _, host := range productionHosts {
		if host = normalizeHost(host); host != "" {
			production[host] = struct{}{}
		}
	}
	if len(production) == 0 {
		return nil
	}
	if landing == "" {
		landing = DefaultLandingPath
	}
	return &StagingGate{
		production:    production,
		landing:       landing,
		pins:          pins,
		secureCookies: secureCookies,
	}
}

// LandingPath is the PIN entry page. It is never gated.
func (g *StagingGate) LandingPath() string {
	return g.landing
}

// IsStaging reports whether host (with or without port) is a staging host.
func (g *StagingGate) IsStaging(host string) bool {
	_, production := g.production[normalizeHost(host)]
	return !production
}

// Granted reports whether the request carries the access cookie.
func (g *StagingGate) Granted(r *http.Request) bool {
	cookie, err := r.Cookie(StagingCookieName)
	return err == nil && cookie.Value == "true"
}

// Check verifies a submitted PIN against the current one.
func (g *StagingGate) Check(pin string) bool {
	if g.pins == nil {
		return false
	}
	stored := strings.TrimSpace(g.pins.PIN())
	pin = strings.TrimSpace(pin)
	if stored == "" || pin == "" {
		return false
	}
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(pin)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(pin)) == 1
}

// Cookie returns the access cookie set once the PIN is accepted.
func (g *StagingGate) Cookie() *http.Cookie {
	return &http.Cookie{
		Name:     StagingCookieName,
		Value:    "true",
		Path:     "/",
		MaxAge:   int(stagingCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   g.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimSuffix(host, ".")
}
