// Package httputil holds small request helpers shared by middleware and handlers.
package httputil

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIP returns the caller's address. With trustProxy, the first valid
// address in X-Forwarded-For wins, then X-Real-IP. Malformed header values
// are ignored so a client cannot pick an arbitrary rate-limit key.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		for _, candidate := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
			if addr, ok := parseAddr(candidate); ok {
				return addr
			}
		}
		if addr, ok := parseAddr(r.Header.Get("X-Real-IP")); ok {
			return addr
		}
	}
	remote := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(remote); err == nil {
		return host
	}
	return remote
}

// LocalRedirect reports whether target is a same-site absolute path that is
// safe to redirect to.
func LocalRedirect(target string) bool {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return false
	}
	return !strings.ContainsAny(target, "\r\n")
}

func parseAddr(value string) (string, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(value))
	if err != nil {
		return "", false
	}
	return addr.Unmap().String(), true
}
