package translate

import (
	"strings"

	"storefront/internal/i18n"
)

// RoutePath is a request path split into an optional locale prefix, the
// remaining non-empty segments and a raw query string.
type RoutePath struct {
	Locale   i18n.Locale
	Segments []string
	Query    string
}

// ParsePath splits raw into a RoutePath. The first segment is taken as the
// locale prefix only when it is exactly one of the supported codes.
func ParsePath(raw string) RoutePath {
	var route RoutePath
	pathPart := raw
	if index := strings.IndexByte(raw, '?'); index >= 0 {
		pathPart = raw[:index]
		route.Query = raw[index+1:]
	}
	for _, segment := range strings.Split(pathPart, "/") {
		if segment == "" {
			continue
		}
		route.Segments = append(route.Segments, segment)
	}
	if len(route.Segments) > 0 {
		if locale, ok := i18n.Parse(route.Segments[0]); ok && string(locale) == route.Segments[0] {
			route.Locale = locale
			route.Segments = route.Segments[1:]
		}
	}
	return route
}

// HasLocale reports whether the path carries a locale prefix.
func (p RoutePath) HasLocale() bool {
	return p.Locale != ""
}

// Path renders the path without its query string.
func (p RoutePath) Path() string {
	parts := make([]string, 0, len(p.Segments)+1)
	if p.Locale != "" {
		parts = append(parts, string(p.Locale))
	}
	parts = append(parts, p.Segments...)
	return "/" + strings.Join(parts, "/")
}

func (p RoutePath) String() string {
	if p.Query == "" {
		return p.Path()
	}
	return p.Path() + "?" + p.Query
}
