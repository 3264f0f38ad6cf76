package handlers

import (
	"net/http"

	"storefront/internal/edge"
	"storefront/internal/i18n"
	"storefront/internal/registry"
	"storefront/internal/translate"
)

// homeRoute names the locale root page.
const homeRoute = "home"

type pageResponse struct {
	Locale       string `json:"locale"`
	Route        string `json:"route"`
	ContentID    string `json:"content_id,omitempty"`
	InternalPath string `json:"internal_path"`
	PublicPath   string `json:"public_path"`
}

// Pages answers localized routes that reach the application after the edge
// router. A page exists when its first segment resolves to a canonical key;
// a blog post page also needs a known post slug, reported by content ID.
func Pages(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		route := translate.ParsePath(r.URL.Path)
		locale, ok := edge.LocaleFrom(r.Context())
		if !ok {
			locale = route.Locale
		}
		if !route.HasLocale() {
			writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "page not found"})
			return
		}
		key, found := pageKey(reg, route)
		if !found {
			writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "page not found"})
			return
		}
		var contentID string
		if key == string(registry.KeyBlog) && len(route.Segments) > 1 {
			if contentID, found = reg.Content().ContentID(route.Segments[1]); !found {
				writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "page not found"})
				return
			}
		}
		publicPath, ok := edge.PublicPath(r.Context())
		if !ok {
			publicPath = r.URL.Path
		}
		writeJSON(w, r, http.StatusOK, pageResponse{
			Locale:       locale.String(),
			Route:        key,
			ContentID:    contentID,
			InternalPath: r.URL.Path,
			PublicPath:   publicPath,
		})
	}
}

// pageKey resolves the first segment in the path locale, then in English,
// which is the slug set rewritten Turkish paths are served under.
func pageKey(reg *registry.Registry, route translate.RoutePath) (string, bool) {
	if len(route.Segments) == 0 {
		return homeRoute, true
	}
	for _, locale := range []i18n.Locale{route.Locale, i18n.LocaleEnglish} {
		if key, _, ok := reg.CanonicalFor(route.Segments[0], locale); ok {
			return string(key), true
		}
	}
	return "", false
}
