package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	sferrors "storefront/internal/errors"
	"storefront/internal/i18n"
	"storefront/internal/translate"
)

type translateResponse struct {
	Path       string `json:"path"`
	Locale     string `json:"locale"`
	Translated string `json:"translated"`
}

// RegisterTranslateRoutes exposes the language switcher API.
func RegisterTranslateRoutes(r chi.Router, translator *translate.Translator) {
	r.Get("/api/translate", func(w http.ResponseWriter, req *http.Request) {
		raw := requestedPath(req)
		locale, ok := i18n.Parse(req.URL.Query().Get("locale"))
		if !ok {
			writeError(w, req, http.StatusBadRequest, sferrors.ErrUnknownLocale, "unknown locale")
			return
		}
		writeJSON(w, req, http.StatusOK, translateResponse{
			Path:       raw,
			Locale:     locale.String(),
			Translated: translator.TranslateString(raw, locale),
		})
	})

	r.Get("/api/alternates", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, req, http.StatusOK, translator.Alternates(translate.ParsePath(requestedPath(req))))
	})
}

func requestedPath(req *http.Request) string {
	raw := strings.TrimSpace(req.URL.Query().Get("path"))
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return raw
}
