package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/edge"
	"storefront/internal/httputil"
	"storefront/internal/i18n"
	"storefront/internal/logger"
	"storefront/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

var stagingTemplate = template.Must(template.ParseFS(templateFS, "templates/staging-access.html"))

const maxPINFormBytes = 1 << 10

type stagingMessages struct {
	Title   string
	Prompt  string
	Invalid string
	Submit  string
}

var stagingCopy = map[i18n.Locale]stagingMessages{
	i18n.LocaleFrench:  {"Accès staging", "Entrez le code PIN pour continuer.", "Code PIN incorrect.", "Continuer"},
	i18n.LocaleDutch:   {"Staging-toegang", "Voer de pincode in om verder te gaan.", "Onjuiste pincode.", "Doorgaan"},
	i18n.LocaleEnglish: {"Staging access", "Enter the PIN to continue.", "Incorrect PIN.", "Continue"},
	i18n.LocaleTurkish: {"Staging erişimi", "Devam etmek için PIN kodunu girin.", "PIN kodu hatalı.", "Devam"},
}

type stagingPage struct {
	Locale   string
	Action   string
	Next     string
	Invalid  bool
	Messages stagingMessages
}

// RegisterStagingRoutes serves the PIN form of the staging gate. The form
// posts back to the landing path, where each submission is charged to
// attempts, the same budget the edge router uses for ?pin= links.
func RegisterStagingRoutes(r chi.Router, gate *edge.StagingGate, attempts *middleware.RateLimiter, trustProxy bool) {
	landing := gate.LandingPath()

	r.Get(landing, func(w http.ResponseWriter, req *http.Request) {
		query := req.URL.Query()
		renderStaging(w, req, http.StatusOK, stagingPage{
			Action:  landing,
			Next:    safeNext(query.Get("next")),
			Invalid: query.Get("invalid") != "",
		})
	})

	r.With(
		middleware.SameOrigin,
		middleware.BodyLimit(maxPINFormBytes),
		attempts.Middleware,
	).Post(landing, func(w http.ResponseWriter, req *http.Request) {
		if err := req.ParseForm(); err != nil {
			writeError(w, req, http.StatusBadRequest, err, "invalid staging form")
			return
		}
		next := safeNext(req.PostForm.Get("next"))
		if !gate.Check(req.PostForm.Get("pin")) {
			logger.HTTPError(req.Method, req.URL.Path, http.StatusUnauthorized, nil).
				Str("request_id", middleware.GetRequestID(req.Context())).
				Str("client_ip", httputil.ClientIP(req, trustProxy)).
				Msg("staging pin rejected")
			renderStaging(w, req, http.StatusUnauthorized, stagingPage{Action: landing, Next: next, Invalid: true})
			return
		}
		http.SetCookie(w, gate.Cookie())
		w.Header().Set("Cache-Control", "no-store")
		http.Redirect(w, req, next, http.StatusSeeOther)
	})
}

func renderStaging(w http.ResponseWriter, r *http.Request, status int, page stagingPage) {
	locale := stagingLocale(r)
	page.Locale = locale.String()
	page.Messages = stagingCopy[locale]
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := stagingTemplate.Execute(w, page); err != nil {
		logger.HTTPError(r.Method, r.URL.Path, status, err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Msg("failed to render staging page")
	}
}

func stagingLocale(r *http.Request) i18n.Locale {
	if locale, ok := i18n.FromCookie(r); ok {
		return locale
	}
	return i18n.FromAcceptLanguage(r.Header.Get("Accept-Language"))
}

func safeNext(next string) string {
	if httputil.LocalRedirect(next) {
		return next
	}
	return "/"
}
