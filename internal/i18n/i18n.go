package i18n

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

// Locale is one of the storefront's supported locales.
type Locale string

const (
	LocaleFrench  Locale = "fr"
	LocaleDutch   Locale = "nl"
	LocaleEnglish Locale = "en"
	LocaleTurkish Locale = "tr"
)

// Default is used whenever a request carries no usable locale.
const Default = LocaleFrench

// CookieName is the locale preference cookie written by the edge router.
const CookieName = "NEXT_LOCALE"

var all = []Locale{LocaleFrench, LocaleDutch, LocaleEnglish, LocaleTurkish}

// French first so the matcher falls back to it.
var matcher = language.NewMatcher([]language.Tag{
	language.French,
	language.Dutch,
	language.English,
	language.Turkish,
})

// All returns the supported locales, default first.
func All() []Locale {
	out := make([]Locale, len(all))
	copy(out, all)
	return out
}

// Parse validates a locale code. Codes are matched case-insensitively.
func Parse(value string) (Locale, bool) {
	code := Locale(strings.ToLower(strings.TrimSpace(value)))
	for _, locale := range all {
		if locale == code {
			return locale, true
		}
	}
	return "", false
}

// OrDefault parses value and substitutes Default for unknown codes.
func OrDefault(value string) Locale {
	if locale, ok := Parse(value); ok {
		return locale
	}
	return Default
}

func (l Locale) String() string {
	return string(l)
}

// Valid reports whether l is one of the supported locales.
func (l Locale) Valid() bool {
	locale, ok := Parse(string(l))
	return ok && locale == l
}

// FromAcceptLanguage picks the best supported locale for an Accept-Language header.
func FromAcceptLanguage(headerValue string) Locale {
	if strings.TrimSpace(headerValue) == "" {
		return Default
	}
	tags, _, err := language.ParseAcceptLanguage(headerValue)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No || index < 0 || index >= len(all) {
		return Default
	}
	return all[index]
}

// FromCookie reads the locale preference cookie.
func FromCookie(request *http.Request) (Locale, bool) {
	cookie, err := request.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	return Parse(cookie.Value)
}
