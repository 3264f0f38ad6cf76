// Package legacy resolves URLs of the previous storefront platform to their
// canonical destinations.
package legacy

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	sferrors "storefront/internal/errors"
	"storefront/internal/i18n"
	"storefront/internal/registry"
)

// Tier names the strategy that produced a Result.
type Tier string

const (
	TierExact    Tier = "exact"
	TierFuzzy    Tier = "fuzzy"
	TierCatchAll Tier = "catchall"
)

// Tiers lists every tier in resolution order.
var Tiers = []Tier{TierExact, TierFuzzy, TierCatchAll}

// Result is a resolved legacy redirect.
type Result struct {
	Target string
	Tier   Tier
}

var sellKeywords = []string{"vendre", "sell", "rachat", "verkopen", "inkoop", "overname"}

// Only these prefixes select the response language; anything else gets the
// default locale.
var detectable = map[string]i18n.Locale{
	"fr": i18n.LocaleFrench,
	"nl": i18n.LocaleDutch,
	"en": i18n.LocaleEnglish,
}

var phraseReplacer = strings.NewReplacer("-", " ", "_", " ")

// Resolver is immutable after New and safe for concurrent use.
type Resolver struct {
	registry *registry.Registry
	exact    map[string]string
	roots    []string
}

// New builds a resolver over the registry and the legacy tables.
func New(reg *registry.Registry, def registry.LegacyDef) (*Resolver, error) {
	for _, key := range []registry.Key{registry.KeyRepair, registry.KeyBuyback, registry.KeyProducts} {
		for _, locale := range detectable {
			if _, ok := reg.SlugFor(key, locale); !ok {
				return nil, fmt.Errorf("%w: %s/%s", sferrors.ErrMissingKey, key, locale)
			}
		}
	}

	resolver := &Resolver{
		registry: reg,
		exact:    make(map[string]string, len(def.Mappings)),
	}
	for _, mapping := range def.Mappings {
		from := strings.TrimSpace(mapping.From)
		to := strings.TrimSpace(mapping.To)
		if !strings.HasPrefix(from, "/") || !strings.HasPrefix(to, "/") {
			return nil, fmt.Errorf("%w: %q -> %q", sferrors.ErrInvalidLegacyPath, mapping.From, mapping.To)
		}
		key := Normalize(from)
		if _, exists := resolver.exact[key]; exists {
			return nil, fmt.Errorf("%w: duplicate source %q", sferrors.ErrInvalidLegacyPath, key)
		}
		resolver.exact[key] = to
	}
	for _, root := range def.Roots {
		root = Normalize(root)
		if root == "/" {
			return nil, fmt.Errorf("%w: root prefix %q", sferrors.ErrInvalidLegacyPath, root)
		}
		resolver.roots = append(resolver.roots, root)
	}
	return resolver, nil
}

// Normalize decodes, lower-cases and cleans a path. The trailing slash is
// dropped except for the root.
func Normalize(raw string) string {
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	return path.Clean("/" + strings.ToLower(strings.TrimSpace(raw)))
}

// Resolve returns the redirect target for p, trying the exact table, then
// fuzzy device matching, then the legacy-root catch-all. A target equal to
// the request path is never returned.
func (r *Resolver) Resolve(p string) (Result, bool) {
	normalized := Normalize(p)
	rest := stripLocale(normalized)

	if target, ok := r.exact[normalized]; ok {
		return r.accept(normalized, target, TierExact)
	}
	if target, ok := r.exact[rest]; ok {
		return r.accept(normalized, target, TierExact)
	}

	if !r.legacyShaped(normalized, rest) {
		return Result{}, false
	}
	lang := detectLanguage(normalized)
	if target, ok := r.fuzzy(normalized, lang); ok {
		return r.accept(normalized, target, TierFuzzy)
	}
	if r.hasRoot(rest) {
		products, _ := r.registry.SlugFor(registry.KeyProducts, lang)
		return r.accept(normalized, "/"+string(lang)+"/"+products, TierCatchAll)
	}
	return Result{}, false
}

func (r *Resolver) accept(requested, target string, tier Tier) (Result, bool) {
	if target == requested {
		return Result{}, false
	}
	return Result{Target: target, Tier: tier}, true
}

func (r *Resolver) fuzzy(normalized string, lang i18n.Locale) (string, bool) {
	phrase := phraseReplacer.Replace(normalized)
	for _, entry := range r.registry.Index().ByLength() {
		if !strings.Contains(phrase, entry.Phrase()) {
			continue
		}
		intent := registry.KeyRepair
		if sellIntent(phrase) {
			intent = registry.KeyBuyback
		}
		intentSlug, _ := r.registry.SlugFor(intent, lang)
		target := "/" + string(lang) + "/" + intentSlug + "/" + entry.BrandSlug() + "/" + entry.Slug
		if category := registry.Slugify(entry.Category); category != "" {
			target += "?category=" + url.QueryEscape(category)
		}
		return target, true
	}
	return "", false
}

// legacyShaped keeps fuzzy and catch-all matching away from locale-prefixed
// paths that already belong to the current route tree. Every fuzzy target
// has that shape, so resolution never chains.
func (r *Resolver) legacyShaped(normalized, rest string) bool {
	if r.hasRoot(rest) {
		return true
	}
	if rest == normalized {
		return rest != "/"
	}
	first, _, _ := strings.Cut(strings.TrimPrefix(rest, "/"), "/")
	return first != "" && !r.registry.IsRouteSlug(first)
}

func (r *Resolver) hasRoot(rest string) bool {
	for _, root := range r.roots {
		if rest == root || strings.HasPrefix(rest, root+"/") {
			return true
		}
	}
	return false
}

func sellIntent(phrase string) bool {
	for _, keyword := range sellKeywords {
		if strings.Contains(phrase, keyword) {
			return true
		}
	}
	return false
}

func detectLanguage(normalized string) i18n.Locale {
	first, remainder, found := strings.Cut(strings.TrimPrefix(normalized, "/"), "/")
	if locale, ok := detectable[first]; ok && found && remainder != "" {
		return locale
	}
	return i18n.Default
}

func stripLocale(normalized string) string {
	first, remainder, _ := strings.Cut(strings.TrimPrefix(normalized, "/"), "/")
	if locale, ok := i18n.Parse(first); ok && string(locale) == first {
		return "/" + remainder
	}
	return normalized
}
