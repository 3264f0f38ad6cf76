// Package translate rewrites route paths from one locale to another using
// the canonical slug registry. It backs the language switcher and the edge
// router's alias table.
package translate

import (
	"storefront/internal/i18n"
	"storefront/internal/registry"
)

// Translator is stateless and safe for concurrent use.
type Translator struct {
	registry *registry.Registry
}

// New returns a translator over reg.
func New(reg *registry.Registry) *Translator {
	return &Translator{registry: reg}
}

// Translate returns path with every known segment replaced by its slug in
// target. Unknown segments are kept, segment order and count never change,
// and the locale prefix is replaced or prepended. The segment following the
// blog segment is a content slug and is translated through the content
// table only.
func (t *Translator) Translate(path RoutePath, target i18n.Locale) RoutePath {
	if !target.Valid() {
		target = i18n.Default
	}
	out := RoutePath{
		Locale:   target,
		Segments: make([]string, len(path.Segments)),
		Query:    path.Query,
	}
	for i := 0; i < len(path.Segments); i++ {
		segment := path.Segments[i]
		key, source, ok := t.resolve(segment, path.Locale)
		if !ok {
			out.Segments[i] = segment
			continue
		}
		out.Segments[i] = t.surface(key, source, segment, target)
		if source != registry.SourceIndex && key == registry.KeyBlog && i+1 < len(path.Segments) {
			i++
			out.Segments[i] = t.contentSlug(path.Segments[i], target)
		}
	}
	return out
}

// TranslateString parses raw, translates it and renders the result.
func (t *Translator) TranslateString(raw string, target i18n.Locale) string {
	return t.Translate(ParsePath(raw), target).String()
}

// Alternates returns the equivalent path in every supported locale.
func (t *Translator) Alternates(path RoutePath) map[i18n.Locale]string {
	out := make(map[i18n.Locale]string, 4)
	for _, locale := range i18n.All() {
		out[locale] = t.Translate(path, locale).String()
	}
	return out
}

// resolve looks the segment up in the path's own locale first, then in
// every locale, for paths whose prefix does not match their slugs.
func (t *Translator) resolve(segment string, source i18n.Locale) (registry.Key, registry.Source, bool) {
	if source.Valid() {
		if key, src, ok := t.registry.CanonicalFor(segment, source); ok {
			return key, src, true
		}
	}
	for _, locale := range i18n.All() {
		if locale == source {
			continue
		}
		if key, src, ok := t.registry.CanonicalFor(segment, locale); ok {
			return key, src, true
		}
	}
	return "", registry.SourceNone, false
}

func (t *Translator) surface(key registry.Key, source registry.Source, segment string, target i18n.Locale) string {
	if source == registry.SourceIndex {
		return segment
	}
	if slug, ok := t.registry.SlugFor(key, target); ok {
		return slug
	}
	return segment
}

func (t *Translator) contentSlug(slug string, target i18n.Locale) string {
	if translated, ok := t.registry.Content().Translate(slug, target); ok {
		return translated
	}
	return slug
}
