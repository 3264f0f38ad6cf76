// Package registry holds the immutable routing tables of the storefront:
// canonical page and service slugs per locale, the device search index and
// the blog content slug table. Everything is built once at startup and is
// safe for concurrent reads.
package registry

import (
	"fmt"
	"sort"
	"strings"

	sferrors "storefront/internal/errors"
	"storefront/internal/i18n"
)

// Key is a language-neutral route identifier, never shown to users.
type Key string

// Keys the routing core relies on.
const (
	KeyRepair   Key = "repair"
	KeyBuyback  Key = "buyback"
	KeyBlog     Key = "blog"
	KeyProducts Key = "products"
)

// Source tells which table resolved a slug.
type Source int

const (
	SourceNone Source = iota
	SourceService
	SourceStatic
	SourceIndex
)

func (s Source) String() string {
	switch s {
	case SourceService:
		return "service"
	case SourceStatic:
		return "static"
	case SourceIndex:
		return "index"
	default:
		return "none"
	}
}

// Service is a dynamic route definition with its display metadata.
type Service struct {
	Key          Key
	Slugs        map[i18n.Locale]string
	Names        map[i18n.Locale]string
	Descriptions map[i18n.Locale]string
}

// Name returns the display name in locale, falling back to the default locale.
func (s Service) Name(locale i18n.Locale) string {
	if name, ok := s.Names[locale]; ok && name != "" {
		return name
	}
	return s.Names[i18n.Default]
}

// Description returns the description in locale, falling back to the default locale.
func (s Service) Description(locale i18n.Locale) string {
	if description, ok := s.Descriptions[locale]; ok && description != "" {
		return description
	}
	return s.Descriptions[i18n.Default]
}

type slugTable struct {
	order  []Key
	slugs  map[Key]map[i18n.Locale]string
	bySlug map[i18n.Locale]map[string]Key
}

func newSlugTable(size int) *slugTable {
	table := &slugTable{
		slugs:  make(map[Key]map[i18n.Locale]string, size),
		bySlug: make(map[i18n.Locale]map[string]Key, 4),
	}
	for _, locale := range i18n.All() {
		table.bySlug[locale] = make(map[string]Key, size)
	}
	return table
}

func (t *slugTable) add(name string, rawKey string, rawSlugs map[string]string) error {
	key := Key(strings.TrimSpace(rawKey))
	if key == "" {
		return fmt.Errorf("%w: %s", sferrors.ErrEmptyKey, name)
	}
	if _, exists := t.slugs[key]; exists {
		return fmt.Errorf("%w: %s %q", sferrors.ErrDuplicateKey, name, key)
	}
	slugs, err := parseSlugs(rawSlugs, true)
	if err != nil {
		return fmt.Errorf("%s %q: %w", name, key, err)
	}
	for locale, slug := range slugs {
		if owner, taken := t.bySlug[locale][slug]; taken {
			return fmt.Errorf("%w: %s slug %q (%s) used by %q and %q", sferrors.ErrDuplicateSlug, name, slug, locale, owner, key)
		}
		t.bySlug[locale][slug] = key
	}
	t.slugs[key] = slugs
	t.order = append(t.order, key)
	return nil
}

func (t *slugTable) knows(slug string) bool {
	for _, bySlug := range t.bySlug {
		if _, ok := bySlug[slug]; ok {
			return true
		}
	}
	return false
}

// parseSlugs validates a raw locale→slug map. Strict maps need all four
// locales with pairwise distinct slugs.
func parseSlugs(raw map[string]string, strict bool) (map[i18n.Locale]string, error) {
	slugs := make(map[i18n.Locale]string, len(raw))
	seen := make(map[string]i18n.Locale, len(raw))
	for code, value := range raw {
		locale, ok := i18n.Parse(code)
		if !ok {
			return nil, fmt.Errorf("%w: %q", sferrors.ErrUnknownLocale, code)
		}
		slug := strings.TrimSpace(value)
		if slug == "" {
			return nil, fmt.Errorf("%w: locale %s", sferrors.ErrEmptySlug, locale)
		}
		if !IsSlug(slug) {
			return nil, fmt.Errorf("%w: %q", sferrors.ErrInvalidSlug, slug)
		}
		if other, dup := seen[slug]; dup && strict {
			return nil, fmt.Errorf("%w: %q shared by %s and %s", sferrors.ErrDuplicateSlug, slug, other, locale)
		}
		seen[slug] = locale
		slugs[locale] = slug
	}
	if strict {
		for _, locale := range i18n.All() {
			if _, ok := slugs[locale]; !ok {
				return nil, fmt.Errorf("%w: %s", sferrors.ErrMissingLocale, locale)
			}
		}
	}
	return slugs, nil
}

// Registry is the canonical slug registry.
type Registry struct {
	services *slugTable
	static   *slugTable
	meta     map[Key]Service
	index    *SearchIndex
	content  *ContentSlugs
}

// New validates the raw tables and builds the registry.
func New(tables Tables) (*Registry, error) {
	reg := &Registry{
		services: newSlugTable(len(tables.Services)),
		static:   newSlugTable(len(tables.Pages)),
		meta:     make(map[Key]Service, len(tables.Services)),
	}
	for _, def := range tables.Services {
		if err := reg.services.add("service", def.Key, def.Slugs); err != nil {
			return nil, err
		}
		key := Key(strings.TrimSpace(def.Key))
		service := Service{Key: key, Slugs: reg.services.slugs[key]}
		var err error
		if service.Names, err = parseText(def.Names); err != nil {
			return nil, fmt.Errorf("service %q names: %w", key, err)
		}
		if service.Descriptions, err = parseText(def.Descriptions); err != nil {
			return nil, fmt.Errorf("service %q descriptions: %w", key, err)
		}
		reg.meta[key] = service
	}
	for _, def := range tables.Pages {
		if _, taken := reg.meta[Key(strings.TrimSpace(def.Key))]; taken {
			return nil, fmt.Errorf("%w: page %q is also a service", sferrors.ErrDuplicateKey, def.Key)
		}
		if err := reg.static.add("page", def.Key, def.Slugs); err != nil {
			return nil, err
		}
	}
	index, err := NewSearchIndex(tables.Entries)
	if err != nil {
		return nil, err
	}
	reg.index = index
	content, err := NewContentSlugs(tables.Posts)
	if err != nil {
		return nil, err
	}
	reg.content = content
	return reg, nil
}

func parseText(raw map[string]string) (map[i18n.Locale]string, error) {
	out := make(map[i18n.Locale]string, len(raw))
	for code, value := range raw {
		locale, ok := i18n.Parse(code)
		if !ok {
			return nil, fmt.Errorf("%w: %q", sferrors.ErrUnknownLocale, code)
		}
		out[locale] = strings.TrimSpace(value)
	}
	return out, nil
}

// SlugFor returns the surface slug of key in locale.
func (r *Registry) SlugFor(key Key, locale i18n.Locale) (string, bool) {
	if slugs, ok := r.services.slugs[key]; ok {
		slug, found := slugs[locale]
		return slug, found
	}
	if slugs, ok := r.static.slugs[key]; ok {
		slug, found := slugs[locale]
		return slug, found
	}
	return "", false
}

// CanonicalFor resolves a surface slug of locale. Lookup order is services,
// static pages, then the device index (device slugs are locale-neutral and
// resolve to themselves).
func (r *Registry) CanonicalFor(slug string, locale i18n.Locale) (Key, Source, bool) {
	if key, ok := r.services.bySlug[locale][slug]; ok {
		return key, SourceService, true
	}
	if key, ok := r.static.bySlug[locale][slug]; ok {
		return key, SourceStatic, true
	}
	if _, ok := r.index.Lookup(slug); ok {
		return Key(slug), SourceIndex, true
	}
	return "", SourceNone, false
}

// IsRouteSlug reports whether slug is a service or page slug in any locale.
func (r *Registry) IsRouteSlug(slug string) bool {
	return r.services.knows(slug) || r.static.knows(slug)
}

// Service returns the metadata of a service key.
func (r *Registry) Service(key Key) (Service, bool) {
	service, ok := r.meta[key]
	return service, ok
}

// Services lists services in definition order.
func (r *Registry) Services() []Service {
	out := make([]Service, 0, len(r.services.order))
	for _, key := range r.services.order {
		out = append(out, r.meta[key])
	}
	return out
}

// Keys lists every service key followed by every static key, in definition
// order.
func (r *Registry) Keys() []Key {
	out := make([]Key, 0, len(r.services.order)+len(r.static.order))
	out = append(out, r.services.order...)
	out = append(out, r.static.order...)
	return out
}

// Index returns the device search index.
func (r *Registry) Index() *SearchIndex {
	return r.index
}

// Content returns the blog content slug table.
func (r *Registry) Content() *ContentSlugs {
	return r.content
}

// Sizes reports the number of rows per table.
func (r *Registry) Sizes() map[string]int {
	return map[string]int{
		"services":     len(r.services.order),
		"pages":        len(r.static.order),
		"search_index": r.index.Len(),
		"blog_posts":   r.content.Len(),
	}
}

// SortedSizeNames returns the table names of Sizes in stable order.
func SortedSizeNames(sizes map[string]int) []string {
	names := make([]string, 0, len(sizes))
	for name := range sizes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
