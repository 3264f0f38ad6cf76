package registry

import (
	"fmt"
	"sort"
	"strings"

	sferrors "storefront/internal/errors"
)

// Entry is one device model of the search index, keyed by its slug.
type Entry struct {
	Slug     string `yaml:"slug" json:"slug"`
	Brand    string `yaml:"brand" json:"brand"`
	Model    string `yaml:"model" json:"model"`
	Category string `yaml:"category" json:"category"`
}

// Phrase is the slug with dashes turned into spaces, the form matched
// against normalized legacy paths.
func (e Entry) Phrase() string {
	return strings.ReplaceAll(e.Slug, "-", " ")
}

// BrandSlug is the slugified brand name.
func (e Entry) BrandSlug() string {
	return Slugify(e.Brand)
}

// SearchIndex is the read-only device/model index.
type SearchIndex struct {
	entries  map[string]Entry
	byLength []Entry
}

// NewSearchIndex validates entries and precomputes the longest-first order.
func NewSearchIndex(entries []Entry) (*SearchIndex, error) {
	index := &SearchIndex{entries: make(map[string]Entry, len(entries))}
	for _, entry := range entries {
		entry.Slug = strings.TrimSpace(entry.Slug)
		entry.Brand = strings.TrimSpace(entry.Brand)
		entry.Model = strings.TrimSpace(entry.Model)
		entry.Category = strings.TrimSpace(entry.Category)
		if !IsSlug(entry.Slug) || entry.Brand == "" || entry.Model == "" {
			return nil, fmt.Errorf("%w: %q", sferrors.ErrInvalidIndexEntry, entry.Slug)
		}
		if _, exists := index.entries[entry.Slug]; exists {
			return nil, fmt.Errorf("%w: search index %q", sferrors.ErrDuplicateSlug, entry.Slug)
		}
		index.entries[entry.Slug] = entry
		index.byLength = append(index.byLength, entry)
	}
	sort.SliceStable(index.byLength, func(i, j int) bool {
		left, right := index.byLength[i].Slug, index.byLength[j].Slug
		if len(left) != len(right) {
			return len(left) > len(right)
		}
		return left < right
	})
	return index, nil
}

// Lookup returns the entry for a model slug.
func (s *SearchIndex) Lookup(slug string) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	entry, ok := s.entries[slug]
	return entry, ok
}

// ByLength returns every entry, longest slug first. The slice is shared and
// must not be modified.
func (s *SearchIndex) ByLength() []Entry {
	if s == nil {
		return nil
	}
	return s.byLength
}

// Len returns the number of indexed models.
func (s *SearchIndex) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}
