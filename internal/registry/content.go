package registry

import (
	"fmt"
	"strings"

	sferrors "storefront/internal/errors"
	"storefront/internal/i18n"
)

// ContentSlugs maps blog post slugs between locales through their stable
// content ID. Blog slugs are free text and never go through the canonical
// tables.
type ContentSlugs struct {
	byID   map[string]map[i18n.Locale]string
	bySlug map[string]string
}

// NewContentSlugs builds the content slug table. A slug may belong to one
// post only, whatever its locale.
func NewContentSlugs(posts []PostDef) (*ContentSlugs, error) {
	table := &ContentSlugs{
		byID:   make(map[string]map[i18n.Locale]string, len(posts)),
		bySlug: make(map[string]string, len(posts)*4),
	}
	for _, post := range posts {
		id := strings.TrimSpace(post.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: blog post id", sferrors.ErrEmptyKey)
		}
		slugs, err := parseSlugs(post.Slugs, false)
		if err != nil {
			return nil, fmt.Errorf("blog post %q: %w", id, err)
		}
		for _, slug := range slugs {
			if owner, exists := table.bySlug[slug]; exists && owner != id {
				return nil, fmt.Errorf("%w: blog slug %q used by %q and %q", sferrors.ErrDuplicateSlug, slug, owner, id)
			}
			table.bySlug[slug] = id
		}
		table.byID[id] = slugs
	}
	return table, nil
}

// Translate returns the slug of the same post in target.
func (c *ContentSlugs) Translate(slug string, target i18n.Locale) (string, bool) {
	if c == nil {
		return "", false
	}
	id, ok := c.bySlug[slug]
	if !ok {
		return "", false
	}
	translated, ok := c.byID[id][target]
	return translated, ok
}

// ContentID returns the stable ID owning slug.
func (c *ContentSlugs) ContentID(slug string) (string, bool) {
	if c == nil {
		return "", false
	}
	id, ok := c.bySlug[slug]
	return id, ok
}

// Len returns the number of posts.
func (c *ContentSlugs) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byID)
}
