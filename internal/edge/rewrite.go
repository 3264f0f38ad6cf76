package edge

import (
	"fmt"
	"sort"
	"strings"

	sferrors "storefront/internal/errors"
	"storefront/internal/i18n"
	"storefront/internal/registry"
)

// internalLocale is the locale whose slugs name the internal route tree.
const internalLocale = i18n.LocaleEnglish

// rewriteLocales are the locales served from the internal route tree under
// their own prefix.
var rewriteLocales = []i18n.Locale{i18n.LocaleTurkish}

type rewriteRule struct {
	from string
	to   string
}

// rewriteTable maps public path prefixes to internal ones. Rules are kept
// longest first so a more specific prefix always wins.
type rewriteTable struct {
	rules []rewriteRule
}

func newRewriteTable(reg *registry.Registry, extra []registry.RewriteDef) (*rewriteTable, error) {
	table := &rewriteTable{}
	seen := make(map[string]string)
	add := func(from, to string) error {
		if existing, ok := seen[from]; ok && existing != to {
			return fmt.Errorf("%w: %q maps to both %q and %q", sferrors.ErrInvalidRewrite, from, existing, to)
		}
		if _, ok := seen[from]; !ok {
			seen[from] = to
			table.rules = append(table.rules, rewriteRule{from: from, to: to})
		}
		return nil
	}

	for _, locale := range rewriteLocales {
		for _, key := range reg.Keys() {
			public, okPublic := reg.SlugFor(key, locale)
			internal, okInternal := reg.SlugFor(key, internalLocale)
			if !okPublic || !okInternal || public == internal {
				continue
			}
			prefix := "/" + string(locale) + "/"
			if err := add(prefix+public, prefix+internal); err != nil {
				return nil, err
			}
		}
	}
	for _, def := range extra {
		locale, ok := i18n.Parse(def.Locale)
		if !ok {
			return nil, fmt.Errorf("%w: %w: %q", sferrors.ErrInvalidRewrite, sferrors.ErrUnknownLocale, def.Locale)
		}
		prefix := "/" + string(locale) + "/"
		from := strings.TrimRight(strings.TrimSpace(def.From), "/")
		to := strings.TrimRight(strings.TrimSpace(def.To), "/")
		if !strings.HasPrefix(from, prefix) || !strings.HasPrefix(to, prefix) {
			return nil, fmt.Errorf("%w: %q -> %q must stay under %s", sferrors.ErrInvalidRewrite, def.From, def.To, prefix)
		}
		if err := add(from, to); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(table.rules, func(i, j int) bool {
		return len(table.rules[i].from) > len(table.rules[j].from)
	})
	return table, nil
}

// match returns the internal path for p when a rule prefix matches on a
// segment boundary. Suffix segments after the prefix are kept.
func (t *rewriteTable) match(p string) (string, bool) {
	for _, rule := range t.rules {
		if p == rule.from {
			return rule.to, true
		}
		if strings.HasPrefix(p, rule.from+"/") {
			return rule.to + p[len(rule.from):], true
		}
	}
	return "", false
}

func (t *rewriteTable) count() int {
	return len(t.rules)
}
