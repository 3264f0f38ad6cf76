package legacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sferrors "storefront/internal/errors"
	"storefront/internal/registry"
)

func loadTables(t *testing.T) registry.Tables {
	t.Helper()
	tables, err := registry.Load("")
	require.NoError(t, err)
	return tables
}

func newResolver(t *testing.T, def *registry.LegacyDef) *Resolver {
	t.Helper()
	tables := loadTables(t)
	reg, err := registry.New(tables)
	require.NoError(t, err)
	if def == nil {
		def = &tables.Legacy
	}
	resolver, err := New(reg, *def)
	require.NoError(t, err)
	return resolver
}

func TestResolve(t *testing.T) {
	resolver := newResolver(t, nil)

	tests := []struct {
		name   string
		path   string
		target string
		tier   Tier
	}{
		{"exact", "/pages/reparation-iphone-13-pro", "/fr/reparation/apple/iphone-13-pro", TierExact},
		{"exact after locale prefix", "/fr/pages/reparation-iphone-13-pro", "/fr/reparation/apple/iphone-13-pro", TierExact},
		{"exact with trailing slash", "/pages/contact/", "/fr/contactez-nous", TierExact},
		{"exact is case-insensitive", "/Pages/Contact", "/fr/contactez-nous", TierExact},
		{"exact localized source", "/nl/pages/contact", "/nl/contact", TierExact},
		{"exact keeps query target", "/collections/accessoires", "/fr/boutique?category=accessories", TierExact},
		{"fuzzy repair", "/pages/reparer-iphone-12", "/fr/reparation/apple/iphone-12?category=smartphone", TierFuzzy},
		{"fuzzy buyback", "/pages/vendre-iphone-12", "/fr/rachat/apple/iphone-12?category=smartphone", TierFuzzy},
		{"fuzzy dutch buyback", "/nl/products/galaxy_s23_ultra-verkopen", "/nl/inkoop/samsung/galaxy-s23-ultra?category=smartphone", TierFuzzy},
		{"fuzzy english", "/en/collections/pixel-8-pro-screen", "/en/repair/google/pixel-8-pro?category=smartphone", TierFuzzy},
		{"fuzzy outside legacy roots", "/iphone-14-ecran-casse", "/fr/reparation/apple/iphone-14?category=smartphone", TierFuzzy},
		{"fuzzy under unprefixed route slug", "/reparation/iphone-13-pro-max-ecran", "/fr/reparation/apple/iphone-13-pro-max?category=smartphone", TierFuzzy},
		{"fuzzy unprefixed canonical shape", "/rachat/apple/galaxy-s23", "/fr/rachat/samsung/galaxy-s23?category=smartphone", TierFuzzy},
		{"turkish prefix falls back to french", "/tr/products/switch-oled", "/fr/reparation/nintendo/switch-oled?category=console", TierFuzzy},
		{"catch-all", "/collections/old-summer-sale", "/fr/boutique", TierCatchAll},
		{"catch-all dutch", "/nl/blogs/nieuws/iets", "/nl/winkel", TierCatchAll},
		{"catch-all english", "/en/products/unknown-gadget", "/en/shop", TierCatchAll},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := resolver.Resolve(tt.path)
			require.True(t, ok, "expected a match for %s", tt.path)
			assert.Equal(t, tt.target, result.Target)
			assert.Equal(t, tt.tier, result.Tier)
		})
	}
}

func TestResolve_FuzzyLongestMatch(t *testing.T) {
	resolver := newResolver(t, nil)

	result, ok := resolver.Resolve("/reparation-iphone-13-pro-max-ecran")
	require.True(t, ok)
	assert.Equal(t, "/fr/reparation/apple/iphone-13-pro-max?category=smartphone", result.Target)

	result, ok = resolver.Resolve("/reparation-iphone-13-ecran")
	require.True(t, ok)
	assert.Equal(t, "/fr/reparation/apple/iphone-13?category=smartphone", result.Target)
}

func TestResolve_ExactBeatsFuzzy(t *testing.T) {
	resolver := newResolver(t, &registry.LegacyDef{
		Roots: []string{"/pages/"},
		Mappings: []registry.LegacyMapping{
			{From: "/pages/vendre-iphone-12", To: "/fr/rachat"},
		},
	})

	result, ok := resolver.Resolve("/pages/vendre-iphone-12")
	require.True(t, ok)
	assert.Equal(t, Result{Target: "/fr/rachat", Tier: TierExact}, result)
}

func TestResolve_NoMatch(t *testing.T) {
	resolver := newResolver(t, nil)

	for _, path := range []string{
		"/",
		"/fr",
		"/fr/reparation/apple/iphone-13-pro",
		"/nl/inkoop/samsung/galaxy-s23",
		"/fr/boutique",
		"/en/stores/brussels",
		"/fr/unknown-page",
		"/reparation/apple",
		"/tr/tamir/apple/iphone-13",
	} {
		t.Run(path, func(t *testing.T) {
			_, ok := resolver.Resolve(path)
			assert.False(t, ok)
		})
	}
}

func TestResolve_DiscardsSelfRedirect(t *testing.T) {
	resolver := newResolver(t, &registry.LegacyDef{
		Mappings: []registry.LegacyMapping{{From: "/pages/loop", To: "/pages/loop"}},
	})

	_, ok := resolver.Resolve("/pages/loop")
	assert.False(t, ok)
}

func TestNew_Validation(t *testing.T) {
	tables := loadTables(t)
	reg, err := registry.New(tables)
	require.NoError(t, err)

	tests := []struct {
		name string
		def  registry.LegacyDef
	}{
		{"relative source", registry.LegacyDef{Mappings: []registry.LegacyMapping{{From: "pages/a", To: "/fr"}}}},
		{"relative target", registry.LegacyDef{Mappings: []registry.LegacyMapping{{From: "/pages/a", To: "fr"}}}},
		{"duplicate source", registry.LegacyDef{Mappings: []registry.LegacyMapping{{From: "/pages/a", To: "/fr"}, {From: "/pages/a/", To: "/nl"}}}},
		{"root prefix", registry.LegacyDef{Roots: []string{"/"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(reg, tt.def)
			assert.ErrorIs(t, err, sferrors.ErrInvalidLegacyPath)
		})
	}
}

func TestNew_RequiresIntentKeys(t *testing.T) {
	tables := loadTables(t)
	tables.Services = nil
	reg, err := registry.New(tables)
	require.NoError(t, err)

	_, err = New(reg, tables.Legacy)
	assert.ErrorIs(t, err, sferrors.ErrMissingKey)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "/", Normalize(""))
	assert.Equal(t, "/", Normalize("/"))
	assert.Equal(t, "/pages/contact", Normalize("/pages//contact/"))
	assert.Equal(t, "/pages/réparation", Normalize("/pages/R%C3%A9paration"))
}
