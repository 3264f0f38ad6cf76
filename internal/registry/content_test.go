package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/i18n"
)

func TestContentSlugsTranslate(t *testing.T) {
	content, err := NewContentSlugs([]PostDef{
		{ID: "battery", Slugs: map[string]string{"fr": "batterie", "nl": "batterij", "en": "battery"}},
	})
	require.NoError(t, err)

	slug, ok := content.Translate("batterie", i18n.LocaleDutch)
	require.True(t, ok)
	assert.Equal(t, "batterij", slug)

	// no Turkish version of this post
	_, ok = content.Translate("batterie", i18n.LocaleTurkish)
	assert.False(t, ok)

	_, ok = content.Translate("unknown", i18n.LocaleDutch)
	assert.False(t, ok)

	id, ok := content.ContentID("battery")
	require.True(t, ok)
	assert.Equal(t, "battery", id)
	assert.Equal(t, 1, content.Len())
}

func TestContentSlugsSameSlugAcrossLocales(t *testing.T) {
	content, err := NewContentSlugs([]PostDef{
		{ID: "launch", Slugs: map[string]string{"fr": "lancement", "en": "lancement"}},
	})
	require.NoError(t, err)
	slug, ok := content.Translate("lancement", i18n.LocaleEnglish)
	require.True(t, ok)
	assert.Equal(t, "lancement", slug)
}
