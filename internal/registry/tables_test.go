package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbedded(t *testing.T) {
	tables, err := Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, tables.Services)
	assert.NotEmpty(t, tables.Pages)
	assert.NotEmpty(t, tables.Entries)
	assert.NotEmpty(t, tables.Posts)
	assert.NotEmpty(t, tables.Legacy.Roots)
	assert.NotEmpty(t, tables.Legacy.Mappings)
	assert.NotEmpty(t, tables.Rewrites)
}

func TestLoadOverridesFromDirectory(t *testing.T) {
	dir := t.TempDir()
	override := "entries:\n  - {slug: fairphone-5, brand: Fairphone, model: Fairphone 5, category: smartphone}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "search-index.yaml"), []byte(override), 0o600))

	tables, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, tables.Entries, 1)
	assert.Equal(t, "fairphone-5", tables.Entries[0].Slug)
	// files absent from dir still come from the embedded copy
	assert.NotEmpty(t, tables.Pages)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pages.yaml"), []byte("pages: [\n"), 0o600))
	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pages.yaml")
}
