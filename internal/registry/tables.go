package registry

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embeddedData embed.FS

// Data files, in load order. A file of the same name in the data directory
// replaces the embedded copy.
var DataFiles = []string{
	"services.yaml",
	"pages.yaml",
	"search-index.yaml",
	"blog.yaml",
	"legacy.yaml",
	"rewrites.yaml",
}

// ServiceDef is the raw form of a service definition.
type ServiceDef struct {
	Key          string            `yaml:"key"`
	Slugs        map[string]string `yaml:"slugs"`
	Names        map[string]string `yaml:"names"`
	Descriptions map[string]string `yaml:"descriptions"`
}

// PageDef is the raw form of a static page definition.
type PageDef struct {
	Key   string            `yaml:"key"`
	Slugs map[string]string `yaml:"slugs"`
}

// PostDef maps a stable content ID to its per-locale slugs.
type PostDef struct {
	ID    string            `yaml:"id"`
	Slugs map[string]string `yaml:"slugs"`
}

// LegacyMapping is one exact-match redirect from the previous platform.
type LegacyMapping struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// LegacyDef holds the legacy redirect tables.
type LegacyDef struct {
	Roots    []string        `yaml:"roots"`
	Mappings []LegacyMapping `yaml:"mappings"`
}

// RewriteDef is an extra internal rewrite rule for one locale.
type RewriteDef struct {
	Locale string `yaml:"locale"`
	From   string `yaml:"from"`
	To     string `yaml:"to"`
}

// Tables is the raw, unvalidated content of the data files.
type Tables struct {
	Services []ServiceDef `yaml:"services"`
	Pages    []PageDef    `yaml:"pages"`
	Entries  []Entry      `yaml:"entries"`
	Posts    []PostDef    `yaml:"posts"`
	Legacy   LegacyDef    `yaml:"legacy"`
	Rewrites []RewriteDef `yaml:"rewrites"`
}

// Load reads every data file, preferring dir over the embedded defaults.
// An empty dir loads the embedded tables only.
func Load(dir string) (Tables, error) {
	var tables Tables
	for _, name := range DataFiles {
		data, source, err := readDataFile(dir, name)
		if err != nil {
			return Tables{}, err
		}
		if err := yaml.Unmarshal(data, &tables); err != nil {
			return Tables{}, fmt.Errorf("parse %s: %w", source, err)
		}
	}
	return tables, nil
}

func readDataFile(dir string, name string) ([]byte, string, error) {
	if strings.TrimSpace(dir) != "" {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err == nil {
			return data, path, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, path, fmt.Errorf("read %s: %w", path, err)
		}
	}
	data, err := embeddedData.ReadFile("data/" + name)
	if err != nil {
		return nil, name, fmt.Errorf("read embedded %s: %w", name, err)
	}
	return data, "embedded " + name, nil
}
