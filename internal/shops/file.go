package shops

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	sferrors "storefront/internal/errors"
)

// FileName is the shops file looked up in the data directory.
const FileName = "shops.yaml"

//go:embed data/shops.yaml
var embeddedShops []byte

// FileStore serves shops loaded once from YAML.
type FileStore struct {
	order []string
	byID  map[string]Shop
}

// NewFileStore loads dir/shops.yaml, falling back to the embedded sample
// when dir is empty or has no shops file.
func NewFileStore(dir string) (*FileStore, error) {
	data, source := embeddedShops, "embedded "+FileName
	if dir != "" {
		path := filepath.Join(dir, FileName)
		content, err := os.ReadFile(path)
		switch {
		case err == nil:
			data, source = content, path
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	var doc struct {
		Shops []Shop `yaml:"shops"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	return newFileStore(doc.Shops)
}

func newFileStore(shops []Shop) (*FileStore, error) {
	store := &FileStore{byID: make(map[string]Shop, len(shops))}
	for _, shop := range shops {
		shop.ID = strings.TrimSpace(shop.ID)
		if shop.ID == "" {
			return nil, fmt.Errorf("%w: empty shop id", sferrors.ErrEmptyKey)
		}
		if _, exists := store.byID[shop.ID]; exists {
			return nil, fmt.Errorf("%w: %q", sferrors.ErrDuplicateShopID, shop.ID)
		}
		store.byID[shop.ID] = shop
		store.order = append(store.order, shop.ID)
	}
	return store, nil
}

func (s *FileStore) List(_ context.Context) ([]Shop, error) {
	out := make([]Shop, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out, nil
}

func (s *FileStore) Get(_ context.Context, id string) (Shop, error) {
	shop, ok := s.byID[id]
	if !ok {
		return Shop{}, fmt.Errorf("%w: %q", sferrors.ErrShopNotFound, id)
	}
	return shop, nil
}
