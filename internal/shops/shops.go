// Package shops provides the opening-hours lines of every physical shop.
package shops

import (
	"context"
)

// Shop is one physical store and its weekly schedule lines.
type Shop struct {
	ID           string   `yaml:"id" json:"id"`
	Name         string   `yaml:"name" json:"name"`
	OpeningHours []string `yaml:"opening_hours" json:"opening_hours"`
}

// Store lists shops. Get returns errors.ErrShopNotFound for unknown IDs.
type Store interface {
	List(ctx context.Context) ([]Shop, error)
	Get(ctx context.Context, id string) (Shop, error)
}
