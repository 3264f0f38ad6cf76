package main

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"resty.dev/v3"

	"storefront/internal/logger"
	"storefront/internal/registry"
)

// device is one row of the managed backend's catalog export.
type device struct {
	Slug     string `json:"slug"`
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	Category string `json:"category"`
	Active   *bool  `json:"active"`
}

type catalogClient struct {
	http  *resty.Client
	url   string
	token string
}

func newCatalogClient(url, token string, timeout time.Duration) *catalogClient {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Accept", "application/json")
	return &catalogClient{http: client, url: url, token: token}
}

func (c *catalogClient) Close() error {
	return c.http.Close()
}

// Devices downloads the catalog. It accepts either a bare array or an
// object with a "devices" array.
func (c *catalogClient) Devices(ctx context.Context) ([]device, error) {
	req := c.http.R().SetContext(ctx)
	if c.token != "" {
		req.SetAuthToken(c.token)
	}
	resp, err := req.Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch catalog: HTTP %d %s", resp.StatusCode(), resp.Status())
	}
	return decodeDevices([]byte(resp.String()))
}

func decodeDevices(body []byte) ([]device, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var devices []device
		if err := json.Unmarshal(body, &devices); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
		return devices, nil
	}
	var wrapped struct {
		Devices []device `json:"devices"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return wrapped.Devices, nil
}

// buildEntries turns catalog rows into search index entries. Inactive rows
// and rows without brand or model are skipped; duplicate slugs keep the first
// row. The result is sorted by brand then slug so regenerated files diff well.
func buildEntries(devices []device) ([]registry.Entry, error) {
	log := logger.Get()
	seen := make(map[string]struct{}, len(devices))
	entries := make([]registry.Entry, 0, len(devices))
	for _, d := range devices {
		if d.Active != nil && !*d.Active {
			continue
		}
		brand := strings.TrimSpace(d.Brand)
		model := strings.TrimSpace(d.Model)
		if brand == "" || model == "" {
			log.Warn().Str("slug", d.Slug).Msg("Skipping catalog row without brand or model")
			continue
		}
		slug := registry.Slugify(d.Slug)
		if slug == "" {
			slug = registry.Slugify(model)
		}
		if _, dup := seen[slug]; dup {
			log.Warn().Str("slug", slug).Str("model", model).Msg("Skipping duplicate catalog slug")
			continue
		}
		seen[slug] = struct{}{}
		entries = append(entries, registry.Entry{
			Slug:     slug,
			Brand:    brand,
			Model:    model,
			Category: registry.Slugify(d.Category),
		})
	}
	slices.SortFunc(entries, func(a, b registry.Entry) int {
		return cmp.Or(cmp.Compare(a.Brand, b.Brand), cmp.Compare(a.Slug, b.Slug))
	})
	if _, err := registry.NewSearchIndex(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func marshalIndex(entries []registry.Entry) ([]byte, error) {
	return yaml.Marshal(struct {
		Entries []registry.Entry `yaml:"entries"`
	}{Entries: entries})
}
