package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"storefront/internal/hours"
	"storefront/internal/shops"
)

var (
	registryEntriesDesc   = prometheus.NewDesc("storefront_registry_entries", "Rows loaded per routing table", []string{"table"}, nil)
	shopsTotalDesc        = prometheus.NewDesc("storefront_shops_total", "Number of shops known to the shop store", nil, nil)
	shopsOpenDesc         = prometheus.NewDesc("storefront_shops_open", "Number of shops open at scrape time", nil, nil)
	shopOpenDesc          = prometheus.NewDesc("storefront_shop_open", "Shop open at scrape time (1=open,0=closed)", []string{"shop_id"}, nil)
	lastScrapeSuccessDesc = prometheus.NewDesc("storefront_shop_store_last_scrape_success", "Whether the last shop store read succeeded (1) or failed (0)", nil, nil)
)

// TableSizer reports the number of rows per routing table.
type TableSizer interface {
	Sizes() map[string]int
}

type storefrontCollector struct {
	tables    TableSizer
	store     shops.Store
	evaluator *hours.Evaluator
	timeout   time.Duration
	now       func() time.Time
}

// NewStorefrontCollector returns a collector exposing routing table sizes and
// live shop open/closed state.
func NewStorefrontCollector(tables TableSizer, store shops.Store, evaluator *hours.Evaluator) prometheus.Collector {
	return &storefrontCollector{
		tables:    tables,
		store:     store,
		evaluator: evaluator,
		timeout:   5 * time.Second,
		now:       time.Now,
	}
}

func (collector *storefrontCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- registryEntriesDesc
	ch <- shopsTotalDesc
	ch <- shopsOpenDesc
	ch <- shopOpenDesc
	ch <- lastScrapeSuccessDesc
}

func (collector *storefrontCollector) Collect(ch chan<- prometheus.Metric) {
	for table, size := range collector.tables.Sizes() {
		ch <- prometheus.MustNewConstMetric(registryEntriesDesc, prometheus.GaugeValue, float64(size), table)
	}

	ctx, cancel := context.WithTimeout(context.Background(), collector.timeout)
	defer cancel()
	list, err := collector.store.List(ctx)
	if err != nil {
		ch <- prometheus.MustNewConstMetric(lastScrapeSuccessDesc, prometheus.GaugeValue, 0)
		return
	}
	ch <- prometheus.MustNewConstMetric(lastScrapeSuccessDesc, prometheus.GaugeValue, 1)

	now := collector.now()
	open := 0
	for _, shop := range list {
		value := 0.0
		if collector.evaluator.IsOpen(shop.OpeningHours, now) {
			value = 1
			open++
		}
		ch <- prometheus.MustNewConstMetric(shopOpenDesc, prometheus.GaugeValue, value, shop.ID)
	}
	ch <- prometheus.MustNewConstMetric(shopsTotalDesc, prometheus.GaugeValue, float64(len(list)))
	ch <- prometheus.MustNewConstMetric(shopsOpenDesc, prometheus.GaugeValue, float64(open))
}
