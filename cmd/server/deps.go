package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"storefront/config"
	"storefront/internal/hours"
	"storefront/internal/legacy"
	"storefront/internal/logger"
	"storefront/internal/registry"
	"storefront/internal/secrets"
	"storefront/internal/shops"
)

const pinRefreshInterval = time.Minute

type dependencies struct {
	cfg       config.Config
	registry  *registry.Registry
	rewrites  []registry.RewriteDef
	legacy    *legacy.Resolver
	evaluator *hours.Evaluator
	store     shops.Store
	secrets   secrets.Source
	pins      *secrets.Refresher
	metrics   *prometheus.Registry
	now       func() time.Time
}

// newDependencies builds every collaborator of the router. The returned
// cleanup releases them in reverse order and is safe to call once.
func newDependencies(ctx context.Context, cfg config.Config) (dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (dependencies, func(), error) {
		cleanup()
		return dependencies{}, func() {}, err
	}

	tables, err := registry.Load(cfg.DataDir)
	if err != nil {
		return fail(fmt.Errorf("failed to load routing tables: %w", err))
	}
	reg, err := registry.New(tables)
	if err != nil {
		return fail(fmt.Errorf("failed to build slug registry: %w", err))
	}
	resolver, err := legacy.New(reg, tables.Legacy)
	if err != nil {
		return fail(fmt.Errorf("failed to build legacy resolver: %w", err))
	}
	evaluator, err := hours.New(cfg.Timezone)
	if err != nil {
		return fail(err)
	}

	store, closeStore, err := newShopStore(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, closeStore)

	source, err := newSecretSource(cfg)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, source.Shutdown)

	pins := secrets.NewRefresher(source, pinRefreshInterval)
	if len(cfg.Staging.ProductionHosts) > 0 {
		if err := pins.Refresh(ctx); err != nil {
			logger.Get().Warn().Err(err).Msg("Staging PIN unavailable, staging hosts stay locked until the next refresh")
		}
		pins.Start()
		closers = append(closers, pins.Stop)
	}

	return dependencies{
		cfg:       cfg,
		registry:  reg,
		rewrites:  tables.Rewrites,
		legacy:    resolver,
		evaluator: evaluator,
		store:     store,
		secrets:   source,
		pins:      pins,
		metrics:   prometheus.NewRegistry(),
		now:       time.Now,
	}, cleanup, nil
}

func newShopStore(ctx context.Context, cfg config.Config) (shops.Store, func(), error) {
	log := logger.Get()
	if cfg.DatabaseURL != "" {
		store, err := shops.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect shop database: %w", err)
		}
		log.Info().Str("store", "postgres").Msg("Shop store initialized")
		return store, store.Close, nil
	}
	store, err := shops.NewFileStore(cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load shops: %w", err)
	}
	log.Info().Str("store", "file").Str("data_dir", cfg.DataDir).Msg("Shop store initialized")
	return store, func() {}, nil
}

func newSecretSource(cfg config.Config) (secrets.Source, error) {
	if cfg.Vault.Enabled() {
		source, err := secrets.NewVaultSource(cfg.Vault)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Vault client: %w", err)
		}
		logger.Get().Info().
			Str("vault_addr", cfg.Vault.Addr).
			Str("vault_mount", cfg.Vault.KVMount).
			Msg("Vault secret source initialized")
		return source, nil
	}
	return secrets.NewStatic(cfg.Staging.PIN), nil
}
