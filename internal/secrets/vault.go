package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"

	"storefront/config"
	"storefront/internal/cache"
	sferrors "storefront/internal/errors"
)

const (
	pinCacheTTL = 5 * time.Minute
	pinField    = "pin"
)

type vaultSource struct {
	client      *api.Client
	mount       string
	path        string
	cache       *cache.Cache[string]
	stopJanitor func()
}

// NewVaultSource reads the staging PIN from the "pin" field of a KV v2
// secret. Reads are cached for five minutes.
func NewVaultSource(cfg config.VaultConfig) (Source, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("vault address is empty")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("vault token is empty")
	}
	if cfg.KVMount == "" || cfg.StagingPath == "" {
		return nil, fmt.Errorf("vault staging secret location is empty")
	}

	clientConfig := api.DefaultConfig()
	if clientConfig == nil {
		return nil, fmt.Errorf("failed to create default Vault config")
	}
	clientConfig.Address = cfg.Addr
	if err := clientConfig.ConfigureTLS(&api.TLSConfig{Insecure: cfg.TLSInsecure}); err != nil {
		return nil, fmt.Errorf("failed to configure Vault TLS: %w", err)
	}
	apiClient, err := api.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	apiClient.SetToken(cfg.Token)

	pins := cache.New[string](pinCacheTTL)
	return &vaultSource{
		client:      apiClient,
		mount:       cfg.KVMount,
		path:        cfg.StagingPath,
		cache:       pins,
		stopJanitor: pins.StartJanitor(time.Minute),
	}, nil
}

// CheckConnection verifies Vault availability and seal status.
func (s *vaultSource) CheckConnection(ctx context.Context) error {
	health, err := s.client.Sys().HealthWithContext(ctx)
	if err != nil {
		return fmt.Errorf("vault health check failed: %w", err)
	}
	if health == nil {
		return fmt.Errorf("vault health response is nil")
	}
	if !health.Initialized {
		return fmt.Errorf("vault is not initialized")
	}
	if health.Sealed {
		return fmt.Errorf("vault is sealed")
	}
	return nil
}

func (s *vaultSource) StagingPIN(ctx context.Context) (string, error) {
	if pin, ok := s.cache.Get(s.path); ok {
		return pin, nil
	}

	secret, err := s.client.KVv2(s.mount).Get(ctx, s.path)
	if errors.Is(err, api.ErrSecretNotFound) {
		return "", fmt.Errorf("%w: %s/%s", sferrors.ErrSecretNotFound, s.mount, s.path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read staging secret from Vault: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("%w: %s/%s", sferrors.ErrSecretNotFound, s.mount, s.path)
	}
	pin, ok := secret.Data[pinField].(string)
	if !ok || strings.TrimSpace(pin) == "" {
		return "", fmt.Errorf("%w: field %q in %s/%s", sferrors.ErrSecretNotFound, pinField, s.mount, s.path)
	}
	pin = strings.TrimSpace(pin)
	s.cache.Set(s.path, pin)
	return pin, nil
}

// Shutdown stops background goroutines.
func (s *vaultSource) Shutdown() {
	s.stopJanitor()
}
