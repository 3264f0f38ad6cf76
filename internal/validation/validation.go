package validation

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storefront/config"
	sferrors "storefront/internal/errors"
)

// ValidateConfig checks every setting and reports all problems at once.
func ValidateConfig(cfg config.Config) error {
	var errs []error
	if err := ValidatePort(cfg.Port); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateTimezone(cfg.Timezone); err != nil {
		errs = append(errs, err)
	}
	for _, host := range cfg.Staging.ProductionHosts {
		if err := ValidateHost(host); err != nil {
			errs = append(errs, err)
		}
	}
	if err := ValidatePath(cfg.Staging.LandingPath); err != nil {
		errs = append(errs, fmt.Errorf("staging landing: %w", err))
	}
	if cfg.DatabaseURL != "" {
		if err := ValidateDatabaseURL(cfg.DatabaseURL); err != nil {
			errs = append(errs, err)
		}
	}
	if cfg.Vault.Addr != "" || cfg.Vault.Token != "" {
		if err := ValidateVaultAddress(cfg.Vault.Addr); err != nil {
			errs = append(errs, err)
		}
		if err := ValidateVaultToken(cfg.Vault.Token); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func ValidatePort(port string) error {
	value, err := strconv.Atoi(strings.TrimSpace(port))
	if err != nil || value < 1 || value > 65535 {
		return fmt.Errorf("%w: %q", sferrors.ErrInvalidPort, port)
	}
	return nil
}

func ValidateTimezone(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty", sferrors.ErrInvalidTimezone)
	}
	if _, err := time.LoadLocation(name); err != nil {
		return fmt.Errorf("%w: %q", sferrors.ErrInvalidTimezone, name)
	}
	return nil
}

// ValidateHost accepts a bare host name, optionally with a port.
func ValidateHost(host string) error {
	trimmed := strings.TrimSpace(host)
	if trimmed == "" || strings.ContainsAny(trimmed, "/ ?#@") {
		return fmt.Errorf("%w: %q", sferrors.ErrInvalidHost, host)
	}
	return nil
}

func ValidatePath(p string) error {
	if !strings.HasPrefix(p, "/") || strings.ContainsAny(p, "?# ") {
		return fmt.Errorf("%w: %q", sferrors.ErrInvalidPath, p)
	}
	return nil
}

func ValidateDatabaseURL(raw string) error {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (parsed.Scheme != "postgres" && parsed.Scheme != "postgresql") {
		return sferrors.ErrInvalidDSN
	}
	return nil
}

func ValidateVaultAddress(address string) error {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return sferrors.ErrInvalidAddress
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return sferrors.ErrInvalidAddress
	}
	return nil
}

func ValidateVaultToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return sferrors.ErrInvalidToken
	}
	return nil
}
