// Package secrets provides the staging PIN from the environment or from a
// Vault KV v2 engine.
package secrets

import (
	"context"
	"strings"

	sferrors "storefront/internal/errors"
)

// Source yields the current staging PIN, plain or bcrypt-hashed.
type Source interface {
	CheckConnection(ctx context.Context) error
	StagingPIN(ctx context.Context) (string, error)
	Shutdown()
}

type staticSource struct {
	pin string
}

// NewStatic returns a source that always yields pin.
func NewStatic(pin string) Source {
	pin = strings.TrimSpace(pin)
	if pin == "" {
		return disabledSource{}
	}
	return staticSource{pin: pin}
}

func (s staticSource) CheckConnection(_ context.Context) error {
	return nil
}

func (s staticSource) StagingPIN(_ context.Context) (string, error) {
	return s.pin, nil
}

func (s staticSource) Shutdown() {}

type disabledSource struct{}

func (disabledSource) CheckConnection(_ context.Context) error {
	return nil
}

func (disabledSource) StagingPIN(_ context.Context) (string, error) {
	return "", sferrors.ErrPINNotConfigured
}

func (disabledSource) Shutdown() {}
