package secrets

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockSource is a testify mock implementing Source.
type MockSource struct {
	mock.Mock
}

func (m *MockSource) CheckConnection(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSource) StagingPIN(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockSource) Shutdown() {
	m.Called()
}
