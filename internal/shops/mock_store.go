package shops

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockStore is a testify mock implementing Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) List(ctx context.Context) ([]Shop, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]Shop); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) Get(ctx context.Context, id string) (Shop, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Shop), args.Error(1)
}
