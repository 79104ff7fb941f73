package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockSlotRepository is a mock implementation of repository.SlotRepository
type MockSlotRepository struct {
	mock.Mock
}

func (m *MockSlotRepository) Load(ctx context.Context, name string) ([]byte, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockSlotRepository) Save(ctx context.Context, name string, data []byte) error {
	args := m.Called(ctx, name, data)
	return args.Error(0)
}
