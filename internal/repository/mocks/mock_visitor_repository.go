package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockVisitorRepository struct {
	mock.Mock
}

func (m *MockVisitorRepository) Get(ctx context.Context, visitorID, key string) (string, error) {
	args := m.Called(ctx, visitorID, key)
	return args.String(0), args.Error(1)
}

func (m *MockVisitorRepository) Set(ctx context.Context, visitorID, key, value string) error {
	args := m.Called(ctx, visitorID, key, value)
	return args.Error(0)
}

func (m *MockVisitorRepository) Delete(ctx context.Context, visitorID, key string) error {
	args := m.Called(ctx, visitorID, key)
	return args.Error(0)
}

func (m *MockVisitorRepository) DeleteAll(ctx context.Context, visitorID string) error {
	args := m.Called(ctx, visitorID)
	return args.Error(0)
}
