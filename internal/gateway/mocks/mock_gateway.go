package mocks

import (
	"context"
	"encoding/json"
	"io"

	"github.com/stretchr/testify/mock"

	"smartrecruiter/internal/model"
)

type MockAuthGateway struct {
	mock.Mock
}

func (m *MockAuthGateway) Login(ctx context.Context, email, password string) (*model.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockAuthGateway) Register(ctx context.Context, fullName, email, password, confirmPassword string) error {
	args := m.Called(ctx, fullName, email, password, confirmPassword)
	return args.Error(0)
}

type MockAnalysisGateway struct {
	mock.Mock
}

func (m *MockAnalysisGateway) UploadCV(ctx context.Context, token string, cv io.Reader, filename, appliedJob, userID string) (json.RawMessage, error) {
	args := m.Called(ctx, token, cv, filename, appliedJob, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockAnalysisGateway) FetchAnalysis(ctx context.Context, token, id string) (json.RawMessage, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockAnalysisGateway) FetchLatest(ctx context.Context, token string) (json.RawMessage, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}
