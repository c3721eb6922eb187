package mocks

import (
	"context"

	"statementapi/internal/model"
	"statementapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Register(ctx context.Context, in service.RegisterInput) (*model.AccessRequest, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AccessRequest), args.Error(1)
}

func (m *MockAccountService) Login(ctx context.Context, email, password string) (*service.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockAccountService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAccountService) ListRequests(ctx context.Context, status string, limit, offset int) (*service.AccessRequestListResult, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AccessRequestListResult), args.Error(1)
}

func (m *MockAccountService) Approve(ctx context.Context, requestID, reviewerID string) (*model.AccessRequest, error) {
	args := m.Called(ctx, requestID, reviewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AccessRequest), args.Error(1)
}

func (m *MockAccountService) Reject(ctx context.Context, requestID, reviewerID string) (*model.AccessRequest, error) {
	args := m.Called(ctx, requestID, reviewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AccessRequest), args.Error(1)
}

func (m *MockAccountService) EnsureSuperAdmin(ctx context.Context, email, password string) (*model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
