package mocks

import (
	"context"

	"statementapi/internal/model"
	"statementapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id string, role model.Role) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id string, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

type MockAccessRequestRepository struct {
	mock.Mock
}

func (m *MockAccessRequestRepository) CreateWithUser(ctx context.Context, u *model.User, reason string) (*model.User, *model.AccessRequest, error) {
	args := m.Called(ctx, u, reason)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.User), args.Get(1).(*model.AccessRequest), args.Error(2)
}

func (m *MockAccessRequestRepository) FindByID(ctx context.Context, id string) (*model.AccessRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AccessRequest), args.Error(1)
}

func (m *MockAccessRequestRepository) List(ctx context.Context, q repository.AccessRequestQuery) (*repository.PageResult[model.AccessRequest], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.AccessRequest]), args.Error(1)
}

func (m *MockAccessRequestRepository) Decide(ctx context.Context, d repository.Decision) (*model.AccessRequest, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AccessRequest), args.Error(1)
}
