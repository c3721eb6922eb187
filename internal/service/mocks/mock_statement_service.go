package mocks

import (
	"context"

	"statementapi/internal/model"
	"statementapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockStatementService struct {
	mock.Mock
}

func (m *MockStatementService) Upload(ctx context.Context, in service.UploadInput) (*model.Statement, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Statement), args.Error(1)
}

func (m *MockStatementService) List(ctx context.Context, limit, offset int) (*service.StatementListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StatementListResult), args.Error(1)
}

func (m *MockStatementService) ListPublic(ctx context.Context, year int) ([]model.PublicStatement, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PublicStatement), args.Error(1)
}

func (m *MockStatementService) Get(ctx context.Context, id string) (*model.Statement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Statement), args.Error(1)
}

func (m *MockStatementService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
