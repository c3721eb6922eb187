package mocks

import (
	"context"

	"statementapi/internal/model"
	"statementapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockStatementRepository struct {
	mock.Mock
}

func (m *MockStatementRepository) Create(ctx context.Context, st *model.Statement) (*model.Statement, error) {
	args := m.Called(ctx, st)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Statement), args.Error(1)
}

func (m *MockStatementRepository) FindByID(ctx context.Context, id string) (*model.Statement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Statement), args.Error(1)
}

func (m *MockStatementRepository) FindByPath(ctx context.Context, path string) (*model.Statement, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Statement), args.Error(1)
}

func (m *MockStatementRepository) List(ctx context.Context, q repository.StatementQuery) (*repository.PageResult[model.Statement], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Statement]), args.Error(1)
}

func (m *MockStatementRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
