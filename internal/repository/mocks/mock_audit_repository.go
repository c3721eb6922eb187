package mocks

import (
	"context"
	"time"

	"statementapi/internal/model"
	"statementapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockShareLogRepository struct {
	mock.Mock
}

func (m *MockShareLogRepository) Create(ctx context.Context, rec *model.ShareRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockShareLogRepository) FindByID(ctx context.Context, id string) (*model.ShareRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShareRecord), args.Error(1)
}

func (m *MockShareLogRepository) FindByTokenHash(ctx context.Context, hash string) (*model.ShareRecord, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShareRecord), args.Error(1)
}

func (m *MockShareLogRepository) ListByDocument(ctx context.Context, documentID string) ([]model.ShareRecord, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ShareRecord), args.Error(1)
}

func (m *MockShareLogRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type MockAccessLogRepository struct {
	mock.Mock
}

func (m *MockAccessLogRepository) Create(ctx context.Context, rec *model.AccessRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockAccessLogRepository) ListByDocument(ctx context.Context, documentID string, pq repository.PageQuery) ([]model.AccessRecord, error) {
	args := m.Called(ctx, documentID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AccessRecord), args.Error(1)
}
