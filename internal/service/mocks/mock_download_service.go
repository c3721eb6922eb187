package mocks

import (
	"context"

	"statementapi/internal/model"
	"statementapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockDownloadService struct {
	mock.Mock
}

func (m *MockDownloadService) Fetch(ctx context.Context, req service.DownloadRequest) (*service.Download, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Download), args.Error(1)
}

func (m *MockDownloadService) FetchAdmin(ctx context.Context, id, accessorID string) (*service.Download, error) {
	args := m.Called(ctx, id, accessorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Download), args.Error(1)
}

func (m *MockDownloadService) AccessLogs(ctx context.Context, documentID string, limit, offset int) ([]model.AccessRecord, error) {
	args := m.Called(ctx, documentID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AccessRecord), args.Error(1)
}
