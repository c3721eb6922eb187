package mocks

import (
	"context"

	"statementapi/internal/model"
	"statementapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockLinkService struct {
	mock.Mock
}

func (m *MockLinkService) Issue(ctx context.Context, in service.IssueInput) (*service.IssuedLink, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IssuedLink), args.Error(1)
}

func (m *MockLinkService) ShareLinks(ctx context.Context, documentID string) ([]model.ShareRecord, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ShareRecord), args.Error(1)
}

func (m *MockLinkService) Revoke(ctx context.Context, shareID string) (*model.ShareRecord, error) {
	args := m.Called(ctx, shareID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShareRecord), args.Error(1)
}
