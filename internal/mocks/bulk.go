package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipebox/backend/internal/service"
)

// MockBulkService is a mock implementation of the admin bulk service
type MockBulkService struct {
	mock.Mock
}

func (m *MockBulkService) BulkDelete(ctx context.Context, entity string, ids []string) (int64, error) {
	args := m.Called(ctx, entity, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBulkService) BulkUpdate(ctx context.Context, entity string, ids []string, data map[string]interface{}) (int64, error) {
	args := m.Called(ctx, entity, ids, data)
	return args.Get(0).(int64), args.Error(1)
}

var _ service.IBulkService = (*MockBulkService)(nil)
