package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/service"
)

// MockCookbookService is a mock implementation of the cookbook service
type MockCookbookService struct {
	mock.Mock
}

func (m *MockCookbookService) ListCookbooks(ctx context.Context, userID string) ([]models.Cookbook, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Cookbook), args.Error(1)
}

func (m *MockCookbookService) GetCookbook(ctx context.Context, id string) (*models.Cookbook, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cookbook), args.Error(1)
}

func (m *MockCookbookService) CreateCookbook(ctx context.Context, in service.CookbookInput) (*models.Cookbook, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cookbook), args.Error(1)
}

func (m *MockCookbookService) UpdateCookbook(ctx context.Context, id string, in service.CookbookUpdate) (*models.Cookbook, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cookbook), args.Error(1)
}

func (m *MockCookbookService) DeleteCookbook(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCookbookService) ListRecipes(ctx context.Context, cookbookID string) ([]models.CookbookRecipe, error) {
	args := m.Called(ctx, cookbookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CookbookRecipe), args.Error(1)
}

func (m *MockCookbookService) AddRecipes(ctx context.Context, cookbookID string, recipeIDs []string) (int, int, error) {
	args := m.Called(ctx, cookbookID, recipeIDs)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockCookbookService) ReorderRecipes(ctx context.Context, cookbookID string, order map[string]int) error {
	return m.Called(ctx, cookbookID, order).Error(0)
}

func (m *MockCookbookService) RemoveRecipe(ctx context.Context, cookbookID, recipeID string) error {
	return m.Called(ctx, cookbookID, recipeID).Error(0)
}

var _ service.ICookbookService = (*MockCookbookService)(nil)
