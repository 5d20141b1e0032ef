package service

import (
	"context"

	"github.com/pageza/recipebox/backend/internal/models"
)

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, in RecipeInput) (*models.Recipe, error)
	GetRecipe(ctx context.Context, id string) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, id string, in RecipeUpdate) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, id string) error
	ListRecipes(ctx context.Context, f RecipeFilter) ([]models.Recipe, int64, error)
}

// ICookbookService defines the interface for cookbook operations
type ICookbookService interface {
	ListCookbooks(ctx context.Context, userID string) ([]models.Cookbook, error)
	GetCookbook(ctx context.Context, id string) (*models.Cookbook, error)
	CreateCookbook(ctx context.Context, in CookbookInput) (*models.Cookbook, error)
	UpdateCookbook(ctx context.Context, id string, in CookbookUpdate) (*models.Cookbook, error)
	DeleteCookbook(ctx context.Context, id string) error
	ListRecipes(ctx context.Context, cookbookID string) ([]models.CookbookRecipe, error)
	AddRecipes(ctx context.Context, cookbookID string, recipeIDs []string) (added, skipped int, err error)
	ReorderRecipes(ctx context.Context, cookbookID string, order map[string]int) error
	RemoveRecipe(ctx context.Context, cookbookID, recipeID string) error
}

// IUserService defines the interface for user operations
type IUserService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, in UserInput) (*models.User, error)
	UpdateUser(ctx context.Context, id string, in UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// ILookupService defines the operations shared by the lookup tables
type ILookupService[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, name string, description *string) (*T, error)
	Update(ctx context.Context, id string, name, description *string) (*T, error)
	Delete(ctx context.Context, id string) error
}

// IStatsService defines the admin statistics operation
type IStatsService interface {
	GetStats(ctx context.Context) (*Stats, error)
}

// IBulkService defines the admin bulk operations
type IBulkService interface {
	BulkDelete(ctx context.Context, entity string, ids []string) (int64, error)
	BulkUpdate(ctx context.Context, entity string, ids []string, data map[string]interface{}) (int64, error)
}

var (
	_ IRecipeService                        = (*RecipeService)(nil)
	_ ICookbookService                      = (*CookbookService)(nil)
	_ IUserService                          = (*UserService)(nil)
	_ IStatsService                         = (*StatsService)(nil)
	_ IBulkService                          = (*BulkService)(nil)
	_ ILookupService[models.Classification] = (*LookupService[models.Classification, *models.Classification])(nil)
)
