package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/testhelpers"
)

func TestBulkDelete_Recipes(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	testhelpers.CreateCookbook(t, db, "c1", "a", "b", "c")
	testhelpers.CreateCookbook(t, db, "c2", "c", "a")
	svc := NewBulkService(db)
	ctx := context.Background()

	n, err := svc.BulkDelete(ctx, "recipes", []string{"a", "a", "ghost"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var count int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	list, err := NewCookbookService(db).ListRecipes(ctx, "c2")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "c", list[0].RecipeID)
	assert.Equal(t, 1, list[0].Order)
}

func TestBulkDelete_Cookbooks(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	testhelpers.CreateCookbook(t, db, "c1", "a")
	testhelpers.CreateCookbook(t, db, "c2", "a")

	n, err := NewBulkService(db).BulkDelete(context.Background(), "cookbooks", []string{"c1", "c2"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var entries int64
	require.NoError(t, db.Model(&models.CookbookRecipe{}).Count(&entries).Error)
	assert.Zero(t, entries)
}

func TestBulkDelete_UsersWithContentAreRefused(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	testhelpers.CreateCookbook(t, db, "c1", "a", "b")
	require.NoError(t, db.Create(&models.User{ID: "idle", Name: "Idle", Email: "idle@example.com"}).Error)
	svc := NewBulkService(db)
	ctx := context.Background()

	_, err := svc.BulkDelete(ctx, "users", []string{"idle", testhelpers.Owner.ID})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInUse)

	var inUse *InUseError
	require.True(t, errors.As(err, &inUse))
	assert.Equal(t, []InUseRow{{ID: testhelpers.Owner.ID, Name: testhelpers.Owner.Name, Recipes: 2, Cookbooks: 1}}, inUse.Rows)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(2), users, "nothing is deleted when any user is refused")

	n, err := svc.BulkDelete(ctx, "users", []string{"idle"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestBulkDelete_Lookups(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	testhelpers.CreateCookbook(t, db, "c1", "a")
	ctx := context.Background()

	meals := NewMealService(db)
	used, err := meals.Create(ctx, "Dinner", nil)
	require.NoError(t, err)
	spare, err := meals.Create(ctx, "Brunch", nil)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.RecipeMeal{ID: "rm1", RecipeID: "a", MealID: used.ID}).Error)

	svc := NewBulkService(db)
	_, err = svc.BulkDelete(ctx, "meals", []string{used.ID, spare.ID})
	var inUse *InUseError
	require.True(t, errors.As(err, &inUse))
	assert.Equal(t, "meals", inUse.Entity)
	require.Len(t, inUse.Rows, 1)
	assert.Equal(t, "Dinner", inUse.Rows[0].Name)
	assert.Equal(t, int64(1), inUse.Rows[0].Recipes)

	n, err := svc.BulkDelete(ctx, "meals", []string{spare.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = svc.BulkDelete(ctx, "tags", []string{"x"})
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = svc.BulkDelete(ctx, "meals", nil)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestBulkUpdate(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	testhelpers.CreateCookbook(t, db, "c1", "a", "b", "c")
	ctx := context.Background()
	source, err := NewSourceService(db).Create(ctx, "Grandma", nil)
	require.NoError(t, err)
	svc := NewBulkService(db)

	n, err := svc.BulkUpdate(ctx, "recipes", []string{"a", "b", "ghost"}, map[string]interface{}{
		"is_private": true,
		"marked":     false,
		"servings":   float64(4),
		"source_id":  source.ID,
		"notes":      nil,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var recipes []models.Recipe
	require.NoError(t, db.Order("id").Find(&recipes).Error)
	require.Len(t, recipes, 3)
	for _, r := range recipes[:2] {
		assert.True(t, r.IsPrivate)
		assert.Equal(t, models.False, r.Marked)
		assert.Equal(t, 4, r.Servings)
		require.NotNil(t, r.SourceID)
		assert.Equal(t, source.ID, *r.SourceID)
	}
	assert.False(t, recipes[2].IsPrivate)
	assert.Nil(t, recipes[2].SourceID)

	n, err = svc.BulkUpdate(ctx, "users", []string{testhelpers.Owner.ID}, map[string]interface{}{"subscription_tier": float64(2)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestBulkUpdate_Rejects(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	testhelpers.CreateCookbook(t, db, "c1", "a")
	svc := NewBulkService(db)
	ctx := context.Background()

	tests := []struct {
		name   string
		entity string
		data   map[string]interface{}
		want   error
	}{
		{"unsupported entity", "meals", map[string]interface{}{"name": "x"}, ErrInvalid},
		{"unknown column", "recipes", map[string]interface{}{"id": "z"}, ErrInvalid},
		{"owner column", "recipes", map[string]interface{}{"created_at": "2020-01-01"}, ErrInvalid},
		{"email is per user", "users", map[string]interface{}{"email": "a@example.com"}, ErrInvalid},
		{"wrong type", "cookbooks", map[string]interface{}{"is_private": "yes"}, ErrInvalid},
		{"blank name", "cookbooks", map[string]interface{}{"name": "  "}, ErrInvalid},
		{"fractional servings", "recipes", map[string]interface{}{"servings": 1.5}, ErrInvalid},
		{"zero servings", "recipes", map[string]interface{}{"servings": float64(0)}, ErrInvalid},
		{"missing owner", "cookbooks", map[string]interface{}{"user_id": "ghost"}, ErrNotFound},
		{"nothing to set", "recipes", map[string]interface{}{}, ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.BulkUpdate(ctx, tt.entity, []string{"a", "c1"}, tt.data)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	var cookbook models.Cookbook
	require.NoError(t, db.First(&cookbook, "id = ?", "c1").Error)
	assert.Equal(t, "Cookbook c1", cookbook.Name)
}
