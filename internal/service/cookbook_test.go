package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/seed"
	"github.com/pageza/recipebox/backend/internal/testhelpers"
)

func orderOf(t *testing.T, svc *CookbookService, cookbookID string) map[string]int {
	t.Helper()
	list, err := svc.ListRecipes(context.Background(), cookbookID)
	require.NoError(t, err)
	out := map[string]int{}
	for _, e := range list {
		out[e.RecipeID] = e.Order
	}
	return out
}

func assertGapless(t *testing.T, db *gorm.DB) {
	t.Helper()
	report, err := seed.Verify(context.Background(), db)
	require.NoError(t, err)
	assert.Empty(t, report.UnorderedCookbooks)
}

func TestRemoveRecipe_ClosesGap(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	testhelpers.CreateCookbook(t, db, "c1", "a", "b", "c", "d")
	svc := NewCookbookService(db)

	require.NoError(t, svc.RemoveRecipe(context.Background(), "c1", "b"))

	assert.Equal(t, map[string]int{"a": 1, "c": 2, "d": 3}, orderOf(t, svc, "c1"))
	assertGapless(t, db)
}

func TestRemoveRecipe_ThreeRecipeCookbook(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	testhelpers.CreateCookbook(t, db, "c1", "a", "b", "c")
	svc := NewCookbookService(db)

	require.NoError(t, svc.RemoveRecipe(context.Background(), "c1", "a"))

	list, err := svc.ListRecipes(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].RecipeID)
	assert.Equal(t, 1, list[0].Order)
	assert.Equal(t, "c", list[1].RecipeID)
	assert.Equal(t, 2, list[1].Order)
}

func TestRemoveRecipe_Errors(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	testhelpers.CreateCookbook(t, db, "c1", "a")
	svc := NewCookbookService(db)
	ctx := context.Background()

	assert.ErrorIs(t, svc.RemoveRecipe(ctx, "c1", "zzz"), ErrNotInCookbook)
	assert.ErrorIs(t, svc.RemoveRecipe(ctx, "nope", "a"), ErrNotFound)
}

func TestAddRecipes(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	testhelpers.CreateCookbook(t, db, "c1", "a", "b")
	testhelpers.CreateCookbook(t, db, "c2", "x", "y")
	svc := NewCookbookService(db)
	ctx := context.Background()

	added, skipped, err := svc.AddRecipes(ctx, "c1", []string{"b", "x", "y", "x"})
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, map[string]int{"a": 1, "b": 2, "x": 3, "y": 4}, orderOf(t, svc, "c1"))

	_, _, err = svc.AddRecipes(ctx, "c1", []string{"a", "b"})
	assert.ErrorIs(t, err, ErrAlreadyInCookbook)

	_, _, err = svc.AddRecipes(ctx, "c1", []string{"missing"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = svc.AddRecipes(ctx, "c1", nil)
	assert.Error(t, err)
	assertGapless(t, db)
}

func TestReorderRecipes(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	testhelpers.CreateCookbook(t, db, "c1", "a", "b", "c", "d")
	svc := NewCookbookService(db)
	ctx := context.Background()

	require.NoError(t, svc.ReorderRecipes(ctx, "c1", map[string]int{"d": 1}))
	assert.Equal(t, map[string]int{"d": 1, "a": 2, "b": 3, "c": 4}, orderOf(t, svc, "c1"))

	require.NoError(t, svc.ReorderRecipes(ctx, "c1", map[string]int{"d": 40, "a": 10}))
	assert.Equal(t, map[string]int{"b": 1, "c": 2, "a": 3, "d": 4}, orderOf(t, svc, "c1"))
	assertGapless(t, db)
}

func TestReorderRecipes_Errors(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	testhelpers.CreateCookbook(t, db, "c1", "a", "b")
	svc := NewCookbookService(db)
	ctx := context.Background()

	assert.ErrorIs(t, svc.ReorderRecipes(ctx, "c1", map[string]int{"zzz": 1}), ErrNotInCookbook)
	assert.ErrorIs(t, svc.ReorderRecipes(ctx, "c1", map[string]int{"a": -1}), ErrInvalidOrder)
	assert.ErrorIs(t, svc.ReorderRecipes(ctx, "c1", nil), ErrInvalidOrder)
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, orderOf(t, svc, "c1"))
}

func TestCookbookCRUD(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	testhelpers.CreateCookbook(t, db, "c1", "a")
	svc := NewCookbookService(db)
	ctx := context.Background()

	desc := "Weeknight dinners"
	created, err := svc.CreateCookbook(ctx, CookbookInput{UserID: testhelpers.Owner.ID, Name: " Quick ", Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Quick", created.Name)
	assert.Len(t, created.ID, 36)

	_, err = svc.CreateCookbook(ctx, CookbookInput{UserID: "ghost", Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	private := true
	updated, err := svc.UpdateCookbook(ctx, created.ID, CookbookUpdate{IsPrivate: &private})
	require.NoError(t, err)
	assert.True(t, updated.IsPrivate)
	assert.Equal(t, "Quick", updated.Name)

	loaded, err := svc.GetCookbook(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, loaded.Recipes, 1)
	require.NotNil(t, loaded.Recipes[0].Recipe)
	assert.Equal(t, "Recipe a", loaded.Recipes[0].Recipe.Name)

	list, err := svc.ListCookbooks(ctx, testhelpers.Owner.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, svc.DeleteCookbook(ctx, "c1"))
	_, err = svc.GetCookbook(ctx, "c1")
	assert.ErrorIs(t, err, ErrNotFound)
}
