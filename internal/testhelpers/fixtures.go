// Package testhelpers provides databases and fixtures shared by package tests.
package testhelpers

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/legacy"
	"github.com/pageza/recipebox/backend/internal/models"
)

// Owner is the user migrated rows are assigned to in tests.
var Owner = models.User{ID: "legacy-import", Name: "Legacy Import", Email: "legacy-import@recipebox.local"}

// ScenarioDataset is a small legacy extraction: one classification, one
// source, two recipes (marked 1 and 2) and a cookbook holding both at orders
// 1 and 2.
func ScenarioDataset() legacy.RawDataset {
	return legacy.RawDataset{
		legacy.TableClassifications: {{"id": int64(1), "name": "Dessert", "description": "Sweet things"}},
		legacy.TableSources:         {{"id": int64(1), "name": "Grandma"}},
		legacy.TableMeals:           {{"id": int64(1), "name": "Dinner"}},
		legacy.TableCourses:         {{"id": int64(1), "name": "Main"}},
		legacy.TablePreparations:    {{"id": int64(1), "description": "Bake"}},
		legacy.TableRecipes: {
			{
				"id": int64(1), "name": "Apple Pie", "ingredients": "apples", "instructions": "bake",
				"servings": int64(8), "source_id": int64(1), "classification_id": int64(1),
				"calories": "410.4", "marked": int64(1), "tags": `["baking"]`,
			},
			{
				"id": int64(2), "name": "Pancakes", "ingredients": "flour", "instructions": "fry",
				"source_id": int64(1), "classification_id": int64(1), "marked": int64(2),
			},
		},
		legacy.TableRecipeMeals:        {{"id": int64(1), "recipe_id": int64(1), "meal_id": int64(1)}},
		legacy.TableRecipeCourses:      {{"id": int64(1), "recipe_id": int64(2), "course_id": int64(1)}},
		legacy.TableRecipePreparations: {{"id": int64(1), "recipe_id": int64(1), "preparation_id": int64(1)}},
		legacy.TableCookbooks:          {{"id": int64(1), "name": "Family", "description": "Favourites"}},
		legacy.TableCookbookRecipes: {
			{"id": int64(1), "cookbook_id": int64(1), "recipe_id": int64(1), "order": int64(1)},
			{"id": int64(2), "cookbook_id": int64(1), "recipe_id": int64(2), "order": int64(2)},
		},
	}
}

// ScenarioSnapshot is ScenarioDataset in snapshot form.
func ScenarioSnapshot() *legacy.Snapshot {
	s, err := legacy.BuildSnapshot(ScenarioDataset(), "recipes_legacy", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		panic(err)
	}
	return s
}

// CreateCookbook stores Owner, a cookbook and one recipe per id, placed at
// orders 1..N in argument order.
func CreateCookbook(t *testing.T, db *gorm.DB, cookbookID string, recipeIDs ...string) {
	t.Helper()

	owner := Owner
	if err := db.Where(models.User{ID: owner.ID}).FirstOrCreate(&owner).Error; err != nil {
		t.Fatalf("failed to create owner: %v", err)
	}
	if err := db.Create(&models.Cookbook{ID: cookbookID, UserID: owner.ID, Name: "Cookbook " + cookbookID}).Error; err != nil {
		t.Fatalf("failed to create cookbook: %v", err)
	}
	for i, id := range recipeIDs {
		recipe := models.Recipe{ID: id, UserID: owner.ID, Name: "Recipe " + id, Ingredients: "-", Instructions: "-", Servings: 1}
		if err := db.Where(models.Recipe{ID: id}).FirstOrCreate(&recipe).Error; err != nil {
			t.Fatalf("failed to create recipe %s: %v", id, err)
		}
		entry := models.CookbookRecipe{ID: cookbookID + "-" + id, CookbookID: cookbookID, RecipeID: id, Order: i + 1}
		if err := db.Create(&entry).Error; err != nil {
			t.Fatalf("failed to add recipe %s: %v", id, err)
		}
	}
}
