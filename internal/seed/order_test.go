package seed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pageza/recipebox/backend/internal/legacy"
)

func intPtr(n int) *int { return &n }

func TestAssignCookbookOrder(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []legacy.CookbookRecipeRow{
		{ID: "1", CookbookID: "a", RecipeID: "r1", Order: intPtr(7)},
		{ID: "2", CookbookID: "b", RecipeID: "r1"},
		{ID: "3", CookbookID: "a", RecipeID: "r2", Order: intPtr(3)},
		{ID: "4", CookbookID: "a", RecipeID: "r3"},
		{ID: "5", CookbookID: "b", RecipeID: "r2"},
		{ID: "6", CookbookID: "a", RecipeID: "r4", Order: intPtr(3)},
	}

	out := AssignCookbookOrder(rows, now)

	got := map[string]int{}
	for i, r := range out {
		assert.Equal(t, rows[i].ID, r.ID, "snapshot sequence is kept")
		got[r.ID] = r.Order
		assert.Equal(t, now, r.CreatedAt)
	}
	assert.Equal(t, map[string]int{
		"3": 1, // order 3, first seen
		"6": 2, // order 3, seen later
		"1": 3,
		"4": 4, // no legacy order
		"2": 1,
		"5": 2,
	}, got)
}

func TestAssignCookbookOrder_Empty(t *testing.T) {
	assert.Empty(t, AssignCookbookOrder(nil, time.Now()))
}
