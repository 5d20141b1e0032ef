package seed

import (
	"sort"
	"time"

	"github.com/pageza/recipebox/backend/internal/legacy"
	"github.com/pageza/recipebox/backend/internal/models"
)

// AssignCookbookOrder numbers the recipes of each cookbook 1..N. Rows with a
// legacy order sort by it; rows without one follow in snapshot sequence. The
// result keeps the snapshot sequence of rows.
func AssignCookbookOrder(rows []legacy.CookbookRecipeRow, now time.Time) []models.CookbookRecipe {
	groups := map[string][]int{}
	for i, r := range rows {
		groups[r.CookbookID] = append(groups[r.CookbookID], i)
	}

	position := make([]int, len(rows))
	for _, idx := range groups {
		sort.SliceStable(idx, func(a, b int) bool {
			oa, ob := rows[idx[a]].Order, rows[idx[b]].Order
			switch {
			case oa != nil && ob != nil:
				return *oa < *ob
			case oa != nil:
				return true
			default:
				return false
			}
		})
		for n, i := range idx {
			position[i] = n + 1
		}
	}

	out := make([]models.CookbookRecipe, len(rows))
	for i, r := range rows {
		created, updated := now, now
		if r.CreatedAt != nil {
			created = *r.CreatedAt
		}
		if r.UpdatedAt != nil {
			updated = *r.UpdatedAt
		}
		out[i] = models.CookbookRecipe{
			ID:         r.ID,
			CreatedAt:  created,
			UpdatedAt:  updated,
			CookbookID: r.CookbookID,
			RecipeID:   r.RecipeID,
			Order:      position[i],
		}
	}
	return out
}
