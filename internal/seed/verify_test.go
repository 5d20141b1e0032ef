package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/legacy"
	"github.com/pageza/recipebox/backend/internal/testhelpers"
)

func TestVerify_ReportsGapsAndDanglingRows(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	testhelpers.CreateCookbook(t, db, "c1", "r1", "r2", "r3")
	testhelpers.CreateCookbook(t, db, "c2", "r1")

	require.NoError(t, db.Exec(`UPDATE cookbook_recipes SET "order" = 5 WHERE id = ?`, "c1-r3").Error)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = OFF").Error)
	require.NoError(t, db.Exec("INSERT INTO recipe_meals (id, created_at, updated_at, recipe_id, meal_id) VALUES ('x', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP, 'r1', 'missing')").Error)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)

	report, err := Verify(context.Background(), db)
	require.NoError(t, err)

	assert.False(t, report.OK())
	assert.Equal(t, int64(3), report.Counts[legacy.TableRecipes])
	assert.Equal(t, int64(4), report.Counts[legacy.TableCookbookRecipes])
	assert.Equal(t, []string{"c1"}, report.UnorderedCookbooks)
	require.Len(t, report.Dangling, 1)
	assert.Equal(t, Dangling{Table: legacy.TableRecipeMeals, Column: "meal_id", References: legacy.TableMeals, Rows: 1}, report.Dangling[0])
}

func TestVerify_EmptyDatabase(t *testing.T) {
	report, err := Verify(context.Background(), testhelpers.SetupSQLite(t))
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, int64(0), report.Counts[TableUsers])
}
