package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/legacy"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/testhelpers"
)

func TestSeederRun_Postgres(t *testing.T) {
	db := testhelpers.SetupPostgres(t)
	s := newSeeder(t, db)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := s.Run(ctx, testhelpers.ScenarioSnapshot())
		require.NoError(t, err)
	}

	report, err := Verify(ctx, db)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, int64(2), report.Counts[legacy.TableRecipes])
	assert.Equal(t, int64(2), report.Counts[legacy.TableCookbookRecipes])

	var marked *bool
	require.NoError(t, db.Model(&models.Recipe{}).Select("marked").Where("id = ?", "2").Row().Scan(&marked))
	assert.Nil(t, marked)
}
