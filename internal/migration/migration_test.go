package migration

import (
	"context"
	"database/sql/driver"
	"errors"
	"path/filepath"
	"regexp"
	"sort"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pageza/recipebox/backend/internal/legacy"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/seed"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/snapshotstore"
	"github.com/pageza/recipebox/backend/internal/source"
	"github.com/pageza/recipebox/backend/internal/testhelpers"
)

// mockLegacy serves a dataset through sqlmock the way the MySQL driver would.
func mockLegacy(t *testing.T, ds legacy.RawDataset) *source.Source {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec(regexp.QuoteMeta(source.BeginSnapshot)).WillReturnResult(sqlmock.NewResult(0, 0))
	for _, table := range legacy.Tables {
		rows := ds[table]
		colSet := map[string]bool{}
		for _, r := range rows {
			for c := range r {
				colSet[c] = true
			}
		}
		columns := []string{"id"}
		for c := range colSet {
			if c != "id" {
				columns = append(columns, c)
			}
		}
		sort.Strings(columns[1:])

		mockRows := sqlmock.NewRows(columns)
		for _, r := range rows {
			values := make([]driver.Value, len(columns))
			for i, c := range columns {
				v := r[c]
				if s, ok := v.(string); ok {
					v = []byte(s)
				}
				values[i] = v
			}
			mockRows.AddRow(values...)
		}
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `" + table + "`")).WillReturnRows(mockRows)
	}
	mock.ExpectExec("COMMIT").WillReturnResult(sqlmock.NewResult(0, 0))
	return source.New(db, "recipes_legacy", zaptest.NewLogger(t))
}

func TestExportImport_ScenarioA(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	for _, name := range []string{"snapshot.json", "snapshot.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			store := snapshotstore.NewLocalStore(path)
			format := legacy.FormatFromPath(path)

			exported, err := Export(ctx, mockLegacy(t, testhelpers.ScenarioDataset()), store, format, logger)
			require.NoError(t, err)
			assert.Equal(t, 2, exported.Counts[legacy.TableRecipes])
			assert.Equal(t, path, exported.Location)

			db := testhelpers.SetupSQLite(t)
			seeder, err := seed.New(db, seed.Options{Owner: testhelpers.Owner, Logger: logger})
			require.NoError(t, err)

			_, err = Import(ctx, store, format, seeder)
			require.NoError(t, err)

			var recipes []models.Recipe
			require.NoError(t, db.Order("id").Find(&recipes).Error)
			require.Len(t, recipes, 2)
			assert.Equal(t, models.True, recipes[0].Marked)
			assert.Equal(t, models.Unknown, recipes[1].Marked)

			var entries []models.CookbookRecipe
			require.NoError(t, db.Order(`"order"`).Find(&entries).Error)
			require.Len(t, entries, 2)
			assert.Equal(t, []int{1, 2}, []int{entries[0].Order, entries[1].Order})
			assert.Equal(t, []string{"1", "2"}, []string{entries[0].RecipeID, entries[1].RecipeID})
		})
	}
}

func TestImport_ScenarioB_RerunChangesNothing(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	store := snapshotstore.NewLocalStore(path)

	_, err := Export(ctx, mockLegacy(t, testhelpers.ScenarioDataset()), store, legacy.FormatJSON, nil)
	require.NoError(t, err)

	db := testhelpers.SetupSQLite(t)
	seeder, err := seed.New(db, seed.Options{Owner: testhelpers.Owner})
	require.NoError(t, err)

	_, err = Import(ctx, store, legacy.FormatJSON, seeder)
	require.NoError(t, err)
	before, err := seed.Verify(ctx, db)
	require.NoError(t, err)

	_, err = Import(ctx, store, legacy.FormatJSON, seeder)
	require.NoError(t, err)
	after, err := seed.Verify(ctx, db)
	require.NoError(t, err)

	assert.Equal(t, before.Counts, after.Counts)
	assert.True(t, after.OK())
}

func TestImport_ThenRemoveFromCookbook_ScenarioC(t *testing.T) {
	ctx := context.Background()
	ds := testhelpers.ScenarioDataset()
	ds[legacy.TableRecipes] = append(ds[legacy.TableRecipes], legacy.RawRow{
		"id": int64(3), "name": "Crumble", "ingredients": "oats", "instructions": "bake", "marked": int64(0),
	})
	ds[legacy.TableCookbookRecipes] = append(ds[legacy.TableCookbookRecipes], legacy.RawRow{
		"id": int64(3), "cookbook_id": int64(1), "recipe_id": int64(3), "order": int64(3),
	})

	store := snapshotstore.NewLocalStore(filepath.Join(t.TempDir(), "snapshot.json"))
	_, err := Export(ctx, mockLegacy(t, ds), store, legacy.FormatJSON, nil)
	require.NoError(t, err)

	db := testhelpers.SetupSQLite(t)
	seeder, err := seed.New(db, seed.Options{Owner: testhelpers.Owner})
	require.NoError(t, err)
	_, err = Import(ctx, store, legacy.FormatJSON, seeder)
	require.NoError(t, err)

	cookbooks := service.NewCookbookService(db)
	require.NoError(t, cookbooks.RemoveRecipe(ctx, "1", "2"))

	entries, err := cookbooks.ListRecipes(ctx, "1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "1", entries[0].RecipeID)
	assert.Equal(t, 1, entries[0].Order)
	assert.Equal(t, "3", entries[1].RecipeID)
	assert.Equal(t, 2, entries[1].Order)
}

type recordingStore struct {
	snapshotstore.Store
	writes int
}

func (f *recordingStore) Write(context.Context, []byte) error {
	f.writes++
	return nil
}

func (f *recordingStore) Location() string { return "memory" }

func TestExport_NothingWrittenOnExtractionFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectExec(regexp.QuoteMeta(source.BeginSnapshot)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `classifications`")).WillReturnError(errors.New("connection lost"))
	mock.ExpectExec("ROLLBACK").WillReturnResult(sqlmock.NewResult(0, 0))

	store := &recordingStore{}
	_, err = Export(context.Background(), source.New(db, "recipes_legacy", nil), store, legacy.FormatJSON, nil)
	require.Error(t, err)

	var eerr *legacy.ExtractionError
	assert.True(t, errors.As(err, &eerr))
	assert.Equal(t, 0, store.writes)
}

func TestExport_NothingWrittenOnNormalizationFailure(t *testing.T) {
	ds := testhelpers.ScenarioDataset()
	ds[legacy.TableRecipes][0]["tags"] = "not json"

	store := &recordingStore{}
	_, err := Export(context.Background(), mockLegacy(t, ds), store, legacy.FormatJSON, nil)
	require.Error(t, err)

	var nerr *legacy.NormalizationError
	assert.True(t, errors.As(err, &nerr))
	assert.Equal(t, 0, store.writes)
}
