package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/recipebox/backend/internal/database"
	"github.com/pageza/recipebox/backend/internal/legacy"
	"github.com/pageza/recipebox/backend/internal/seed"
	"github.com/pageza/recipebox/backend/internal/source"
	"github.com/pageza/recipebox/backend/internal/testhelpers"
)

type fakeSource struct {
	dataset legacy.RawDataset
	err     error
	closed  bool
}

func (f *fakeSource) Extract(context.Context) (legacy.RawDataset, error) { return f.dataset, f.err }
func (f *fakeSource) Database() string                                    { return "recipe_laravel" }
func (f *fakeSource) Databases(context.Context) ([]string, error) {
	return []string{"information_schema", "recipe_laravel"}, nil
}
func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

// setupCLI isolates the configuration from the host and returns the temp dir.
func setupCLI(t *testing.T) string {
	t.Helper()
	color.NoColor = true

	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("ENV", "test")
	t.Setenv("CI", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("SECRETS_DIR", filepath.Join(dir, "secrets"))
	t.Setenv("DATABASE_URL", "sqlite:"+filepath.Join(dir, "target.db"))
	t.Setenv("SNAPSHOT_LOCATION", filepath.Join(dir, "snapshot.json"))
	t.Setenv("SNAPSHOT_FORMAT", "")
	t.Setenv("S3_BUCKET_NAME", "")
	t.Setenv("LEGACY_DB_NAME", "recipe_laravel")
	return dir
}

func run(t *testing.T, src *fakeSource, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := NewApp(&out)
	app.OpenSource = func(context.Context, source.Config, *zap.Logger) (LegacySource, error) {
		return src, nil
	}
	app.ListDatabases = func(ctx context.Context, cfg source.Config) ([]string, error) {
		assert.Equal(t, "recipe_laravel", cfg.Database)
		return src.Databases(ctx)
	}
	cmd := app.Command()
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExtractSeedVerify(t *testing.T) {
	dir := setupCLI(t)
	src := &fakeSource{dataset: testhelpers.ScenarioDataset()}

	out, err := run(t, src, "extract")
	require.NoError(t, err, out)
	assert.True(t, src.closed)
	assert.Contains(t, out, "Wrote "+filepath.Join(dir, "snapshot.json"))
	assert.FileExists(t, filepath.Join(dir, "snapshot.json"))

	out, err = run(t, src, "plan")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Snapshot of recipe_laravel")
	assert.Contains(t, out, " 1. users")
	assert.NotContains(t, out, "would reject")

	out, err = run(t, src, "seed")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Seeded")

	out, err = run(t, src, "seed")
	require.NoError(t, err, "seeding twice is safe: %s", out)

	out, err = run(t, src, "verify")
	require.NoError(t, err, out)
	assert.Contains(t, out, "consistent")
}

func TestExtract_YAMLSnapshotFlag(t *testing.T) {
	dir := setupCLI(t)
	path := filepath.Join(dir, "review.yaml")

	out, err := run(t, &fakeSource{dataset: testhelpers.ScenarioDataset()}, "extract", "--snapshot", path)
	require.NoError(t, err, out)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "source_database: recipe_laravel")

	target := "sqlite:" + filepath.Join(dir, "other.db")
	out, err = run(t, nil, "seed", "--snapshot", path, "--target-url", target)
	require.NoError(t, err, out)
	assert.NoFileExists(t, filepath.Join(dir, "target.db"))
	assert.FileExists(t, filepath.Join(dir, "other.db"))
}

func TestExtract_FailureWritesNothing(t *testing.T) {
	dir := setupCLI(t)
	src := &fakeSource{err: &legacy.ExtractionError{Table: legacy.TableRecipes, Err: errors.New("lost connection")}}

	_, err := run(t, src, "extract")
	require.Error(t, err)
	var extractErr *legacy.ExtractionError
	assert.ErrorAs(t, err, &extractErr)
	assert.NoFileExists(t, filepath.Join(dir, "snapshot.json"))
}

func TestListDatabases(t *testing.T) {
	setupCLI(t)
	src := &fakeSource{}

	for _, args := range [][]string{{"databases"}, {"extract", "--list-databases"}} {
		out, err := run(t, src, args...)
		require.NoError(t, err)
		assert.Contains(t, out, "* recipe_laravel")
		assert.Contains(t, out, "  information_schema")
	}
	assert.False(t, src.closed, "listing never opens the catalog")
}

func TestUnknownFormat(t *testing.T) {
	setupCLI(t)
	_, err := run(t, &fakeSource{}, "plan", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown snapshot format")
}

func TestVerify_ReportsDanglingRows(t *testing.T) {
	dir := setupCLI(t)
	out, err := run(t, &fakeSource{dataset: testhelpers.ScenarioDataset()}, "extract")
	require.NoError(t, err, out)
	out, err = run(t, nil, "seed")
	require.NoError(t, err, out)

	db, err := database.Open(context.Background(), "sqlite:"+filepath.Join(dir, "target.db"), nil)
	require.NoError(t, err)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = OFF").Error)
	require.NoError(t, db.Exec("DELETE FROM sources").Error)
	require.NoError(t, database.Close(db))

	out, err = run(t, nil, "verify")
	require.Error(t, err)
	assert.Contains(t, out, "recipes.source_id")
}

func TestPrintError(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	printError(&buf, &legacy.ConnectionError{Addr: "db:3306", Err: errors.New("refused")})
	assert.Contains(t, buf.String(), "connect to legacy database at db:3306")
	assert.Contains(t, buf.String(), "legacy-migrate databases")

	buf.Reset()
	printError(&buf, &seed.UpsertError{Table: "recipes", ID: "7", Err: errors.New("boom")})
	assert.Contains(t, buf.String(), "rerunning seed is safe")
}
