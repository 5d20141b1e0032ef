// Package cli implements the legacy-migrate command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/legacy"
	"github.com/pageza/recipebox/backend/internal/logging"
	"github.com/pageza/recipebox/backend/internal/migration"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/snapshotstore"
	"github.com/pageza/recipebox/backend/internal/source"
)

// LegacySource is an open connection to the legacy catalog.
type LegacySource interface {
	migration.Extractor
	Databases(ctx context.Context) ([]string, error)
	Close() error
}

// App holds the state shared by the commands of one invocation.
type App struct {
	cfgFile   string
	snapshot  string
	format    string
	targetURL string

	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer

	// OpenSource connects to the legacy database.
	OpenSource func(ctx context.Context, cfg source.Config, logger *zap.Logger) (LegacySource, error)
	// ListDatabases lists catalogs without selecting one.
	ListDatabases func(ctx context.Context, cfg source.Config) ([]string, error)
}

// NewApp returns an App wired to the real legacy connector.
func NewApp(out io.Writer) *App {
	return &App{
		out: out,
		OpenSource: func(ctx context.Context, cfg source.Config, logger *zap.Logger) (LegacySource, error) {
			src, err := source.Open(ctx, cfg, logger)
			if err != nil {
				return nil, err
			}
			return src, nil
		},
		ListDatabases: source.ListDatabases,
	}
}

// Command builds the command tree.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "legacy-migrate",
		Short: "Move the legacy recipe database into the recipebox schema",
		Long: `legacy-migrate exports the legacy MySQL recipe database into a reviewable
snapshot file and later seeds that snapshot into the recipebox database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetOut(a.out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default ./recipebox.yaml)")
	flags.StringVar(&a.snapshot, "snapshot", "", "snapshot path or s3://bucket/key (default from SNAPSHOT_LOCATION)")
	flags.StringVar(&a.format, "format", "", "snapshot format: json or yaml (default from the file extension)")

	root.AddCommand(
		a.databasesCmd(),
		a.extractCmd(),
		a.seedCmd(),
		a.planCmd(),
		a.verifyCmd(),
	)
	return root
}

func (a *App) setup() error {
	cfg, err := config.LoadConfig(a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.Environment.IsProduction(), cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.logger = logger
	return nil
}

func (a *App) sourceConfig() source.Config {
	l := a.cfg.Legacy
	return source.Config{
		Host:     l.Host,
		Port:     l.Port,
		User:     l.User,
		Password: l.Password,
		Database: l.Name,
		Timeout:  l.Timeout,
	}
}

func (a *App) owner() models.User {
	return models.User{
		ID:    a.cfg.Owner.ID,
		Name:  a.cfg.Owner.Name,
		Email: a.cfg.Owner.Email,
	}
}

func (a *App) targetDSN() string {
	if a.targetURL != "" {
		return a.targetURL
	}
	return a.cfg.Database.DSN()
}

// openStore resolves --snapshot and --format against the configuration.
func (a *App) openStore(ctx context.Context) (snapshotstore.Store, legacy.Format, error) {
	location := a.snapshot
	if location == "" {
		location = a.cfg.Snapshot.Location
	}
	location = a.cfg.S3.SnapshotLocation(location)

	format, err := a.resolveFormat(location)
	if err != nil {
		return nil, "", err
	}
	store, err := snapshotstore.Open(ctx, location, a.cfg.S3.NewClient)
	if err != nil {
		return nil, "", err
	}
	return store, format, nil
}

func (a *App) resolveFormat(location string) (legacy.Format, error) {
	name := a.format
	if name == "" {
		name = a.cfg.Snapshot.Format
	}
	switch strings.ToLower(name) {
	case "":
		return legacy.FormatFromPath(location), nil
	case "json":
		return legacy.FormatJSON, nil
	case "yaml", "yml":
		return legacy.FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown snapshot format %q (want json or yaml)", name)
	}
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	app := NewApp(os.Stdout)
	if err := app.Command().Execute(); err != nil {
		printError(os.Stderr, err)
		return 1
	}
	return 0
}
