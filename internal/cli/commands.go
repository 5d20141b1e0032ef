package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/database"
	"github.com/pageza/recipebox/backend/internal/migration"
	"github.com/pageza/recipebox/backend/internal/seed"
	"github.com/pageza/recipebox/backend/migrations"
)

type presigner interface {
	PresignedURL(ctx context.Context, expiration time.Duration) (string, error)
}

func (a *App) databasesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "databases",
		Short: "List the catalogs visible on the legacy server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printDatabases(cmd.Context())
		},
	}
}

func (a *App) printDatabases(ctx context.Context) error {
	if err := a.cfg.Legacy.Validate(false); err != nil {
		return err
	}
	names, err := a.ListDatabases(ctx, a.sourceConfig())
	if err != nil {
		return err
	}
	out := a.out
	for _, name := range names {
		marker := " "
		if name == a.cfg.Legacy.Name {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s\n", marker, name)
	}
	return nil
}

func (a *App) extractCmd() *cobra.Command {
	var listDatabases bool
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Export the legacy database to a snapshot",
		Long: `Reads every legacy table on one connection, normalizes it and writes a
snapshot. Nothing is written unless the whole export succeeds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listDatabases {
				return a.printDatabases(cmd.Context())
			}
			return a.extract(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&listDatabases, "list-databases", false, "list the catalogs on the legacy server and exit")
	return cmd
}

func (a *App) extract(ctx context.Context) error {
	if err := a.cfg.Legacy.Validate(true); err != nil {
		return err
	}
	store, format, err := a.openStore(ctx)
	if err != nil {
		return err
	}

	src, err := a.OpenSource(ctx, a.sourceConfig(), a.logger)
	if err != nil {
		return err
	}
	defer src.Close()

	result, err := migration.Export(ctx, src, store, format, a.logger)
	if err != nil {
		return fmt.Errorf("extract %s: %w", src.Database(), err)
	}

	successColor.Fprintf(a.out, "✓ Wrote %s (%s, %d bytes)\n", result.Location, result.Format, result.Bytes)
	printCounts(a.out, result.Counts)

	if p, ok := store.(presigner); ok && a.cfg.S3.PresignTTL > 0 {
		link, err := p.PresignedURL(ctx, a.cfg.S3.PresignTTL)
		if err != nil {
			a.logger.Warn("failed to presign snapshot", zap.Error(err))
			return nil
		}
		fmt.Fprintf(a.out, "\nReview link (valid %s):\n  %s\n", a.cfg.S3.PresignTTL, link)
	}
	return nil
}

func (a *App) openTarget(ctx context.Context) (*gorm.DB, error) {
	db, err := database.Open(ctx, a.targetDSN(), a.logger)
	if err != nil {
		return nil, err
	}
	if _, err := database.RunMigrations(ctx, db, migrations.FS, a.logger); err != nil {
		database.Close(db)
		return nil, err
	}
	return db, nil
}

func (a *App) seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert a snapshot into the target database",
		Long: `Validates the snapshot, then upserts every table in foreign key order.
Rerunning with the same snapshot leaves the database unchanged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.seed(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&a.targetURL, "target-url", "", "target database URL, sqlite:<path> for SQLite (default from DATABASE_URL)")
	return cmd
}

func (a *App) seed(ctx context.Context) error {
	store, format, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	db, err := a.openTarget(ctx)
	if err != nil {
		return err
	}
	defer database.Close(db)

	seeder, err := seed.New(db, seed.Options{Owner: a.owner(), Logger: a.logger})
	if err != nil {
		return err
	}
	result, err := migration.Import(ctx, store, format, seeder)
	if err != nil {
		if result != nil {
			a.printSeeded(result)
		}
		return err
	}

	a.printSeeded(result)
	successColor.Fprintf(a.out, "✓ Seeded %d rows from %s in %s\n",
		result.Total(), store.Location(), result.Duration.Round(time.Millisecond))
	return nil
}

func (a *App) printSeeded(result *seed.Result) {
	counts := make(map[string]int, len(result.Tables))
	for _, t := range result.Tables {
		counts[t.Table] = t.Rows
	}
	printCounts(a.out, counts)
}

func (a *App) planCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the order seed would write a snapshot in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, format, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			snap, err := migration.Load(ctx, store, format)
			if err != nil {
				return err
			}
			seeder, err := seed.New(nil, seed.Options{Owner: a.owner(), Logger: a.logger})
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Snapshot of %s extracted %s\n", snap.SourceDatabase, snap.ExtractedAt.Format(time.RFC3339))
			for i, step := range seeder.Plan(snap) {
				fmt.Fprintf(a.out, "%2d. %-20s %6d rows", i+1, step.Table, step.Rows)
				if len(step.DependsOn) > 0 {
					dimColor.Fprintf(a.out, "  after %s", strings.Join(step.DependsOn, ", "))
				}
				fmt.Fprintln(a.out)
			}
			if err := snap.Validate(); err != nil {
				warnColor.Fprintf(a.out, "! seed would reject this snapshot: %v\n", err)
			}
			return nil
		},
	}
}

func (a *App) verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check referential integrity and cookbook ordering in the target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := database.Open(ctx, a.targetDSN(), a.logger)
			if err != nil {
				return err
			}
			defer database.Close(db)

			report, err := seed.Verify(ctx, db)
			if err != nil {
				return err
			}
			counts := make(map[string]int, len(report.Counts))
			for table, n := range report.Counts {
				counts[table] = int(n)
			}
			printCounts(a.out, counts)

			for _, d := range report.Dangling {
				warnColor.Fprintf(a.out, "! %s.%s: %d rows reference missing %s\n", d.Table, d.Column, d.Rows, d.References)
			}
			for _, id := range report.UnorderedCookbooks {
				warnColor.Fprintf(a.out, "! cookbook %s is not numbered 1..N\n", id)
			}
			if !report.OK() {
				return fmt.Errorf("target database failed verification")
			}
			successColor.Fprintln(a.out, "✓ Target database is consistent")
			return nil
		},
	}
	cmd.Flags().StringVar(&a.targetURL, "target-url", "", "target database URL (default from DATABASE_URL)")
	return cmd
}
