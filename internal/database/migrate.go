package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/models"
)

const rollbackSuffix = "_rollback.sql"

// ErrNoMigrations is returned by Rollback when nothing has been applied.
var ErrNoMigrations = errors.New("no migrations to roll back")

type schemaMigration struct {
	Name      string    `gorm:"primarykey;size:255"`
	AppliedAt time.Time `gorm:"not null"`
}

func (schemaMigration) TableName() string {
	return "schema_migrations"
}

// forwardFiles lists the migration files in fsys in name order, skipping
// rollback files.
func forwardFiles(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") || strings.HasSuffix(name, rollbackSuffix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// RunMigrations brings the schema up to date. SQLite databases are created
// from the models; PostgreSQL runs every SQL file in fsys not yet recorded in
// schema_migrations, each in its own transaction.
func RunMigrations(ctx context.Context, db *gorm.DB, fsys fs.FS, logger *zap.Logger) ([]string, error) {
	db = db.WithContext(ctx)
	if db.Dialector.Name() == "sqlite" {
		logger.Info("using gorm auto-migration for sqlite")
		if err := db.AutoMigrate(models.All()...); err != nil {
			return nil, fmt.Errorf("auto-migration failed: %w", err)
		}
		return nil, nil
	}

	if err := db.AutoMigrate(&schemaMigration{}); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}
	files, err := forwardFiles(fsys)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, name := range files {
		var count int64
		if err := db.Model(&schemaMigration{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return applied, fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			logger.Debug("skipping migration (already applied)", zap.String("migration", name))
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return applied, fmt.Errorf("failed to read migration file %s: %w", name, err)
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(content)).Error; err != nil {
				return err
			}
			return tx.Create(&schemaMigration{Name: name, AppliedAt: time.Now().UTC()}).Error
		})
		if err != nil {
			return applied, fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
		logger.Info("applied migration", zap.String("migration", name))
		applied = append(applied, name)
	}
	return applied, nil
}

// Rollback undoes the most recently applied migration with its
// _rollback.sql pair and returns its name.
func Rollback(ctx context.Context, db *gorm.DB, fsys fs.FS, logger *zap.Logger) (string, error) {
	db = db.WithContext(ctx)
	if db.Dialector.Name() == "sqlite" {
		return "", fmt.Errorf("rollback is not supported for sqlite")
	}

	var last schemaMigration
	err := db.Order("applied_at DESC").Order("name DESC").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNoMigrations
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last migration: %w", err)
	}

	rollbackFile := strings.TrimSuffix(last.Name, ".sql") + rollbackSuffix
	content, err := fs.ReadFile(fsys, rollbackFile)
	if err != nil {
		return "", fmt.Errorf("rollback file not found: %s: %w", rollbackFile, err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(string(content)).Error; err != nil {
			return err
		}
		return tx.Delete(&schemaMigration{Name: last.Name}).Error
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute rollback %s: %w", rollbackFile, err)
	}
	logger.Info("rolled back migration", zap.String("migration", last.Name))
	return last.Name, nil
}
