// Package database opens the target database and applies its schema.
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite:"

// IsSQLite reports whether dsn names a SQLite database.
func IsSQLite(dsn string) bool {
	return strings.HasPrefix(dsn, sqlitePrefix)
}

// Open connects to the target database. A dsn of the form sqlite:<path>
// opens SQLite with foreign keys on; anything else is handed to PostgreSQL.
// SQL is logged through logger at warn level; a nil logger silences it.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if IsSQLite(dsn) {
		path := strings.TrimPrefix(dsn, sqlitePrefix)
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		dialector = sqlite.Open(path + sep + "_foreign_keys=on")
	} else {
		dialector = postgres.Open(dsn)
	}

	gormLog := gormlogger.Default.LogMode(gormlogger.Silent)
	if logger != nil {
		logger.Info("connecting to target database", zap.String("driver", dialector.Name()))
		gormLog = gormlogger.New(zap.NewStdLog(logger.Named("gorm")), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting sql.DB: %w", err)
	}
	if IsSQLite(dsn) {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := HealthCheck(ctx, db); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}
	return db, nil
}

// HealthCheck checks if the database is accessible
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
