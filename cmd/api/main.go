package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/database"
	"github.com/pageza/recipebox/backend/internal/logging"
	"github.com/pageza/recipebox/backend/internal/server"
	"github.com/pageza/recipebox/backend/migrations"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logging.Must(false, "").Fatal("failed to load config", zap.Error(err))
	}

	logger := logging.Must(cfg.Environment.IsProduction(), cfg.LogLevel)
	defer logger.Sync()

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if _, err := database.RunMigrations(ctx, db, migrations.FS, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis only backs rate limiting; the API runs without it.
	var rdb *redis.Client
	if client, err := database.NewRedisClient(ctx, cfg.Redis); err != nil {
		logger.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
	} else {
		rdb = client
		defer rdb.Close()
	}

	// Create and start server
	srv := server.New(cfg, db, rdb, logger)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive a signal or error
	select {
	case err := <-errChan:
		if err != nil {
			logger.Error("server error", zap.Error(err))
			return
		}
	case sig := <-quit:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	// Gracefully shutdown the server
	logger.Info("shutting down server")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}
