package router

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/api"
	"github.com/pageza/recipebox/backend/internal/database"
	"github.com/pageza/recipebox/backend/internal/middleware"
)

// Options carries what the router needs beyond the database.
type Options struct {
	Logger      *zap.Logger
	CORSOrigins []string
	// Redis backs the write rate limiter; nil disables limiting.
	Redis redis.UniversalClient
	// WriteLimit is the number of mutating requests allowed per client per minute.
	WriteLimit int
}

// SetupRouter configures the application routes
func SetupRouter(db *gorm.DB, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(logging(logger), middleware.Recovery(logger), middleware.CORS(opts.CORSOrigins))
	router.NoRoute(middleware.NotFound)

	health := map[string]api.Pinger{
		"database": func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
	}

	var write []gin.HandlerFunc
	if opts.Redis != nil {
		health["redis"] = func(ctx context.Context) error { return opts.Redis.Ping(ctx).Err() }
		if opts.WriteLimit > 0 {
			write = append(write, middleware.NewWriteRateLimiter(opts.Redis, opts.WriteLimit, logger).Middleware())
		}
	}

	api.RegisterRoutes(router, db, health, write...)
	return router
}
