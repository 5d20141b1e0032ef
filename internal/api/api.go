package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/service"
)

// RegisterRoutes mounts the health check and every /api/v1 route. The write
// middleware (rate limiting) runs in front of every mutating route.
func RegisterRoutes(router *gin.Engine, db *gorm.DB, health map[string]Pinger, write ...gin.HandlerFunc) {
	router.GET("/health", HealthCheck(health))

	v1 := router.Group("/api/v1")
	v1.GET("/health", HealthCheck(health))

	NewLookupHandler[models.Classification]("classifications", service.NewClassificationService(db)).RegisterRoutes(v1, write...)
	NewLookupHandler[models.Source]("sources", service.NewSourceService(db)).RegisterRoutes(v1, write...)
	NewLookupHandler[models.Meal]("meals", service.NewMealService(db)).RegisterRoutes(v1, write...)
	NewLookupHandler[models.Course]("courses", service.NewCourseService(db)).RegisterRoutes(v1, write...)
	NewLookupHandler[models.Preparation]("preparations", service.NewPreparationService(db)).RegisterRoutes(v1, write...)

	NewRecipeHandler(service.NewRecipeService(db)).RegisterRoutes(v1, write...)
	NewCookbookHandler(service.NewCookbookService(db)).RegisterRoutes(v1, write...)
	NewUserHandler(service.NewUserService(db)).RegisterRoutes(v1, write...)
	NewStatsHandler(service.NewStatsService(db)).RegisterRoutes(v1)
	NewBulkHandler(service.NewBulkService(db)).RegisterRoutes(v1, write...)
}
