package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/backend/internal/service"
)

type StatsHandler struct {
	statsService service.IStatsService
}

func NewStatsHandler(statsService service.IStatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (h *StatsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/admin/stats", h.GetStats)
}

type bulkRequest struct {
	Action string                 `json:"action" binding:"required,oneof=delete update"`
	Entity string                 `json:"entity" binding:"required"`
	IDs    []string               `json:"ids" binding:"required,min=1,dive,required"`
	Data   map[string]interface{} `json:"data"`
}

type BulkHandler struct {
	bulkService service.IBulkService
}

func NewBulkHandler(bulkService service.IBulkService) *BulkHandler {
	return &BulkHandler{bulkService: bulkService}
}

func (h *BulkHandler) RegisterRoutes(router *gin.RouterGroup, write ...gin.HandlerFunc) {
	router.POST("/admin/bulk", chain(write, h.Bulk)...)
}

// Bulk deletes or updates many rows of one entity.
func (h *BulkHandler) Bulk(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()

	switch req.Action {
	case service.BulkDeleteAction:
		n, err := h.bulkService.BulkDelete(ctx, req.Entity, req.IDs)
		var inUse *service.InUseError
		if errors.As(err, &inUse) {
			c.AbortWithStatusJSON(http.StatusConflict, Response{
				Success: false,
				Data:    gin.H{inUse.Entity + "_in_use": inUse.Rows},
				Message: "cannot delete " + inUse.Entity + " that are still in use",
				Meta:    Meta{APIVersion: apiVersion},
			})
			return
		}
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, gin.H{"deleted_count": n}, fmt.Sprintf("Deleted %d %s", n, req.Entity))
	default:
		n, err := h.bulkService.BulkUpdate(ctx, req.Entity, req.IDs, req.Data)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, gin.H{"updated_count": n}, fmt.Sprintf("Updated %d %s", n, req.Entity))
	}
}

func (h *StatsHandler) GetStats(c *gin.Context) {
	stats, err := h.statsService.GetStats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, stats, "")
}

// Pinger is a dependency the health check probes.
type Pinger func(ctx context.Context) error

// HealthCheck reports 200 when every named dependency answers within two
// seconds, 503 otherwise.
func HealthCheck(deps map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := make(map[string]string, len(deps))
		for name, ping := range deps {
			if err := ping(ctx); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}

		state := "healthy"
		if status != http.StatusOK {
			state = "unhealthy"
		}
		c.JSON(status, Response{
			Success: status == http.StatusOK,
			Data:    gin.H{"status": state, "checks": checks},
			Meta:    Meta{APIVersion: apiVersion},
		})
	}
}
