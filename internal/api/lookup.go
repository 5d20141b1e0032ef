package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/backend/internal/service"
)

type lookupRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Description *string `json:"description"`
}

type lookupPatch struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
}

// LookupHandler serves CRUD for one lookup table (classifications, sources,
// meals, courses, preparations).
type LookupHandler[T any] struct {
	path    string
	service service.ILookupService[T]
}

func NewLookupHandler[T any](path string, svc service.ILookupService[T]) *LookupHandler[T] {
	return &LookupHandler[T]{path: path, service: svc}
}

func (h *LookupHandler[T]) RegisterRoutes(router *gin.RouterGroup, write ...gin.HandlerFunc) {
	group := router.Group("/" + h.path)
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.POST("", chain(write, h.Create)...)
		group.PUT("/:id", chain(write, h.Update)...)
		group.DELETE("/:id", chain(write, h.Delete)...)
	}
}

func (h *LookupHandler[T]) List(c *gin.Context) {
	rows, err := h.service.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, rows, "")
}

func (h *LookupHandler[T]) Get(c *gin.Context) {
	row, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, row, "")
}

func (h *LookupHandler[T]) Create(c *gin.Context) {
	var req lookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	row, err := h.service.Create(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, row, "")
}

func (h *LookupHandler[T]) Update(c *gin.Context) {
	var req lookupPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	row, err := h.service.Update(c.Request.Context(), c.Param("id"), req.Name, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, row, "")
}

func (h *LookupHandler[T]) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, h.path+" entry deleted")
}
