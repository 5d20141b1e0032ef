package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/backend/internal/service"
)

type createCookbookRequest struct {
	UserID      string  `json:"user_id" binding:"required"`
	Name        string  `json:"name" binding:"required,max=255"`
	Description *string `json:"description"`
	CoverImage  *string `json:"cover_image" binding:"omitempty,max=255"`
	IsPrivate   bool    `json:"is_private"`
}

type updateCookbookRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	CoverImage  *string `json:"cover_image" binding:"omitempty,max=255"`
	IsPrivate   *bool   `json:"is_private"`
}

type addRecipesRequest struct {
	RecipeIDs []string `json:"recipe_ids" binding:"required,min=1,dive,required"`
}

type reorderRecipesRequest struct {
	RecipeOrder map[string]int `json:"recipe_order" binding:"required,min=1,dive,min=1"`
}

type CookbookHandler struct {
	cookbookService service.ICookbookService
}

func NewCookbookHandler(cookbookService service.ICookbookService) *CookbookHandler {
	return &CookbookHandler{cookbookService: cookbookService}
}

func (h *CookbookHandler) RegisterRoutes(router *gin.RouterGroup, write ...gin.HandlerFunc) {
	cookbooks := router.Group("/cookbooks")
	{
		cookbooks.GET("", h.ListCookbooks)
		cookbooks.GET("/:id", h.GetCookbook)
		cookbooks.POST("", chain(write, h.CreateCookbook)...)
		cookbooks.PUT("/:id", chain(write, h.UpdateCookbook)...)
		cookbooks.DELETE("/:id", chain(write, h.DeleteCookbook)...)

		cookbooks.GET("/:id/recipes", h.ListRecipes)
		cookbooks.POST("/:id/recipes", chain(write, h.AddRecipes)...)
		cookbooks.PUT("/:id/recipes", chain(write, h.ReorderRecipes)...)
		cookbooks.DELETE("/:id/recipes/:recipeId", chain(write, h.RemoveRecipe)...)
	}
}

func (h *CookbookHandler) ListCookbooks(c *gin.Context) {
	cookbooks, err := h.cookbookService.ListCookbooks(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, cookbooks, "")
}

func (h *CookbookHandler) GetCookbook(c *gin.Context) {
	cookbook, err := h.cookbookService.GetCookbook(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, cookbook, "")
}

func (h *CookbookHandler) CreateCookbook(c *gin.Context) {
	var req createCookbookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cookbook, err := h.cookbookService.CreateCookbook(c.Request.Context(), service.CookbookInput{
		UserID:      req.UserID,
		Name:        req.Name,
		Description: req.Description,
		CoverImage:  req.CoverImage,
		IsPrivate:   req.IsPrivate,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, cookbook, "")
}

func (h *CookbookHandler) UpdateCookbook(c *gin.Context) {
	var req updateCookbookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cookbook, err := h.cookbookService.UpdateCookbook(c.Request.Context(), c.Param("id"), service.CookbookUpdate{
		Name:        req.Name,
		Description: req.Description,
		CoverImage:  req.CoverImage,
		IsPrivate:   req.IsPrivate,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, cookbook, "Cookbook updated successfully")
}

func (h *CookbookHandler) DeleteCookbook(c *gin.Context) {
	if err := h.cookbookService.DeleteCookbook(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": c.Param("id")}, "Cookbook deleted successfully")
}

func (h *CookbookHandler) ListRecipes(c *gin.Context) {
	entries, err := h.cookbookService.ListRecipes(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, entries, "")
}

func (h *CookbookHandler) AddRecipes(c *gin.Context) {
	var req addRecipesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")
	added, skipped, err := h.cookbookService.AddRecipes(ctx, id, req.RecipeIDs)
	if err != nil {
		fail(c, err)
		return
	}
	entries, err := h.cookbookService.ListRecipes(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{
		"recipes":       entries,
		"added_count":   added,
		"skipped_count": skipped,
	}, "Recipes added to cookbook")
}

func (h *CookbookHandler) ReorderRecipes(c *gin.Context) {
	var req reorderRecipesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := h.cookbookService.ReorderRecipes(ctx, id, req.RecipeOrder); err != nil {
		// Naming a recipe outside the cookbook is a bad request here, not a missing resource.
		if errors.Is(err, service.ErrNotInCookbook) {
			badRequest(c, err)
			return
		}
		fail(c, err)
		return
	}
	entries, err := h.cookbookService.ListRecipes(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, entries, "Recipe order updated successfully")
}

func (h *CookbookHandler) RemoveRecipe(c *gin.Context) {
	err := h.cookbookService.RemoveRecipe(c.Request.Context(), c.Param("id"), c.Param("recipeId"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Recipe removed from cookbook")
}
