package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/service"
)

type createRecipeRequest struct {
	UserID           string          `json:"user_id" binding:"required"`
	Name             string          `json:"name" binding:"required,max=255"`
	Ingredients      string          `json:"ingredients" binding:"required"`
	Instructions     string          `json:"instructions" binding:"required"`
	Notes            *string         `json:"notes"`
	Servings         int             `json:"servings" binding:"omitempty,min=1"`
	SourceID         *string         `json:"source_id"`
	ClassificationID *string         `json:"classification_id"`
	DateAdded        *time.Time      `json:"date_added"`
	Calories         *int            `json:"calories" binding:"omitempty,min=0"`
	Fat              *float64        `json:"fat" binding:"omitempty,min=0"`
	Cholesterol      *float64        `json:"cholesterol" binding:"omitempty,min=0"`
	Sodium           *float64        `json:"sodium" binding:"omitempty,min=0"`
	Protein          *float64        `json:"protein" binding:"omitempty,min=0"`
	Marked           models.TriState `json:"marked"`
	Tags             []string        `json:"tags"`
	IsPrivate        bool            `json:"is_private"`
	MealIDs          []string        `json:"meal_ids"`
	CourseIDs        []string        `json:"course_ids"`
	PreparationIDs   []string        `json:"preparation_ids"`
}

type updateRecipeRequest struct {
	Name             *string          `json:"name" binding:"omitempty,min=1,max=255"`
	Ingredients      *string          `json:"ingredients"`
	Instructions     *string          `json:"instructions"`
	Notes            *string          `json:"notes"`
	Servings         *int             `json:"servings" binding:"omitempty,min=1"`
	SourceID         *string          `json:"source_id"`
	ClassificationID *string          `json:"classification_id"`
	Calories         *int             `json:"calories" binding:"omitempty,min=0"`
	Fat              *float64         `json:"fat" binding:"omitempty,min=0"`
	Cholesterol      *float64         `json:"cholesterol" binding:"omitempty,min=0"`
	Sodium           *float64         `json:"sodium" binding:"omitempty,min=0"`
	Protein          *float64         `json:"protein" binding:"omitempty,min=0"`
	Marked           *models.TriState `json:"marked"`
	Tags             *[]string        `json:"tags"`
	IsPrivate        *bool            `json:"is_private"`
	MealIDs          *[]string        `json:"meal_ids"`
	CourseIDs        *[]string        `json:"course_ids"`
	PreparationIDs   *[]string        `json:"preparation_ids"`
}

type RecipeHandler struct {
	recipeService service.IRecipeService
}

func NewRecipeHandler(recipeService service.IRecipeService) *RecipeHandler {
	return &RecipeHandler{recipeService: recipeService}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, write ...gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/public", h.ListPublicRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("", chain(write, h.CreateRecipe)...)
		recipes.PUT("/:id", chain(write, h.UpdateRecipe)...)
		recipes.DELETE("/:id", chain(write, h.DeleteRecipe)...)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	h.list(c, false)
}

func (h *RecipeHandler) ListPublicRecipes(c *gin.Context) {
	h.list(c, true)
}

func (h *RecipeHandler) list(c *gin.Context, publicOnly bool) {
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		badRequest(c, err)
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		badRequest(c, err)
		return
	}
	if limit < 1 || limit > 100 {
		respondError(c, http.StatusBadRequest, "limit must be between 1 and 100")
		return
	}
	if offset < 0 {
		respondError(c, http.StatusBadRequest, "offset must not be negative")
		return
	}

	recipes, total, err := h.recipeService.ListRecipes(c.Request.Context(), service.RecipeFilter{
		Query:            c.Query("q"),
		ClassificationID: c.Query("classification_id"),
		SourceID:         c.Query("source_id"),
		UserID:           c.Query("user_id"),
		PublicOnly:       publicOnly,
		Limit:            limit,
		Offset:           offset,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respondPage(c, recipes, total, limit, offset)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, recipe, "")
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req createRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), service.RecipeInput{
		UserID:           req.UserID,
		Name:             req.Name,
		Ingredients:      req.Ingredients,
		Instructions:     req.Instructions,
		Notes:            req.Notes,
		Servings:         req.Servings,
		SourceID:         req.SourceID,
		ClassificationID: req.ClassificationID,
		DateAdded:        req.DateAdded,
		Calories:         req.Calories,
		Fat:              req.Fat,
		Cholesterol:      req.Cholesterol,
		Sodium:           req.Sodium,
		Protein:          req.Protein,
		Marked:           req.Marked,
		Tags:             req.Tags,
		IsPrivate:        req.IsPrivate,
		MealIDs:          req.MealIDs,
		CourseIDs:        req.CourseIDs,
		PreparationIDs:   req.PreparationIDs,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, recipe, "")
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	var req updateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), c.Param("id"), service.RecipeUpdate{
		Name:             req.Name,
		Ingredients:      req.Ingredients,
		Instructions:     req.Instructions,
		Notes:            req.Notes,
		Servings:         req.Servings,
		SourceID:         req.SourceID,
		ClassificationID: req.ClassificationID,
		Calories:         req.Calories,
		Fat:              req.Fat,
		Cholesterol:      req.Cholesterol,
		Sodium:           req.Sodium,
		Protein:          req.Protein,
		Marked:           req.Marked,
		Tags:             req.Tags,
		IsPrivate:        req.IsPrivate,
		MealIDs:          req.MealIDs,
		CourseIDs:        req.CourseIDs,
		PreparationIDs:   req.PreparationIDs,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, recipe, "Recipe updated successfully")
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	if err := h.recipeService.DeleteRecipe(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": c.Param("id")}, "Recipe deleted successfully")
}
