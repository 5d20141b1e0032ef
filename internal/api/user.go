package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/backend/internal/service"
)

type createUserRequest struct {
	Name               string `json:"name" binding:"required,max=255"`
	Email              string `json:"email" binding:"required,email"`
	SubscriptionTier   int    `json:"subscription_tier" binding:"min=0"`
	SubscriptionStatus string `json:"subscription_status" binding:"omitempty,max=50"`
	AdminOverride      bool   `json:"admin_override"`
}

type updateUserRequest struct {
	Name               *string `json:"name" binding:"omitempty,min=1,max=255"`
	Email              *string `json:"email" binding:"omitempty,email"`
	SubscriptionTier   *int    `json:"subscription_tier" binding:"omitempty,min=0"`
	SubscriptionStatus *string `json:"subscription_status" binding:"omitempty,max=50"`
	AdminOverride      *bool   `json:"admin_override"`
}

type UserHandler struct {
	userService service.IUserService
}

func NewUserHandler(userService service.IUserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, write ...gin.HandlerFunc) {
	users := router.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.POST("", chain(write, h.CreateUser)...)
		users.PUT("/:id", chain(write, h.UpdateUser)...)
		users.DELETE("/:id", chain(write, h.DeleteUser)...)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, users, "")
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, user, "")
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.userService.CreateUser(c.Request.Context(), service.UserInput{
		Name:               req.Name,
		Email:              req.Email,
		SubscriptionTier:   req.SubscriptionTier,
		SubscriptionStatus: req.SubscriptionStatus,
		AdminOverride:      req.AdminOverride,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, user, "")
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.userService.UpdateUser(c.Request.Context(), c.Param("id"), service.UserUpdate{
		Name:               req.Name,
		Email:              req.Email,
		SubscriptionTier:   req.SubscriptionTier,
		SubscriptionStatus: req.SubscriptionStatus,
		AdminOverride:      req.AdminOverride,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, user, "User updated successfully")
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": c.Param("id")}, "User deleted successfully")
}
