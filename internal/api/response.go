package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/backend/internal/service"
)

const apiVersion = "v1"

// Meta is attached to every response.
type Meta struct {
	APIVersion string `json:"api_version"`
	Total      *int64 `json:"total,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}

// Response is the envelope every handler writes.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Meta    Meta        `json:"meta"`
}

func respond(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Response{
		Success: true,
		Data:    data,
		Message: message,
		Meta:    Meta{APIVersion: apiVersion},
	})
}

func respondPage(c *gin.Context, data interface{}, total int64, limit, offset int) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
		Meta:    Meta{APIVersion: apiVersion, Total: &total, Limit: limit, Offset: offset},
	})
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Message: message,
		Meta:    Meta{APIVersion: apiVersion},
	})
}

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNotInCookbook):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalid), errors.Is(err, service.ErrInvalidOrder),
		errors.Is(err, service.ErrAlreadyInCookbook):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInUse), errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with the mapped status. Internal errors are recorded on the
// context for the request logger and hidden from the client.
func fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		respondError(c, status, "internal server error")
		return
	}
	respondError(c, status, err.Error())
}

func badRequest(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, err.Error())
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return n, nil
}

// chain puts the route handler after the given middleware.
func chain(middleware []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(middleware)+1)
	return append(append(out, middleware...), handler)
}
