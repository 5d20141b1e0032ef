package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the body written when a handler panics or a route is
// missing. It matches the API envelope.
type ErrorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Meta    map[string]string `json:"meta"`
}

func errorBody(message string) ErrorResponse {
	return ErrorResponse{Success: false, Message: message, Meta: map[string]string{"api_version": "v1"}}
}

// Recovery logs a panic and returns a JSON 500 instead of dropping the connection.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic while handling request",
					zap.Any("error", err),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("internal server error"))
			}
		}()
		c.Next()
	}
}

// NotFound answers unknown routes with the JSON envelope.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, errorBody("route "+c.Request.Method+" "+c.Request.URL.Path+" not found"))
}
