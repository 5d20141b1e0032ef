package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func fixedClock(rl *RateLimiter, at time.Time) {
	rl.now = func() time.Time { return at }
}

func TestRateLimiter_IsAllowed(t *testing.T) {
	client, _ := setupTestRedis(t)
	rl := NewWriteRateLimiter(client, 2, nil)
	fixedClock(rl, time.Date(2024, 1, 1, 10, 0, 30, 0, time.UTC))
	ctx := context.Background()

	allowed, remaining, reset, err := rl.IsAllowed(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 1, 0, 0, time.UTC), reset)

	allowed, remaining, _, err = rl.IsAllowed(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 0, remaining)

	allowed, _, _, err = rl.IsAllowed(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, _, _, err = rl.IsAllowed(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, allowed, "clients are counted separately")

	left, _, err := rl.Remaining(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.Equal(t, 1, left)

	left, _, err = rl.Remaining(ctx, "10.0.0.9")
	require.NoError(t, err)
	assert.Equal(t, 2, left)
}

func TestRateLimiter_NewWindowResets(t *testing.T) {
	client, _ := setupTestRedis(t)
	rl := NewWriteRateLimiter(client, 1, nil)
	ctx := context.Background()

	fixedClock(rl, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	allowed, _, _, err := rl.IsAllowed(ctx, "c")
	require.NoError(t, err)
	assert.True(t, allowed)
	allowed, _, _, _ = rl.IsAllowed(ctx, "c")
	assert.False(t, allowed)

	fixedClock(rl, time.Date(2024, 1, 1, 10, 1, 0, 0, time.UTC))
	allowed, _, _, err = rl.IsAllowed(ctx, "c")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiter_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	client, _ := setupTestRedis(t)
	rl := NewWriteRateLimiter(client, 1, nil)

	router := gin.New()
	router.POST("/things", rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/things", nil)
		req.RemoteAddr = "192.0.2.7:5555"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := send()
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	client, mr := setupTestRedis(t)
	rl := NewWriteRateLimiter(client, 1, nil)
	mr.Close()

	router := gin.New()
	router.POST("/things", rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/things", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "rate limit check failed", w.Header().Get("X-RateLimit-Error"))
}
