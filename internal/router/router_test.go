package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pageza/recipebox/backend/internal/testhelpers"
)

func request(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSetupRouter_WithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)
	router := SetupRouter(testhelpers.SetupSQLite(t), Options{Logger: zap.New(core)})

	w := request(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "redis")

	w = request(router, http.MethodGet, "/api/v1/meals", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(router, http.MethodGet, "/api/v1/nothing-here", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)

	assert.Equal(t, 2, logs.FilterMessage("request").Len(), "health probes are not logged")
}

func TestSetupRouter_RateLimitsWrites(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	router := SetupRouter(testhelpers.SetupSQLite(t), Options{Redis: rdb, WriteLimit: 2})

	w := request(router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"ok"`)

	for _, name := range []string{"Breakfast", "Lunch"} {
		w = request(router, http.MethodPost, "/api/v1/meals", map[string]string{"name": name})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	w = request(router, http.MethodPost, "/api/v1/meals", map[string]string{"name": "Dinner"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	w = request(router, http.MethodGet, "/api/v1/meals", nil)
	assert.Equal(t, http.StatusOK, w.Code, "reads are not limited")

	mr.Close()
	w = request(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
