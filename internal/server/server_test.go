package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/testhelpers"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: config.Test,
		Server: config.ServerConfig{
			Host:      "127.0.0.1",
			Port:      "0",
			RateLimit: 60,
		},
	}
}

func TestNew(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := New(testConfig(), testhelpers.SetupSQLite(t), nil, zaptest.NewLogger(t))
	require.NotNil(t, srv)
	assert.Equal(t, "127.0.0.1:0", srv.http.Addr)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
}

func TestStartShutdown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := New(testConfig(), testhelpers.SetupSQLite(t), nil, zaptest.NewLogger(t))

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, srv.Shutdown(context.Background()))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
