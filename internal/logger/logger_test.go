package logger

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug", "production"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARNING", ""))
	assert.Equal(t, slog.LevelError, ParseLevel(" error ", ""))

	// unknown levels fall back to the environment default
	assert.Equal(t, slog.LevelInfo, ParseLevel("", "production"))
	assert.Equal(t, slog.LevelDebug, ParseLevel("verbose", "development"))
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.Same(t, Default(), FromContext(context.Background()))

	//nolint:staticcheck // nil context is handled explicitly
	assert.Same(t, Default(), FromContext(nil))

	scoped := With("k", "v")
	ctx := WithContext(context.Background(), scoped)
	assert.Same(t, scoped, FromContext(ctx))
}

func TestMiddleware_SetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(Middleware())

	var seen string
	router.GET("/ping", func(c *gin.Context) {
		seen = c.GetString("request_id")
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))

	// an incoming id is preserved
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	router.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}
