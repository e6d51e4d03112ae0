package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func serve(t *testing.T, handler gin.HandlerFunc) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(Recovery())
	router.GET("/api/things/:id", handler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/things/42", nil))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return w, body
}

func TestRespond_MapsTaxonomy(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", Validationf("name is required"), http.StatusBadRequest, CodeValidationError},
		{"not found", NotFoundf("project %q", "x"), http.StatusNotFound, CodeNotFound},
		{"no documents", fmt.Errorf("lookup: %w", mongo.ErrNoDocuments), http.StatusNotFound, CodeNotFound},
		{"persistence", Persistence("insert project", fmt.Errorf("boom")), http.StatusInternalServerError, CodeServerError},
		{"unknown", fmt.Errorf("something odd"), http.StatusInternalServerError, CodeServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := serve(t, func(c *gin.Context) { Respond(c, tt.err, "project") })

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, "/api/things/42", body.Path)
			assert.False(t, body.Timestamp.IsZero())
		})
	}
}

func TestValidationError_StripsPrefixOutsideProduction(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	_, body := serve(t, func(c *gin.Context) { Respond(c, Validationf("name is required"), "") })
	assert.Equal(t, "name is required", body.Error)
}

func TestInternalError_SanitizedInProduction(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	_, body := serve(t, func(c *gin.Context) {
		Respond(c, Persistence("insert project", fmt.Errorf("connection refused by 10.0.0.4")), "")
	})

	assert.Equal(t, "internal server error", body.Error)
	assert.Equal(t, "database operation failed", body.Details)
	assert.NotContains(t, body.Details, "10.0.0.4")
}

func TestInternalError_RawOutsideProduction(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	_, body := serve(t, func(c *gin.Context) { InternalError(c, "", fmt.Errorf("raw failure")) })
	assert.Equal(t, "raw failure", body.Details)
}

func TestRecovery_PanicsBecome500(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	w, body := serve(t, func(c *gin.Context) { panic("kaboom") })

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, CodeServerError, body.Code)
	assert.Contains(t, body.Details, "kaboom")
}

func TestPersistence_NilPassthrough(t *testing.T) {
	assert.NoError(t, Persistence("noop", nil))

	err := Persistence("update", mongo.ErrNoDocuments)
	assert.True(t, IsPersistence(err))
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}
