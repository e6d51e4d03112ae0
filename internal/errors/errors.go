package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"codeberg.org/appspec/server/internal/logger"
	"github.com/gin-gonic/gin"
)

// Error Handling Guidelines:
//
// For HTTP REST handlers:
//   - Pass repository/aggregator errors to errors.Respond(); it maps the domain
//     taxonomy (ErrValidation, ErrNotFound, ErrPersistence) to 400/404/500
//   - Use errors.BadRequest() for malformed input detected in the handler itself
//   - Never call both logger.ErrorErr() and errors.InternalError() for the same error
//
// For repositories/aggregators:
//   - Return wrapped errors (Validationf, NotFoundf, Persistence)
//   - Do not log errors in non-handler code (avoid double logging)
//
// For background work (analytics ingestion, page-view flushes):
//   - Log with logger.ErrorErr() and swallow; the primary request has already returned

func newResponse(c *gin.Context, code, message string) ErrorResponse {
	return ErrorResponse{
		Error:     message,
		Code:      code,
		Timestamp: time.Now().UTC(),
		Path:      c.Request.URL.Path,
	}
}

// returns a 404 not found error
func NotFound(c *gin.Context, resource string) {
	message := "resource not found"

	if resource != "" {
		message = resource + " not found"
	}

	c.JSON(http.StatusNotFound, newResponse(c, CodeNotFound, message))
}

// returns a 400 bad request error
func BadRequest(c *gin.Context, message string, err error) {
	if message == "" {
		message = "invalid request"
	}

	response := newResponse(c, CodeBadRequest, message)

	if err != nil {
		response.Details = sanitizeError(err)
	}

	c.JSON(http.StatusBadRequest, response)
}

// returns a 400 bad request error for validation failures
func ValidationError(c *gin.Context, err error) {
	message := "validation failed"

	if err != nil && !isProduction() {
		message = strings.TrimPrefix(err.Error(), ErrValidation.Error()+": ")
	}

	c.JSON(http.StatusBadRequest, newResponse(c, CodeValidationError, message))
}

// returns a 500 internal server error
func InternalError(c *gin.Context, message string, err error) {
	if message == "" {
		message = "internal server error"
	}

	// log full error server-side with context
	logger.FromContext(c.Request.Context()).Error(message,
		"error", err,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)

	response := newResponse(c, CodeServerError, message)
	response.Details = sanitizeError(err)

	c.JSON(http.StatusInternalServerError, response)
}

// maps a domain error onto the matching response; the single boundary for repository errors
func Respond(c *gin.Context, err error, resource string) {
	switch classifyError(err).category {
	case CategoryValidation:
		ValidationError(c, err)
	case CategoryNotFound:
		NotFound(c, resource)
	default:
		InternalError(c, "", err)
	}
}

// turns panics into the standard 500 shape
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		InternalError(c, "", fmt.Errorf("panic: %v", recovered))
		c.Abort()
	})
}
