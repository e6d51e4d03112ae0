package errors

import (
	"context"
	"errors"
	"os"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// standard error codes
const (
	CodeNotFound        = "not_found"
	CodeValidationError = "validation_error"
	CodeServerError     = "server_error"
	CodeBadRequest      = "bad_request"
)

// error categories for classification
const (
	CategoryDatabase   = "database"
	CategoryNetwork    = "network"
	CategoryValidation = "validation"
	CategoryNotFound   = "not_found"
	CategoryTimeout    = "timeout"
	CategoryUnknown    = "unknown"
)

func isProduction() bool {
	return os.Getenv("ENVIRONMENT") == "production"
}

// analyzes an error and returns its category and sanitized message
func classifyError(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{CategoryUnknown, ""}
	}

	production := isProduction()

	if errors.Is(err, ErrValidation) {
		return ErrorInfo{CategoryValidation, ternary(production, "validation failed", err.Error())}
	}

	if errors.Is(err, ErrNotFound) || errors.Is(err, mongo.ErrNoDocuments) {
		return ErrorInfo{CategoryNotFound, ternary(production, "resource not found", err.Error())}
	}

	// context and driver timeouts
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) {
		return ErrorInfo{CategoryTimeout, ternary(production, "request timed out", err.Error())}
	}

	if errors.Is(err, context.Canceled) {
		return ErrorInfo{CategoryTimeout, ternary(production, "request canceled", err.Error())}
	}

	if mongo.IsNetworkError(err) {
		return ErrorInfo{CategoryNetwork, ternary(production, "connection error occurred", err.Error())}
	}

	var cmdErr mongo.CommandError
	var writeErr mongo.WriteException
	if errors.As(err, &cmdErr) || errors.As(err, &writeErr) || mongo.IsDuplicateKeyError(err) ||
		errors.Is(err, ErrPersistence) {
		return ErrorInfo{CategoryDatabase, ternary(production, "database operation failed", err.Error())}
	}

	// fallback to string matching for unknown error types
	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline") {
		return ErrorInfo{CategoryTimeout, ternary(production, "request timed out", err.Error())}
	}

	if strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network") ||
		strings.Contains(errMsg, "dial") {
		return ErrorInfo{CategoryNetwork, ternary(production, "connection error occurred", err.Error())}
	}

	if strings.Contains(errMsg, "mongo") || strings.Contains(errMsg, "database") {
		return ErrorInfo{CategoryDatabase, ternary(production, "database operation failed", err.Error())}
	}

	return ErrorInfo{CategoryUnknown, ternary(production, "an error occurred", err.Error())}
}

// sanitizes error messages for production
func sanitizeError(err error) string {
	return classifyError(err).sanitized
}

// ternary helper for cleaner conditional assignment
func ternary(condition bool, trueVal, falseVal string) string {
	if condition {
		return trueVal
	}

	return falseVal
}
