package errors

import "time"

// represents a standardized error response
type ErrorResponse struct {
	Error     string    `json:"error"`             // user-facing message
	Code      string    `json:"code,omitempty"`    // machine-readable code (e.g. "not_found")
	Timestamp time.Time `json:"timestamp"`         // when the error was produced
	Path      string    `json:"path,omitempty"`    // request path
	Details   string    `json:"details,omitempty"` // optional details (sanitized in production)
}

type ErrorInfo struct {
	category  string
	sanitized string
}
