package apiclient

import (
	"encoding/json"
	"net/http"
)

// APIError represents an RFC 7807 problem response from the server.
type APIError struct {
	StatusCode int    `json:"status"`
	Title      string `json:"title"`
	Detail     string `json:"detail,omitempty"`

	// RemainingAttempts is set on credential refusals that still have
	// attempt budget left.
	RemainingAttempts *int `json:"remaining_attempts,omitempty"`

	// RetryAfterSeconds is set on lockout responses.
	RetryAfterSeconds *int64 `json:"retry_after_seconds,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// IsAuthError returns true if the credentials were refused.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsLocked returns true if the principal is locked out.
func (e *APIError) IsLocked() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsNotFound returns true if the resource does not exist.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsGone returns true if a share link has expired or its download
// ceiling is exhausted.
func (e *APIError) IsGone() bool {
	return e.StatusCode == http.StatusGone
}

func decodeAPIError(statusCode int, body []byte) error {
	var apiErr APIError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Title != "" {
		apiErr.StatusCode = statusCode
		return &apiErr
	}
	return &APIError{
		StatusCode: statusCode,
		Title:      http.StatusText(statusCode),
		Detail:     string(body),
	}
}
