package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidCredentials is returned when the upstream rejects a login.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrSessionExpired is returned when the upstream answers 401/403 and the
	// session has been torn down; the caller must redirect to login.
	ErrSessionExpired = errors.New("session expired")
	// ErrNoSession is returned when an operation requires a live session.
	ErrNoSession = errors.New("no active session")
	// ErrUpstreamUnavailable is returned when the payroll API cannot be reached.
	ErrUpstreamUnavailable = errors.New("payroll API unavailable")
	// ErrForbidden is returned when a role is not permitted to view a page.
	ErrForbidden = errors.New("role not permitted")
)

// APIError carries a failed upstream call's status and the human-readable
// message extracted from its error body, when one was present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.Status)
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrSessionExpired):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "SESSION_EXPIRED")
	case errors.Is(err, ErrNoSession):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "NO_SESSION")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrUpstreamUnavailable):
		return NewHTTPError(http.StatusBadGateway, err.Error(), "UPSTREAM_UNAVAILABLE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
