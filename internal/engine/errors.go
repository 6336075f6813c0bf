package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Category distinguishes adapter failure classes so the orchestrator can
// decide whether a fallback attempt is worthwhile.
type Category string

const (
	ConnectionFailure Category = "connection_failure"
	Timeout           Category = "timeout"
	AuthFailure       Category = "auth_failure"
	MalformedResponse Category = "malformed_response"
	RateLimited       Category = "rate_limited"
)

// Error is a categorized adapter failure.
type Error struct {
	Engine   string
	Category Category
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Engine, e.Category, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with the engine ID and failure category.
func NewError(engine string, category Category, err error) *Error {
	return &Error{Engine: engine, Category: category, Err: err}
}

// CategoryOf extracts the category from an adapter error chain, or "".
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return ""
}

// categorizeTransport maps an http.Client error to a failure category.
func categorizeTransport(err error) Category {
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout
	}
	return ConnectionFailure
}

// categorizeStatus maps a non-2xx HTTP status to a failure category.
func categorizeStatus(status int) Category {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return AuthFailure
	case status == http.StatusTooManyRequests:
		return RateLimited
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return Timeout
	case status >= 500:
		return ConnectionFailure
	default:
		return MalformedResponse
	}
}
