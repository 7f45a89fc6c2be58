package client

import (
	"errors"
	"fmt"
)

// ErrorClass represents a classification of request outcomes.
type ErrorClass string

const (
	// ErrorClassNotFound represents a 404 response.
	ErrorClassNotFound ErrorClass = "not_found"

	// ErrorClassRateLimited represents a 429 response.
	ErrorClassRateLimited ErrorClass = "rate_limited"

	// ErrorClassHTTPStatus represents any other non-2xx response.
	ErrorClassHTTPStatus ErrorClass = "http_status"

	// ErrorClassProxyUnavailable represents an unreachable egress path.
	ErrorClassProxyUnavailable ErrorClass = "proxy_unavailable"

	// ErrorClassTimeout represents a request that exceeded the per-call timeout.
	ErrorClassTimeout ErrorClass = "timeout"

	// ErrorClassNetwork represents a connection failure on a direct request.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassUnclassified represents a malformed or unexpected response body.
	ErrorClassUnclassified ErrorClass = "unclassified"
)

// Common errors returned by the client.
var (
	// ErrEgressExhausted matches errors returned after every attempted egress
	// path failed at the transport level.
	ErrEgressExhausted = errors.New("all egress paths unavailable")

	// ErrInvalidRequest is returned when a request cannot be built.
	ErrInvalidRequest = errors.New("invalid request")
)

// Error is a classified request failure.
type Error struct {
	Class      ErrorClass
	StatusCode int
	Message    string

	// Attempts is the number of attempts made before giving up.
	Attempts int

	// Exhausted is true when every attempted egress path failed.
	Exhausted bool

	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Exhausted {
		return fmt.Sprintf("%s after %d attempts (%s): %v",
			ErrEgressExhausted, e.Attempts, e.Class, e.Err)
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("rbx %s error (status %d): %s",
			e.Class, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("rbx %s error: %s: %v", e.Class, e.Message, e.Err)
	}
	return fmt.Sprintf("rbx %s error: %s", e.Class, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches target. Exhausted errors match
// ErrEgressExhausted.
func (e *Error) Is(target error) bool {
	return target == ErrEgressExhausted && e.Exhausted
}

// ClassOf returns the class of a classified error, or "" for anything else.
func ClassOf(err error) ErrorClass {
	var e *Error
	if errors.As(err, &e) {
		return e.Class
	}
	return ""
}

// IsClass reports whether err is a classified error of the given class.
func IsClass(err error, class ErrorClass) bool {
	return ClassOf(err) == class
}

// isTransport reports whether a class is a transport-level failure, which is
// the only kind retried across egress paths.
func isTransport(class ErrorClass) bool {
	switch class {
	case ErrorClassProxyUnavailable, ErrorClassTimeout, ErrorClassNetwork:
		return true
	default:
		return false
	}
}

// UserMessage renders a short, user-facing text for err. Each class reads
// differently so callers can tell rate limiting, missing resources and
// connectivity problems apart.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if !errors.As(err, &e) {
		return "Something went wrong, try again later."
	}

	switch e.Class {
	case ErrorClassNotFound:
		return "No such resource."
	case ErrorClassRateLimited:
		return "Too many requests, please slow down."
	case ErrorClassTimeout:
		return "The request timed out, try again or check the egress configuration."
	case ErrorClassProxyUnavailable:
		return "All egress paths are unavailable, try again or check the egress configuration."
	case ErrorClassNetwork:
		return "Connection failed, try again or check the egress configuration."
	case ErrorClassHTTPStatus:
		return fmt.Sprintf("The remote API answered with HTTP %d.", e.StatusCode)
	default:
		return "The remote API returned an unexpected response."
	}
}
