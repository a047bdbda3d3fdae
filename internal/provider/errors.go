package provider

import (
	"fmt"
	"time"
)

// Code classifies provider failures into the shared taxonomy.
type Code string

const (
	CodeNotConfigured Code = "NOT_CONFIGURED"
	CodeRateLimit     Code = "RATE_LIMIT"
	CodeTimeout       Code = "TIMEOUT"
	CodeAuthFailed    Code = "AUTHENTICATION_FAILED"
	CodeHTTP          Code = "HTTP_ERROR"
	CodeNetwork       Code = "NETWORK_ERROR"
)

// Error is a classified provider failure. Provider errors are always
// caught at the adapter boundary and never thrown past it.
type Error struct {
	Provider string
	Code     Code
	Status   int // HTTP status for CodeHTTP/CodeRateLimit/CodeAuthFailed, 0 otherwise

	// RetryAfter carries the provider's Retry-After hint on rate limits.
	RetryAfter time.Duration

	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Provider, e.Code, e.Status, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Code, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether another attempt may succeed. HTTP errors are
// retryable only for server-side (>=500) statuses.
func (e *Error) Retryable() bool {
	switch e.Code {
	case CodeRateLimit, CodeTimeout, CodeNetwork:
		return true
	case CodeHTTP:
		return e.Status >= 500
	}
	return false
}

// NotConfigured is the fast-fail error for disabled or unconfigured
// adapters.
func NotConfigured(providerID string) *Error {
	return &Error{
		Provider: providerID,
		Code:     CodeNotConfigured,
		Message:  "provider is not configured or disabled",
	}
}
