// Package provider defines the contract shared by all external alert
// providers and the HTTP/retry plumbing they are composed from.
package provider

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/RealRichai/alertgate/internal/alert"
)

const (
	// DefaultTimeout bounds a single outbound HTTP attempt.
	DefaultTimeout = 10 * time.Second

	// DefaultRetryAttempts is the retry budget used when Config leaves
	// RetryAttempts unset (negative).
	DefaultRetryAttempts = 3
)

// Sender is the capability every concrete provider implements.
type Sender interface {
	// ID returns the stable provider identifier used in routing tables,
	// responses, and metrics labels.
	ID() string

	// IsAvailable reports whether the provider is configured and
	// enabled. Synchronous, no I/O.
	IsAvailable() bool

	// ValidateCredentials best-effort checks the configured credentials.
	// Webhook-style providers without a validation endpoint report their
	// configured state; API-key providers issue a lightweight GET.
	ValidateCredentials(ctx context.Context) (bool, error)

	// Send delivers the alert. Unconfigured providers fail immediately
	// with a NOT_CONFIGURED error and make zero network calls.
	Send(ctx context.Context, req *alert.Request) (*alert.Response, error)
}

// Config holds the per-provider knobs shared by all adapters.
// Immutable after adapter construction. RetryAttempts is the number of
// additional tries after the first failure: zero means no retries, and
// a negative value means unset.
type Config struct {
	Enabled       bool
	TimeoutMs     int
	RetryAttempts int
}

// Timeout returns the configured attempt timeout, or DefaultTimeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// Attempts returns the configured retry attempts. An explicit zero is
// honored as no retries; only a negative (unset) value falls back to
// DefaultRetryAttempts.
func (c Config) Attempts() int {
	if c.RetryAttempts < 0 {
		return DefaultRetryAttempts
	}
	return c.RetryAttempts
}

// NewHTTPClient builds the outbound client used by adapters: hard
// per-attempt timeout plus otel transport instrumentation.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}
