package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"
)

const maxErrBody = 512

// PostJSON marshals payload, POSTs it to url with Content-Type
// application/json plus any extra headers, and returns the response body
// on a 2xx status. Failures are mapped to the shared taxonomy:
// 429 rate limit (with Retry-After when parseable), 401/403
// authentication, other non-2xx HTTP errors, timeouts, and transport
// errors.
func PostJSON(ctx context.Context, providerID string, client *http.Client, url string, headers map[string]string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal payload: %w", providerID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", providerID, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req) //nolint:gosec // G704: url is from trusted config, not user input
	if err != nil {
		return nil, transportError(providerID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &Error{Provider: providerID, Code: CodeNetwork, Message: "read response", Err: err}
		}
		return respBody, nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
	return nil, statusError(providerID, resp, string(snippet))
}

func statusError(providerID string, resp *http.Response, snippet string) *Error {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &Error{
			Provider:   providerID,
			Code:       CodeRateLimit,
			Status:     resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    snippet,
		}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &Error{Provider: providerID, Code: CodeAuthFailed, Status: resp.StatusCode, Message: snippet}
	default:
		return &Error{Provider: providerID, Code: CodeHTTP, Status: resp.StatusCode, Message: snippet}
	}
}

func transportError(providerID string, err error) *Error {
	var nerr net.Error
	timedOut := errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout())
	if timedOut {
		return &Error{Provider: providerID, Code: CodeTimeout, Message: "request timed out", Err: err}
	}
	return &Error{Provider: providerID, Code: CodeNetwork, Message: "transport error", Err: err}
}

// parseRetryAfter handles both delta-seconds and HTTP-date forms.
// Unparseable values yield zero, which falls back to computed backoff.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
