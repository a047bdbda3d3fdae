// Package pagerduty delivers alerts through the PagerDuty Events API v2.
package pagerduty

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/RealRichai/alertgate/internal/alert"
	"github.com/RealRichai/alertgate/internal/provider"
)

// ProviderID is the routing identifier for the paging provider.
const ProviderID = "pagerduty"

// DefaultEventsURL is the public Events API v2 enqueue endpoint.
const DefaultEventsURL = "https://events.pagerduty.com/v2/enqueue"

// Pager triggers PagerDuty incidents.
type Pager struct {
	routingKey string
	eventsURL  string
	enabled    bool
	client     *http.Client
	retry      provider.Retryer
}

// New creates a PagerDuty pager. An empty routingKey leaves the provider
// unconfigured. eventsURL falls back to DefaultEventsURL.
func New(routingKey, eventsURL string, cfg provider.Config) *Pager {
	if eventsURL == "" {
		eventsURL = DefaultEventsURL
	}
	return &Pager{
		routingKey: routingKey,
		eventsURL:  eventsURL,
		enabled:    cfg.Enabled,
		client:     provider.NewHTTPClient(cfg.Timeout()),
		retry:      provider.Retryer{Attempts: cfg.Attempts()},
	}
}

// ID implements provider.Sender.
func (p *Pager) ID() string { return ProviderID }

// IsAvailable implements provider.Sender.
func (p *Pager) IsAvailable() bool {
	return p.enabled && p.routingKey != ""
}

// ValidateCredentials implements provider.Sender. The Events API has no
// credential-validation endpoint (routing keys are only checked on
// enqueue), so this reports the configured state.
func (p *Pager) ValidateCredentials(_ context.Context) (bool, error) {
	return p.IsAvailable(), nil
}

type eventResponse struct {
	Status   string `json:"status"`
	DedupKey string `json:"dedup_key"`
	Message  string `json:"message"`
}

// Send implements provider.Sender.
func (p *Pager) Send(ctx context.Context, req *alert.Request) (*alert.Response, error) {
	if !p.IsAvailable() {
		return nil, provider.NotConfigured(ProviderID)
	}

	payload := p.buildPayload(req)
	start := time.Now()

	var body []byte
	err := p.retry.Do(ctx, func(ctx context.Context) error {
		b, err := provider.PostJSON(ctx, ProviderID, p.client, p.eventsURL, nil, payload)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	var er eventResponse
	if err := json.Unmarshal(body, &er); err != nil || er.Status != "success" {
		return nil, &provider.Error{
			Provider: ProviderID,
			Code:     provider.CodeHTTP,
			Message:  "event not accepted: " + string(body),
		}
	}

	return &alert.Response{
		ProviderID:      ProviderID,
		Success:         true,
		ProviderAlertID: er.DedupKey,
		SentAt:          start,
		DurationMs:      time.Since(start).Milliseconds(),
	}, nil
}

func (p *Pager) buildPayload(req *alert.Request) map[string]any {
	ts := req.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	details := make(map[string]any, len(req.Context))
	for k, v := range req.Context {
		details[k] = v
	}
	if req.Message != "" {
		details["message"] = req.Message
	}

	return map[string]any{
		"routing_key":  p.routingKey,
		"event_action": "trigger",
		"dedup_key":    req.DedupKey(),
		"payload": map[string]any{
			"summary":        summary(req),
			"severity":       pdSeverity(req.Severity),
			"source":         string(req.Source),
			"timestamp":      ts.UTC().Format(time.RFC3339),
			"component":      req.Context["agent-type"],
			"group":          req.Context["tenant"],
			"custom_details": details,
		},
	}
}

func summary(req *alert.Request) string {
	return "[" + strings.ToUpper(string(req.Severity)) + "] " + req.Title
}

// pdSeverity maps the canonical 3-level scheme onto PagerDuty's
// vocabulary. No other PagerDuty levels are ever produced.
func pdSeverity(s alert.Severity) string {
	switch s {
	case alert.SeverityCritical:
		return "critical"
	case alert.SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}
