// Package opsgenie delivers alerts through the Opsgenie Alerts API.
package opsgenie

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/RealRichai/alertgate/internal/alert"
	"github.com/RealRichai/alertgate/internal/provider"
)

// ProviderID is the routing identifier for the incident-management provider.
const ProviderID = "opsgenie"

// DefaultAPIURL is the public Opsgenie API base.
const DefaultAPIURL = "https://api.opsgenie.com"

// Alerter creates Opsgenie alerts.
type Alerter struct {
	apiKey  string
	apiURL  string
	team    string
	enabled bool
	client  *http.Client
	retry   provider.Retryer
}

// New creates an Opsgenie alerter. An empty apiKey leaves the provider
// unconfigured. apiURL falls back to DefaultAPIURL. team, when set,
// becomes the responder team on every created alert.
func New(apiKey, apiURL, team string, cfg provider.Config) *Alerter {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Alerter{
		apiKey:  apiKey,
		apiURL:  strings.TrimRight(apiURL, "/"),
		team:    team,
		enabled: cfg.Enabled,
		client:  provider.NewHTTPClient(cfg.Timeout()),
		retry:   provider.Retryer{Attempts: cfg.Attempts()},
	}
}

// ID implements provider.Sender.
func (a *Alerter) ID() string { return ProviderID }

// IsAvailable implements provider.Sender.
func (a *Alerter) IsAvailable() bool {
	return a.enabled && a.apiKey != ""
}

// ValidateCredentials implements provider.Sender: a lightweight GET
// against the account endpoint, reporting transport success.
func (a *Alerter) ValidateCredentials(ctx context.Context) (bool, error) {
	if !a.IsAvailable() {
		return false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.apiURL+"/v2/account", nil)
	if err != nil {
		return false, fmt.Errorf("opsgenie: create request: %w", err)
	}
	req.Header.Set("Authorization", "GenieKey "+a.apiKey)

	resp, err := a.client.Do(req) //nolint:gosec // G704: apiURL is from trusted config, not user input
	if err != nil {
		return false, fmt.Errorf("opsgenie: validate credentials: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

type alertResponse struct {
	RequestID string `json:"requestId"`
	Result    string `json:"result"`
}

// Send implements provider.Sender.
func (a *Alerter) Send(ctx context.Context, req *alert.Request) (*alert.Response, error) {
	if !a.IsAvailable() {
		return nil, provider.NotConfigured(ProviderID)
	}

	payload := a.buildPayload(req)
	headers := map[string]string{"Authorization": "GenieKey " + a.apiKey}
	start := time.Now()

	var body []byte
	err := a.retry.Do(ctx, func(ctx context.Context) error {
		b, err := provider.PostJSON(ctx, ProviderID, a.client, a.apiURL+"/v2/alerts", headers, payload)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	var ar alertResponse
	if err := json.Unmarshal(body, &ar); err != nil || ar.RequestID == "" {
		return nil, &provider.Error{
			Provider: ProviderID,
			Code:     provider.CodeHTTP,
			Message:  "alert not accepted: " + string(body),
		}
	}

	return &alert.Response{
		ProviderID:      ProviderID,
		Success:         true,
		ProviderAlertID: ar.RequestID,
		SentAt:          start,
		DurationMs:      time.Since(start).Milliseconds(),
	}, nil
}

func (a *Alerter) buildPayload(req *alert.Request) map[string]any {
	details := make(map[string]string, len(req.Context))
	for k, v := range req.Context {
		details[k] = v
	}

	tags := []string{string(req.Source), string(req.Severity)}
	if tenant := req.Context["tenant"]; tenant != "" {
		tags = append(tags, "tenant:"+tenant)
	}

	payload := map[string]any{
		"message":     "[" + strings.ToUpper(string(req.Severity)) + "] " + req.Title,
		"alias":       req.DedupKey(),
		"description": req.Message,
		"tags":        tags,
		"details":     details,
		"source":      string(req.Source),
		"priority":    priority(req.Severity),
	}
	if a.team != "" {
		payload["responders"] = []map[string]string{{"type": "team", "name": a.team}}
	}
	return payload
}

// priority pins the 3-level scheme onto Opsgenie's P1..P4 range:
// critical to the highest, warning to the middle, info to the lowest.
// No intermediate priorities are ever produced.
func priority(s alert.Severity) string {
	switch s {
	case alert.SeverityCritical:
		return "P1"
	case alert.SeverityWarning:
		return "P3"
	default:
		return "P4"
	}
}
