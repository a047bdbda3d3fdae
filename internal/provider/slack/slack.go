// Package slack delivers alerts to a Slack-compatible incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/RealRichai/alertgate/internal/alert"
	"github.com/RealRichai/alertgate/internal/provider"
)

// ProviderID is the routing identifier for the chat webhook provider.
const ProviderID = "slack"

const maxTextLen = 3000

// Notifier posts alerts to a Slack incoming webhook.
type Notifier struct {
	webhookURL string
	channel    string
	username   string
	enabled    bool
	client     *http.Client
	retry      provider.Retryer
}

// New creates a Slack notifier. An empty webhookURL leaves the provider
// unconfigured: IsAvailable reports false and Send fails fast.
func New(webhookURL, channel string, cfg provider.Config) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		channel:    channel,
		username:   "alertgate",
		enabled:    cfg.Enabled,
		client:     provider.NewHTTPClient(cfg.Timeout()),
		retry:      provider.Retryer{Attempts: cfg.Attempts()},
	}
}

// ID implements provider.Sender.
func (n *Notifier) ID() string { return ProviderID }

// IsAvailable implements provider.Sender.
func (n *Notifier) IsAvailable() bool {
	return n.enabled && n.webhookURL != ""
}

// ValidateCredentials implements provider.Sender. Incoming webhooks have
// no validation endpoint, so this reports the configured state.
func (n *Notifier) ValidateCredentials(_ context.Context) (bool, error) {
	return n.IsAvailable(), nil
}

// Send implements provider.Sender.
func (n *Notifier) Send(ctx context.Context, req *alert.Request) (*alert.Response, error) {
	if !n.IsAvailable() {
		return nil, provider.NotConfigured(ProviderID)
	}

	payload := n.buildPayload(req)
	start := time.Now()

	var body []byte
	err := n.retry.Do(ctx, func(ctx context.Context) error {
		b, err := provider.PostJSON(ctx, ProviderID, n.client, n.webhookURL, nil, payload)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !webhookAccepted(body) {
		return nil, &provider.Error{
			Provider: ProviderID,
			Code:     provider.CodeHTTP,
			Message:  "webhook did not acknowledge: " + string(body),
		}
	}

	return &alert.Response{
		ProviderID: ProviderID,
		Success:    true,
		SentAt:     start,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

// webhookAccepted checks for the literal "ok" body or {"ok":true}.
func webhookAccepted(body []byte) bool {
	if string(bytes.TrimSpace(body)) == "ok" {
		return true
	}
	var r struct {
		OK bool `json:"ok"`
	}
	return json.Unmarshal(body, &r) == nil && r.OK
}

func (n *Notifier) buildPayload(req *alert.Request) map[string]any {
	ts := req.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	return map[string]any{
		"username":   n.username,
		"icon_emoji": severityEmoji(req.Severity),
		"channel":    n.channel,
		"attachments": []map[string]any{{
			"color":  severityColor(req.Severity),
			"title":  req.Title,
			"text":   truncate(req.Message, maxTextLen),
			"fields": contextFields(req),
			"footer": string(req.Source),
			"ts":     ts.Unix(),
		}},
	}
}

func contextFields(req *alert.Request) []map[string]any {
	fields := []map[string]any{
		{"title": "Severity", "value": string(req.Severity), "short": true},
		{"title": "Source", "value": string(req.Source), "short": true},
	}

	keys := make([]string, 0, len(req.Context))
	for k := range req.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, map[string]any{"title": k, "value": req.Context[k], "short": true})
	}
	return fields
}

func severityColor(s alert.Severity) string {
	switch s {
	case alert.SeverityCritical:
		return "#ff0000"
	case alert.SeverityWarning:
		return "#ff9900"
	default:
		return "#0099ff"
	}
}

func severityEmoji(s alert.Severity) string {
	switch s {
	case alert.SeverityCritical:
		return ":rotating_light:"
	case alert.SeverityWarning:
		return ":warning:"
	default:
		return ":information_source:"
	}
}

// truncate caps s at limit bytes, backing up to a rune boundary so a
// multi-byte character is never split across the cut.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
