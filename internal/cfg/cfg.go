package cfg

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/RealRichai/alertgate/internal/provider"
)

// Config adds service-specific configuration fields to the
// common cfg.Registerable and cfg.Validatable interfaces
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	APIToken              string

	SlackWebhookURL string
	SlackChannel    string
	SlackEnabled    bool

	PagerDutyRoutingKey string
	PagerDutyEventsURL  string
	PagerDutyEnabled    bool

	OpsgenieAPIKey  string
	OpsgenieAPIURL  string
	OpsgenieTeam    string
	OpsgenieEnabled bool

	CooldownSeconds int
	RetryAttempts   int
	TimeoutMs       int

	DatabaseURL       string
	EvidenceControlID string
	EvidenceScope     string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.APIToken, "api-token", "", "bearer token required on the alert ingest endpoint")
	fs.StringVar(&c.SlackWebhookURL, "slack-webhook-url", "", "Slack incoming-webhook URL (empty = provider disabled)")
	fs.StringVar(&c.SlackChannel, "slack-channel", "", "Slack channel override for webhook posts")
	fs.BoolVar(&c.SlackEnabled, "slack-enabled", true, "enable the Slack provider")
	fs.StringVar(&c.PagerDutyRoutingKey, "pagerduty-routing-key", "", "PagerDuty Events v2 routing key (empty = provider disabled)")
	fs.StringVar(&c.PagerDutyEventsURL, "pagerduty-events-url", "", "PagerDuty Events v2 endpoint override (empty = public endpoint)")
	fs.BoolVar(&c.PagerDutyEnabled, "pagerduty-enabled", true, "enable the PagerDuty provider")
	fs.StringVar(&c.OpsgenieAPIKey, "opsgenie-api-key", "", "Opsgenie API key (empty = provider disabled)")
	fs.StringVar(&c.OpsgenieAPIURL, "opsgenie-api-url", "", "Opsgenie API base URL override (empty = public endpoint)")
	fs.StringVar(&c.OpsgenieTeam, "opsgenie-team", "", "Opsgenie responder team name")
	fs.BoolVar(&c.OpsgenieEnabled, "opsgenie-enabled", true, "enable the Opsgenie provider")
	fs.IntVar(&c.CooldownSeconds, "cooldown-seconds", 300, "deduplication cooldown window in seconds (1..86400)")
	fs.IntVar(&c.RetryAttempts, "retry-attempts", provider.DefaultRetryAttempts, "retry attempts per provider send, 0 disables retries (0..10)")
	fs.IntVar(&c.TimeoutMs, "timeout-ms", int(provider.DefaultTimeout/time.Millisecond), "per-provider HTTP timeout in milliseconds (1..120000)")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection URL for evidence records (empty = in-memory store)")
	fs.StringVar(&c.EvidenceControlID, "evidence-control-id", "CC8.1", "control identifier stamped on evidence records")
	fs.StringVar(&c.EvidenceScope, "evidence-scope", "platform", "scope stamped on evidence records")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	// Ingest endpoint is useless without a token
	if c.APIToken == "" {
		errs = append(errs, errors.New("API_TOKEN is required"))
	}

	if c.CooldownSeconds <= 0 || c.CooldownSeconds > 86400 {
		errs = append(errs, fmt.Errorf("invalid COOLDOWN_SECONDS %d (must be 1..86400)", c.CooldownSeconds))
	}
	if c.RetryAttempts < 0 || c.RetryAttempts > 10 {
		errs = append(errs, fmt.Errorf("invalid RETRY_ATTEMPTS %d (must be 0..10)", c.RetryAttempts))
	}
	if c.TimeoutMs <= 0 || c.TimeoutMs > 120000 {
		errs = append(errs, fmt.Errorf("invalid TIMEOUT_MS %d (must be 1..120000)", c.TimeoutMs))
	}

	// At least one provider must be usable or every alert fails
	slackOK := c.SlackEnabled && c.SlackWebhookURL != ""
	pagerdutyOK := c.PagerDutyEnabled && c.PagerDutyRoutingKey != ""
	opsgenieOK := c.OpsgenieEnabled && c.OpsgenieAPIKey != ""
	if !slackOK && !pagerdutyOK && !opsgenieOK {
		errs = append(errs, errors.New("NO_PROVIDER_CONFIGURED: at least one of Slack, PagerDuty, Opsgenie must be enabled with credentials"))
	}

	if c.EvidenceControlID == "" {
		errs = append(errs, errors.New("EVIDENCE_CONTROL_ID is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
