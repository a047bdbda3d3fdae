// Package alert defines the canonical alert model shared by the router,
// the provider adapters, and the evidence emitter.
package alert

import (
	"errors"
	"fmt"
	"time"
)

const (
	// MaxTitleLen bounds Request.Title.
	MaxTitleLen = 200

	// MaxMessageLen bounds Request.Message.
	MaxMessageLen = 4000
)

// Severity is the urgency level of an alert.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is one of the enumerated severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return true
	}
	return false
}

// Source identifies the subsystem that raised an alert.
type Source string

const (
	SourceKillSwitch        Source = "kill_switch"
	SourcePolicyViolation   Source = "policy_violation"
	SourceDLQGrowth         Source = "dlq_growth"
	SourceComplianceFailure Source = "compliance_failure"
	SourceQueueHealth       Source = "queue_health"
	SourceCostThreshold     Source = "cost_threshold"
	SourceSystemError       Source = "system_error"
)

// Valid reports whether s is one of the enumerated sources.
func (s Source) Valid() bool {
	switch s {
	case SourceKillSwitch, SourcePolicyViolation, SourceDLQGrowth,
		SourceComplianceFailure, SourceQueueHealth, SourceCostThreshold,
		SourceSystemError:
		return true
	}
	return false
}

// Request is a canonical alert submitted for dispatch.
type Request struct {
	ID               string            `json:"id"`
	Source           Source            `json:"source"`
	Severity         Severity          `json:"severity"`
	Title            string            `json:"title"`
	Message          string            `json:"message"`
	Context          map[string]string `json:"context,omitempty"`
	TargetProviders  []string          `json:"target_providers,omitempty"`
	DeduplicationKey string            `json:"deduplication_key,omitempty"`
	Timestamp        time.Time         `json:"timestamp,omitempty"`
	Metadata         map[string]any    `json:"metadata,omitempty"`
}

// DedupKey returns the effective deduplication key (explicit key or ID).
func (r *Request) DedupKey() string {
	if r.DeduplicationKey != "" {
		return r.DeduplicationKey
	}
	return r.ID
}

// Validate checks the request against the dispatch contract. Invalid
// requests are rejected before any provider is touched.
func (r *Request) Validate() error {
	var errs []error

	if r.ID == "" {
		errs = append(errs, errors.New("alert id is required"))
	}
	if !r.Source.Valid() {
		errs = append(errs, fmt.Errorf("invalid source %q", r.Source))
	}
	if !r.Severity.Valid() {
		errs = append(errs, fmt.Errorf("invalid severity %q", r.Severity))
	}
	if r.Title == "" {
		errs = append(errs, errors.New("title is required"))
	}
	if len(r.Title) > MaxTitleLen {
		errs = append(errs, fmt.Errorf("title length %d exceeds %d", len(r.Title), MaxTitleLen))
	}
	if len(r.Message) > MaxMessageLen {
		errs = append(errs, fmt.Errorf("message length %d exceeds %d", len(r.Message), MaxMessageLen))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Response is the outcome of one provider attempt. Immutable once created.
type Response struct {
	ProviderID      string    `json:"provider_id"`
	Success         bool      `json:"success"`
	ProviderAlertID string    `json:"provider_alert_id,omitempty"`
	Error           string    `json:"error,omitempty"`
	SentAt          time.Time `json:"sent_at"`
	DurationMs      int64     `json:"duration_ms"`
}

// RouterResult aggregates one Route call. Created once, never mutated
// after being returned to the caller.
type RouterResult struct {
	AlertID          string     `json:"alert_id"`
	Responses        []Response `json:"responses"`
	AllSuccessful    bool       `json:"all_successful"`
	Deduplicated     bool       `json:"deduplicated"`
	EvidenceRecorded bool       `json:"evidence_recorded"`
}
