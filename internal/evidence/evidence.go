// Package evidence records sanitized audit entries proving an alert was
// (or was not) delivered, for compliance review. Emission is
// best-effort: failures are logged and swallowed, never surfaced to the
// dispatch path.
package evidence

import (
	"context"
	"fmt"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"

	"github.com/RealRichai/alertgate/internal/alert"
)

// Event types for dispatch outcomes.
const (
	EventDispatched   = "alert.dispatched"
	EventFailed       = "alert.failed"
	EventDeduplicated = "alert.deduplicated"
)

// emitTimeout bounds one emission, sink write included.
const emitTimeout = 5 * time.Second

// Record is one sanitized audit entry.
type Record struct {
	ID           string         `json:"id"`
	ControlID    string         `json:"control_id"`
	Category     string         `json:"category"`
	EventType    string         `json:"event_type"`
	EventOutcome string         `json:"event_outcome"`
	Summary      string         `json:"summary"`
	Scope        string         `json:"scope"`
	Details      map[string]any `json:"details"`
	OccurredAt   time.Time      `json:"occurred_at"`
}

// Sink persists evidence records.
type Sink interface {
	Append(ctx context.Context, rec *Record) error
}

// Emitter builds and records evidence for dispatch outcomes.
type Emitter struct {
	controlID string
	scope     string
	sink      Sink // nil = log only
	logger    log.Logger
	now       func() time.Time
}

// New creates an Emitter. sink may be nil, in which case records are
// only logged.
func New(controlID, scope string, sink Sink, logger log.Logger) *Emitter {
	if logger == nil {
		logger = log.Nop()
	}
	return &Emitter{
		controlID: controlID,
		scope:     scope,
		sink:      sink,
		logger:    logger,
		now:       time.Now,
	}
}

// Emit records one dispatch outcome. It never returns an error and is
// safe to call from a detached goroutine.
func (e *Emitter) Emit(ctx context.Context, req *alert.Request, result *alert.RouterResult) {
	ctx, cancel := context.WithTimeout(ctx, emitTimeout)
	defer cancel()

	rec := e.buildRecord(req, result)

	e.logger.Info(ctx, "evidence recorded",
		"evidence_id", rec.ID,
		"event_type", rec.EventType,
		"event_outcome", rec.EventOutcome,
		"alert_id", req.ID,
		"summary", rec.Summary,
	)

	if e.sink == nil {
		return
	}
	if err := e.sink.Append(ctx, rec); err != nil {
		// Best-effort: log and move on.
		e.logger.Error(ctx, err, "evidence sink append failed", "evidence_id", rec.ID)
	}
}

func (e *Emitter) buildRecord(req *alert.Request, result *alert.RouterResult) *Record {
	eventType := EventDispatched
	outcome := "success"
	switch {
	case result.Deduplicated:
		eventType = EventDeduplicated
		outcome = "deduplicated"
	case !result.AllSuccessful:
		eventType = EventFailed
		outcome = "failure"
	}

	providers := make([]string, 0, len(result.Responses))
	successes, failures := 0, 0
	for _, r := range result.Responses {
		providers = append(providers, r.ProviderID)
		if r.Success {
			successes++
		} else {
			failures++
		}
	}

	details := map[string]any{
		"alertId":      req.ID,
		"source":       string(req.Source),
		"severity":     string(req.Severity),
		"providers":    providers,
		"successCount": successes,
		"failureCount": failures,
		"deduplicated": result.Deduplicated,
	}
	if len(req.Context) > 0 {
		details["context"] = StripPIIKeys(req.Context)
	}
	if len(req.Metadata) > 0 {
		details["metadata"] = StripPIIKeys(req.Metadata)
	}

	return &Record{
		ID:           ulid.Make().String(),
		ControlID:    e.controlID,
		Category:     "Security",
		EventType:    eventType,
		EventOutcome: outcome,
		Summary:      fmt.Sprintf("%s: %s", eventType, req.Title),
		Scope:        e.scope,
		Details:      details,
		OccurredAt:   e.now().UTC(),
	}
}
