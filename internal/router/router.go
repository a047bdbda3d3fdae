// Package router owns alert dispatch: severity routing policy, the
// dedup cooldown cache, and concurrent fan-out to provider adapters.
package router

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/RealRichai/alertgate/internal/alert"
	"github.com/RealRichai/alertgate/internal/provider"
	"github.com/RealRichai/alertgate/internal/redact"
)

// Emitter records a sanitized audit trail of dispatch outcomes.
// Emission is best-effort: implementations log failures and never
// return them.
type Emitter interface {
	Emit(ctx context.Context, req *alert.Request, result *alert.RouterResult)
}

// DefaultRoutingTable maps severity to target providers when the
// request carries no explicit override.
func DefaultRoutingTable() map[alert.Severity][]string {
	return map[alert.Severity][]string{
		alert.SeverityInfo:     {"slack"},
		alert.SeverityWarning:  {"slack", "opsgenie"},
		alert.SeverityCritical: {"slack", "pagerduty", "opsgenie"},
	}
}

// Router fans alerts out to the configured providers.
type Router struct {
	providers map[string]provider.Sender
	order     []string
	cache     *DedupCache
	table     map[alert.Severity][]string
	redactor  *redact.Redactor
	emitter   Emitter
	logger    log.Logger
	metrics   *Metrics
	now       func() time.Time
}

// New creates a Router over the given providers. cache is required;
// emitter may be nil to disable evidence emission; metrics may be nil.
func New(providers []provider.Sender, cache *DedupCache, emitter Emitter, logger log.Logger, m *Metrics) *Router {
	if logger == nil {
		logger = log.Nop()
	}
	r := &Router{
		providers: make(map[string]provider.Sender, len(providers)),
		cache:     cache,
		table:     DefaultRoutingTable(),
		redactor:  redact.New(redact.AllCategories()),
		emitter:   emitter,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
	for _, p := range providers {
		r.providers[p.ID()] = p
		r.order = append(r.order, p.ID())
	}
	return r
}

// Route validates the alert, applies deduplication, and dispatches to
// the selected providers concurrently. It returns an error only for
// request-validation failures; provider failures are captured in the
// per-provider responses.
func (r *Router) Route(ctx context.Context, req *alert.Request) (*alert.RouterResult, error) {
	if err := req.Validate(); err != nil {
		r.countRoute("rejected")
		return nil, fmt.Errorf("invalid alert request: %w", err)
	}

	// Normalize on a copy so the caller's request is never mutated.
	a := *req
	if a.Timestamp.IsZero() {
		a.Timestamp = r.now()
	}

	L := r.logger.With("alert_id", a.ID, "source", a.Source, "severity", a.Severity)

	// Redact before the dedup check so raw PII never crosses the provider
	// boundary and never reaches an evidence record, deduplicated or not.
	// Only totals are logged; redacted values stay out of the log stream.
	if n := r.redactRequest(&a); n > 0 {
		L.Info(ctx, "alert content redacted", "redactions", n)
	}

	// Claim the cooldown before dispatch so a concurrent second call for
	// the same key is deduplicated instead of double-sending.
	if !r.cache.Claim(a.DedupKey()) {
		L.Info(ctx, "alert deduplicated", "dedup_key", a.DedupKey())
		r.countRoute("deduplicated")
		result := &alert.RouterResult{
			AlertID:       a.ID,
			Responses:     []alert.Response{},
			AllSuccessful: true,
			Deduplicated:  true,
		}
		r.emit(ctx, &a, result)
		return result, nil
	}

	targets := r.selectTargets(&a)
	if r.metrics != nil {
		r.metrics.FanoutSize.Observe(float64(len(targets)))
	}

	// Fan-out/fan-in: every target runs concurrently and the slowest
	// branch bounds completion. First success does not cancel siblings.
	responses := make([]alert.Response, len(targets))
	var wg sync.WaitGroup
	for i, p := range targets {
		wg.Add(1)
		go func(i int, p provider.Sender) {
			defer wg.Done()
			responses[i] = r.dispatch(ctx, p, &a)
		}(i, p)
	}
	wg.Wait()

	allOK := true
	for _, resp := range responses {
		if !resp.Success {
			allOK = false
		}
	}

	result := &alert.RouterResult{
		AlertID:       a.ID,
		Responses:     responses,
		AllSuccessful: allOK,
	}

	L.Info(ctx, "alert dispatched",
		"providers", len(targets),
		"all_successful", allOK,
	)
	r.countRoute("dispatched")
	r.emit(ctx, &a, result)
	return result, nil
}

// redactRequest rewrites the alert's title, message and context values
// in place (on the router's private copy) and returns the total number
// of redactions applied.
func (r *Router) redactRequest(a *alert.Request) int {
	total := 0

	var rep *redact.Report
	a.Title, rep = r.redactor.Redact(a.Title)
	total += rep.TotalRedactions
	a.Message, rep = r.redactor.Redact(a.Message)
	total += rep.TotalRedactions

	if len(a.Context) > 0 {
		clean := make(map[string]string, len(a.Context))
		for k, v := range a.Context {
			clean[k], rep = r.redactor.Redact(v)
			total += rep.TotalRedactions
		}
		a.Context = clean
	}
	return total
}

// selectTargets resolves the provider set for one alert: the explicit
// targetProviders override when present, the severity routing table
// otherwise. Unknown entries and disabled providers are silently
// skipped, not counted as failures.
func (r *Router) selectTargets(a *alert.Request) []provider.Sender {
	ids := a.TargetProviders
	if len(ids) == 0 {
		ids = r.table[a.Severity]
	}

	targets := make([]provider.Sender, 0, len(ids))
	for _, id := range ids {
		p, ok := r.providers[id]
		if !ok || !p.IsAvailable() {
			continue
		}
		targets = append(targets, p)
	}
	return targets
}

// dispatch sends to one provider, converting any error into a failed
// response. Provider errors never propagate past this boundary.
func (r *Router) dispatch(ctx context.Context, p provider.Sender, a *alert.Request) alert.Response {
	start := r.now()
	resp, err := p.Send(ctx, a)
	elapsed := r.now().Sub(start)

	outcome := "success"
	if err != nil {
		outcome = "failure"
		r.logger.Warn(ctx, "provider send failed",
			"alert_id", a.ID,
			"provider", p.ID(),
			"error", err.Error(),
		)
		resp = &alert.Response{
			ProviderID: p.ID(),
			Success:    false,
			Error:      err.Error(),
			SentAt:     start,
			DurationMs: elapsed.Milliseconds(),
		}
	}

	if r.metrics != nil {
		r.metrics.ProviderSendsTotal.WithLabelValues(p.ID(), outcome).Inc()
		r.metrics.SendDuration.WithLabelValues(p.ID()).Observe(elapsed.Seconds())
	}
	return *resp
}

// emit hands the outcome to the evidence emitter on a detached
// goroutine. Evidence is best-effort and must never fail or delay the
// route call.
func (r *Router) emit(ctx context.Context, a *alert.Request, result *alert.RouterResult) {
	if r.emitter == nil {
		return
	}
	result.EvidenceRecorded = true
	go r.emitter.Emit(context.WithoutCancel(ctx), a, result)
}

func (r *Router) countRoute(outcome string) {
	if r.metrics != nil {
		r.metrics.RoutesTotal.WithLabelValues(outcome).Inc()
	}
}
