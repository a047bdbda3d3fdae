package evidence

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/RealRichai/alertgate/internal/alert"
)

// mockSink implements Sink for testing.
type mockSink struct {
	mu        sync.Mutex
	records   []*Record
	appendErr error
}

func (m *mockSink) Append(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *mockSink) all() []*Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Record(nil), m.records...)
}

func dispatchedResult() (*alert.Request, *alert.RouterResult) {
	req := &alert.Request{
		ID:       "alrt-010",
		Source:   alert.SourceKillSwitch,
		Severity: alert.SeverityCritical,
		Title:    "Kill switch engaged",
	}
	res := &alert.RouterResult{
		AlertID: "alrt-010",
		Responses: []alert.Response{
			{ProviderID: "slack", Success: true},
			{ProviderID: "pagerduty", Success: true},
		},
		AllSuccessful: true,
	}
	return req, res
}

func TestEmit_DispatchedRecord(t *testing.T) {
	t.Parallel()

	sink := &mockSink{}
	e := New("CTL-ALERT-01", "platform", sink, log.Nop())

	req, res := dispatchedResult()
	e.Emit(context.Background(), req, res)

	recs := sink.all()
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	rec := recs[0]
	if rec.EventType != EventDispatched || rec.EventOutcome != "success" {
		t.Errorf("event = %s/%s, want dispatched/success", rec.EventType, rec.EventOutcome)
	}
	if rec.ControlID != "CTL-ALERT-01" || rec.Category != "Security" || rec.Scope != "platform" {
		t.Errorf("record envelope = %+v", rec)
	}
	if rec.ID == "" {
		t.Error("record id should be minted")
	}

	wantProviders := []string{"slack", "pagerduty"}
	if !reflect.DeepEqual(rec.Details["providers"], wantProviders) {
		t.Errorf("providers = %v, want %v", rec.Details["providers"], wantProviders)
	}
	if rec.Details["successCount"] != 2 || rec.Details["failureCount"] != 0 {
		t.Errorf("counts = %v/%v", rec.Details["successCount"], rec.Details["failureCount"])
	}
}

func TestEmit_FailureAndDedupOutcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		result      *alert.RouterResult
		wantType    string
		wantOutcome string
	}{
		{
			"partial failure",
			&alert.RouterResult{Responses: []alert.Response{
				{ProviderID: "slack", Success: true},
				{ProviderID: "opsgenie", Success: false, Error: "boom"},
			}},
			EventFailed, "failure",
		},
		{
			"deduplicated",
			&alert.RouterResult{Deduplicated: true, AllSuccessful: true},
			EventDeduplicated, "deduplicated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sink := &mockSink{}
			e := New("CTL", "platform", sink, log.Nop())
			req, _ := dispatchedResult()
			e.Emit(context.Background(), req, tt.result)

			recs := sink.all()
			if len(recs) != 1 {
				t.Fatalf("records = %d, want 1", len(recs))
			}
			if recs[0].EventType != tt.wantType || recs[0].EventOutcome != tt.wantOutcome {
				t.Errorf("event = %s/%s, want %s/%s",
					recs[0].EventType, recs[0].EventOutcome, tt.wantType, tt.wantOutcome)
			}
		})
	}
}

func TestEmit_StripsPIIKeysFromDetails(t *testing.T) {
	t.Parallel()

	sink := &mockSink{}
	e := New("CTL", "platform", sink, log.Nop())

	req, res := dispatchedResult()
	req.Context = map[string]string{"tenant": "acme", "email": "leak@example.com"}
	req.Metadata = map[string]any{
		"requestId": "req-1",
		"applicant": map[string]any{
			"ssn":        "123-45-6789",
			"ip_address": "10.0.0.1",
			"market":     "austin",
		},
	}

	e.Emit(context.Background(), req, res)

	rec := sink.all()[0]
	ctxDetails := rec.Details["context"].(map[string]string)
	if _, ok := ctxDetails["email"]; ok {
		t.Error("email key survived sanitization")
	}
	if ctxDetails["tenant"] != "acme" {
		t.Error("non-PII context key was dropped")
	}

	meta := rec.Details["metadata"].(map[string]any)
	applicant := meta["applicant"].(map[string]any)
	if _, ok := applicant["ssn"]; ok {
		t.Error("nested ssn key survived sanitization")
	}
	if _, ok := applicant["ip_address"]; ok {
		t.Error("nested ip_address key survived sanitization")
	}
	if applicant["market"] != "austin" {
		t.Error("nested non-PII key was dropped")
	}
}

func TestEmit_SinkFailureSwallowed(t *testing.T) {
	t.Parallel()

	sink := &mockSink{appendErr: errors.New("db down")}
	e := New("CTL", "platform", sink, log.Nop())

	req, res := dispatchedResult()
	done := make(chan struct{})
	go func() {
		defer close(done)
		e.Emit(context.Background(), req, res)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit did not return despite sink failure")
	}
}

func TestEmit_NilSinkLogsOnly(t *testing.T) {
	t.Parallel()

	e := New("CTL", "platform", nil, log.Nop())
	req, res := dispatchedResult()
	e.Emit(context.Background(), req, res) // must not panic
}

func TestStripPIIKeys_Variants(t *testing.T) {
	t.Parallel()

	in := map[string]any{
		"creditCard":  "4111111111111111",
		"CREDIT-CARD": "4111111111111111",
		"api_key":     "xyz",
		"items": []any{
			map[string]any{"password": "p", "kept": 1},
		},
		"kept": "v",
	}

	out := StripPIIKeys(in).(map[string]any)
	for _, k := range []string{"creditCard", "CREDIT-CARD", "api_key"} {
		if _, ok := out[k]; ok {
			t.Errorf("key %q survived", k)
		}
	}
	item := out["items"].([]any)[0].(map[string]any)
	if _, ok := item["password"]; ok {
		t.Error("password inside slice survived")
	}
	if item["kept"] != 1 || out["kept"] != "v" {
		t.Error("allowed keys were dropped")
	}
}
