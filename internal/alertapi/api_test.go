package alertapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/RealRichai/alertgate/internal/alert"
)

type fakeDispatcher struct {
	result *alert.RouterResult
	err    error
	got    *alert.Request
}

func (f *fakeDispatcher) Route(_ context.Context, req *alert.Request) (*alert.RouterResult, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestRouter(t *testing.T, d Dispatcher) chi.Router {
	t.Helper()
	api := New(nil, d)
	r := chi.NewRouter()
	api.RegisterRoutes(r)
	return r
}

func TestNewNilLogger(t *testing.T) {
	t.Parallel()

	api := New(nil, &fakeDispatcher{})
	if api.logger == nil {
		t.Fatal("expected fallback logger")
	}
}

func TestNewNilDispatcherPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for nil dispatcher")
		}
	}()
	New(nil, nil)
}

func TestDispatchAlertAccepted(t *testing.T) {
	t.Parallel()

	d := &fakeDispatcher{result: &alert.RouterResult{
		AlertID:       "alert-1",
		AllSuccessful: true,
		Responses:     []alert.Response{{ProviderID: "slack", Success: true}},
	}}
	r := newTestRouter(t, d)

	body := `{"id":"alert-1","source":"kill_switch","severity":"critical","title":"t","message":"m"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}
	var got alert.RouterResult
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.AlertID != "alert-1" {
		t.Fatalf("alert id = %q, want %q", got.AlertID, "alert-1")
	}
	if !got.AllSuccessful {
		t.Fatal("expected all_successful")
	}
}

func TestDispatchAlertMintsID(t *testing.T) {
	t.Parallel()

	d := &fakeDispatcher{result: &alert.RouterResult{AllSuccessful: true}}
	r := newTestRouter(t, d)

	body := `{"source":"system_error","severity":"info","title":"t","message":"m"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}
	if d.got == nil || d.got.ID == "" {
		t.Fatal("expected a generated alert id")
	}
}

func TestDispatchAlertInvalidJSON(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, &fakeDispatcher{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestDispatchAlertValidationFailure(t *testing.T) {
	t.Parallel()

	badReq := &alert.Request{ID: "x"}
	d := &fakeDispatcher{err: badReq.Validate()}
	r := newTestRouter(t, d)

	body := `{"id":"x"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	var got map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got["error"] == "" {
		t.Fatal("expected error message in response")
	}
}
