// Package alertapi exposes alert dispatch over HTTP for the platform's
// event producers (kill-switch monitor, policy engine, queue-health
// checker) that run out of process.
package alertapi

import (
	"context"
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"
	"github.com/oklog/ulid/v2"

	"github.com/RealRichai/alertgate/internal/alert"
)

// Dispatcher defines the routing operation the API needs.
type Dispatcher interface {
	Route(ctx context.Context, req *alert.Request) (*alert.RouterResult, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger     log.Logger
	dispatcher Dispatcher
}

// New creates a new API handler.
func New(logger log.Logger, dispatcher Dispatcher) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if dispatcher == nil {
		panic(xerrors.New("dispatcher is required"))
	}
	return &API{
		logger:     logger,
		dispatcher: dispatcher,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/alerts", a.handleDispatchAlert)
	})
}

func (a *API) handleDispatchAlert(w http.ResponseWriter, r *http.Request) {
	var req alert.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}

	// Producers may omit the id; mint one so dedup-by-id still works.
	if req.ID == "" {
		req.ID = ulid.Make().String()
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("alertgate.alert.id", req.ID),
		attribute.String("alertgate.alert.severity", string(req.Severity)),
	)

	result, err := a.dispatcher.Route(r.Context(), &req)
	if err != nil {
		// Route fails only on request validation.
		a.logger.Warn(r.Context(), "alert rejected", "alert_id", req.ID, "error", err.Error())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	span.SetAttributes(
		attribute.Bool("alertgate.alert.deduplicated", result.Deduplicated),
		attribute.Bool("alertgate.alert.all_successful", result.AllSuccessful),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(result)
}
