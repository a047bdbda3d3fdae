// Package pgstore provides a PostgreSQL implementation of evidence.Sink.
package pgstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RealRichai/alertgate/internal/evidence"
)

var tracer = otel.Tracer("github.com/RealRichai/alertgate/internal/evidence/pgstore")

//go:embed schema.sql
var schema string

// Store persists evidence records in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema and returns a ready Store. The pool's lifetime
// belongs to the caller.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Append implements evidence.Sink.
func (s *Store) Append(ctx context.Context, rec *evidence.Record) error {
	ctx, span := tracer.Start(ctx, "pgstore.Append", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "INSERT"),
	))
	defer span.End()

	details, err := json.Marshal(rec.Details)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("marshal details: %w", err)
	}

	const query = `INSERT INTO evidence_records
		(id, control_id, category, event_type, event_outcome, summary, scope, details, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = s.pool.Exec(ctx, query,
		rec.ID, rec.ControlID, rec.Category, rec.EventType, rec.EventOutcome,
		rec.Summary, rec.Scope, details, rec.OccurredAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("insert evidence record: %w", err)
	}
	return nil
}
