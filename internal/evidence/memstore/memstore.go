// Package memstore provides an in-memory implementation of
// evidence.Sink. Suitable for dev/testing.
package memstore

import (
	"context"
	"sync"

	"github.com/RealRichai/alertgate/internal/evidence"
)

const defaultCapacity = 1000

// Store keeps the most recent evidence records in memory.
type Store struct {
	mu      sync.RWMutex
	records []*evidence.Record
	cap     int
}

// New initializes a new in-memory Store bounded to the default capacity.
func New() *Store {
	return &Store{cap: defaultCapacity}
}

// Append stores a copy of the record, evicting the oldest entries once
// the capacity is reached.
func (s *Store) Append(_ context.Context, rec *evidence.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.records = append(s.records, &cp)
	if len(s.records) > s.cap {
		s.records = s.records[len(s.records)-s.cap:]
	}
	return nil
}

// Recent returns up to n of the newest records, newest first. Copies.
func (s *Store) Recent(n int) []*evidence.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > len(s.records) {
		n = len(s.records)
	}
	out := make([]*evidence.Record, 0, n)
	for i := len(s.records) - 1; i >= len(s.records)-n; i-- {
		cp := *s.records[i]
		out = append(out, &cp)
	}
	return out
}
