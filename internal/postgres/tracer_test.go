package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestOperationName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tag  string
		sql  string
		want string
	}{
		{"from tag", "INSERT 0 1", "insert into t values (1)", "INSERT"},
		{"from sql", "", "select * from t", "SELECT"},
		{"lowercase tag", "update 1", "", "UPDATE"},
		{"empty", "", "", "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := operationName(pgconn.NewCommandTag(tt.tag), tt.sql)
			if got != tt.want {
				t.Errorf("operationName(%q, %q) = %q, want %q", tt.tag, tt.sql, got, tt.want)
			}
		})
	}
}

func TestQueryObserver_SetAndClear(t *testing.T) {
	// Not parallel: exercises the package-global observer.
	var mu sync.Mutex
	var calls int

	SetQueryObserver(QueryObserverFunc(func(_ context.Context, op, outcome string, _ time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if op != "SELECT" || outcome != "ok" {
			t.Errorf("observed %s/%s", op, outcome)
		}
	}))
	t.Cleanup(func() { SetQueryObserver(nil) })

	obs := getQueryObserver()
	if obs == nil {
		t.Fatal("observer not registered")
	}
	obs.ObserveQuery(context.Background(), "SELECT", "ok", time.Millisecond)

	mu.Lock()
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	mu.Unlock()

	SetQueryObserver(nil)
	if getQueryObserver() != nil {
		t.Error("observer not cleared")
	}
}
