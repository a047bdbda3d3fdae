package router

import (
	"sync"
	"testing"
	"time"
)

func TestClaim_FirstWinsWithinCooldown(t *testing.T) {
	t.Parallel()

	c := NewDedupCache(5 * time.Minute)
	if !c.Claim("k1") {
		t.Fatal("first claim should win")
	}
	if c.Claim("k1") {
		t.Error("second claim within cooldown should lose")
	}
	if !c.Claim("k2") {
		t.Error("different key should win")
	}
}

func TestClaim_ExpiredEntryOverwritten(t *testing.T) {
	t.Parallel()

	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewDedupCache(time.Minute)
	c.now = func() time.Time { return current }

	if !c.Claim("k") {
		t.Fatal("first claim should win")
	}

	current = current.Add(30 * time.Second)
	if c.Claim("k") {
		t.Error("claim inside the window should lose")
	}

	current = current.Add(31 * time.Second)
	if !c.Claim("k") {
		t.Error("claim after expiry should win again")
	}

	// Entries are overwritten, never deleted.
	if c.Len() != 1 {
		t.Errorf("len = %d, want 1", c.Len())
	}
}

func TestClaim_ConcurrentSingleWinner(t *testing.T) {
	t.Parallel()

	c := NewDedupCache(time.Minute)

	const n = 32
	var wg sync.WaitGroup
	wins := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Claim("shared") {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	got := 0
	for range wins {
		got++
	}
	if got != 1 {
		t.Errorf("winners = %d, want exactly 1", got)
	}
}
