package database

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRateLimitRepo_Hit(t *testing.T) {
	db := openTestDB(t)
	repo := NewRateLimitRepo(db)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		allowed, err := repo.Hit("10.0.0.1", "login", 5, 5*time.Minute, now)
		if err != nil {
			t.Fatalf("Hit %d failed: %v", i+1, err)
		}
		if !allowed {
			t.Fatalf("Hit %d rejected, want allowed", i+1)
		}
	}

	allowed, err := repo.Hit("10.0.0.1", "login", 5, 5*time.Minute, now)
	if err != nil {
		t.Fatalf("Hit failed: %v", err)
	}
	if allowed {
		t.Error("sixth hit allowed, want rejected")
	}
}

func TestRateLimitRepo_KeyedByIPAndEndpoint(t *testing.T) {
	db := openTestDB(t)
	repo := NewRateLimitRepo(db)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if _, err := repo.Hit("10.0.0.1", "login", 3, time.Minute, now); err != nil {
			t.Fatalf("Hit failed: %v", err)
		}
	}

	if allowed, _ := repo.Hit("10.0.0.1", "login", 3, time.Minute, now); allowed {
		t.Error("over-limit hit allowed")
	}
	if allowed, _ := repo.Hit("10.0.0.2", "login", 3, time.Minute, now); !allowed {
		t.Error("other IP rejected")
	}
	if allowed, _ := repo.Hit("10.0.0.1", "api", 3, time.Minute, now); !allowed {
		t.Error("other endpoint rejected")
	}
}

func TestRateLimitRepo_WindowRollover(t *testing.T) {
	db := openTestDB(t)
	repo := NewRateLimitRepo(db)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		if _, err := repo.Hit("10.0.0.1", "login", 2, time.Minute, now); err != nil {
			t.Fatalf("Hit failed: %v", err)
		}
	}
	if allowed, _ := repo.Hit("10.0.0.1", "login", 2, time.Minute, now.Add(30*time.Second)); allowed {
		t.Error("over-limit hit within window allowed")
	}

	// The next window starts with a fresh counter
	if allowed, _ := repo.Hit("10.0.0.1", "login", 2, time.Minute, now.Add(time.Minute)); !allowed {
		t.Error("first hit of new window rejected")
	}
}

// The increment is a single conditional upsert, so concurrent hits at the
// limit can never allow more than the limit.
func TestRateLimitRepo_ConcurrentHits(t *testing.T) {
	db := openTestDB(t)
	repo := NewRateLimitRepo(db)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	const limit = 5
	const requests = 20

	var allowedCount int64
	var wg sync.WaitGroup
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, err := repo.Hit("10.0.0.1", "login", limit, time.Minute, now)
			if err != nil {
				t.Errorf("Hit failed: %v", err)
				return
			}
			if allowed {
				atomic.AddInt64(&allowedCount, 1)
			}
		}()
	}
	wg.Wait()

	if allowedCount != limit {
		t.Errorf("allowed = %d, want exactly %d", allowedCount, limit)
	}
}

func TestRateLimitRepo_DeleteBefore(t *testing.T) {
	db := openTestDB(t)
	repo := NewRateLimitRepo(db)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	repo.Hit("10.0.0.1", "login", 5, time.Minute, now.Add(-2*time.Hour))
	repo.Hit("10.0.0.1", "login", 5, time.Minute, now)

	deleted, err := repo.DeleteBefore(now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	// The current window survives the sweep
	count, err := repo.Count("10.0.0.1", "login", time.Minute, now)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}
