package service

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLockerExpiredHolderCannotReleaseSuccessor(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	l := &memoryLocker{held: make(map[string]heldLock), clock: func() time.Time { return now }}
	ctx := context.Background()

	first, ok, _ := l.TryLock(ctx, "lead:convert:a", 30*time.Second)
	if !ok {
		t.Fatal("first TryLock: got false, want true")
	}
	if _, ok, _ := l.TryLock(ctx, "lead:convert:a", 30*time.Second); ok {
		t.Fatal("second TryLock while held: got true, want false")
	}

	now = now.Add(time.Minute)
	second, ok, _ := l.TryLock(ctx, "lead:convert:a", 30*time.Second)
	if !ok {
		t.Fatal("TryLock after expiry: got false, want true")
	}

	// The first holder finishes late; its release must not free the key.
	if err := l.Unlock(ctx, "lead:convert:a", first); err != nil {
		t.Fatalf("Unlock stale: %v", err)
	}
	if _, ok, _ := l.TryLock(ctx, "lead:convert:a", 30*time.Second); ok {
		t.Fatal("stale Unlock released the new holder's lock")
	}

	if err := l.Unlock(ctx, "lead:convert:a", second); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if _, ok, _ := l.TryLock(ctx, "lead:convert:a", 30*time.Second); !ok {
		t.Fatal("TryLock after release: got false, want true")
	}
}
