package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type heldLock struct {
	token   string
	expires time.Time
}

// memoryLocker is the single-instance Locker used when Redis is unavailable.
type memoryLocker struct {
	mu    sync.Mutex
	held  map[string]heldLock
	clock func() time.Time
}

func NewMemoryLocker() Locker {
	return &memoryLocker{held: make(map[string]heldLock), clock: time.Now}
}

func (l *memoryLocker) TryLock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if h, ok := l.held[key]; ok && now.Before(h.expires) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.held[key] = heldLock{token: token, expires: now.Add(ttl)}
	return token, true, nil
}

func (l *memoryLocker) Unlock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if h, ok := l.held[key]; ok && h.token == token {
		delete(l.held, key)
	}
	return nil
}
