package advicecache

import (
	"context"
	"sync"
	"time"

	"github.com/epilog/epilog-api/internal/domain/advisor"
)

type cachedAdvice struct {
	payload   advisor.AdviceResult
	expiresAt time.Time
}

// MemoryStore is an in-memory advice cache for tests/dev.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]cachedAdvice
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]cachedAdvice)}
}

// Get implements advisor.Cache.
func (s *MemoryStore) Get(_ context.Context, key string) (advisor.AdviceResult, bool, error) {
	if key == "" {
		return advisor.AdviceResult{}, false, nil
	}
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return advisor.AdviceResult{}, false, nil
	}
	if hasExpired(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return advisor.AdviceResult{}, false, nil
	}
	return entry.payload, true, nil
}

// Put caches the result with optional TTL.
func (s *MemoryStore) Put(_ context.Context, key string, result advisor.AdviceResult, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.entries[key] = cachedAdvice{
		payload:   result,
		expiresAt: exp,
	}
	return nil
}

func hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(time.Now())
}

var _ advisor.Cache = (*MemoryStore)(nil)
