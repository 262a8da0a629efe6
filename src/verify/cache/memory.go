package cache

import (
	"context"
	"sync"
	"time"

	"github.com/truthlens/factwave/src/verify/types"
)

// MemoryStore is a process-local Store for development and tests. Entries
// are evicted lazily on read.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	record    types.VerificationRecord
	expiresAt time.Time
}

func NewMemory() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*types.VerificationRecord, bool) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false
	}
	record := entry.record
	return &record, true
}

func (s *MemoryStore) Set(_ context.Context, key string, record *types.VerificationRecord, ttl time.Duration) {
	if record == nil {
		return
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s.mu.Lock()
	s.entries[key] = memoryEntry{record: *record, expiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()
}
