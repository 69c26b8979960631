package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// maxMemorySessions bounds a single-instance store; the least recently used
// shopper loses their cart first.
const maxMemorySessions = 10000

// MemoryStore keeps sessions in process memory; sessions are lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries *lru.Cache[string, memoryEntry]
	now     func() time.Time
}

type memoryEntry struct {
	data      *Data
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	entries, err := lru.New[string, memoryEntry](maxMemorySessions)
	if err != nil {
		// Only a non-positive size fails.
		panic(err)
	}
	return &MemoryStore{entries: entries, now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Data, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries.Get(key)
	if !ok {
		return nil, false
	}
	if s.now().After(entry.expiresAt) {
		s.entries.Remove(key)
		return nil, false
	}
	return cloneData(entry.data), true
}

func (s *MemoryStore) Set(_ context.Context, key string, data *Data, ttl time.Duration) error {
	if key == "" || data == nil {
		return fmt.Errorf("session key and data are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries.Add(key, memoryEntry{data: cloneData(data), expiresAt: s.now().Add(ttl)})
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries.Remove(key)
}

func (s *MemoryStore) Close() error {
	s.entries.Purge()
	return nil
}
