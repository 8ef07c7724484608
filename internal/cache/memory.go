package cache

import (
	"context"
	"slices"
	"sync"
)

type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]Entry),
	}
}

func (m *MemoryCache) Get(ctx context.Context, key string) (*Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	e.Records = slices.Clone(e.Records)
	return &e, true, nil
}

func (m *MemoryCache) Set(ctx context.Context, key string, entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = Entry{
		Records:   slices.Clone(entry.Records),
		Timestamp: entry.Timestamp,
	}
	return nil
}

func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
