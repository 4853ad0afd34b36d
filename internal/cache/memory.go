package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is a process-local Cache. Values are copied on the way in and out
// so callers cannot mutate stored entries.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	opts    options
}

// NewMemory creates an empty in-memory cache.
func NewMemory(opts ...Option) *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		opts:    applyOptions(opts),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || m.expired(e) {
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.entries[key] = memoryEntry{
		value:     append([]byte(nil), value...),
		expiresAt: m.opts.expiry(),
	}
	m.mu.Unlock()
	return nil
}

// PurgeExpired removes expired entries and returns how many were dropped.
func (m *Memory) PurgeExpired(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, e := range m.entries {
		if m.expired(e) {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !m.opts.now().Before(e.expiresAt)
}
