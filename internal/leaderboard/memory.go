package leaderboard

import (
	"context"
	"sync"
)

// memory keeps entries in a map and sorts on read.
type memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryStore returns a process-local Store.
func NewMemoryStore() Store {
	return &memory{entries: make(map[string]Entry)}
}

func (m *memory) Get(ctx context.Context, key string) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	return e, ok, nil
}

func (m *memory) Set(ctx context.Context, key string, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = e
	return nil
}

func (m *memory) Top(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = DefaultSize
	}
	m.mu.RLock()
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	m.mu.RUnlock()

	sortEntries(out)
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}
