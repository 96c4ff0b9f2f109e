package cache

import (
	"context"
	"sync"
	"time"
)

// Mock is an in-memory Cache that ignores TTLs and records writes.
// It is safe for concurrent use.
type Mock struct {
	mu      sync.Mutex
	entries map[string][]byte

	SetCalls    []string
	DeleteCalls [][]string
}

func NewMock() *Mock {
	return &Mock{entries: make(map[string][]byte)}
}

func (m *Mock) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *Mock) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls = append(m.SetCalls, key)
	m.entries[key] = value
	return nil
}

func (m *Mock) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls = append(m.DeleteCalls, keys)
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

func (m *Mock) Ping(context.Context) error { return nil }
