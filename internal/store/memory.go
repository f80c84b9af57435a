package store

import (
	"context"
	"sync"
)

// Memory is an in-process KV. It counts writes so callers can assert that an
// operation left the substrate untouched.
type Memory struct {
	mu     sync.Mutex
	data   map[string][]byte
	writes int
}

// NewMemory returns an empty Memory substrate.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

func (m *Memory) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	m.data[key] = stored
	m.writes++
	return nil
}

// Writes returns how many Put calls have succeeded.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
