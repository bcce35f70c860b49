package keyvalue

import (
	"context"
	"sync"
)

// Memory is an in-process Storage backed by a map.
// It is safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemory creates an empty in-memory storage.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, false, ErrClosed
	}

	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// GetMany returns copies of the present keys under a single lock acquisition.
func (m *Memory) GetMany(_ context.Context, keys ...string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	out := make(map[string][]byte, len(keys))
	for _, key := range keys {
		v, ok := m.data[key]
		if !ok {
			continue
		}
		c := make([]byte, len(v))
		copy(c, v)
		out[key] = c
	}
	return out, nil
}

// Apply performs the batch under a single lock acquisition.
func (m *Memory) Apply(_ context.Context, batch *Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	for _, o := range batch.ops {
		switch o.kind {
		case opPut:
			m.data[o.key] = o.value
		case opDelete:
			delete(m.data, o.key)
		}
	}
	return nil
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Close marks the storage as closed. Stored values are discarded.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}
