package marker

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process Store for tests and emulation.
type Memory struct {
	mu   sync.Mutex
	keys map[string]bool

	// Err, if set, is returned by every operation.
	Err error
}

// NewMemory returns a store holding the given markers.
func NewMemory(keys ...string) *Memory {
	m := &Memory{keys: make(map[string]bool)}
	for _, k := range keys {
		m.keys[k] = true
	}
	return m
}

// Exists reports whether key is held.
func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	if err := checkKey(key); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	return m.keys[key], nil
}

// Create adds key.
func (m *Memory) Create(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.keys[key] = true
	return nil
}

// Remove drops key.
func (m *Memory) Remove(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.keys, key)
	return nil
}

// Keys returns the held markers, sorted.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.keys))
	for k := range m.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
