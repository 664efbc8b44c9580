package tokenstore

import (
	"context"
	"sync"
)

// Memory is an in-process Store. It does not survive a restart and exists
// for tests and for hosts that bring their own secure storage bridge.
type Memory struct {
	mu    sync.Mutex
	token string
	set   bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Get returns the stored token or ErrNotFound.
func (m *Memory) Get(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return "", ErrNotFound
	}
	return m.token, nil
}

// Set stores the token. An empty token clears the cell.
func (m *Memory) Set(ctx context.Context, token string) error {
	if token == "" {
		return m.Clear(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.set = true
	return nil
}

// Clear empties the cell. Clearing an empty cell is a no-op.
func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.set = false
	return nil
}
