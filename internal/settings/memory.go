package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
)

// Memory is an in-process Backend, used for dry runs and tests. It counts
// reads and writes and can be told to fail writes.
type Memory struct {
	mu     sync.Mutex
	values map[string]json.RawMessage
	reads  int
	writes int

	// FailWrites, when set, is returned by every Write and nothing is stored.
	FailWrites error
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]json.RawMessage)}
}

// Read implements Backend.
func (m *Memory) Read(ctx context.Context, key string) (json.RawMessage, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.reads++
	v, ok := m.values[key]
	if !ok {
		return nil, nil
	}
	return bytes.Clone(v), nil
}

// Write implements Backend.
func (m *Memory) Write(ctx context.Context, key string, raw json.RawMessage) error {
	if key == "" {
		return ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.writes++
	m.values[key] = bytes.Clone(raw)
	return nil
}

// Set stores raw at key without counting a write, simulating an external edit.
func (m *Memory) Set(key string, raw json.RawMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = bytes.Clone(raw)
}

// Raw returns the stored value without counting a read.
func (m *Memory) Raw(key string) json.RawMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return bytes.Clone(m.values[key])
}

// Reads returns the number of Read calls.
func (m *Memory) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// Writes returns the number of successful Write calls.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
