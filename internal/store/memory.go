package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// Memory keeps files in a map. It is safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	files map[string][]byte

	// Err, when set, is returned by Save.
	Err error
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{files: make(map[string][]byte)}
}

// Save stores a copy of r's contents.
func (m *Memory) Save(ctx context.Context, name string, r io.Reader) error {
	if !ValidName(name) {
		return fmt.Errorf("Save: %q: %w", name, ErrInvalidName)
	}
	if m.Err != nil {
		return fmt.Errorf("Save: %w: %w", ErrStorage, m.Err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("Save: reading input: %w: %w", ErrStorage, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = data
	return nil
}

// Open returns a reader over the stored bytes.
func (m *Memory) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("Open: %q: %w", name, ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Len returns the number of stored files.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

var _ Store = (*Memory)(nil)
