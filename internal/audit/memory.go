package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory keeps the most recent entries in a ring buffer.
// It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries []*Entry
	next    int
	full    bool
}

// NewMemory returns a recorder holding at most capacity entries.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Memory{entries: make([]*Entry, capacity)}
}

// Record implements Recorder.
func (m *Memory) Record(ctx context.Context, e *Entry) error {
	fillDefaults(e)
	entryCopy := *e

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[m.next] = &entryCopy
	m.next = (m.next + 1) % len(m.entries)
	if m.next == 0 {
		m.full = true
	}
	return nil
}

// Recent implements Recorder.
func (m *Memory) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	size := m.next
	if m.full {
		size = len(m.entries)
	}
	if limit > size {
		limit = size
	}

	result := make([]*Entry, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (m.next - i + len(m.entries)) % len(m.entries)
		entryCopy := *m.entries[idx]
		result = append(result, &entryCopy)
	}
	return result, nil
}

func fillDefaults(e *Entry) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
}

var _ Recorder = (*Memory)(nil)
