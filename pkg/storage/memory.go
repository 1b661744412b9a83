package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/MASAKi-cell/personstore/pkg/people"
)

// MemoryStore is an in-memory people.Service.
// Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[int]people.Person
}

// NewMemoryStore creates a store seeded with the given people.
func NewMemoryStore(seed ...people.Person) *MemoryStore {
	m := &MemoryStore{
		records: make(map[int]people.Person, len(seed)),
	}
	for _, p := range seed {
		m.records[p.ID] = p
	}
	return m
}

// List returns all people ordered by id.
func (m *MemoryStore) List(ctx context.Context) ([]people.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]people.Person, 0, len(m.records))
	for _, p := range m.records {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Save upserts the record and returns the stored version.
func (m *MemoryStore) Save(ctx context.Context, p people.Person, editID *int) (people.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[p.ID] = p
	return p, nil
}
