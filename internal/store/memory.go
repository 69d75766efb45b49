package store

import (
	"context"
	"sync"

	"github.com/dilg-bohol/issuance-harvester/internal/issuance"
)

// MemoryProvider is an in-process record store. It backs local development
// runs and tests; the postgres provider is the production path.
type MemoryProvider struct {
	mu     sync.RWMutex
	tables map[string]*memoryTable
}

type memoryTable struct {
	order   []string
	records map[string]issuance.Record
}

// NewMemoryProvider returns an empty in-memory store.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{tables: make(map[string]*memoryTable)}
}

// Upsert inserts the record or overwrites the mutable fields of an existing
// one with the same key. Insertion order is preserved for List.
func (m *MemoryProvider) Upsert(_ context.Context, table string, rec issuance.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[table]
	if !ok {
		t = &memoryTable{records: make(map[string]issuance.Record)}
		m.tables[table] = t
	}
	key := rec.Key()
	if _, exists := t.records[key]; !exists {
		t.order = append(t.order, key)
	}
	t.records[key] = rec
	return nil
}

// List returns every record in the table in first-insert order.
func (m *MemoryProvider) List(_ context.Context, table string) ([]issuance.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[table]
	if !ok {
		return nil, nil
	}
	out := make([]issuance.Record, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, t.records[key])
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryProvider) Close() error { return nil }
