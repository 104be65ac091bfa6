// Package storetest provides an in-memory store for tests of packages that write entities
package storetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/notional-finance/notional-indexer/internal/store"
	"github.com/notional-finance/notional-indexer/internal/store/schema"
)

// MemoryStore is a store.Store keeping JSON encoded entities in maps.
// Entities are encoded on save, so callers never share memory with the store.
type MemoryStore struct {
	mu      sync.Mutex
	tables  map[string]map[string][]byte
	cursors map[string]uint64
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables:  make(map[string]map[string][]byte),
		cursors: make(map[string]uint64),
	}
}

var _ store.Store = (*MemoryStore)(nil)

func (m *MemoryStore) Load(_ context.Context, id string, dest schema.Entity) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok := m.tables[dest.TableName()][id]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("failed to decode %s %s: %w", dest.TableName(), id, err)
	}
	return true, nil
}

func (m *MemoryStore) Save(_ context.Context, entity schema.Entity) error {
	raw, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", entity.TableName(), entity.EntityID(), err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	table, ok := m.tables[entity.TableName()]
	if !ok {
		table = make(map[string][]byte)
		m.tables[entity.TableName()] = table
	}
	table[entity.EntityID()] = raw
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, entity schema.Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tables[entity.TableName()], entity.EntityID())
	return nil
}

// WithTransaction runs fn against the store and restores the previous state if fn fails
func (m *MemoryStore) WithTransaction(_ context.Context, fn func(tx store.Store) error) error {
	m.mu.Lock()
	saved := m.copyTables()
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.tables = saved
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *MemoryStore) GetBlockCursor(_ context.Context, chain string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursors[chain], nil
}

func (m *MemoryStore) SetBlockCursor(_ context.Context, chain string, blockNumber uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursors[chain] = blockNumber
	return nil
}

// Count returns the number of entities in a table
func (m *MemoryStore) Count(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tables[table])
}

// IDs returns the sorted ids of a table
func (m *MemoryStore) IDs(table string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.tables[table]))
	for id := range m.tables[table] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Total returns the number of entities across all tables
func (m *MemoryStore) Total() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, table := range m.tables {
		n += len(table)
	}
	return n
}

// Snapshot returns the encoded state of every table, for comparing two stores
func (m *MemoryStore) Snapshot() map[string]map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]map[string]string, len(m.tables))
	for name, table := range m.tables {
		if len(table) == 0 {
			continue
		}
		rows := make(map[string]string, len(table))
		for id, raw := range table {
			rows[id] = string(raw)
		}
		out[name] = rows
	}
	return out
}

func (m *MemoryStore) copyTables() map[string]map[string][]byte {
	cp := make(map[string]map[string][]byte, len(m.tables))
	for name, table := range m.tables {
		rows := make(map[string][]byte, len(table))
		for id, raw := range table {
			rows[id] = raw
		}
		cp[name] = rows
	}
	return cp
}
