package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/UnknownOlympus/proximity/internal/models"
)

// MemoryStore is an in-process Repository. Records are kept in insertion order,
// which stands in for the storage-native order of a database table.
type MemoryStore[E models.Identifiable[K], K comparable] struct {
	mu     sync.RWMutex
	items  map[K]E
	order  []K
	name   string
	fields func(E) map[string]any
}

// NewMemoryStore creates an empty store. fields exposes an entity's column values
// so that Eq predicates can be evaluated; it may be nil when only Match predicates are used.
func NewMemoryStore[E models.Identifiable[K], K comparable](
	name string,
	fields func(E) map[string]any,
) *MemoryStore[E, K] {
	return &MemoryStore[E, K]{
		items:  make(map[K]E),
		name:   name,
		fields: fields,
	}
}

// Get returns a copy of the entity with the given id, or nil when there is none.
func (m *MemoryStore[E, K]) Get(_ context.Context, id K) (*E, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entity, ok := m.items[id]
	if !ok {
		return nil, nil //nolint:nilnil // absence is not an error
	}

	return &entity, nil
}

// Add stores a new entity. It returns ErrAlreadyExists when the key is taken.
func (m *MemoryStore[E, K]) Add(_ context.Context, entity E) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := entity.Key()
	if _, ok := m.items[key]; ok {
		return fmt.Errorf("%w: %s %s", ErrAlreadyExists, m.name, formatKey(key))
	}
	m.items[key] = entity
	m.order = append(m.order, key)

	return nil
}

// Update replaces the entity with the same key. It returns ErrNotFound when there is none.
func (m *MemoryStore[E, K]) Update(_ context.Context, entity E) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := entity.Key()
	if _, ok := m.items[key]; !ok {
		return fmt.Errorf("%w: %s %s", ErrNotFound, m.name, formatKey(key))
	}
	m.items[key] = entity

	return nil
}

// UpdateWhere replaces the first entity, in insertion order, matching the predicate.
func (m *MemoryStore[E, K]) UpdateWhere(_ context.Context, entity E, predicate Predicate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, key := range m.order {
		current := m.items[key]

		var fields map[string]any
		if m.fields != nil {
			fields = m.fields(current)
		}
		ok, err := predicate.eval(current, fields)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		newKey := entity.Key()
		if newKey != key {
			if _, taken := m.items[newKey]; taken {
				return fmt.Errorf("%w: %s %s", ErrAlreadyExists, m.name, formatKey(newKey))
			}
			delete(m.items, key)
			m.order[i] = newKey
		}
		m.items[newKey] = entity

		return nil
	}

	return nil
}

// Delete removes the entity with the given id if it exists.
func (m *MemoryStore[E, K]) Delete(_ context.Context, id K) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return nil
	}
	delete(m.items, id)
	m.order = slices.DeleteFunc(m.order, func(k K) bool { return k == id })

	return nil
}

// Filter returns a snapshot of every record accepted by keep, in storage order.
func (m *MemoryStore[E, K]) Filter(keep func(E) bool) []E {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]E, 0)
	for _, key := range m.order {
		if entity := m.items[key]; keep(entity) {
			out = append(out, entity)
		}
	}

	return out
}

// Len returns the number of stored records.
func (m *MemoryStore[E, K]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.items)
}
