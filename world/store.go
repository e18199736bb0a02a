package world

import (
	"github.com/lixenwraith/vi-pattern/core"
)

// Store is a generic container for one component type
// Sparse set: map lookup plus a dense entity slice for ordered iteration
// Not synchronized, the world is driven from a single goroutine
type Store[T any] struct {
	components map[core.Entity]T
	entities   []core.Entity
}

// NewStore creates an empty component store
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		components: make(map[core.Entity]T),
		entities:   make([]core.Entity, 0, 64),
	}
}

// Set inserts or replaces the component for e
func (s *Store[T]) Set(e core.Entity, val T) {
	if _, exists := s.components[e]; !exists {
		s.entities = append(s.entities, e)
	}
	s.components[e] = val
}

// Get returns the component for e
func (s *Store[T]) Get(e core.Entity) (T, bool) {
	val, ok := s.components[e]
	return val, ok
}

// Has reports whether e has this component
func (s *Store[T]) Has(e core.Entity) bool {
	_, ok := s.components[e]
	return ok
}

// Update applies fn to e's component in place, false when absent
func (s *Store[T]) Update(e core.Entity, fn func(*T)) bool {
	val, ok := s.components[e]
	if !ok {
		return false
	}
	fn(&val)
	s.components[e] = val
	return true
}

// Remove deletes e's component, keeping insertion order of the rest
func (s *Store[T]) Remove(e core.Entity) {
	if _, exists := s.components[e]; !exists {
		return
	}
	delete(s.components, e)
	for i, entity := range s.entities {
		if entity == e {
			s.entities = append(s.entities[:i], s.entities[i+1:]...)
			break
		}
	}
}

// Entities returns a copy of every entity with this component in insertion order
func (s *Store[T]) Entities() []core.Entity {
	result := make([]core.Entity, len(s.entities))
	copy(result, s.entities)
	return result
}

// Len returns the number of entities with this component
func (s *Store[T]) Len() int {
	return len(s.entities)
}

// Clear removes every component
func (s *Store[T]) Clear() {
	s.components = make(map[core.Entity]T)
	s.entities = s.entities[:0]
}
