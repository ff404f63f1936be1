package core

import "fmt"

// ID refers to an entry of a Registry. The low 32 bits hold the slot index and
// the high 32 bits the slot generation, so a released ID never aliases the
// entry that later reuses its slot. The zero ID is never issued.
type ID uint64

const InvalidID ID = 0

func makeID(index, generation uint32) ID {
	return ID(uint64(generation)<<32 | uint64(index))
}

func (id ID) index() uint32      { return uint32(id) }
func (id ID) generation() uint32 { return uint32(id >> 32) }

type slot[T any] struct {
	value      T
	generation uint32
	used       bool
}

// Registry maps opaque IDs to owned values, reusing free slots.
type Registry[T any] struct {
	slots []slot[T]
	count int
}

func NewRegistry[T any](capacity int) *Registry[T] {
	return &Registry[T]{slots: make([]slot[T], 0, capacity)}
}

// Acquire stores owner and returns its new ID.
func (r *Registry[T]) Acquire(owner T) ID {
	length := uint32(len(r.slots))
	for i := uint32(0); i < length; i++ {
		// Existing free spot. Take it.
		if !r.slots[i].used {
			s := &r.slots[i]
			s.value = owner
			s.used = true
			s.generation++
			r.count++
			return makeID(i, s.generation)
		}
	}

	// No free slot, push a new one.
	r.slots = append(r.slots, slot[T]{value: owner, used: true, generation: 1})
	r.count++
	return makeID(length, 1)
}

// Get returns the value stored for id.
func (r *Registry[T]) Get(id ID) (T, bool) {
	s, ok := r.lookup(id)
	if !ok {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Release frees the slot held by id and returns the value it stored.
func (r *Registry[T]) Release(id ID) (T, error) {
	var zero T
	s, ok := r.lookup(id)
	if !ok {
		return zero, fmt.Errorf("release of id %#x: %w", uint64(id), ErrInvalidHandle)
	}
	value := s.value
	s.value = zero
	s.used = false
	r.count--
	return value, nil
}

// Each visits every live entry in slot order.
func (r *Registry[T]) Each(fn func(ID, T)) {
	for i := range r.slots {
		s := &r.slots[i]
		if s.used {
			fn(makeID(uint32(i), s.generation), s.value)
		}
	}
}

func (r *Registry[T]) Len() int {
	return r.count
}

func (r *Registry[T]) lookup(id ID) (*slot[T], bool) {
	if id == InvalidID {
		return nil, false
	}
	idx := id.index()
	if idx >= uint32(len(r.slots)) {
		return nil, false
	}
	s := &r.slots[idx]
	if !s.used || s.generation != id.generation() {
		return nil, false
	}
	return s, true
}
