package core

import "slices"

// Handle identifies one registration in a Callback. Handles are plain values
// and stay valid until they are deregistered.
type Handle struct {
	id uint64
}

// IsValid reports whether the handle was returned by Register.
func (h Handle) IsValid() bool {
	return h.id != 0
}

type subscriber[T any] struct {
	handle Handle
	fn     func(T)
}

// Callback is an ordered multicast of handlers taking a single argument.
// Handlers run synchronously in registration order. The same function may be
// registered more than once and is then invoked once per registration.
type Callback[T any] struct {
	subscribers []subscriber[T]
	nextID      uint64
}

// Register appends fn and returns the handle needed to remove it again.
func (c *Callback[T]) Register(fn func(T)) Handle {
	c.nextID++
	h := Handle{id: c.nextID}
	c.subscribers = append(c.subscribers, subscriber[T]{handle: h, fn: fn})
	return h
}

// Deregister removes the registration identified by h. It reports whether a
// registration was found.
func (c *Callback[T]) Deregister(h Handle) bool {
	for i, s := range c.subscribers {
		if s.handle == h {
			c.subscribers = slices.Delete(c.subscribers, i, i+1)
			return true
		}
	}
	return false
}

// Call invokes every handler with arg. The handler list is snapshotted first,
// so registrations made or removed by a handler only apply to later calls.
func (c *Callback[T]) Call(arg T) {
	if len(c.subscribers) == 0 {
		return
	}
	snapshot := slices.Clone(c.subscribers)
	for _, s := range snapshot {
		s.fn(arg)
	}
}

func (c *Callback[T]) Len() int {
	return len(c.subscribers)
}

func (c *Callback[T]) Clear() {
	c.subscribers = nil
}

// Signal is a Callback whose handlers take no arguments.
type Signal struct {
	cb Callback[struct{}]
}

func (s *Signal) Register(fn func()) Handle {
	return s.cb.Register(func(struct{}) { fn() })
}

func (s *Signal) Deregister(h Handle) bool {
	return s.cb.Deregister(h)
}

func (s *Signal) Call() {
	s.cb.Call(struct{}{})
}

func (s *Signal) Len() int {
	return s.cb.Len()
}

func (s *Signal) Clear() {
	s.cb.Clear()
}
