package reactive

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// globalIDCounter is the source of unique IDs for signals and subscribers.
var globalIDCounter uint64

func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}

// subscriber pairs a callback with an identity used for removal.
type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// Signal is an observable value container.
// Setting a new value notifies subscribers synchronously, in subscription
// order, with the value that was set. Subscribers are not replayed the
// current value when they subscribe; read Get for the initial snapshot.
type Signal[T any] struct {
	id uint64

	// mu protects value and subs.
	mu    sync.RWMutex
	value T
	subs  []subscriber[T]

	// equal determines whether a Set actually changed the value.
	// If nil, defaultEquals is used.
	equal func(T, T) bool
}

// New creates a signal holding the given initial value.
func New[T any](initial T) *Signal[T] {
	return &Signal[T]{
		id:    nextID(),
		value: initial,
	}
}

// Get returns the current value.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the value and notifies subscribers if it changed.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	changed := !s.equals(s.value, value)
	if changed {
		s.value = value
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// Update atomically derives the next value from the current one.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	next := fn(s.value)
	changed := !s.equals(s.value, next)
	if changed {
		s.value = next
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// Subscribe registers fn to run on every subsequent change.
// The returned handle removes the subscription; calling it more than once
// is safe.
func (s *Signal[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	sub := subscriber[T]{id: nextID(), fn: fn}

	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, existing := range s.subs {
			if existing.id == sub.id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// WithEquals configures a custom equality function and returns the signal.
// Useful when reflect.DeepEqual is too expensive or has the wrong semantics
// for the value type.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// Readonly returns a read-only view of this signal.
func (s *Signal[T]) Readonly() Readonly[T] {
	return Readonly[T]{s: s}
}

// ID returns the signal's unique identifier.
func (s *Signal[T]) ID() uint64 {
	return s.id
}

// notify delivers the current value to all subscribers.
// Uses copy-before-notify so callbacks run without holding the lock.
// Inside a batch, delivery is deferred and deduplicated per signal.
func (s *Signal[T]) notify() {
	if queueBatched(s.id, s.flush) {
		return
	}
	s.flush()
}

func (s *Signal[T]) flush() {
	s.mu.RLock()
	value := s.value
	subs := make([]subscriber[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, sub := range subs {
		sub.fn(value)
	}
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals provides type-appropriate equality checking.
// Uses == for common comparable types and reflect.DeepEqual for the rest.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int64:
		return av == any(b).(int64)
	case uint64:
		return av == any(b).(uint64)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		return reflect.DeepEqual(a, b)
	}
}

// Readonly exposes a signal's value and subscriptions without mutation.
// The editor store hands these out as projections of its state.
type Readonly[T any] struct {
	s *Signal[T]
}

// Get returns the current value.
func (r Readonly[T]) Get() T {
	return r.s.Get()
}

// Subscribe registers fn to run on every subsequent change.
func (r Readonly[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	return r.s.Subscribe(fn)
}
