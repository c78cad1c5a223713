// Package mailbox provides a single-slot hand-off where the latest value wins.
package mailbox

import "sync"

// Mailbox holds at most one pending value. It is NOT a queue: Put replaces
// whatever is waiting, so a slow consumer only ever sees the newest value.
type Mailbox[T any] struct {
	mu    sync.Mutex
	value *T
}

// New creates an empty mailbox.
func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{}
}

// Put stores v, replacing any pending value. It never blocks.
func (m *Mailbox[T]) Put(v T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = &v
}

// TryTake returns the pending value and clears the slot. It never blocks.
func (m *Mailbox[T]) TryTake() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.value == nil {
		var zero T
		return zero, false
	}
	v := *m.value
	m.value = nil
	return v, true
}

// Pending reports whether a value is waiting.
func (m *Mailbox[T]) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value != nil
}
