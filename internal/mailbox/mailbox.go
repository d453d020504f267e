// Package mailbox provides an unbounded FIFO used as an action channel.
//
// The player engine both produces and consumes queue actions on the same
// goroutine, so a bounded Go channel could fill up and block the only reader.
// A Mailbox never blocks its senders.
package mailbox

import "sync"

// Mailbox is an unbounded, multi-producer, single-consumer FIFO.
type Mailbox[T any] struct {
	mu     sync.Mutex
	items  []T
	ready  chan struct{}
	closed bool
}

// New creates an empty mailbox.
func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{
		ready: make(chan struct{}, 1),
	}
}

// Send appends v to the mailbox. Sends after Close are dropped and reported
// as false.
func (m *Mailbox[T]) Send(v T) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.items = append(m.items, v)
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
	return true
}

// Ready returns a channel that receives whenever items may be available.
// Receivers should drain with TryRecv until it reports false.
func (m *Mailbox[T]) Ready() <-chan struct{} {
	return m.ready
}

// TryRecv pops the oldest item without blocking.
func (m *Mailbox[T]) TryRecv() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	if len(m.items) == 0 {
		return zero, false
	}
	v := m.items[0]
	m.items[0] = zero
	m.items = m.items[1:]
	if len(m.items) == 0 {
		m.items = nil
	}
	return v, true
}

// Len returns the number of pending items.
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close rejects further sends. Pending items can still be received.
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}
