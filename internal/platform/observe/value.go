// Package observe publishes immutable snapshots of a piece of state to any
// number of subscribers.
//
// Delivery is conflating: a slow subscriber never blocks the publisher. When a
// subscriber's buffer is full its oldest pending snapshot is dropped, so the
// most recent snapshot is always the one left to read.
package observe

import "sync"

type Value[T any] struct {
	mu     sync.Mutex
	cur    T
	subs   map[uint64]chan T
	nextID uint64
	closed bool
}

func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{cur: initial, subs: make(map[uint64]chan T)}
}

// Load returns the last published snapshot.
func (v *Value[T]) Load() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur
}

// Publish stores next and fans it out. It reports false once the value is closed.
func (v *Value[T]) Publish(next T) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return false
	}
	v.cur = next
	for _, ch := range v.subs {
		offer(ch, next)
	}
	return true
}

// Subscribe returns a channel primed with the current snapshot and a func that
// detaches it. The channel is closed by the unsubscribe func or by Close.
func (v *Value[T]) Subscribe(buffer int) (<-chan T, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan T, buffer)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		close(ch)
		return ch, func() {}
	}
	v.nextID++
	id := v.nextID
	v.subs[id] = ch
	ch <- v.cur

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			if sub, ok := v.subs[id]; ok {
				delete(v.subs, id)
				close(sub)
			}
		})
	}
}

// SubscriberCount is intended for tests and diagnostics.
func (v *Value[T]) SubscriberCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}

// Close stops publishing and closes every subscription channel.
func (v *Value[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	for id, ch := range v.subs {
		delete(v.subs, id)
		close(ch)
	}
}

// offer must be called with the owning Value locked; only the publisher sends.
func offer[T any](ch chan T, next T) {
	select {
	case ch <- next:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- next:
	default:
	}
}
