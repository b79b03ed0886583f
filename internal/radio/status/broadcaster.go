package status

import "sync"

// Broadcaster fans out values from one publisher to N listeners.
type Broadcaster[T any] struct {
	mu        sync.RWMutex
	listeners map[*Listener[T]]struct{}
	last      *T
	closed    bool
}

// Listener receives published values. C is closed on Unsubscribe or when
// the broadcaster closes.
type Listener[T any] struct {
	C chan T
}

func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{
		listeners: make(map[*Listener[T]]struct{}),
	}
}

// Subscribe registers a new listener with the given buffer. The most recent
// value, if any, is delivered straight away.
func (b *Broadcaster[T]) Subscribe(buffer int) *Listener[T] {
	if buffer < 1 {
		buffer = 1
	}
	l := &Listener[T]{C: make(chan T, buffer)}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(l.C)
		return l
	}
	if b.last != nil {
		l.C <- *b.last
	}
	b.listeners[l] = struct{}{}
	return l
}

// Unsubscribe removes a listener and closes its channel.
func (b *Broadcaster[T]) Unsubscribe(l *Listener[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.listeners[l]; ok {
		delete(b.listeners, l)
		close(l.C)
	}
}

// ListenerCount returns the number of active listeners.
func (b *Broadcaster[T]) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// Publish hands v to every listener. Slow listeners get values dropped
// rather than blocking the publisher.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.last = &v
	for l := range b.listeners {
		select {
		case l.C <- v:
		default:
		}
	}
}

// Close closes every listener. Later publishes are ignored.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for l := range b.listeners {
		close(l.C)
	}
	b.listeners = make(map[*Listener[T]]struct{})
}
