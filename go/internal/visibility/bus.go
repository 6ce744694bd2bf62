// Package visibility distributes host foreground/background transitions.
// The bus is an owned object with explicit subscribe/unsubscribe and an
// explicit lifecycle: created at app start, closed at app end. Nothing
// here lives at module level.
package visibility

import "sync"

// Signal is one host visibility transition.
type Signal int

const (
	// Hidden fires when the page leaves the foreground.
	Hidden Signal = iota
	// Visible fires when the page returns to the foreground.
	Visible
	// RestoredFromCache fires when the page resumes from a frozen state;
	// some platforms skip the ordinary hidden/visible pair around it.
	RestoredFromCache
)

func (s Signal) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Visible:
		return "visible"
	case RestoredFromCache:
		return "restored_from_cache"
	default:
		return "unknown"
	}
}

// Handler receives published signals. Handlers run synchronously on the
// publishing goroutine.
type Handler func(Signal)

// Bus fans published signals out to subscribers.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]Handler
	closed bool
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]Handler)}
}

// Subscribe registers a handler and returns its subscription id.
func (b *Bus) Subscribe(h Handler) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return -1
	}
	b.nextID++
	id := b.nextID
	b.subs[id] = h
	return id
}

// Unsubscribe removes a handler. Unknown ids are ignored.
func (b *Bus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

// Publish delivers sig to every current subscriber.
func (b *Bus) Publish(sig Signal) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, h := range b.subs {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(sig)
	}
}

// Close drops all subscriptions; further Subscribe calls are refused.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = map[int]Handler{}
}
