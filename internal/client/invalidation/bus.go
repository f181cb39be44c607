// Package invalidation notifies readers that underlying data changed. It is
// an explicit event bus with a monotonic version counter: readers subscribe
// and re-query on change instead of polling ambient global state.
package invalidation

import "sync"

// Bus fans out "data changed" notifications.
type Bus struct {
	mu      sync.Mutex
	version uint64
	nextID  int
	subs    map[int]chan uint64
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan uint64)}
}

// Version returns the current change counter. It increases by one per Publish
// and never decreases.
func (b *Bus) Version() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.version
}

// Subscribe registers a listener. The returned channel carries the version at
// each change; cancel removes the subscription. The channel is buffered and
// notifications are dropped, not queued, when the subscriber lags — readers
// re-query on any signal, so only the latest version matters.
func (b *Bus) Subscribe() (<-chan uint64, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan uint64, 1)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Publish bumps the version and notifies all subscribers without blocking.
func (b *Bus) Publish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.version++
	for _, ch := range b.subs {
		select {
		case ch <- b.version:
		default:
		}
	}
}
