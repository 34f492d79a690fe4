// Package notifier provides a simple broadcast mechanism for SSE updates.
package notifier

import "sync"

// Kind names what changed.
type Kind string

// Change kinds.
const (
	ConnectionCreated Kind = "connection.created"
	CatalogReloaded   Kind = "catalog.reloaded"
)

// Change is delivered to listeners when the catalog changes. Listeners
// re-query the catalog; the change carries no payload.
type Change struct {
	Kind Kind
}

// Notifier broadcasts changes to all subscribed listeners.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan Change]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan Change]struct{}),
	}
}

// Subscribe returns a channel that receives changes.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe() chan Change {
	ch := make(chan Change, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan Change) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
	close(ch)
}

// Broadcast sends c to all listeners.
// Non-blocking: a listener with a pending change keeps that one, since any
// change means the same thing to it (re-query).
func (n *Notifier) Broadcast(c Change) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- c:
		default:
		}
	}
}

// Listeners returns the number of subscribed listeners.
func (n *Notifier) Listeners() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}
