package sysctl

import (
	"sync"
	"time"
)

// notifier delivers time configuration change notifications to registered
// handlers. Handlers run synchronously on the emitting goroutine, in
// registration order.
type notifier struct {
	mu       sync.Mutex
	nextID   uint64
	handlers []handlerEntry
	timers   map[*time.Timer]struct{}
	closed   bool
}

type handlerEntry struct {
	id uint64
	fn func()
}

func newNotifier() *notifier {
	return &notifier{timers: make(map[*time.Timer]struct{})}
}

// register adds fn and returns a function that removes it.
func (n *notifier) register(fn func()) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return func() {}
	}
	n.nextID++
	id := n.nextID
	n.handlers = append(n.handlers, handlerEntry{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { n.unregister(id) })
	}
}

func (n *notifier) unregister(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, h := range n.handlers {
		if h.id == id {
			n.handlers = append(n.handlers[:i:i], n.handlers[i+1:]...)
			return
		}
	}
}

// emit calls every registered handler once.
func (n *notifier) emit() {
	n.mu.Lock()
	handlers := make([]handlerEntry, len(n.handlers))
	copy(handlers, n.handlers)
	n.mu.Unlock()

	for _, h := range handlers {
		h.fn()
	}
}

// emitAfter schedules one emit after d. Pending emits are dropped by close.
func (n *notifier) emitAfter(d time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		n.mu.Lock()
		_, pending := n.timers[t]
		delete(n.timers, t)
		n.mu.Unlock()
		if pending {
			n.emit()
		}
	})
	n.timers[t] = struct{}{}
}

// pending returns the number of scheduled emits that have not fired.
func (n *notifier) pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.timers)
}

// close cancels scheduled emits and drops all handlers.
func (n *notifier) close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	for t := range n.timers {
		t.Stop()
	}
	n.timers = nil
	n.handlers = nil
}
