package nodeapi

import (
	"log/slog"
	"sync"
)

// EventTimeConfigurationChanged is the SSE event name for change notifications.
const EventTimeConfigurationChanged = "time_configuration_changed"

// EventBroker fans controller change notifications out to event stream
// subscribers. Publish never blocks: a subscriber whose buffer is full
// misses the event and a warning is logged.
type EventBroker struct {
	mu     sync.Mutex
	subs   map[chan struct{}]struct{}
	buffer int
	closed bool
	logger *slog.Logger
}

// NewEventBroker creates an EventBroker with the given per-subscriber buffer.
func NewEventBroker(buffer int, logger *slog.Logger) *EventBroker {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	return &EventBroker{
		subs:   make(map[chan struct{}]struct{}),
		buffer: buffer,
		logger: logger,
	}
}

// Publish delivers one event to every subscriber.
func (b *EventBroker) Publish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
			b.logger.Warn("event subscriber buffer full, dropping event",
				"event", EventTimeConfigurationChanged,
			)
		}
	}
}

// Subscribe returns a channel receiving one value per published event and a
// function that cancels the subscription. The channel is closed when the
// subscription is cancelled or the broker is closed.
func (b *EventBroker) Subscribe() (<-chan struct{}, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan struct{}, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.subs[ch] = struct{}{}
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
	}
}

// Subscribers returns the number of active subscribers.
func (b *EventBroker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close ends all subscriptions. Later Publish calls are no-ops.
func (b *EventBroker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}
