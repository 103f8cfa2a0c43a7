package bus

import (
	"context"
	"sync"
	"time"
)

// MemoryBus delivers events in-process. It is used when REDIS_ADDR is unset and
// in tests, where Events exposes everything published.
type MemoryBus struct {
	mu       sync.Mutex
	events   []Event
	handlers []func(Event)
}

func NewMemoryBus() *MemoryBus { return &MemoryBus{} }

func (b *MemoryBus) Publish(_ context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	b.mu.Lock()
	b.events = append(b.events, ev)
	handlers := append([]func(Event){}, b.handlers...)
	b.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
	return nil
}

func (b *MemoryBus) StartForwarder(ctx context.Context, onEvent func(ev Event)) error {
	b.mu.Lock()
	b.handlers = append(b.handlers, onEvent)
	b.mu.Unlock()
	return nil
}

func (b *MemoryBus) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Event{}, b.events...)
}

func (b *MemoryBus) Close() error { return nil }
