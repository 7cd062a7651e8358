// Package realtime fans worker notifications out to open WebSocket
// connections, across instances through Redis pub/sub when available.
package realtime

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// subscriberBuffer messages queued per connection before new ones are dropped
const subscriberBuffer = 16

// Bus cross-instance transport; *redis.Client implements it.
type Bus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// Channel returns the pub/sub channel of a worker's notifications.
func Channel(workerID string) string {
	return "notifications:" + workerID
}

// Hub delivers payloads to the subscribers of a worker.
type Hub struct {
	bus    Bus
	logger *zap.Logger

	mu   sync.Mutex
	subs map[string]map[chan []byte]struct{}
}

// NewHub creates a Hub. With a nil bus delivery stays in-process.
func NewHub(bus Bus, logger *zap.Logger) *Hub {
	return &Hub{
		bus:    bus,
		logger: logger,
		subs:   make(map[string]map[chan []byte]struct{}),
	}
}

// Publish sends payload to every subscriber of workerID.
func (h *Hub) Publish(ctx context.Context, workerID string, payload []byte) error {
	if h.bus != nil {
		return h.bus.Publish(ctx, Channel(workerID), payload)
	}
	h.deliver(workerID, payload)
	return nil
}

// Subscribe registers a subscriber for workerID. The returned channel is
// closed once ctx is done.
func (h *Hub) Subscribe(ctx context.Context, workerID string) (<-chan []byte, error) {
	if h.bus != nil {
		return h.bus.Subscribe(ctx, Channel(workerID))
	}

	ch := make(chan []byte, subscriberBuffer)
	h.mu.Lock()
	set, ok := h.subs[workerID]
	if !ok {
		set = make(map[chan []byte]struct{})
		h.subs[workerID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs[workerID], ch)
		if len(h.subs[workerID]) == 0 {
			delete(h.subs, workerID)
		}
		h.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

// Subscribers number of in-process subscribers of workerID.
func (h *Hub) Subscribers(workerID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[workerID])
}

func (h *Hub) deliver(workerID string, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[workerID] {
		select {
		case ch <- payload:
		default:
			h.logger.Warn("realtime subscriber is slow, dropping message",
				zap.String("worker_id", workerID))
		}
	}
}
