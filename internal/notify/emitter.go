// ABOUTME: In-memory fan-out emitter for controller notifications
// ABOUTME: Publishes notifications to all subscribers in FIFO order per subscriber

package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// subscriberBufferSize is the channel buffer for each subscriber.
const subscriberBufferSize = 64

// Emitter provides in-memory pub/sub for controller notifications.
// Publish is called from the controller's operation path, so each
// subscriber channel observes notifications in emission order.
type Emitter struct {
	mu          sync.RWMutex
	subscribers map[string]chan Notification
	logger      *slog.Logger
}

// NewEmitter creates an emitter. Pass nil logger for default.
func NewEmitter(logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{
		subscribers: make(map[string]chan Notification),
		logger:      logger.With("component", "notify"),
	}
}

// Subscribe registers a subscriber and returns its channel plus a
// subscription ID for later removal. The subscription is cleaned up
// automatically when ctx is cancelled.
func (e *Emitter) Subscribe(ctx context.Context) (<-chan Notification, string) {
	subID := uuid.New().String()
	ch := make(chan Notification, subscriberBufferSize)

	e.mu.Lock()
	e.subscribers[subID] = ch
	e.mu.Unlock()

	go func() {
		<-ctx.Done()
		e.Unsubscribe(subID)
	}()

	return ch, subID
}

// Publish sends a notification to every subscriber. Non-blocking:
// notifications are dropped for subscribers whose channels are full.
func (e *Emitter) Publish(n Notification) {
	e.mu.RLock()
	targets := make([]chan Notification, 0, len(e.subscribers))
	for _, ch := range e.subscribers {
		targets = append(targets, ch)
	}
	e.mu.RUnlock()

	for _, ch := range targets {
		select {
		case ch <- n:
		default:
			e.logger.Debug("dropped notification for slow subscriber",
				"kind", n.Kind)
		}
	}
}

// Unsubscribe removes a subscription and closes its channel.
func (e *Emitter) Unsubscribe(subID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ch, ok := e.subscribers[subID]
	if !ok {
		return
	}
	delete(e.subscribers, subID)
	close(ch)
}

// Close shuts down the emitter and closes all subscriber channels.
func (e *Emitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for subID, ch := range e.subscribers {
		close(ch)
		delete(e.subscribers, subID)
	}
}
