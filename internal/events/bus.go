// Package events provides a non-blocking publish-subscribe bus for the
// daemon's outbound signals (topology-changed, video-changed).
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/motionwall/motionwall/internal/domain"
	"go.uber.org/zap"
)

const subBufferSize = 8

// Bus fans signals out to subscribers. Subscribers that are slow to
// consume have signals dropped rather than blocking publishers.
type Bus struct {
	logger *zap.Logger

	mu              sync.Mutex
	subs            map[string]chan domain.Signal
	lastDropWarning time.Time
}

// NewBus creates an empty bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		logger: logger,
		subs:   make(map[string]chan domain.Signal),
	}
}

// Subscribe registers a new subscriber and returns its id, used for
// Unsubscribe, along with the signal channel.
func (b *Bus) Subscribe() (string, <-chan domain.Signal) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan domain.Signal, subBufferSize)
	b.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
// Unknown ids are ignored.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish delivers a signal to every subscriber without blocking.
// Full subscriber channels drop the signal.
func (b *Bus) Publish(sig domain.Signal) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- sig:
		default:
			b.logDropLocked(sig.Kind)
		}
	}
}

// SubscriberCount returns the current number of subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// logDropLocked warns about a dropped signal, rate limited to avoid
// log spam when a subscriber stalls. Caller holds b.mu.
func (b *Bus) logDropLocked(kind domain.SignalKind) {
	const warningInterval = 5 * time.Second

	now := time.Now()
	if now.Sub(b.lastDropWarning) >= warningInterval {
		b.logger.Warn("Subscriber channel full, dropping signal",
			zap.String("kind", string(kind)))
		b.lastDropWarning = now
	}
}
