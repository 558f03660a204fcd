// Package topology observes the host's physical display set and emits
// snapshots when it changes. Changes are detected by polling, with an
// OS change notification nudging an immediate re-check on platforms
// that support one.
package topology

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/motionwall/motionwall/internal/domain"
)

// Observer watches display topology. Snapshots are emitted on Events()
// whenever the display set's hash differs from the previous one, so
// redundant OS notifications for a single physical event collapse into
// one reconciliation pass.
type Observer struct {
	logger   *zap.Logger
	enum     Enumerator
	interval time.Duration
	events   chan []domain.Display

	mu              sync.Mutex
	running         bool
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	prevHash        uint64
	lastDropWarning time.Time
}

// NewObserver creates an observer polling at the given interval.
func NewObserver(logger *zap.Logger, enum Enumerator, interval time.Duration) *Observer {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Observer{
		logger:   logger,
		enum:     enum,
		interval: interval,
		events:   make(chan []domain.Display, 4),
	}
}

// Events returns a read-only channel emitting full display snapshots.
// The first snapshot arrives shortly after Start.
func (o *Observer) Events() <-chan []domain.Display {
	return o.events
}

// Start begins observing and blocks until ctx is cancelled.
func (o *Observer) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil
	}
	o.running = true

	obsCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.mu.Unlock()

	nudge, closeNudge, err := newChangeNotifier(o.logger)
	if err != nil {
		// Poll-only operation; the notifier is an optimization
		o.logger.Debug("Display change notifications unavailable", zap.Error(err))
	}

	o.wg.Add(1)
	go o.run(obsCtx, nudge)

	o.logger.Info("Topology observer started",
		zap.Duration("pollInterval", o.interval))

	<-obsCtx.Done()
	if closeNudge != nil {
		closeNudge()
	}
	return obsCtx.Err()
}

// Stop gracefully stops the observer and closes the events channel.
func (o *Observer) Stop(ctx context.Context) error {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return nil
	}
	if o.cancel != nil {
		o.cancel()
	}
	o.running = false
	o.mu.Unlock()

	o.wg.Wait()
	close(o.events)

	o.logger.Info("Topology observer stopped")
	return nil
}

func (o *Observer) run(ctx context.Context, nudge <-chan struct{}) {
	defer o.wg.Done()

	// Initial snapshot before the first poll interval elapses
	o.check()

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.check()
		case _, ok := <-nudge:
			if !ok {
				nudge = nil
				continue
			}
			o.check()
		}
	}
}

// check enumerates displays and emits a snapshot if the set changed.
func (o *Observer) check() {
	displays, err := o.enum.Displays()
	if err != nil {
		o.logger.Warn("Display enumeration failed", zap.Error(err))
		return
	}

	hash := SetHash(displays)

	o.mu.Lock()
	unchanged := hash == o.prevHash
	o.mu.Unlock()
	if unchanged {
		return
	}

	select {
	case o.events <- displays:
		o.mu.Lock()
		o.prevHash = hash
		o.mu.Unlock()
		o.logger.Info("Display topology changed", zap.Int("displays", len(displays)))
	default:
		// prevHash keeps its old value so the next poll re-emits
		o.logDropWarning()
	}
}

// logDropWarning logs a dropped snapshot, rate limited. The next poll
// re-emits the current set, so a drop delays reconciliation by at most
// one interval.
func (o *Observer) logDropWarning() {
	o.mu.Lock()
	defer o.mu.Unlock()

	const warningInterval = 5 * time.Second
	now := time.Now()
	if now.Sub(o.lastDropWarning) >= warningInterval {
		o.logger.Warn("Topology events channel full, dropping snapshot")
		o.lastDropWarning = now
	}
}
