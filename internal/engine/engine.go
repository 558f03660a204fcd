// Package engine ties the daemon together: it feeds topology snapshots
// into the registry, keeps rotation timers aligned with connected
// displays, restores persisted rotation state, and exposes the
// operations the UI/CLI layer calls.
package engine

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/motionwall/motionwall/internal/domain"
	"github.com/motionwall/motionwall/internal/playconfig"
	"github.com/motionwall/motionwall/internal/registry"
	"github.com/motionwall/motionwall/internal/scheduler"
)

// Engine orchestrates topology reconciliation and rotation lifecycle.
type Engine struct {
	logger    *zap.Logger
	observer  domain.TopologyObserver
	registry  *registry.Registry
	scheduler *scheduler.Scheduler
	configs   *playconfig.Adapter
}

// NewEngine wires the orchestrator. Nothing runs until Start.
func NewEngine(
	logger *zap.Logger,
	observer domain.TopologyObserver,
	reg *registry.Registry,
	sched *scheduler.Scheduler,
	configs *playconfig.Adapter,
) *Engine {
	return &Engine{
		logger:    logger,
		observer:  observer,
		registry:  reg,
		scheduler: sched,
		configs:   configs,
	}
}

// Start loads persisted rotation configs and launches the event
// processing loop. It returns immediately.
func (e *Engine) Start(ctx context.Context) error {
	e.logger.Info("Engine starting")

	if _, err := e.configs.LoadAll(ctx); err != nil {
		// The daemon still runs; displays configured this session
		// will be persisted as they are touched
		e.logger.Error("Failed to load persisted rotation configs", zap.Error(err))
	}

	go e.runLoop(ctx)
	return nil
}

// Stop cancels every rotation timer and releases all surfaces.
func (e *Engine) Stop(ctx context.Context) error {
	e.logger.Info("Engine stopping")
	e.scheduler.Shutdown()
	e.registry.Close()
	return nil
}

// runLoop consumes topology snapshots until ctx is cancelled.
func (e *Engine) runLoop(ctx context.Context) {
	events := e.observer.Events()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Engine loop stopped")
			return
		case displays, ok := <-events:
			if !ok {
				e.logger.Info("Topology events channel closed")
				return
			}
			e.handleTopology(ctx, displays)
		}
	}
}

// handleTopology reconciles the registry against a snapshot, drops
// timers of vanished displays, and resumes persisted rotation for
// displays that (re)appeared. Timers of surviving displays are
// untouched.
func (e *Engine) handleTopology(ctx context.Context, displays []domain.Display) {
	added, removed := e.registry.Reconcile(displays)

	for _, id := range removed {
		e.scheduler.Drop(id)
	}

	var errs error
	for _, id := range added {
		cfg := e.configs.Get(id)
		if cfg == nil || cfg.PlaylistID == nil {
			continue
		}
		if err := e.scheduler.Restore(ctx, cfg); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if errs != nil {
		e.logger.Error("Failed to resume rotation for some displays",
			zap.Error(errs))
	}
}

// --- operations callable by the UI/CLI layer ---

// SetWallpaper shows a single video on a display. With cleanPlaylist
// the display's playlist binding is removed first, leaving an ad-hoc
// single video showing.
func (e *Engine) SetWallpaper(ctx context.Context, id domain.DisplayID, title, path string, cleanPlaylist bool) error {
	if _, ok := e.registry.Get(id); !ok {
		return fmt.Errorf("display %d: %w", id, domain.ErrUnknownDisplay)
	}
	if cleanPlaylist {
		if err := e.scheduler.Unbind(ctx, id); err != nil {
			return err
		}
	}
	return e.registry.ShowVideo(ctx, id, title, path)
}

// BindPlaylist binds a playlist to a display using the display's
// persisted period/policy preferences, or defaults on first use.
func (e *Engine) BindPlaylist(ctx context.Context, id domain.DisplayID, playlistID int64) error {
	if _, ok := e.registry.Get(id); !ok {
		return fmt.Errorf("display %d: %w", id, domain.ErrUnknownDisplay)
	}
	periodMin := playconfig.DefaultPeriodMin
	policy := domain.LoopOrder
	if cfg := e.configs.Get(id); cfg != nil {
		periodMin = cfg.PeriodMin
		policy = cfg.LoopType
	}
	return e.scheduler.Bind(ctx, id, playlistID, periodMin, policy)
}

// UnbindPlaylist removes a display's playlist binding and hides its
// surface. Period and volume preferences are kept.
func (e *Engine) UnbindPlaylist(ctx context.Context, id domain.DisplayID) error {
	return e.scheduler.Unbind(ctx, id)
}

// AdvanceNow skips the display to its next playlist video immediately.
func (e *Engine) AdvanceNow(id domain.DisplayID) {
	e.scheduler.Advance(id)
}

// SetPeriod changes a display's rotation period in minutes.
func (e *Engine) SetPeriod(ctx context.Context, id domain.DisplayID, minutes int) error {
	return e.scheduler.SetPeriod(ctx, id, minutes)
}

// SetLoopPolicy changes a display's loop policy.
func (e *Engine) SetLoopPolicy(ctx context.Context, id domain.DisplayID, policy domain.LoopPolicy) error {
	return e.scheduler.SetLoopPolicy(ctx, id, policy)
}

// SetVolume changes a display's volume scalar in [0, 1].
func (e *Engine) SetVolume(ctx context.Context, id domain.DisplayID, volume float64) error {
	return e.scheduler.SetVolume(ctx, id, volume)
}

// CurrentTitle returns the display's currently-showing video title.
func (e *Engine) CurrentTitle(id domain.DisplayID) (string, bool) {
	return e.registry.CurrentTitle(id)
}

// CurrentPlaylistName returns the name of the display's bound playlist.
func (e *Engine) CurrentPlaylistName(id domain.DisplayID) (string, bool) {
	return e.registry.CurrentPlaylistName(id)
}

// Screens returns the UI-facing snapshot of every tracked display.
func (e *Engine) Screens() []domain.ScreenInfo {
	return e.registry.Snapshot()
}

// PurgeOrphanConfigs is the explicit administrative cleanup of config
// rows whose display is not currently connected. Never run implicitly.
func (e *Engine) PurgeOrphanConfigs(ctx context.Context) (int, error) {
	infos := e.registry.Snapshot()
	known := make([]domain.DisplayID, 0, len(infos))
	for _, info := range infos {
		known = append(known, info.Display.ID)
	}
	return e.configs.PurgeOrphans(ctx, known)
}
