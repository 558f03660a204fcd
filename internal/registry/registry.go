// Package registry owns the authoritative mapping from display identity
// to its live playback state: one monitor per connected display, at most
// one playback surface per monitor.
package registry

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/motionwall/motionwall/internal/domain"
	"github.com/motionwall/motionwall/internal/events"
)

// monitor is the in-memory binding of a display to its playback state.
// Exclusively owned by the Registry; fields are guarded by mu so two
// displays' monitors can be mutated concurrently without cross-locking.
type monitor struct {
	mu           sync.Mutex
	display      domain.Display
	playlistID   *int64
	playlistName string
	title        string
	surface      domain.Surface
}

// Registry keeps the monitor set consistent with live topology and
// routes show/hide/volume operations to the right surface.
type Registry struct {
	logger  *zap.Logger
	factory domain.SurfaceFactory
	bus     *events.Bus

	mu       sync.Mutex
	monitors map[domain.DisplayID]*monitor
}

// NewRegistry creates an empty registry. Surfaces are created lazily on
// the first ShowVideo for a display.
func NewRegistry(logger *zap.Logger, factory domain.SurfaceFactory, bus *events.Bus) *Registry {
	return &Registry{
		logger:   logger,
		factory:  factory,
		bus:      bus,
		monitors: make(map[domain.DisplayID]*monitor),
	}
}

// Reconcile adjusts the monitor set to match the live display set:
// monitors for vanished displays are torn down (surface closed first),
// new displays get a fresh monitor with no playlist and no surface.
// Idempotent: an unchanged set is a no-op and emits no signal.
// Returns the identities that were added and removed so the caller can
// adjust rotation timers; timers of surviving monitors are untouched.
func (r *Registry) Reconcile(displays []domain.Display) (added, removed []domain.DisplayID) {
	r.mu.Lock()

	current := make(map[domain.DisplayID]domain.Display, len(displays))
	for _, d := range displays {
		current[d.ID] = d
	}

	var stale []*monitor
	for id, m := range r.monitors {
		if _, ok := current[id]; !ok {
			removed = append(removed, id)
			stale = append(stale, m)
			delete(r.monitors, id)
		}
	}
	for id, d := range current {
		if _, ok := r.monitors[id]; !ok {
			added = append(added, id)
			r.monitors[id] = &monitor{display: d}
		}
	}
	changed := len(added) > 0 || len(removed) > 0
	r.mu.Unlock()

	// Surfaces are released outside the registry lock; a vanished
	// display's tick may still hold its monitor lock
	for _, m := range stale {
		m.mu.Lock()
		if m.surface != nil {
			if err := m.surface.Close(); err != nil {
				r.logger.Warn("Failed to close surface for removed display",
					zap.Uint64("display", uint64(m.display.ID)),
					zap.Error(err))
			}
			m.surface = nil
		}
		m.mu.Unlock()
	}

	if changed {
		r.logger.Info("Display topology reconciled",
			zap.Int("displays", len(displays)),
			zap.Int("added", len(added)),
			zap.Int("removed", len(removed)))
		r.bus.Publish(domain.Signal{
			Kind:     domain.SignalTopologyChanged,
			Displays: displays,
		})
	}
	return added, removed
}

// ShowVideo loads a video on the display's surface, creating the
// surface on first use, and updates the currently-showing title.
// An unknown display identity is a benign race and returns nil.
func (r *Registry) ShowVideo(ctx context.Context, id domain.DisplayID, title, path string) error {
	m := r.get(id)
	if m == nil {
		r.logger.Debug("ShowVideo for unknown display",
			zap.Uint64("display", uint64(id)))
		return nil
	}
	return r.showOn(ctx, m, title, path)
}

// showOn loads a video on a specific monitor. Re-checks tracking after
// taking the monitor lock: a Reconcile racing this call may have
// removed the monitor and closed its surface between the lookup and the
// lock, and creating a surface then would leave a window nothing can
// ever tear down.
func (r *Registry) showOn(ctx context.Context, m *monitor, title, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.display.ID
	if r.get(id) != m {
		r.logger.Debug("ShowVideo for display removed mid-call",
			zap.Uint64("display", uint64(id)))
		return nil
	}

	if m.surface == nil {
		surf, err := r.factory.New(m.display)
		if err != nil {
			return err
		}
		m.surface = surf
	}
	if err := m.surface.Load(ctx, path); err != nil {
		return err
	}
	m.title = title

	r.logger.Info("Video shown",
		zap.Uint64("display", uint64(id)),
		zap.String("title", title))
	r.bus.Publish(domain.Signal{
		Kind:   domain.SignalVideoChanged,
		Titles: map[domain.DisplayID]string{id: title},
	})
	return nil
}

// Hide releases the display's surface. The monitor entry remains for a
// later re-show but loses its title. Unknown displays are ignored.
func (r *Registry) Hide(id domain.DisplayID) {
	m := r.get(id)
	if m == nil {
		r.logger.Debug("Hide for unknown display",
			zap.Uint64("display", uint64(id)))
		return
	}

	m.mu.Lock()
	if m.surface != nil {
		if err := m.surface.Close(); err != nil {
			r.logger.Warn("Failed to close surface",
				zap.Uint64("display", uint64(id)),
				zap.Error(err))
		}
		m.surface = nil
	}
	m.title = ""
	m.mu.Unlock()

	r.bus.Publish(domain.Signal{
		Kind:   domain.SignalVideoChanged,
		Titles: map[domain.DisplayID]string{id: ""},
	})
}

// SetVolume applies a volume scalar to the display's live surface, if
// one exists. Unknown displays and surfaceless monitors are no-ops.
func (r *Registry) SetVolume(ctx context.Context, id domain.DisplayID, volume float64) error {
	m := r.get(id)
	if m == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.surface == nil {
		return nil
	}
	return m.surface.SetVolume(ctx, volume)
}

// SetBinding records the display's playlist binding for UI feedback.
// It does not touch surfaces or timers.
func (r *Registry) SetBinding(id domain.DisplayID, playlistID *int64, playlistName string) {
	m := r.get(id)
	if m == nil {
		return
	}
	m.mu.Lock()
	m.playlistID = playlistID
	m.playlistName = playlistName
	m.mu.Unlock()
}

// CurrentTitle returns the currently-showing title for a display, or
// false if the display is unknown.
func (r *Registry) CurrentTitle(id domain.DisplayID) (string, bool) {
	m := r.get(id)
	if m == nil {
		return "", false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.title, true
}

// CurrentPlaylistName returns the name of the display's bound playlist,
// or false if the display is unknown.
func (r *Registry) CurrentPlaylistName(id domain.DisplayID) (string, bool) {
	m := r.get(id)
	if m == nil {
		return "", false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playlistName, true
}

// Get returns the UI-facing info for one display, or false if the
// display is not tracked.
func (r *Registry) Get(id domain.DisplayID) (domain.ScreenInfo, bool) {
	m := r.get(id)
	if m == nil {
		return domain.ScreenInfo{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.ScreenInfo{
		Display:      m.display,
		PlaylistName: m.playlistName,
		VideoTitle:   m.title,
	}, true
}

// Snapshot returns UI-facing infos for every tracked display.
func (r *Registry) Snapshot() []domain.ScreenInfo {
	r.mu.Lock()
	monitors := make([]*monitor, 0, len(r.monitors))
	for _, m := range r.monitors {
		monitors = append(monitors, m)
	}
	r.mu.Unlock()

	infos := make([]domain.ScreenInfo, 0, len(monitors))
	for _, m := range monitors {
		m.mu.Lock()
		infos = append(infos, domain.ScreenInfo{
			Display:      m.display,
			PlaylistName: m.playlistName,
			VideoTitle:   m.title,
		})
		m.mu.Unlock()
	}
	return infos
}

// Close releases every surface. Used at daemon shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	monitors := make([]*monitor, 0, len(r.monitors))
	for _, m := range r.monitors {
		monitors = append(monitors, m)
	}
	r.mu.Unlock()

	for _, m := range monitors {
		m.mu.Lock()
		if m.surface != nil {
			_ = m.surface.Close()
			m.surface = nil
		}
		m.mu.Unlock()
	}
}

func (r *Registry) get(id domain.DisplayID) *monitor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.monitors[id]
}
