// Package playconfig bridges durable ScreenPlayConfig rows and the live
// rotation state. It caches rows in memory so the scheduler can read
// period, cursor and volume without a store round trip, and funnels
// every write through upsert semantics keyed on display identity.
package playconfig

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/motionwall/motionwall/internal/domain"
)

// DefaultPeriodMin is the rotation period assigned when a display is
// configured for the first time without an explicit period.
const DefaultPeriodMin = 30

const defaultVolume = 1.0

// Adapter caches ScreenPlayConfig rows and mediates store access.
// The in-memory cache stays authoritative for the session even when a
// persistence write fails; the failure is returned so callers can warn.
type Adapter struct {
	logger *zap.Logger
	store  domain.Store

	mu    sync.Mutex
	cache map[domain.DisplayID]*domain.ScreenPlayConfig
}

// NewAdapter creates an adapter with an empty cache; call LoadAll at
// startup to populate it.
func NewAdapter(logger *zap.Logger, store domain.Store) *Adapter {
	return &Adapter{
		logger: logger,
		store:  store,
		cache:  make(map[domain.DisplayID]*domain.ScreenPlayConfig),
	}
}

// LoadAll reads every persisted row into the cache and returns copies
// for the caller to restore rotation from.
func (a *Adapter) LoadAll(ctx context.Context) ([]*domain.ScreenPlayConfig, error) {
	rows, err := a.store.ListScreenPlayConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load screen play configs: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]*domain.ScreenPlayConfig, 0, len(rows))
	for _, row := range rows {
		a.cache[row.ScreenID] = row
		cp := *row
		out = append(out, &cp)
	}
	a.logger.Info("Screen play configs loaded", zap.Int("rows", len(rows)))
	return out, nil
}

// Get returns a copy of the display's cached config, or nil if the
// display was never configured.
func (a *Adapter) Get(id domain.DisplayID) *domain.ScreenPlayConfig {
	a.mu.Lock()
	defer a.mu.Unlock()
	if cfg, ok := a.cache[id]; ok {
		cp := *cfg
		return &cp
	}
	return nil
}

// Cursor returns the display's persisted rotation cursor, -1 if the
// display was never configured.
func (a *Adapter) Cursor(id domain.DisplayID) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if cfg, ok := a.cache[id]; ok {
		return cfg.CurIndex
	}
	return -1
}

// Volume returns the display's persisted volume, defaulting to full.
func (a *Adapter) Volume(id domain.DisplayID) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if cfg, ok := a.cache[id]; ok {
		return cfg.Volume
	}
	return defaultVolume
}

// SaveBinding records a playlist binding, creating the display's row on
// first configuration and preserving its volume preference otherwise.
func (a *Adapter) SaveBinding(ctx context.Context, id domain.DisplayID, playlistID int64, periodMin int, policy domain.LoopPolicy, cursor int) error {
	return a.mutate(ctx, id, func(cfg *domain.ScreenPlayConfig) {
		cfg.PlaylistID = &playlistID
		cfg.PeriodMin = periodMin
		cfg.LoopType = policy
		cfg.CurIndex = cursor
	})
}

// ClearBinding removes the playlist binding and cursor but keeps the
// row, preserving the display's period and volume preferences.
func (a *Adapter) ClearBinding(ctx context.Context, id domain.DisplayID) error {
	a.mu.Lock()
	_, known := a.cache[id]
	a.mu.Unlock()
	if !known {
		// Nothing persisted for this display; nothing to clear
		return nil
	}
	return a.mutate(ctx, id, func(cfg *domain.ScreenPlayConfig) {
		cfg.PlaylistID = nil
		cfg.CurIndex = -1
	})
}

// SaveCursor persists the display's rotation cursor.
func (a *Adapter) SaveCursor(ctx context.Context, id domain.DisplayID, cursor int) error {
	return a.mutate(ctx, id, func(cfg *domain.ScreenPlayConfig) {
		cfg.CurIndex = cursor
	})
}

// SetPeriod persists the display's rotation period in minutes.
func (a *Adapter) SetPeriod(ctx context.Context, id domain.DisplayID, periodMin int) error {
	return a.mutate(ctx, id, func(cfg *domain.ScreenPlayConfig) {
		cfg.PeriodMin = periodMin
	})
}

// SetLoopPolicy persists the display's loop policy.
func (a *Adapter) SetLoopPolicy(ctx context.Context, id domain.DisplayID, policy domain.LoopPolicy) error {
	return a.mutate(ctx, id, func(cfg *domain.ScreenPlayConfig) {
		cfg.LoopType = policy
	})
}

// SetVolume persists the display's volume scalar.
func (a *Adapter) SetVolume(ctx context.Context, id domain.DisplayID, volume float64) error {
	return a.mutate(ctx, id, func(cfg *domain.ScreenPlayConfig) {
		cfg.Volume = volume
	})
}

// PurgeOrphans deletes rows whose display identity is not in the known
// set. Rows are never deleted automatically; this is an explicit
// administrative operation.
func (a *Adapter) PurgeOrphans(ctx context.Context, known []domain.DisplayID) (int, error) {
	knownSet := make(map[domain.DisplayID]bool, len(known))
	for _, id := range known {
		knownSet[id] = true
	}

	rows, err := a.store.ListScreenPlayConfigs(ctx)
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, row := range rows {
		if knownSet[row.ScreenID] {
			continue
		}
		if err := a.store.DeleteScreenPlayConfig(ctx, row.ID); err != nil {
			return purged, fmt.Errorf("failed to purge config %d: %w", row.ID, err)
		}
		a.mu.Lock()
		delete(a.cache, row.ScreenID)
		a.mu.Unlock()
		purged++
		a.logger.Info("Purged orphaned screen play config",
			zap.Int64("row", row.ID),
			zap.Uint64("display", uint64(row.ScreenID)))
	}
	return purged, nil
}

// mutate applies an edit to the display's config (creating a default
// row on first configuration), updates the cache, and upserts the row.
// The cache keeps the new value even when the write fails.
func (a *Adapter) mutate(ctx context.Context, id domain.DisplayID, edit func(*domain.ScreenPlayConfig)) error {
	a.mu.Lock()
	cfg, ok := a.cache[id]
	if !ok {
		// Try the store first: the row may exist from a previous
		// session that predates this cache
		a.mu.Unlock()
		stored, err := a.store.GetScreenPlayConfig(ctx, id)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		a.mu.Lock()
		if cfg, ok = a.cache[id]; !ok {
			if stored != nil {
				cfg = stored
			} else {
				cfg = &domain.ScreenPlayConfig{
					ScreenID:  id,
					PeriodMin: DefaultPeriodMin,
					CurIndex:  -1,
					LoopType:  domain.LoopOrder,
					Volume:    defaultVolume,
				}
			}
			a.cache[id] = cfg
		}
	}
	edit(cfg)
	cp := *cfg
	a.mu.Unlock()

	if err := a.store.UpsertScreenPlayConfig(ctx, &cp); err != nil {
		return fmt.Errorf("failed to persist screen play config: %w", err)
	}

	// The store assigns the row id on first insert
	a.mu.Lock()
	if cached, ok := a.cache[id]; ok && cached.ID == 0 {
		cached.ID = cp.ID
	}
	a.mu.Unlock()
	return nil
}
