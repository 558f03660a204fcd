// Package scheduler drives time-based playlist rotation: one
// independent timer task per display with a bound playlist. Timer
// mutations for a display are serialized through that display's own
// lock; different displays never block each other's operations or
// ticks.
package scheduler

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/motionwall/motionwall/internal/domain"
	"github.com/motionwall/motionwall/internal/playconfig"
	"github.com/motionwall/motionwall/internal/registry"
)

const tickTimeout = 30 * time.Second

// rotator commands, delivered on the per-display command channel so the
// rotation task mutates its own state instead of sharing memory.
type rotatorCmd interface{ isCmd() }

type advanceCmd struct{}
type policyCmd struct{ policy domain.LoopPolicy }
type volumeCmd struct{ volume float64 }

func (advanceCmd) isCmd() {}
func (policyCmd) isCmd()  {}
func (volumeCmd) isCmd()  {}

// rotator is one display's rotation task. The cursor and policy are
// owned by the task goroutine after start; configuration changes arrive
// as commands.
type rotator struct {
	displayID  domain.DisplayID
	playlistID int64
	period     time.Duration
	policy     domain.LoopPolicy
	cursor     int
	volume     float64

	// first action of the task, before the first full period elapses:
	// advance to the next video (fresh bind) or re-show the persisted
	// cursor (restart/reconnect resume)
	advanceOnStart bool
	showOnStart    bool

	cmds     chan rotatorCmd
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// stop cancels the rotator and waits for its task to finish. A tick
// already in flight completes; no further ticks occur. Idempotent.
func (r *rotator) stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	<-r.done
}

// Scheduler owns every rotator. All exported methods are safe for
// concurrent use: mutations for one display are serialized through that
// display's lock, while the scheduler-wide mutex only guards map
// access, so a slow bind or teardown on one display cannot stall
// another display's operations.
//
// Persistence failures never stop the live effect: the in-memory
// rotation state stays authoritative for the session and the store
// error is returned for the caller to report.
type Scheduler struct {
	logger   *zap.Logger
	store    domain.Store
	resolver domain.Resolver
	registry *registry.Registry
	configs  *playconfig.Adapter

	mu       sync.Mutex
	rotators map[domain.DisplayID]*rotator
	locks    map[domain.DisplayID]*sync.Mutex
}

// NewScheduler creates a scheduler with no active timers.
func NewScheduler(
	logger *zap.Logger,
	store domain.Store,
	resolver domain.Resolver,
	reg *registry.Registry,
	configs *playconfig.Adapter,
) *Scheduler {
	return &Scheduler{
		logger:   logger,
		store:    store,
		resolver: resolver,
		registry: reg,
		configs:  configs,
		rotators: make(map[domain.DisplayID]*rotator),
		locks:    make(map[domain.DisplayID]*sync.Mutex),
	}
}

// Bind attaches a playlist to a display and starts its rotation timer.
// Rebinding the same playlist is a no-op so a user re-selecting it does
// not restart an in-progress rotation. The first video is shown
// immediately rather than after a full period. A persistence failure is
// returned but the rotation still starts.
func (s *Scheduler) Bind(ctx context.Context, id domain.DisplayID, playlistID int64, periodMin int, policy domain.LoopPolicy) error {
	return s.bind(ctx, id, playlistID, periodMin, policy, -1, false)
}

// Restore is the restart path of Bind: it re-shows the video at the
// persisted cursor without advancing, then waits a full period before
// the next advance.
func (s *Scheduler) Restore(ctx context.Context, cfg *domain.ScreenPlayConfig) error {
	if cfg.PlaylistID == nil {
		return nil
	}
	return s.bind(ctx, cfg.ScreenID, *cfg.PlaylistID, cfg.PeriodMin, cfg.LoopType, cfg.CurIndex, true)
}

func (s *Scheduler) bind(ctx context.Context, id domain.DisplayID, playlistID int64, periodMin int, policy domain.LoopPolicy, cursor int, resume bool) error {
	if periodMin < 1 {
		periodMin = 1
	}

	l := s.displayLock(id)
	l.Lock()
	defer l.Unlock()

	if existing := s.lookup(id); existing != nil {
		// playlistID is immutable after rotator creation
		if existing.playlistID == playlistID {
			s.logger.Debug("Rebind to same playlist ignored",
				zap.Uint64("display", uint64(id)),
				zap.Int64("playlist", playlistID))
			return nil
		}
		s.remove(existing)
		existing.stop()
	}

	saveErr := s.configs.SaveBinding(ctx, id, playlistID, periodMin, policy, cursor)
	if saveErr != nil {
		s.logger.Error("Playlist binding not persisted",
			zap.Uint64("display", uint64(id)),
			zap.Error(saveErr))
	}

	r := &rotator{
		displayID:      id,
		playlistID:     playlistID,
		period:         time.Duration(periodMin) * time.Minute,
		policy:         policy,
		cursor:         cursor,
		volume:         s.configs.Volume(id),
		advanceOnStart: !resume,
		showOnStart:    resume && cursor >= 0,
		cmds:           make(chan rotatorCmd, 4),
		stopCh:         make(chan struct{}),
		done:           make(chan struct{}),
	}
	s.insert(r)

	if playlist, err := s.store.GetPlaylist(ctx, playlistID); err == nil {
		s.registry.SetBinding(id, &playlistID, playlist.Title)
	} else {
		s.registry.SetBinding(id, &playlistID, "")
	}

	go s.run(r)

	s.logger.Info("Playlist bound",
		zap.Uint64("display", uint64(id)),
		zap.Int64("playlist", playlistID),
		zap.Int("periodMin", periodMin),
		zap.String("policy", string(policy)),
		zap.Bool("resume", resume))
	return saveErr
}

// Unbind cancels the display's rotation timer, clears the persisted
// playlist binding and cursor (period and volume preferences are kept),
// and hides the display's surface. Unbinding an unbound display only
// clears any persisted binding.
func (s *Scheduler) Unbind(ctx context.Context, id domain.DisplayID) error {
	l := s.displayLock(id)
	l.Lock()
	defer l.Unlock()

	if r := s.lookup(id); r != nil {
		s.remove(r)
		r.stop()
	}

	err := s.configs.ClearBinding(ctx, id)
	s.registry.SetBinding(id, nil, "")
	s.registry.Hide(id)

	s.logger.Info("Playlist unbound", zap.Uint64("display", uint64(id)))
	return err
}

// Drop cancels the display's timer without touching persisted state or
// surfaces. Used when the display itself disappears: its config row
// survives so a later reconnection resumes rotation.
func (s *Scheduler) Drop(id domain.DisplayID) {
	l := s.displayLock(id)
	l.Lock()
	defer l.Unlock()

	if r := s.lookup(id); r != nil {
		s.remove(r)
		r.stop()
		s.logger.Debug("Rotation timer dropped with display",
			zap.Uint64("display", uint64(id)))
	}
}

// Advance asks the display's rotation task to skip to the next video
// now. A display with no bound playlist is a benign no-op.
func (s *Scheduler) Advance(id domain.DisplayID) {
	s.send(id, advanceCmd{})
}

// SetPeriod changes the display's rotation period. A running timer is
// cancelled and recreated at the new period rather than mutated, so the
// in-flight interval cannot drift from the configured value. The live
// timer is recreated even when persisting the new period fails; the
// failure is returned.
func (s *Scheduler) SetPeriod(ctx context.Context, id domain.DisplayID, periodMin int) error {
	if periodMin < 1 {
		periodMin = 1
	}

	l := s.displayLock(id)
	l.Lock()
	defer l.Unlock()

	saveErr := s.configs.SetPeriod(ctx, id, periodMin)

	r := s.lookup(id)
	if r == nil {
		return saveErr
	}
	s.remove(r)
	r.stop()

	// The stopped rotator's cursor/policy/volume are the live values
	next := &rotator{
		displayID:  id,
		playlistID: r.playlistID,
		period:     time.Duration(periodMin) * time.Minute,
		policy:     r.policy,
		cursor:     r.cursor,
		volume:     r.volume,
		cmds:       make(chan rotatorCmd, 4),
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
	}
	s.insert(next)
	go s.run(next)

	s.logger.Info("Rotation period changed",
		zap.Uint64("display", uint64(id)),
		zap.Int("periodMin", periodMin))
	return saveErr
}

// SetLoopPolicy changes how the next playlist index is chosen. The live
// policy changes even when persisting it fails; the failure is
// returned.
func (s *Scheduler) SetLoopPolicy(ctx context.Context, id domain.DisplayID, policy domain.LoopPolicy) error {
	saveErr := s.configs.SetLoopPolicy(ctx, id, policy)
	s.send(id, policyCmd{policy: policy})
	return saveErr
}

// SetVolume persists the display's volume and applies it to the live
// surface immediately. Timers are unaffected. The volume is applied
// even when persisting it fails.
func (s *Scheduler) SetVolume(ctx context.Context, id domain.DisplayID, volume float64) error {
	if volume < 0 {
		volume = 0
	} else if volume > 1 {
		volume = 1
	}
	saveErr := s.configs.SetVolume(ctx, id, volume)
	s.send(id, volumeCmd{volume: volume})
	return multierr.Append(saveErr, s.registry.SetVolume(ctx, id, volume))
}

// Bound reports whether the display currently has a rotation timer.
func (s *Scheduler) Bound(id domain.DisplayID) bool {
	return s.lookup(id) != nil
}

// Shutdown cancels every rotation timer and waits for the tasks to
// exit. Persisted state is untouched.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	rotators := make([]*rotator, 0, len(s.rotators))
	for _, r := range s.rotators {
		rotators = append(rotators, r)
	}
	s.rotators = make(map[domain.DisplayID]*rotator)
	s.mu.Unlock()

	for _, r := range rotators {
		r.stop()
	}
}

// displayLock returns the display's mutation lock, creating it on first
// use. Serializes bind/unbind/period changes per display without
// displays blocking each other.
func (s *Scheduler) displayLock(id domain.DisplayID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *Scheduler) lookup(id domain.DisplayID) *rotator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rotators[id]
}

func (s *Scheduler) insert(r *rotator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotators[r.displayID] = r
}

func (s *Scheduler) remove(r *rotator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rotators[r.displayID] == r {
		delete(s.rotators, r.displayID)
	}
}

// send delivers a command to a display's rotation task, dropping it if
// the display is unbound.
func (s *Scheduler) send(id domain.DisplayID, cmd rotatorCmd) {
	r := s.lookup(id)
	if r == nil {
		s.logger.Debug("Command for unbound display dropped",
			zap.Uint64("display", uint64(id)))
		return
	}
	select {
	case r.cmds <- cmd:
	case <-r.stopCh:
	}
}

// run is the per-display rotation task. The initial show happens here,
// as the task's first action, so a slow surface spawn on one display
// never blocks callers or other displays.
func (s *Scheduler) run(r *rotator) {
	defer close(r.done)

	select {
	case <-r.stopCh:
		return
	default:
	}
	if r.advanceOnStart {
		s.timedTick(r)
	} else if r.showOnStart {
		s.timedShowCurrent(r)
	}

	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			s.timedTick(r)
		case cmd := <-r.cmds:
			switch c := cmd.(type) {
			case advanceCmd:
				s.timedTick(r)
			case policyCmd:
				r.policy = c.policy
			case volumeCmd:
				r.volume = c.volume
			}
		}
	}
}

func (s *Scheduler) timedTick(r *rotator) {
	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()
	s.tick(ctx, r)
}

func (s *Scheduler) timedShowCurrent(r *rotator) {
	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()
	s.showCurrent(ctx, r)
}

// tick advances one display's rotation by a single step: re-resolve
// playlist membership, pick the next index per policy, persist the
// cursor, show the video. Every anomaly short of a store failure is a
// silent skip that leaves the previous video showing.
func (s *Scheduler) tick(ctx context.Context, r *rotator) {
	videos, ok := s.resolveMembers(ctx, r)
	if !ok {
		return
	}

	var next int
	switch r.policy {
	case domain.LoopRandom:
		next = rand.Intn(len(videos))
	default:
		next = (r.cursor + 1) % len(videos)
	}
	r.cursor = next

	// The in-memory cursor stays authoritative for this session even
	// if the write fails; the failure is only reported
	if err := s.configs.SaveCursor(ctx, r.displayID, next); err != nil {
		s.logger.Error("Failed to persist rotation cursor",
			zap.Uint64("display", uint64(r.displayID)),
			zap.Error(err))
	}

	s.show(ctx, r, videos[next])
}

// showCurrent re-shows the video at the rotator's cursor without
// advancing it. Used on restart/reconnect so the display is not blank
// until the first full period elapses. A cursor outside the current
// membership is a silent skip; the next tick advances past it.
func (s *Scheduler) showCurrent(ctx context.Context, r *rotator) {
	videos, ok := s.resolveMembers(ctx, r)
	if !ok {
		return
	}
	if r.cursor < 0 || r.cursor >= len(videos) {
		s.logger.Debug("Persisted cursor outside playlist, waiting for next tick",
			zap.Uint64("display", uint64(r.displayID)),
			zap.Int("cursor", r.cursor),
			zap.Int("members", len(videos)))
		return
	}
	s.show(ctx, r, videos[r.cursor])
}

// resolveMembers re-resolves playlist membership fresh, so playlist
// edits take effect without invalidation. Returns ok=false on any
// skip condition.
func (s *Scheduler) resolveMembers(ctx context.Context, r *rotator) ([]*domain.Video, bool) {
	playlist, err := s.store.GetPlaylist(ctx, r.playlistID)
	if err != nil {
		s.logger.Debug("Tick skipped, playlist unavailable",
			zap.Uint64("display", uint64(r.displayID)),
			zap.Int64("playlist", r.playlistID),
			zap.Error(err))
		return nil, false
	}

	videos, err := s.store.GetVideos(ctx, playlist.VideoIDs)
	if err != nil {
		s.logger.Warn("Tick skipped, video lookup failed",
			zap.Uint64("display", uint64(r.displayID)),
			zap.Error(err))
		return nil, false
	}
	if len(videos) == 0 {
		s.logger.Debug("Tick skipped, empty playlist",
			zap.Uint64("display", uint64(r.displayID)),
			zap.Int64("playlist", r.playlistID))
		return nil, false
	}
	return videos, true
}

// show resolves the video's file and loads it on the display's surface.
// A missing file is a silent skip leaving the previous video showing.
func (s *Scheduler) show(ctx context.Context, r *rotator, video *domain.Video) {
	path, err := s.resolver.Resolve(video)
	if err != nil {
		s.logger.Debug("Tick skipped, media file unavailable",
			zap.Uint64("display", uint64(r.displayID)),
			zap.Int64("video", video.ID),
			zap.Error(err))
		return
	}

	if err := s.registry.ShowVideo(ctx, r.displayID, video.Title, path); err != nil {
		s.logger.Warn("Failed to show video",
			zap.Uint64("display", uint64(r.displayID)),
			zap.String("title", video.Title),
			zap.Error(err))
		return
	}
	if err := s.registry.SetVolume(ctx, r.displayID, r.volume); err != nil {
		s.logger.Debug("Failed to apply volume",
			zap.Uint64("display", uint64(r.displayID)),
			zap.Error(err))
	}
}
