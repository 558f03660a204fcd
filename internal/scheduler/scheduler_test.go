package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/motionwall/motionwall/internal/domain"
	"github.com/motionwall/motionwall/internal/events"
	"github.com/motionwall/motionwall/internal/playconfig"
	"github.com/motionwall/motionwall/internal/registry"
	"github.com/motionwall/motionwall/internal/store"
)

const testDisplay = domain.DisplayID(42)

type fakeSurface struct {
	loads chan string

	mu     sync.Mutex
	volume float64
	closed bool
}

func (s *fakeSurface) Load(ctx context.Context, path string) error {
	s.loads <- path
	return nil
}

func (s *fakeSurface) SetVolume(ctx context.Context, volume float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = volume
	return nil
}

func (s *fakeSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type fakeFactory struct {
	loads chan string

	mu      sync.Mutex
	created []*fakeSurface
}

func (f *fakeFactory) New(display domain.Display) (domain.Surface, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &fakeSurface{loads: f.loads}
	f.created = append(f.created, s)
	return s, nil
}

type fakeResolver struct {
	mu      sync.Mutex
	missing map[int64]bool
}

func (r *fakeResolver) Resolve(v *domain.Video) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.missing[v.ID] {
		return "", fmt.Errorf("video file unavailable")
	}
	return fmt.Sprintf("/lib/%d/%s", v.ID, v.File), nil
}

// flakyStore wraps the real store with switchable write failures.
type flakyStore struct {
	domain.Store

	mu         sync.Mutex
	failWrites bool
}

func (f *flakyStore) setFailWrites(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrites = v
}

func (f *flakyStore) UpsertScreenPlayConfig(ctx context.Context, cfg *domain.ScreenPlayConfig) error {
	f.mu.Lock()
	fail := f.failWrites
	f.mu.Unlock()
	if fail {
		return fmt.Errorf("write failed")
	}
	return f.Store.UpsertScreenPlayConfig(ctx, cfg)
}

// seedCatalog inserts a three-video playlist and returns its id.
func seedCatalog(t *testing.T, st domain.Store) int64 {
	t.Helper()
	ctx := context.Background()

	var videoIDs []int64
	for _, name := range []string{"ocean", "forest", "city"} {
		id, err := st.InsertVideo(ctx, &domain.Video{Title: name, File: name + ".mp4"})
		if err != nil {
			t.Fatalf("insert video: %v", err)
		}
		videoIDs = append(videoIDs, id)
	}
	playlistID, err := st.InsertPlaylist(ctx, &domain.Playlist{Title: "Nature", VideoIDs: videoIDs})
	if err != nil {
		t.Fatalf("insert playlist: %v", err)
	}
	return playlistID
}

type env struct {
	store      *store.SQLiteStore
	flaky      *flakyStore
	configs    *playconfig.Adapter
	registry   *registry.Registry
	sched      *Scheduler
	factory    *fakeFactory
	resolver   *fakeResolver
	loads      chan string
	playlistID int64
}

// newEnv builds a scheduler over an in-memory store seeded with a
// three-video playlist and one reconciled display.
func newEnv(t *testing.T) *env {
	t.Helper()

	st, err := store.Open(zap.NewNop(), ":memory:", store.Options{})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	playlistID := seedCatalog(t, st)
	flaky := &flakyStore{Store: st}

	loads := make(chan string, 128)
	factory := &fakeFactory{loads: loads}
	bus := events.NewBus(zap.NewNop())
	reg := registry.NewRegistry(zap.NewNop(), factory, bus)
	reg.Reconcile([]domain.Display{{ID: testDisplay, Name: "Test", Width: 1920, Height: 1080}})

	resolver := &fakeResolver{missing: make(map[int64]bool)}
	configs := playconfig.NewAdapter(zap.NewNop(), flaky)
	sched := NewScheduler(zap.NewNop(), flaky, resolver, reg, configs)
	t.Cleanup(sched.Shutdown)

	return &env{
		store:      st,
		flaky:      flaky,
		configs:    configs,
		registry:   reg,
		sched:      sched,
		factory:    factory,
		resolver:   resolver,
		loads:      loads,
		playlistID: playlistID,
	}
}

func (e *env) waitLoad(t *testing.T) string {
	t.Helper()
	select {
	case path := <-e.loads:
		return path
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for video load")
		return ""
	}
}

func (e *env) expectNoLoad(t *testing.T) {
	t.Helper()
	select {
	case path := <-e.loads:
		t.Fatalf("unexpected video load: %s", path)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBindShowsFirstVideoImmediately(t *testing.T) {
	e := newEnv(t)

	if err := e.sched.Bind(context.Background(), testDisplay, e.playlistID, 1, domain.LoopOrder); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	if path := e.waitLoad(t); path != "/lib/1/ocean.mp4" {
		t.Errorf("first video: got %s, want /lib/1/ocean.mp4", path)
	}
	if cursor := e.configs.Cursor(testDisplay); cursor != 0 {
		t.Errorf("cursor after first show: got %d, want 0", cursor)
	}
	if !e.sched.Bound(testDisplay) {
		t.Error("display should be bound")
	}
}

func TestOrderPolicyVisitsEachIndexThenWraps(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if err := e.sched.Bind(ctx, testDisplay, e.playlistID, 1, domain.LoopOrder); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	e.waitLoad(t) // index 0

	want := []string{"/lib/2/forest.mp4", "/lib/3/city.mp4", "/lib/1/ocean.mp4"}
	for i, expected := range want {
		e.sched.Advance(testDisplay)
		if path := e.waitLoad(t); path != expected {
			t.Errorf("advance %d: got %s, want %s", i+1, path, expected)
		}
	}

	if cursor := e.configs.Cursor(testDisplay); cursor != 0 {
		t.Errorf("cursor after wraparound: got %d, want 0", cursor)
	}
}

func TestRandomPolicyEventuallyVisitsEveryIndex(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if err := e.sched.Bind(ctx, testDisplay, e.playlistID, 1, domain.LoopRandom); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	seen := map[string]bool{e.waitLoad(t): true}

	for i := 0; i < 100 && len(seen) < 3; i++ {
		e.sched.Advance(testDisplay)
		seen[e.waitLoad(t)] = true
	}
	if len(seen) != 3 {
		t.Errorf("random policy left indices unreachable, visited %v", seen)
	}
}

func TestRebindSamePlaylistIsNoop(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if err := e.sched.Bind(ctx, testDisplay, e.playlistID, 1, domain.LoopOrder); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	e.waitLoad(t)
	e.sched.Advance(testDisplay)
	e.waitLoad(t) // cursor now 1

	if err := e.sched.Bind(ctx, testDisplay, e.playlistID, 1, domain.LoopOrder); err != nil {
		t.Fatalf("rebind: %v", err)
	}

	e.expectNoLoad(t)
	if cursor := e.configs.Cursor(testDisplay); cursor != 1 {
		t.Errorf("rebind reset cursor: got %d, want 1", cursor)
	}
}

func TestUnbindCancelsRotationAndClearsBinding(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if err := e.sched.Bind(ctx, testDisplay, e.playlistID, 5, domain.LoopOrder); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	e.waitLoad(t)

	if err := e.sched.Unbind(ctx, testDisplay); err != nil {
		t.Fatalf("Unbind: %v", err)
	}

	if e.sched.Bound(testDisplay) {
		t.Error("display still bound after unbind")
	}

	surf := e.factory.created[0]
	surf.mu.Lock()
	closed := surf.closed
	surf.mu.Unlock()
	if !closed {
		t.Error("surface not hidden on unbind")
	}

	// No further rotation
	e.sched.Advance(testDisplay)
	e.expectNoLoad(t)

	// Binding and cursor cleared, period preference kept
	cfg, err := e.store.GetScreenPlayConfig(ctx, testDisplay)
	if err != nil {
		t.Fatalf("GetScreenPlayConfig: %v", err)
	}
	if cfg.PlaylistID != nil {
		t.Error("playlist binding not cleared")
	}
	if cfg.CurIndex != -1 {
		t.Errorf("cursor not cleared: %d", cfg.CurIndex)
	}
	if cfg.PeriodMin != 5 {
		t.Errorf("period preference lost: %d", cfg.PeriodMin)
	}
}

func TestEmptyPlaylistTickSkipsSilently(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	emptyID, err := e.store.InsertPlaylist(ctx, &domain.Playlist{Title: "Empty"})
	if err != nil {
		t.Fatalf("insert playlist: %v", err)
	}

	if err := e.sched.Bind(ctx, testDisplay, emptyID, 1, domain.LoopOrder); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	e.expectNoLoad(t)
	if cursor := e.configs.Cursor(testDisplay); cursor != -1 {
		t.Errorf("cursor advanced on empty playlist: %d", cursor)
	}
}

func TestMissingFileSkipsAndKeepsPreviousVideo(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if err := e.sched.Bind(ctx, testDisplay, e.playlistID, 1, domain.LoopOrder); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	e.waitLoad(t) // ocean showing

	e.resolver.mu.Lock()
	e.resolver.missing[2] = true // forest's file vanishes
	e.resolver.mu.Unlock()

	e.sched.Advance(testDisplay)
	e.expectNoLoad(t)

	if title, _ := e.registry.CurrentTitle(testDisplay); title != "ocean" {
		t.Errorf("previous video lost: showing %q", title)
	}

	// Next advance moves past the missing file
	e.sched.Advance(testDisplay)
	if path := e.waitLoad(t); path != "/lib/3/city.mp4" {
		t.Errorf("expected city after skipped forest, got %s", path)
	}
}

func TestSetPeriodRecreatesTimerKeepsCursor(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if err := e.sched.Bind(ctx, testDisplay, e.playlistID, 1, domain.LoopOrder); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	e.waitLoad(t)
	e.sched.Advance(testDisplay)
	e.waitLoad(t) // cursor 1

	if err := e.sched.SetPeriod(ctx, testDisplay, 10); err != nil {
		t.Fatalf("SetPeriod: %v", err)
	}

	if !e.sched.Bound(testDisplay) {
		t.Fatal("display unbound by period change")
	}
	cfg, err := e.store.GetScreenPlayConfig(ctx, testDisplay)
	if err != nil {
		t.Fatalf("GetScreenPlayConfig: %v", err)
	}
	if cfg.PeriodMin != 10 {
		t.Errorf("period not persisted: %d", cfg.PeriodMin)
	}

	// Rotation continues from the same cursor, no re-show in between
	e.sched.Advance(testDisplay)
	if path := e.waitLoad(t); path != "/lib/3/city.mp4" {
		t.Errorf("expected city after period change, got %s", path)
	}
}

func TestSetLoopPolicyPersists(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if err := e.sched.Bind(ctx, testDisplay, e.playlistID, 1, domain.LoopOrder); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	e.waitLoad(t)

	if err := e.sched.SetLoopPolicy(ctx, testDisplay, domain.LoopRandom); err != nil {
		t.Fatalf("SetLoopPolicy: %v", err)
	}

	cfg, err := e.store.GetScreenPlayConfig(ctx, testDisplay)
	if err != nil {
		t.Fatalf("GetScreenPlayConfig: %v", err)
	}
	if cfg.LoopType != domain.LoopRandom {
		t.Errorf("policy not persisted: %s", cfg.LoopType)
	}
}

func TestSetVolumeAppliesImmediately(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if err := e.sched.Bind(ctx, testDisplay, e.playlistID, 1, domain.LoopOrder); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	e.waitLoad(t)

	if err := e.sched.SetVolume(ctx, testDisplay, 0.3); err != nil {
		t.Fatalf("SetVolume: %v", err)
	}

	surf := e.factory.created[0]
	surf.mu.Lock()
	volume := surf.volume
	surf.mu.Unlock()
	if volume != 0.3 {
		t.Errorf("volume not applied to live surface: %f", volume)
	}

	cfg, err := e.store.GetScreenPlayConfig(ctx, testDisplay)
	if err != nil {
		t.Fatalf("GetScreenPlayConfig: %v", err)
	}
	if cfg.Volume != 0.3 {
		t.Errorf("volume not persisted: %f", cfg.Volume)
	}
}

// TestRestoreResumesFromPersistedCursor simulates a process restart:
// fresh adapter and scheduler over the same store must re-show the
// video at the persisted cursor, then advance from it.
func TestRestoreResumesFromPersistedCursor(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if err := e.sched.Bind(ctx, testDisplay, e.playlistID, 5, domain.LoopOrder); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	e.waitLoad(t)
	e.sched.Advance(testDisplay)
	e.waitLoad(t) // cursor persisted at 1
	e.sched.Shutdown()

	// "Restart": new adapter and scheduler over the same database
	configs := playconfig.NewAdapter(zap.NewNop(), e.store)
	rows, err := configs.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 persisted config, got %d", len(rows))
	}
	cfg := rows[0]
	if cfg.PeriodMin != 5 || cfg.LoopType != domain.LoopOrder || cfg.CurIndex != 1 {
		t.Fatalf("persisted config mismatch: %+v", cfg)
	}

	sched := NewScheduler(zap.NewNop(), e.store, e.resolver, e.registry, configs)
	t.Cleanup(sched.Shutdown)

	if err := sched.Restore(ctx, cfg); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	// The persisted cursor's video reappears without advancing
	if path := e.waitLoad(t); path != "/lib/2/forest.mp4" {
		t.Errorf("expected forest re-shown at cursor 1, got %s", path)
	}
	if cursor := configs.Cursor(testDisplay); cursor != 1 {
		t.Errorf("restore advanced the cursor: %d", cursor)
	}
	if !sched.Bound(testDisplay) {
		t.Fatal("display not bound after restore")
	}

	// The first post-restart advance moves on from the persisted cursor
	sched.Advance(testDisplay)
	if path := e.waitLoad(t); path != "/lib/3/city.mp4" {
		t.Errorf("expected city (cursor 1 -> 2), got %s", path)
	}
}

// TestTopologyLossDropsTimer covers a display vanishing while bound:
// its timer is cancelled while its persisted row survives, and a later
// display with the same identity starts an independent rotation.
func TestTopologyLossDropsTimer(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if err := e.sched.Bind(ctx, testDisplay, e.playlistID, 1, domain.LoopOrder); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	e.waitLoad(t)

	// Display disappears
	_, removed := e.registry.Reconcile(nil)
	if len(removed) != 1 {
		t.Fatalf("expected 1 removal, got %d", len(removed))
	}
	e.sched.Drop(testDisplay)

	if e.sched.Bound(testDisplay) {
		t.Error("timer survived display removal")
	}
	e.sched.Advance(testDisplay)
	e.expectNoLoad(t)

	// Persisted row survives for a later reconnection
	cfg, err := e.store.GetScreenPlayConfig(ctx, testDisplay)
	if err != nil {
		t.Fatalf("GetScreenPlayConfig: %v", err)
	}
	if cfg.PlaylistID == nil || *cfg.PlaylistID != e.playlistID {
		t.Error("persisted binding lost on display removal")
	}

	// Same identity reappears: restore re-shows the persisted cursor
	e.registry.Reconcile([]domain.Display{{ID: testDisplay, Name: "Test", Width: 1920, Height: 1080}})
	if err := e.sched.Restore(ctx, cfg); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if path := e.waitLoad(t); path != "/lib/1/ocean.mp4" {
		t.Errorf("expected ocean re-shown on reconnect, got %s", path)
	}
	e.sched.Advance(testDisplay)
	e.waitLoad(t)
}

func TestBindStartsRotationDespitePersistFailure(t *testing.T) {
	e := newEnv(t)
	e.flaky.setFailWrites(true)

	err := e.sched.Bind(context.Background(), testDisplay, e.playlistID, 1, domain.LoopOrder)
	if err == nil {
		t.Fatal("expected persistence error from Bind")
	}

	// The live session still rotates
	if !e.sched.Bound(testDisplay) {
		t.Error("rotation did not start on persistence failure")
	}
	if path := e.waitLoad(t); path != "/lib/1/ocean.mp4" {
		t.Errorf("first video: got %s, want /lib/1/ocean.mp4", path)
	}
}

func TestSetPeriodAppliesDespitePersistFailure(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if err := e.sched.Bind(ctx, testDisplay, e.playlistID, 1, domain.LoopOrder); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	e.waitLoad(t) // cursor 0

	e.flaky.setFailWrites(true)
	if err := e.sched.SetPeriod(ctx, testDisplay, 10); err == nil {
		t.Fatal("expected persistence error from SetPeriod")
	}

	// The live timer was still recreated and rotation continues from
	// the live cursor
	if !e.sched.Bound(testDisplay) {
		t.Fatal("timer lost on persistence failure")
	}
	e.sched.Advance(testDisplay)
	if path := e.waitLoad(t); path != "/lib/2/forest.mp4" {
		t.Errorf("expected forest after failed period change, got %s", path)
	}

	// The store kept the old period
	cfg, err := e.store.GetScreenPlayConfig(ctx, testDisplay)
	if err != nil {
		t.Fatalf("GetScreenPlayConfig: %v", err)
	}
	if cfg.PeriodMin != 1 {
		t.Errorf("store period: got %d, want 1", cfg.PeriodMin)
	}
}

func TestSetVolumeAppliesDespitePersistFailure(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if err := e.sched.Bind(ctx, testDisplay, e.playlistID, 1, domain.LoopOrder); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	e.waitLoad(t)

	e.flaky.setFailWrites(true)
	if err := e.sched.SetVolume(ctx, testDisplay, 0.4); err == nil {
		t.Fatal("expected persistence error from SetVolume")
	}

	surf := e.factory.created[0]
	surf.mu.Lock()
	volume := surf.volume
	surf.mu.Unlock()
	if volume != 0.4 {
		t.Errorf("volume not applied to live surface: %f", volume)
	}
}

// gateFactory blocks surface creation for one display until released.
type gateFactory struct {
	gate  chan struct{}
	slow  domain.DisplayID
	chans map[domain.DisplayID]chan string
}

func (f *gateFactory) New(display domain.Display) (domain.Surface, error) {
	if display.ID == f.slow {
		<-f.gate
	}
	return &fakeSurface{loads: f.chans[display.ID]}, nil
}

// TestBindDoesNotBlockOtherDisplays pins cross-display independence: a
// display whose surface is slow to come up must not stall binding and
// showing on another display.
func TestBindDoesNotBlockOtherDisplays(t *testing.T) {
	ctx := context.Background()
	slowID := domain.DisplayID(42)
	fastID := domain.DisplayID(43)

	st, err := store.Open(zap.NewNop(), ":memory:", store.Options{})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	playlistID := seedCatalog(t, st)

	gate := make(chan struct{})
	loads := map[domain.DisplayID]chan string{
		slowID: make(chan string, 8),
		fastID: make(chan string, 8),
	}
	factory := &gateFactory{gate: gate, slow: slowID, chans: loads}

	bus := events.NewBus(zap.NewNop())
	reg := registry.NewRegistry(zap.NewNop(), factory, bus)
	reg.Reconcile([]domain.Display{
		{ID: slowID, Name: "Slow", Width: 1920, Height: 1080},
		{ID: fastID, Name: "Fast", Width: 1920, Height: 1080, X: 1920},
	})

	resolver := &fakeResolver{missing: make(map[int64]bool)}
	configs := playconfig.NewAdapter(zap.NewNop(), st)
	sched := NewScheduler(zap.NewNop(), st, resolver, reg, configs)
	t.Cleanup(sched.Shutdown)
	t.Cleanup(func() { close(gate) }) // release the slow surface last

	// Bind the gated display first; its surface spawn hangs
	if err := sched.Bind(ctx, slowID, playlistID, 1, domain.LoopOrder); err != nil {
		t.Fatalf("Bind slow: %v", err)
	}

	// The other display binds and shows while the first is stuck
	if err := sched.Bind(ctx, fastID, playlistID, 1, domain.LoopOrder); err != nil {
		t.Fatalf("Bind fast: %v", err)
	}
	select {
	case path := <-loads[fastID]:
		if path != "/lib/1/ocean.mp4" {
			t.Errorf("fast display video: got %s", path)
		}
	case <-time.After(time.Second):
		t.Fatal("fast display blocked behind slow display's surface spawn")
	}

	select {
	case path := <-loads[slowID]:
		t.Fatalf("slow display loaded before release: %s", path)
	default:
	}
}
