package domain

import "context"

// Store is the persistent store surface consumed by the core.
// Implementations own the schema; the core only depends on these reads
// and writes.
//
//go:generate mockgen -destination=mocks/store_mock.go -package=mocks github.com/motionwall/motionwall/internal/domain Store
type Store interface {
	// GetScreenPlayConfig returns the config row for a display identity,
	// or ErrNotFound if the display was never configured
	GetScreenPlayConfig(ctx context.Context, id DisplayID) (*ScreenPlayConfig, error)

	// ListScreenPlayConfigs returns every config row
	ListScreenPlayConfigs(ctx context.Context) ([]*ScreenPlayConfig, error)

	// UpsertScreenPlayConfig updates the row matching cfg.ScreenID in
	// place, or inserts a new row (assigning cfg.ID) if none exists
	UpsertScreenPlayConfig(ctx context.Context, cfg *ScreenPlayConfig) error

	// DeleteScreenPlayConfig removes a config row by row id
	DeleteScreenPlayConfig(ctx context.Context, id int64) error

	// GetPlaylist resolves a playlist by id, or ErrNotFound
	GetPlaylist(ctx context.Context, id int64) (*Playlist, error)

	// ListPlaylists returns every playlist
	ListPlaylists(ctx context.Context) ([]*Playlist, error)

	// InsertPlaylist stores a new playlist and returns its id
	InsertPlaylist(ctx context.Context, p *Playlist) (int64, error)

	// UpdatePlaylist rewrites a playlist's title and membership
	UpdatePlaylist(ctx context.Context, p *Playlist) error

	// DeletePlaylist removes a playlist by id
	DeletePlaylist(ctx context.Context, id int64) error

	// GetVideos resolves video ids to records, in the order given.
	// Ids with no matching row are silently dropped.
	GetVideos(ctx context.Context, ids []int64) ([]*Video, error)

	// ListVideos returns every video
	ListVideos(ctx context.Context) ([]*Video, error)

	// InsertVideo stores a new video record and returns its id
	InsertVideo(ctx context.Context, v *Video) (int64, error)

	// DeleteVideo removes a video record by id
	DeleteVideo(ctx context.Context, id int64) error

	// Close releases the underlying database handle
	Close() error
}

// Surface is one borderless, desktop-level window on a single display,
// capable of loading a media file and looping it.
type Surface interface {
	// Load starts looping playback of the file at path
	Load(ctx context.Context, path string) error

	// SetVolume applies a volume scalar in [0, 1]
	SetVolume(ctx context.Context, volume float64) error

	// Close hides the window and releases the surface's resources.
	// The surface cannot be reused after Close.
	Close() error
}

// SurfaceFactory creates playback surfaces sized to a display.
// The registry owns at most one surface per display at a time.
type SurfaceFactory interface {
	New(display Display) (Surface, error)
}

// TopologyObserver detects the current set of physical displays and
// emits snapshots when the set changes.
type TopologyObserver interface {
	// Start begins observing; it blocks until ctx is cancelled
	Start(ctx context.Context) error

	// Stop gracefully stops the observer
	Stop(ctx context.Context) error

	// Events returns a read-only channel emitting full display
	// snapshots whenever topology changes
	Events() <-chan []Display
}

// Resolver maps a video record to a playable local file path.
type Resolver interface {
	// Resolve returns the absolute path for a video, or an error if
	// the backing file is missing on disk
	Resolve(v *Video) (string, error)
}
