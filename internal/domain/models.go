package domain

// DisplayID is the opaque stable identity of a physical display.
// It is derived from the display's geometry the same way on every
// enumeration, so a display keeps its identity across reconciliation
// passes while it stays connected.
type DisplayID uint64

// Display describes a physical display as reported by the OS.
type Display struct {
	// ID is the geometry-derived identity hash
	ID DisplayID
	// Name is a human-readable label for UI feedback
	Name string
	// Width and Height are the pixel size of the display
	Width  int
	Height int
	// X and Y are the origin offset in the global desktop coordinate space
	X int
	Y int
}

// LoopPolicy selects how the next playlist member is chosen on rotation.
type LoopPolicy string

const (
	// LoopOrder advances sequentially with wraparound
	LoopOrder LoopPolicy = "order"
	// LoopRandom samples uniformly, repeats allowed
	LoopRandom LoopPolicy = "random"
)

// ParseLoopPolicy maps a stored string to a LoopPolicy, defaulting to order.
func ParseLoopPolicy(s string) LoopPolicy {
	if s == string(LoopRandom) {
		return LoopRandom
	}
	return LoopOrder
}

// ScreenPlayConfig is the durable per-display rotation configuration.
// One row per display identity that has ever had rotation configured.
type ScreenPlayConfig struct {
	ID       int64
	ScreenID DisplayID
	// PlaylistID is nil when no playlist is bound; period/volume
	// preferences survive unbinding
	PlaylistID *int64
	// PeriodMin is the rotation period in minutes, >= 1
	PeriodMin int
	// CurIndex is the rotation cursor; -1 means no rotation has occurred yet
	CurIndex int
	LoopType LoopPolicy
	// Volume is a scalar in [0, 1]
	Volume float64
}

// Playlist is a named, ordered set of video references.
type Playlist struct {
	ID       int64
	Title    string
	VideoIDs []int64
}

// Video is a durable media asset, consumed for its title and file path.
type Video struct {
	ID    int64
	Title string
	// File is the filename relative to the video's library directory
	File string
}

// ScreenInfo is the UI-facing snapshot of one display's playback state.
type ScreenInfo struct {
	Display      Display
	PlaylistName string
	VideoTitle   string
}

// SignalKind discriminates outbound signals on the event bus.
type SignalKind string

const (
	// SignalTopologyChanged carries the new display list after reconciliation
	SignalTopologyChanged SignalKind = "topology-changed"
	// SignalVideoChanged carries {displayID: title} after a show or hide
	SignalVideoChanged SignalKind = "video-changed"
)

// Signal is an outbound notification for UI/observers.
type Signal struct {
	Kind SignalKind
	// Displays is set for topology-changed signals
	Displays []Display
	// Titles is set for video-changed signals; an empty title means the
	// display's surface was hidden
	Titles map[DisplayID]string
}
