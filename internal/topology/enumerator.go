package topology

import (
	"fmt"
	"hash/fnv"

	"github.com/kbinani/screenshot"

	"github.com/motionwall/motionwall/internal/domain"
)

// Enumerator lists the currently connected displays.
// This abstraction allows us to drive topology changes in tests.
type Enumerator interface {
	Displays() ([]domain.Display, error)
}

// ScreenEnumerator enumerates displays through the OS screen API.
type ScreenEnumerator struct{}

// NewScreenEnumerator creates the real display enumerator.
func NewScreenEnumerator() *ScreenEnumerator {
	return &ScreenEnumerator{}
}

// Displays returns one entry per active display, identified by a hash
// of its geometry. The identity is stable while the display stays
// connected but is not guaranteed stable across cable reseat or mode
// changes; a display reappearing with new geometry is a new display.
func (e *ScreenEnumerator) Displays() ([]domain.Display, error) {
	n := screenshot.NumActiveDisplays()
	if n < 0 {
		return nil, fmt.Errorf("display enumeration failed")
	}

	displays := make([]domain.Display, 0, n)
	for i := 0; i < n; i++ {
		bounds := screenshot.GetDisplayBounds(i)
		d := domain.Display{
			Name:   fmt.Sprintf("Display %d", i+1),
			Width:  bounds.Dx(),
			Height: bounds.Dy(),
			X:      bounds.Min.X,
			Y:      bounds.Min.Y,
		}
		d.ID = IdentityOf(d)
		displays = append(displays, d)
	}
	return displays, nil
}

// IdentityOf derives a display's identity from its geometry.
func IdentityOf(d domain.Display) domain.DisplayID {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d:%d:%d:%d", d.X, d.Y, d.Width, d.Height)
	return domain.DisplayID(h.Sum64())
}

// SetHash folds a display set into a single comparable value, used to
// skip reconciliation when redundant OS notifications arrive for one
// physical event.
func SetHash(displays []domain.Display) uint64 {
	h := fnv.New64a()
	for _, d := range displays {
		fmt.Fprintf(h, "%d;", d.ID)
	}
	return h.Sum64()
}
