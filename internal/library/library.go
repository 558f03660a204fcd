// Package library locates imported video assets on disk and watches the
// library directory for files going missing behind the daemon's back.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/motionwall/motionwall/internal/domain"
)

// Library resolves video records to playable local paths. Imported
// videos live under <root>/<videoID>/<filename>.
type Library struct {
	logger *zap.Logger
	root   string
}

// NewLibrary creates a library rooted at the configured video directory.
func NewLibrary(logger *zap.Logger, root string) *Library {
	return &Library{logger: logger, root: root}
}

// Root returns the library's base directory.
func (l *Library) Root() string {
	return l.root
}

// Resolve returns the absolute file path for a video. A missing file on
// disk is an error; callers treat it as a benign skip, not a fault.
func (l *Library) Resolve(v *domain.Video) (string, error) {
	if v.File == "" {
		return "", fmt.Errorf("video %d has no file", v.ID)
	}

	path := filepath.Join(l.root, strconv.FormatInt(v.ID, 10), v.File)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("video file unavailable: %w", err)
	}
	return path, nil
}
