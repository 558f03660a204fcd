//go:build windows

package surface

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/motionwall/motionwall/internal/domain"
)

// MpvFactory stub for Windows, where the unix-socket IPC transport is
// not available yet.
type MpvFactory struct {
	logger *zap.Logger
}

// NewFactory returns a factory whose surfaces cannot be created on
// this platform.
func NewFactory(logger *zap.Logger, binary, socketDir string) (*MpvFactory, error) {
	logger.Warn("Video surfaces are not yet implemented for this platform")
	return &MpvFactory{logger: logger}, nil
}

// New returns an error indicating the platform is not supported.
func (f *MpvFactory) New(display domain.Display) (domain.Surface, error) {
	return nil, fmt.Errorf("video surfaces not implemented for this platform")
}
