//go:build !windows

// Package surface renders looping video wallpapers, one borderless
// window per display, backed by an mpv subprocess per surface.
package surface

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/motionwall/motionwall/internal/domain"
)

const spawnTimeout = 5 * time.Second

// MpvFactory creates one mpv-backed surface per display.
type MpvFactory struct {
	logger    *zap.Logger
	binary    string
	socketDir string
}

// NewFactory returns a surface factory using the given mpv binary.
// Sockets for the per-surface IPC channels are created under socketDir.
func NewFactory(logger *zap.Logger, binary, socketDir string) (*MpvFactory, error) {
	if _, err := exec.LookPath(binary); err != nil {
		return nil, fmt.Errorf("mpv binary not found: %w", err)
	}
	if err := os.MkdirAll(socketDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create socket dir: %w", err)
	}

	logger.Info("Playback backend detected", zap.String("binary", binary))
	return &MpvFactory{
		logger:    logger,
		binary:    binary,
		socketDir: socketDir,
	}, nil
}

// New spawns an idle mpv window sized and positioned to the display.
// The window shows nothing until the first Load.
func (f *MpvFactory) New(display domain.Display) (domain.Surface, error) {
	socketPath := filepath.Join(f.socketDir,
		"surface-"+strconv.FormatUint(uint64(display.ID), 10)+".sock")
	_ = os.Remove(socketPath)

	geometry := fmt.Sprintf("%dx%d+%d+%d",
		display.Width, display.Height, display.X, display.Y)

	cmd := exec.Command(f.binary,
		"--idle=yes",
		"--force-window=yes",
		"--loop-file=inf",
		"--no-border",
		"--no-input-default-bindings",
		"--no-osc",
		"--osd-level=0",
		"--no-terminal",
		"--really-quiet",
		"--no-stop-screensaver",
		"--no-keepaspect",
		"--panscan=1.0",
		"--geometry="+geometry,
		"--autofit="+fmt.Sprintf("%dx%d", display.Width, display.Height),
		"--input-ipc-server="+socketPath,
	)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start mpv: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), spawnTimeout)
	defer cancel()

	ipc, err := dialIPC(ctx, socketPath)
	if err != nil {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
		return nil, fmt.Errorf("mpv did not come up: %w", err)
	}

	f.logger.Debug("Surface created",
		zap.Uint64("display", uint64(display.ID)),
		zap.String("geometry", geometry))

	s := &MpvSurface{
		logger:     f.logger,
		cmd:        cmd,
		ipc:        ipc,
		socketPath: socketPath,
	}
	go s.reap()
	return s, nil
}

// MpvSurface is a single mpv window bound to one display.
type MpvSurface struct {
	logger     *zap.Logger
	cmd        *exec.Cmd
	ipc        *ipcClient
	socketPath string

	mu     sync.Mutex
	closed bool
}

// Load replaces the currently looping file.
func (s *MpvSurface) Load(ctx context.Context, path string) error {
	if err := s.ipc.command(ctx, "loadfile", path, "replace"); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// SetVolume applies a volume scalar in [0, 1]. mpv's scale is 0-100.
func (s *MpvSurface) SetVolume(ctx context.Context, volume float64) error {
	if volume < 0 {
		volume = 0
	} else if volume > 1 {
		volume = 1
	}
	return s.ipc.command(ctx, "set_property", "volume", volume*100)
}

// Close quits the player and removes the IPC socket. Idempotent.
func (s *MpvSurface) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.ipc.command(ctx, "quit"); err != nil {
		s.logger.Debug("mpv quit command failed, killing process", zap.Error(err))
		_ = s.cmd.Process.Kill()
	}
	_ = s.ipc.close()
	_ = os.Remove(s.socketPath)
	return nil
}

// reap collects the subprocess exit status so it does not linger as a
// zombie when the player exits on its own.
func (s *MpvSurface) reap() {
	err := s.cmd.Wait()
	if err != nil {
		s.logger.Debug("mpv exited", zap.Error(err))
	}
}
