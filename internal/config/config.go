package config

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const (
	defaultDataDir      = "~/.local/share/motionwall"
	defaultSocketDir    = "/tmp/motionwall"
	defaultPollInterval = 2 * time.Second
	defaultMpvBin       = "mpv"
)

// AppConfig holds daemon configuration.
type AppConfig struct {
	logger       *zap.Logger
	dataDir      string
	dbPath       string
	videoDir     string
	socketDir    string
	pollInterval time.Duration
	mpvBin       string
}

// NewAppConfig reads configuration from environment variables, falling
// back to defaults.
func NewAppConfig(logger *zap.Logger) *AppConfig {
	dataDir := os.Getenv("MOTIONWALL_DATA_DIR")
	if dataDir == "" {
		dataDir = defaultDataDir
	}
	dataDir = expandPath(dataDir)

	dbPath := os.Getenv("MOTIONWALL_DB_PATH")
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "db.sqlite3")
	}
	dbPath = expandPath(dbPath)

	socketDir := os.Getenv("MOTIONWALL_SOCKET_DIR")
	if socketDir == "" {
		socketDir = defaultSocketDir
	}

	pollInterval := defaultPollInterval
	if v := os.Getenv("MOTIONWALL_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			pollInterval = d
		} else {
			logger.Warn("Invalid MOTIONWALL_POLL_INTERVAL, using default",
				zap.String("value", v))
		}
	}

	mpvBin := os.Getenv("MOTIONWALL_MPV_BIN")
	if mpvBin == "" {
		mpvBin = defaultMpvBin
	}

	logger.Info("Configuration loaded",
		zap.String("dataDir", dataDir),
		zap.String("dbPath", dbPath),
		zap.Duration("pollInterval", pollInterval),
		zap.String("mpvBin", mpvBin))

	return &AppConfig{
		logger:       logger,
		dataDir:      dataDir,
		dbPath:       dbPath,
		videoDir:     filepath.Join(dataDir, "video"),
		socketDir:    socketDir,
		pollInterval: pollInterval,
		mpvBin:       mpvBin,
	}
}

// expandPath resolves ~ and environment variables in a path.
func expandPath(path string) string {
	path = os.ExpandEnv(path)
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetDataDir returns the daemon's data directory.
func (c *AppConfig) GetDataDir() string {
	return c.dataDir
}

// GetDBPath returns the SQLite database path.
func (c *AppConfig) GetDBPath() string {
	return c.dbPath
}

// GetVideoDir returns the imported video library directory.
func (c *AppConfig) GetVideoDir() string {
	return c.videoDir
}

// GetSocketDir returns the directory for per-surface IPC sockets.
func (c *AppConfig) GetSocketDir() string {
	return c.socketDir
}

// GetPollInterval returns the topology poll interval.
func (c *AppConfig) GetPollInterval() time.Duration {
	return c.pollInterval
}

// GetMpvBin returns the mpv binary name or path.
func (c *AppConfig) GetMpvBin() string {
	return c.mpvBin
}
