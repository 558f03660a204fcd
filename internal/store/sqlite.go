// Package store implements the persistent store on SQLite via the
// pure-Go modernc driver. It owns the videos, playlists and
// screen_play_configs tables and their migrations.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/motionwall/motionwall/internal/domain"
)

// Options tunes the SQLite connection.
type Options struct {
	BusyTimeout time.Duration
	Synchronous string
}

// SQLiteStore implements domain.Store.
type SQLiteStore struct {
	logger *zap.Logger
	db     *sql.DB
}

// Open opens (creating if necessary) the database at path and runs
// migrations. Use ":memory:" for an ephemeral store in tests.
func Open(logger *zap.Logger, path string, options Options) (*SQLiteStore, error) {
	synchronous := options.Synchronous
	if synchronous == "" {
		synchronous = "NORMAL"
	}
	busyTimeout := options.BusyTimeout
	if busyTimeout == 0 {
		busyTimeout = 5 * time.Second
	}

	// Pragmas go in the DSN so the driver applies them to every pooled
	// connection, not just the one a plain Exec happens to run on
	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=synchronous(%s)&_pragma=busy_timeout(%d)",
		path, synchronous, int(busyTimeout/time.Millisecond))
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL lets one display's tick-time reads proceed alongside another
	// display's cursor write, so give the pool a few connections.
	// In-memory databases must stay on a single connection: each new
	// connection would get its own empty database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
	}

	s := &SQLiteStore{logger: logger, db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	logger.Info("Store opened", zap.String("path", path))
	return s, nil
}

// migrate creates missing tables and applies version upgrades.
func (s *SQLiteStore) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return err
	}

	for _, stmt := range []string{
		schemaVideos,
		schemaVideosIndexes,
		schemaPlaylists,
		schemaScreenPlayConfigs,
		schemaScreenPlayConfigsIndexes,
	} {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}

	// Version 1 databases predate the rotation cursor and volume columns
	if version == 1 {
		for _, stmt := range []string{
			"ALTER TABLE screen_play_configs ADD COLUMN cur_index INTEGER NOT NULL DEFAULT -1",
			"ALTER TABLE screen_play_configs ADD COLUMN volume REAL NOT NULL DEFAULT 1.0",
		} {
			if _, err := s.db.Exec(stmt); err != nil {
				return err
			}
		}
		s.logger.Info("Applied screen play config column migration")
	}

	if version != schemaVersion {
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version=%d", schemaVersion)); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- ScreenPlayConfig ---

// GetScreenPlayConfig returns the config row for a display identity.
func (s *SQLiteStore) GetScreenPlayConfig(ctx context.Context, id domain.DisplayID) (*domain.ScreenPlayConfig, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, screen_id, playlist_id, period_min, cur_index, loop_type, volume
		FROM screen_play_configs WHERE screen_id = ?`, int64(id))
	return scanScreenPlayConfig(row)
}

// ListScreenPlayConfigs returns every config row.
func (s *SQLiteStore) ListScreenPlayConfigs(ctx context.Context) ([]*domain.ScreenPlayConfig, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, screen_id, playlist_id, period_min, cur_index, loop_type, volume
		FROM screen_play_configs ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*domain.ScreenPlayConfig
	for rows.Next() {
		cfg, err := scanScreenPlayConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

// UpsertScreenPlayConfig updates the row matching cfg.ScreenID in place
// or inserts a new one, assigning cfg.ID either way.
func (s *SQLiteStore) UpsertScreenPlayConfig(ctx context.Context, cfg *domain.ScreenPlayConfig) error {
	var playlistID sql.NullInt64
	if cfg.PlaylistID != nil {
		playlistID = sql.NullInt64{Int64: *cfg.PlaylistID, Valid: true}
	}

	now := time.Now().Unix()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO screen_play_configs
			(screen_id, playlist_id, period_min, cur_index, loop_type, volume, create_time, update_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(screen_id) DO UPDATE SET
			playlist_id=excluded.playlist_id,
			period_min=excluded.period_min,
			cur_index=excluded.cur_index,
			loop_type=excluded.loop_type,
			volume=excluded.volume,
			update_time=excluded.update_time`,
		int64(cfg.ScreenID), playlistID, cfg.PeriodMin, cfg.CurIndex,
		string(cfg.LoopType), cfg.Volume, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert screen play config: %w", err)
	}

	return s.db.QueryRowContext(ctx,
		"SELECT id FROM screen_play_configs WHERE screen_id = ?",
		int64(cfg.ScreenID)).Scan(&cfg.ID)
}

// DeleteScreenPlayConfig removes a config row by row id.
func (s *SQLiteStore) DeleteScreenPlayConfig(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM screen_play_configs WHERE id = ?", id)
	return err
}

// --- Playlist ---

// GetPlaylist resolves a playlist by id.
func (s *SQLiteStore) GetPlaylist(ctx context.Context, id int64) (*domain.Playlist, error) {
	var (
		p        domain.Playlist
		videoIDs string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, title, video_ids FROM playlists WHERE id = ?", id).
		Scan(&p.ID, &p.Title, &videoIDs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("playlist %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	p.VideoIDs = splitIDs(videoIDs)
	return &p, nil
}

// ListPlaylists returns every playlist.
func (s *SQLiteStore) ListPlaylists(ctx context.Context) ([]*domain.Playlist, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, video_ids FROM playlists ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var playlists []*domain.Playlist
	for rows.Next() {
		var (
			p        domain.Playlist
			videoIDs string
		)
		if err := rows.Scan(&p.ID, &p.Title, &videoIDs); err != nil {
			return nil, err
		}
		p.VideoIDs = splitIDs(videoIDs)
		playlists = append(playlists, &p)
	}
	return playlists, rows.Err()
}

// InsertPlaylist stores a new playlist and returns its id.
func (s *SQLiteStore) InsertPlaylist(ctx context.Context, p *domain.Playlist) (int64, error) {
	now := time.Now().Unix()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO playlists (title, video_ids, create_time, update_time) VALUES (?, ?, ?, ?)",
		p.Title, joinIDs(p.VideoIDs), now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to insert playlist: %w", err)
	}
	return res.LastInsertId()
}

// UpdatePlaylist rewrites a playlist's title and membership.
func (s *SQLiteStore) UpdatePlaylist(ctx context.Context, p *domain.Playlist) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE playlists SET title = ?, video_ids = ?, update_time = ? WHERE id = ?",
		p.Title, joinIDs(p.VideoIDs), time.Now().Unix(), p.ID)
	return err
}

// DeletePlaylist removes a playlist by id.
func (s *SQLiteStore) DeletePlaylist(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM playlists WHERE id = ?", id)
	return err
}

// --- Video ---

// GetVideos resolves video ids to records, preserving the requested
// order and dropping ids with no matching row.
func (s *SQLiteStore) GetVideos(ctx context.Context, ids []int64) ([]*domain.Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(
		"SELECT id, title, file FROM videos WHERE id IN (%s)",
		strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int64]*domain.Video, len(ids))
	for rows.Next() {
		var v domain.Video
		if err := rows.Scan(&v.ID, &v.Title, &v.File); err != nil {
			return nil, err
		}
		byID[v.ID] = &v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	videos := make([]*domain.Video, 0, len(ids))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			videos = append(videos, v)
		}
	}
	return videos, nil
}

// ListVideos returns every video.
func (s *SQLiteStore) ListVideos(ctx context.Context) ([]*domain.Video, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, file FROM videos ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []*domain.Video
	for rows.Next() {
		var v domain.Video
		if err := rows.Scan(&v.ID, &v.Title, &v.File); err != nil {
			return nil, err
		}
		videos = append(videos, &v)
	}
	return videos, rows.Err()
}

// InsertVideo stores a new video record and returns its id.
func (s *SQLiteStore) InsertVideo(ctx context.Context, v *domain.Video) (int64, error) {
	now := time.Now().Unix()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO videos (title, file, create_time, update_time) VALUES (?, ?, ?, ?)",
		v.Title, v.File, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to insert video: %w", err)
	}
	return res.LastInsertId()
}

// DeleteVideo removes a video record by id.
func (s *SQLiteStore) DeleteVideo(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM videos WHERE id = ?", id)
	return err
}

// --- helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScreenPlayConfig(row rowScanner) (*domain.ScreenPlayConfig, error) {
	var (
		cfg        domain.ScreenPlayConfig
		screenID   int64
		playlistID sql.NullInt64
		loopType   string
	)
	err := row.Scan(&cfg.ID, &screenID, &playlistID, &cfg.PeriodMin,
		&cfg.CurIndex, &loopType, &cfg.Volume)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("screen play config: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	cfg.ScreenID = domain.DisplayID(screenID)
	if playlistID.Valid {
		id := playlistID.Int64
		cfg.PlaylistID = &id
	}
	cfg.LoopType = domain.ParseLoopPolicy(loopType)
	return &cfg, nil
}

// joinIDs serializes playlist membership as a comma-joined id list,
// matching the historical on-disk format.
func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func splitIDs(s string) []int64 {
	if s == "" {
		return nil
	}
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
