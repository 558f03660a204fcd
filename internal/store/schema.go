package store

const schemaVersion = 2

const schemaVideos = `
CREATE TABLE IF NOT EXISTS videos (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	file TEXT NOT NULL,
	create_time INTEGER NOT NULL,
	update_time INTEGER NOT NULL
);`

const schemaVideosIndexes = `
CREATE INDEX IF NOT EXISTS idx_videos_file ON videos(file);`

const schemaPlaylists = `
CREATE TABLE IF NOT EXISTS playlists (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	video_ids TEXT NOT NULL DEFAULT '',
	create_time INTEGER NOT NULL,
	update_time INTEGER NOT NULL
);`

const schemaScreenPlayConfigs = `
CREATE TABLE IF NOT EXISTS screen_play_configs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	screen_id INTEGER NOT NULL UNIQUE,
	playlist_id INTEGER,
	period_min INTEGER NOT NULL,
	cur_index INTEGER NOT NULL DEFAULT -1,
	loop_type TEXT NOT NULL,
	volume REAL NOT NULL DEFAULT 1.0,
	create_time INTEGER NOT NULL,
	update_time INTEGER NOT NULL
);`

const schemaScreenPlayConfigsIndexes = `
CREATE INDEX IF NOT EXISTS idx_screen_play_configs_screen ON screen_play_configs(screen_id);`
