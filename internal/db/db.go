package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB with the wildlife schema applied.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// Path returns the database file path.
func (d *DB) Path() string { return d.path }

// migrate runs all schema migrations.
func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

// schema contains the full database schema. New tables are added here.
const schema = `
CREATE TABLE IF NOT EXISTS deterrent_devices (
    id TEXT PRIMARY KEY,
    directory_name TEXT NOT NULL DEFAULT '',
    lat REAL NOT NULL,
    lng REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS markers (
    id TEXT PRIMARY KEY,
    timestamp TEXT NOT NULL DEFAULT '',
    lat REAL NOT NULL,
    lng REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS polygons (
    polygon_id TEXT PRIMARY KEY,
    timestamp TEXT NOT NULL DEFAULT '',
    name TEXT NOT NULL DEFAULT '',
    coordinates TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS image_metadata (
    id TEXT PRIMARY KEY,
    device_id TEXT NOT NULL REFERENCES deterrent_devices(id),
    image_path TEXT NOT NULL,
    image_type TEXT NOT NULL CHECK(image_type IN ('device','trail')),
    filename TEXT NOT NULL,
    timestamp TEXT,
    parsed_successfully INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_images_device ON image_metadata(device_id, image_type);
CREATE INDEX IF NOT EXISTS idx_images_timestamp ON image_metadata(timestamp);

CREATE TABLE IF NOT EXISTS bears_tracking (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    timestamp TEXT NOT NULL,
    lat REAL NOT NULL,
    lng REAL NOT NULL,
    season TEXT NOT NULL DEFAULT '',
    sex TEXT NOT NULL DEFAULT '',
    age TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_bears_name ON bears_tracking(name);
CREATE INDEX IF NOT EXISTS idx_bears_timestamp ON bears_tracking(timestamp);
`
