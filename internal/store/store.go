package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

// timeLayout is the wall-clock format persisted in the database. Times
// are stored as naive local time so that DATE(start_time) groups by the
// user's calendar day.
const timeLayout = "2006-01-02 15:04:05"

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (or creates) the SQLite database at dbPath and runs
// migrations. The returned store owns the connection; callers must
// Close it.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single writer; readers interleave through the same connection so
	// they never observe a half-applied transaction.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		legacy, err := s.hasLegacySchema()
		if err != nil {
			return err
		}
		if legacy {
			if err := s.migrateFromLegacy(); err != nil {
				return err
			}
		} else if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	_, err := s.db.Exec(schemaV1)
	return err
}

const schemaV1 = `
CREATE TABLE IF NOT EXISTS dimensions (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	name         TEXT NOT NULL UNIQUE CHECK(length(name) > 0 AND length(name) <= 50),
	is_active    INTEGER NOT NULL DEFAULT 1 CHECK(is_active IN (0, 1)),
	multi_select INTEGER NOT NULL DEFAULT 0 CHECK(multi_select IN (0, 1)),
	sort_order   INTEGER NOT NULL DEFAULT 0,
	created_at   TEXT NOT NULL DEFAULT (datetime('now', 'localtime')),
	updated_at   TEXT NOT NULL DEFAULT (datetime('now', 'localtime'))
);

CREATE TABLE IF NOT EXISTS dimension_options (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	dimension_id INTEGER NOT NULL REFERENCES dimensions(id) ON DELETE CASCADE ON UPDATE CASCADE,
	name         TEXT NOT NULL CHECK(length(name) > 0 AND length(name) <= 50),
	color        TEXT NOT NULL DEFAULT '#3B82F6'
	             CHECK(color GLOB '#[0-9A-Fa-f][0-9A-Fa-f][0-9A-Fa-f][0-9A-Fa-f][0-9A-Fa-f][0-9A-Fa-f]'),
	sort_order   INTEGER NOT NULL DEFAULT 0,
	created_at   TEXT NOT NULL DEFAULT (datetime('now', 'localtime')),
	updated_at   TEXT NOT NULL DEFAULT (datetime('now', 'localtime')),
	UNIQUE(dimension_id, name)
);

CREATE TABLE IF NOT EXISTS time_entries (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	title            TEXT NOT NULL CHECK(length(title) > 0 AND length(title) <= 200),
	start_time       TEXT NOT NULL,
	end_time         TEXT,
	duration_seconds INTEGER NOT NULL DEFAULT 0 CHECK(duration_seconds >= 0),
	description      TEXT NOT NULL DEFAULT '' CHECK(length(description) <= 500),
	created_at       TEXT NOT NULL DEFAULT (datetime('now', 'localtime')),
	updated_at       TEXT NOT NULL DEFAULT (datetime('now', 'localtime'))
);

CREATE TABLE IF NOT EXISTS entry_attributes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	entry_id   INTEGER NOT NULL REFERENCES time_entries(id) ON DELETE CASCADE,
	option_id  INTEGER NOT NULL REFERENCES dimension_options(id) ON DELETE RESTRICT,
	created_at TEXT NOT NULL DEFAULT (datetime('now', 'localtime')),
	UNIQUE(entry_id, option_id)
);

CREATE INDEX IF NOT EXISTS idx_options_dimension   ON dimension_options(dimension_id, sort_order);
CREATE INDEX IF NOT EXISTS idx_entries_start       ON time_entries(start_time);
CREATE INDEX IF NOT EXISTS idx_entries_title       ON time_entries(title);
CREATE INDEX IF NOT EXISTS idx_attributes_entry    ON entry_attributes(entry_id);
CREATE INDEX IF NOT EXISTS idx_attributes_option   ON entry_attributes(option_id);

CREATE TRIGGER IF NOT EXISTS trg_dimensions_updated
AFTER UPDATE ON dimensions
FOR EACH ROW
BEGIN
	UPDATE dimensions SET updated_at = datetime('now', 'localtime') WHERE id = NEW.id;
END;

CREATE TRIGGER IF NOT EXISTS trg_options_updated
AFTER UPDATE ON dimension_options
FOR EACH ROW
BEGIN
	UPDATE dimension_options SET updated_at = datetime('now', 'localtime') WHERE id = NEW.id;
END;

CREATE TRIGGER IF NOT EXISTS trg_entries_updated
AFTER UPDATE ON time_entries
FOR EACH ROW
BEGIN
	UPDATE time_entries SET updated_at = datetime('now', 'localtime') WHERE id = NEW.id;
END;

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

INSERT OR IGNORE INTO settings (key, value) VALUES
	('week_start',    'monday'),
	('ranking_limit', '10'),
	('search_limit',  '10');
`

// DefaultDBPath returns ~/.config/facet/facet.db (platform equivalent).
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "facet", "facet.db"), nil
}

func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.ParseInLocation(timeLayout, s, time.Local)
	if err != nil {
		// Timestamps written by SQLite defaults use the same layout;
		// tolerate a trailing fraction just in case.
		t, _ = time.ParseInLocation("2006-01-02 15:04:05.999999999", s, time.Local)
	}
	return t
}

func dayString(t time.Time) string {
	return t.Format("2006-01-02")
}
