package store

import (
	"database/sql"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// fixedClock pins the store's clock for deterministic switch tests.
func fixedClock(s *Store, at time.Time) {
	s.now = func() time.Time { return at }
}

// mustDimension creates a dimension or fails the test.
func mustDimension(t *testing.T, s *Store, name string, multi bool) *Dimension {
	t.Helper()
	d, err := s.CreateDimension(name, 0, multi)
	if err != nil {
		t.Fatalf("create dimension %q: %v", name, err)
	}
	return d
}

// mustOption creates an option or fails the test.
func mustOption(t *testing.T, s *Store, dimensionID int64, name, color string) *DimensionOption {
	t.Helper()
	o, err := s.CreateOption(dimensionID, name, color, 0)
	if err != nil {
		t.Fatalf("create option %q: %v", name, err)
	}
	return o
}

// mustEntry inserts a closed entry with explicit times.
func mustEntry(t *testing.T, s *Store, title string, start, end time.Time, optionIDs ...int64) *EntryWithTags {
	t.Helper()
	e, err := s.CreateEntry(title, start, &end, optionIDs, "")
	if err != nil {
		t.Fatalf("create entry %q: %v", title, err)
	}
	return e
}

func localTime(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.Local)
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != currentVersion {
		t.Fatalf("expected user_version %d, got %d", currentVersion, version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/facet.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen — should succeed and not re-migrate.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

func TestForeignKeysEnabled(t *testing.T) {
	s := newTestStore(t)

	var fk int
	s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

func TestSettingsSeeded(t *testing.T) {
	s := newTestStore(t)
	for _, key := range []string{"week_start", "ranking_limit", "search_limit"} {
		if _, err := s.GetSetting(key); err != nil {
			t.Fatalf("expected seeded setting %q: %v", key, err)
		}
	}
}

func TestUpdatedAtTrigger(t *testing.T) {
	s := newTestStore(t)

	// Seed a row with a stale updated_at, then mutate it through the
	// store. The AFTER UPDATE trigger must refresh the column.
	res, err := s.db.Exec(
		`INSERT INTO dimensions (name, updated_at) VALUES ('Domain', '2000-01-01 00:00:00')`,
	)
	if err != nil {
		t.Fatal(err)
	}
	id, _ := res.LastInsertId()

	if err := s.ToggleDimension(id, false); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetDimension(id)
	if err != nil {
		t.Fatal(err)
	}
	if got.UpdatedAt.Year() == 2000 {
		t.Fatal("updated_at was not maintained by the trigger")
	}
}

// ============================================================
// Legacy migration
// ============================================================

const legacyDDL = `
CREATE TABLE categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	color TEXT NOT NULL DEFAULT '#3B82F6',
	sort_order INTEGER NOT NULL DEFAULT 0,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at TEXT NOT NULL DEFAULT (datetime('now', 'localtime')),
	updated_at TEXT NOT NULL DEFAULT (datetime('now', 'localtime'))
);
CREATE TABLE time_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	category_id INTEGER NOT NULL REFERENCES categories(id),
	activity TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	duration_minutes INTEGER NOT NULL,
	date TEXT NOT NULL,
	notes TEXT,
	created_at TEXT NOT NULL DEFAULT (datetime('now', 'localtime')),
	updated_at TEXT NOT NULL DEFAULT (datetime('now', 'localtime'))
);
`

func newLegacyDB(t *testing.T) string {
	t.Helper()
	path := t.TempDir() + "/legacy.db"
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if _, err := db.Exec(legacyDDL); err != nil {
		t.Fatalf("create legacy schema: %v", err)
	}
	if _, err := db.Exec(
		`INSERT INTO categories (name, color, sort_order) VALUES
		 ('Work', '#EF4444', 1), ('Life', '#10B981', 2)`,
	); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(
		`INSERT INTO time_entries (category_id, activity, start_time, end_time, duration_minutes, date, notes) VALUES
		 (1, 'Write report', '09:00', '10:30', 90, '2026-03-02', 'draft'),
		 (2, 'Lunch', '12:00', '12:45', 45, '2026-03-02', NULL)`,
	); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLegacyMigration(t *testing.T) {
	path := newLegacyDB(t)

	s, err := New(path)
	if err != nil {
		t.Fatalf("open legacy database: %v", err)
	}
	defer s.Close()

	dims, err := s.ListDimensions(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(dims) != 1 || dims[0].Name != legacyCategoryDimension {
		t.Fatalf("expected single %q dimension, got %+v", legacyCategoryDimension, dims)
	}
	if len(dims[0].Options) != 2 {
		t.Fatalf("expected 2 migrated options, got %d", len(dims[0].Options))
	}
	if dims[0].Options[0].Name != "Work" || dims[0].Options[0].Color != "#EF4444" {
		t.Fatalf("unexpected first option: %+v", dims[0].Options[0])
	}

	day, _ := time.ParseInLocation("2006-01-02", "2026-03-02", time.Local)
	entries, err := s.EntriesByDate(day)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 migrated entries, got %d", len(entries))
	}
	// Newest first: Lunch then Write report.
	if entries[0].Title != "Lunch" || entries[0].DurationSeconds != 45*60 {
		t.Fatalf("unexpected entry: %+v", entries[0].TimeEntry)
	}
	if entries[1].Title != "Write report" || entries[1].DurationSeconds != 90*60 {
		t.Fatalf("unexpected entry: %+v", entries[1].TimeEntry)
	}
	if entries[1].Description != "draft" {
		t.Fatalf("expected notes carried over, got %q", entries[1].Description)
	}
	if len(entries[1].Tags) != 1 || entries[1].Tags[0].OptionName != "Work" {
		t.Fatalf("expected Work tag, got %+v", entries[1].Tags)
	}

	// Legacy tables must be gone.
	var n int
	err = s.db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('categories', 'legacy_time_entries')`,
	).Scan(&n)
	if err != nil || n != 0 {
		t.Fatalf("legacy tables still present (n=%d, err=%v)", n, err)
	}
}

func TestLegacyMigrationRejectsOversizedDuration(t *testing.T) {
	path := newLegacyDB(t)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(
		`INSERT INTO time_entries (category_id, activity, start_time, end_time, duration_minutes, date) VALUES
		 (1, 'Corrupt', '00:00', '00:00', 2000, '2026-03-03')`,
	); err != nil {
		t.Fatal(err)
	}
	db.Close()

	_, err = New(path)
	if err == nil {
		t.Fatal("expected legacy migration to fail on oversized duration")
	}
	if ErrCode(err) != CodeDurationTooLong {
		t.Fatalf("expected DURATION_TOO_LONG, got %v", err)
	}
}
