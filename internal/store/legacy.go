package store

import (
	"database/sql"
	"fmt"
)

// The first schema generation stored a flat category per entry and only
// wall-clock HH:MM times plus a separate date column, capped at 24h per
// entry. Databases from that generation are converted once into the
// dimension model: the categories become options of a synthetic
// "Category" dimension and every entry is re-linked through
// entry_attributes. The legacy tables are dropped afterwards.

const legacyCategoryDimension = "Category"

func (s *Store) hasLegacySchema() (bool, error) {
	var name string
	err := s.db.QueryRow(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'categories'`,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("detect legacy schema: %w", err)
	}
	return true, nil
}

func (s *Store) migrateFromLegacy() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin legacy migration: %w", err)
	}
	defer tx.Rollback()

	// Move the legacy entries table out of the way so the dimension-model
	// DDL can claim the name.
	if _, err := tx.Exec(`ALTER TABLE time_entries RENAME TO legacy_time_entries`); err != nil {
		return fmt.Errorf("rename legacy entries: %w", err)
	}
	for _, trigger := range []string{"update_categories_timestamp", "update_time_entries_timestamp"} {
		if _, err := tx.Exec(`DROP TRIGGER IF EXISTS ` + trigger); err != nil {
			return fmt.Errorf("drop legacy trigger %s: %w", trigger, err)
		}
	}

	if _, err := tx.Exec(schemaV1); err != nil {
		return fmt.Errorf("create dimension schema: %w", err)
	}

	res, err := tx.Exec(
		`INSERT INTO dimensions (name, multi_select, sort_order) VALUES (?, 0, 1)`,
		legacyCategoryDimension,
	)
	if err != nil {
		return fmt.Errorf("create category dimension: %w", err)
	}
	dimensionID, _ := res.LastInsertId()

	optionByCategory, err := migrateLegacyCategories(tx, dimensionID)
	if err != nil {
		return err
	}
	if err := migrateLegacyEntries(tx, optionByCategory); err != nil {
		return err
	}

	if _, err := tx.Exec(`DROP TABLE legacy_time_entries`); err != nil {
		return fmt.Errorf("drop legacy entries: %w", err)
	}
	if _, err := tx.Exec(`DROP TABLE categories`); err != nil {
		return fmt.Errorf("drop legacy categories: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit legacy migration: %w", err)
	}
	return nil
}

func migrateLegacyCategories(tx *sql.Tx, dimensionID int64) (map[int64]int64, error) {
	rows, err := tx.Query(`SELECT id, name, color, sort_order, created_at, updated_at FROM categories ORDER BY sort_order`)
	if err != nil {
		return nil, fmt.Errorf("read legacy categories: %w", err)
	}
	defer rows.Close()

	type category struct {
		id                   int64
		name, color          string
		sortOrder            int
		createdAt, updatedAt string
	}
	var categories []category
	for rows.Next() {
		var c category
		if err := rows.Scan(&c.id, &c.name, &c.color, &c.sortOrder, &c.createdAt, &c.updatedAt); err != nil {
			return nil, fmt.Errorf("scan legacy category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read legacy categories: %w", err)
	}

	optionByCategory := make(map[int64]int64, len(categories))
	for _, c := range categories {
		res, err := tx.Exec(
			`INSERT INTO dimension_options (dimension_id, name, color, sort_order, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			dimensionID, c.name, c.color, c.sortOrder, c.createdAt, c.updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("migrate category %q: %w", c.name, err)
		}
		optionByCategory[c.id], _ = res.LastInsertId()
	}
	return optionByCategory, nil
}

func migrateLegacyEntries(tx *sql.Tx, optionByCategory map[int64]int64) error {
	rows, err := tx.Query(
		`SELECT id, category_id, activity, start_time, end_time, duration_minutes, date,
		        COALESCE(notes, ''), created_at, updated_at
		 FROM legacy_time_entries ORDER BY id`,
	)
	if err != nil {
		return fmt.Errorf("read legacy entries: %w", err)
	}
	defer rows.Close()

	type legacyEntry struct {
		id, categoryID           int64
		activity                 string
		startHHMM, endHHMM, date string
		minutes                  int64
		notes                    string
		createdAt, updatedAt     string
	}
	var entries []legacyEntry
	for rows.Next() {
		var e legacyEntry
		if err := rows.Scan(&e.id, &e.categoryID, &e.activity, &e.startHHMM, &e.endHHMM,
			&e.minutes, &e.date, &e.notes, &e.createdAt, &e.updatedAt); err != nil {
			return fmt.Errorf("scan legacy entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read legacy entries: %w", err)
	}

	for _, e := range entries {
		if e.minutes < 1 || e.minutes > 1440 {
			return newError(CodeDurationTooLong,
				"legacy entry %d has duration %d minutes, outside the representable 24h span", e.id, e.minutes)
		}
		start := e.date + " " + e.startHHMM + ":00"
		end := e.date + " " + e.endHHMM + ":00"

		res, err := tx.Exec(
			`INSERT INTO time_entries (title, start_time, end_time, duration_seconds, description, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.activity, start, end, e.minutes*60, e.notes, e.createdAt, e.updatedAt,
		)
		if err != nil {
			return fmt.Errorf("migrate legacy entry %d: %w", e.id, err)
		}
		entryID, _ := res.LastInsertId()

		optionID, ok := optionByCategory[e.categoryID]
		if !ok {
			return fmt.Errorf("legacy entry %d references unknown category %d", e.id, e.categoryID)
		}
		if _, err := tx.Exec(
			`INSERT INTO entry_attributes (entry_id, option_id) VALUES (?, ?)`,
			entryID, optionID,
		); err != nil {
			return fmt.Errorf("link legacy entry %d: %w", e.id, err)
		}
	}
	return nil
}
