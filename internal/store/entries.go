package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
}

// SwitchActivity atomically closes the running entry (if any) and opens
// a new one tagged with the given options. Either everything applies or
// nothing does: there is never a moment with two open entries, nor a new
// entry without its tag links.
func (s *Store) SwitchActivity(title string, optionIDs []int64, description string) (*EntryWithTags, error) {
	now := s.now()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, dbError("begin switch", err)
	}
	defer tx.Rollback()

	if err := s.closeRunning(tx, now); err != nil {
		return nil, err
	}

	res, err := tx.Exec(
		`INSERT INTO time_entries (title, start_time, end_time, duration_seconds, description)
		 VALUES (?, ?, NULL, 0, ?)`,
		title, formatTime(now), description,
	)
	if err != nil {
		return nil, dbError("insert entry", err)
	}
	id, _ := res.LastInsertId()

	if err := s.linkOptions(tx, id, optionIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, dbError("commit switch", err)
	}
	return s.GetEntry(id)
}

// StopCurrent closes the running entry without opening a new one.
// Returns the closed entry, or nil if nothing was running.
func (s *Store) StopCurrent() (*EntryWithTags, error) {
	now := s.now()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, dbError("begin stop", err)
	}
	defer tx.Rollback()

	var id int64
	var startStr string
	err = tx.QueryRow(
		`SELECT id, start_time FROM time_entries WHERE end_time IS NULL ORDER BY id DESC LIMIT 1`,
	).Scan(&id, &startStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dbError("find running entry", err)
	}

	if err := s.closeRunning(tx, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, dbError("commit stop", err)
	}
	return s.GetEntry(id)
}

// closeRunning ends every open entry at the given instant, recomputing
// its duration from its own start time.
func (s *Store) closeRunning(tx *sql.Tx, now time.Time) error {
	rows, err := tx.Query(`SELECT id, start_time FROM time_entries WHERE end_time IS NULL`)
	if err != nil {
		return dbError("find running entry", err)
	}
	type open struct {
		id    int64
		start time.Time
	}
	var running []open
	for rows.Next() {
		var o open
		var startStr string
		if err := rows.Scan(&o.id, &startStr); err != nil {
			rows.Close()
			return dbError("scan running entry", err)
		}
		o.start = parseTime(startStr)
		running = append(running, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return dbError("find running entry", err)
	}

	for _, o := range running {
		dur := int64(now.Sub(o.start).Seconds())
		if dur < 0 {
			dur = 0
		}
		if _, err := tx.Exec(
			`UPDATE time_entries SET end_time = ?, duration_seconds = ? WHERE id = ?`,
			formatTime(now), dur, o.id,
		); err != nil {
			return dbError("close running entry", err)
		}
	}
	return nil
}

// CreateEntry inserts a fully specified interval without touching any
// other entry. A nil end leaves the entry explicitly open; callers own
// the single-open-entry invariant on that path.
func (s *Store) CreateEntry(title string, start time.Time, end *time.Time, optionIDs []int64, description string) (*EntryWithTags, error) {
	var duration int64
	var endVal any
	if end != nil {
		if !end.After(start) {
			return nil, newError(CodeInvalidTimeRange, "end time must be after start time")
		}
		duration = int64(end.Sub(start).Seconds())
		endVal = formatTime(*end)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, dbError("begin create entry", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO time_entries (title, start_time, end_time, duration_seconds, description)
		 VALUES (?, ?, ?, ?, ?)`,
		title, formatTime(start), endVal, duration, description,
	)
	if err != nil {
		return nil, dbError("insert entry", err)
	}
	id, _ := res.LastInsertId()

	if err := s.linkOptions(tx, id, optionIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, dbError("commit create entry", err)
	}
	return s.GetEntry(id)
}

// UpdateEntry applies a partial update. Duration is recomputed whenever
// start or end changes; clearing the end re-opens the entry with a zero
// duration (callers own the single-open-entry invariant on that path).
// A non-nil OptionIDs replaces the full set of tag links.
func (s *Store) UpdateEntry(id int64, patch EntryPatch) error {
	tx, err := s.db.Begin()
	if err != nil {
		return dbError("begin update entry", err)
	}
	defer tx.Rollback()

	var startStr string
	var endStr sql.NullString
	err = tx.QueryRow(`SELECT start_time, end_time FROM time_entries WHERE id = ?`, id).
		Scan(&startStr, &endStr)
	if errors.Is(err, sql.ErrNoRows) {
		return newError(CodeNotFound, "entry %d not found", id)
	}
	if err != nil {
		return dbError("get entry", err)
	}

	start := parseTime(startStr)
	var end *time.Time
	if endStr.Valid {
		t := parseTime(endStr.String)
		end = &t
	}
	if patch.Start != nil {
		start = *patch.Start
	}
	if patch.End.Set {
		end = patch.End.Time
	}

	timeChanged := patch.Start != nil || patch.End.Set
	var duration int64
	if end != nil {
		if !end.After(start) {
			return newError(CodeInvalidTimeRange, "end time must be after start time")
		}
		duration = int64(end.Sub(start).Seconds())
	}

	var sets []string
	var args []any
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Start != nil {
		sets = append(sets, "start_time = ?")
		args = append(args, formatTime(start))
	}
	if patch.End.Set {
		sets = append(sets, "end_time = ?")
		if end != nil {
			args = append(args, formatTime(*end))
		} else {
			args = append(args, nil)
		}
	}
	if timeChanged {
		sets = append(sets, "duration_seconds = ?")
		args = append(args, duration)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}

	if len(sets) > 0 {
		args = append(args, id)
		if _, err := tx.Exec(`UPDATE time_entries SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
			return dbError("update entry", err)
		}
	}

	if patch.OptionIDs != nil {
		if _, err := tx.Exec(`DELETE FROM entry_attributes WHERE entry_id = ?`, id); err != nil {
			return dbError("clear entry tags", err)
		}
		if err := s.linkOptions(tx, id, patch.OptionIDs); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return dbError("commit update entry", err)
	}
	return nil
}

// DeleteEntry removes an entry; its tag links go with it via cascade.
func (s *Store) DeleteEntry(id int64) error {
	res, err := s.db.Exec(`DELETE FROM time_entries WHERE id = ?`, id)
	if err != nil {
		return dbError("delete entry", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return newError(CodeNotFound, "entry %d not found", id)
	}
	return nil
}

func (s *Store) GetEntry(id int64) (*EntryWithTags, error) {
	e, err := s.scanOneEntry(
		`SELECT id, title, start_time, end_time, duration_seconds, description, created_at, updated_at
		 FROM time_entries WHERE id = ?`, id,
	)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, newError(CodeNotFound, "entry %d not found", id)
	}
	return e, nil
}

// GetCurrentActive returns the running entry with its tags, or nil when
// idle.
func (s *Store) GetCurrentActive() (*EntryWithTags, error) {
	return s.scanOneEntry(
		`SELECT id, title, start_time, end_time, duration_seconds, description, created_at, updated_at
		 FROM time_entries WHERE end_time IS NULL ORDER BY id DESC LIMIT 1`,
	)
}

// EntriesByDate returns the entries whose start falls on the given
// calendar day, newest first, each with its resolved tags.
func (s *Store) EntriesByDate(day time.Time) ([]EntryWithTags, error) {
	rows, err := s.db.Query(
		`SELECT id, title, start_time, end_time, duration_seconds, description, created_at, updated_at
		 FROM time_entries WHERE DATE(start_time) = ? ORDER BY start_time DESC`,
		dayString(day),
	)
	if err != nil {
		return nil, dbError("list entries", err)
	}
	defer rows.Close()

	var entries []EntryWithTags
	for rows.Next() {
		e, err := scanEntryRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, EntryWithTags{TimeEntry: *e})
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list entries", err)
	}

	for i := range entries {
		tags, err := s.tagsForEntry(entries[i].ID)
		if err != nil {
			return nil, err
		}
		entries[i].Tags = tags
	}
	return entries, nil
}

// DetectGaps finds unrecorded intervals between consecutive entries on
// the given day using one-ahead lookahead over the start-ordered
// entries. The running entry never produces a trailing gap.
func (s *Store) DetectGaps(day time.Time) ([]Gap, error) {
	rows, err := s.db.Query(
		`WITH ordered AS (
			SELECT end_time,
			       LEAD(start_time) OVER (ORDER BY start_time) AS next_start
			FROM time_entries
			WHERE DATE(start_time) = ?
		)
		SELECT end_time, next_start
		FROM ordered
		WHERE next_start IS NOT NULL
		  AND end_time IS NOT NULL
		  AND end_time < next_start`,
		dayString(day),
	)
	if err != nil {
		return nil, dbError("detect gaps", err)
	}
	defer rows.Close()

	var gaps []Gap
	for rows.Next() {
		var endStr, nextStr string
		if err := rows.Scan(&endStr, &nextStr); err != nil {
			return nil, dbError("scan gap", err)
		}
		g := Gap{Start: parseTime(endStr), End: parseTime(nextStr)}
		g.DurationSeconds = int64(g.End.Sub(g.Start).Seconds())
		gaps = append(gaps, g)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("detect gaps", err)
	}
	return gaps, nil
}

// linkOptions inserts one tag link per option after enforcing the
// per-dimension selection policy.
func (s *Store) linkOptions(tx *sql.Tx, entryID int64, optionIDs []int64) error {
	if len(optionIDs) == 0 {
		return nil
	}
	if err := checkSelectPolicy(tx, optionIDs); err != nil {
		return err
	}
	for _, optionID := range optionIDs {
		if _, err := tx.Exec(
			`INSERT INTO entry_attributes (entry_id, option_id) VALUES (?, ?)`,
			entryID, optionID,
		); err != nil {
			return dbError("link option", err)
		}
	}
	return nil
}

// checkSelectPolicy verifies every option exists and rejects two options
// of the same single-select dimension. Multi-select dimensions accept any
// number of their options.
func checkSelectPolicy(q querier, optionIDs []int64) error {
	perDimension := make(map[int64]int)
	for _, id := range optionIDs {
		var dimID int64
		var multi int
		var dimName string
		err := q.QueryRow(
			`SELECT d.id, d.multi_select, d.name
			 FROM dimension_options o
			 JOIN dimensions d ON d.id = o.dimension_id
			 WHERE o.id = ?`, id,
		).Scan(&dimID, &multi, &dimName)
		if errors.Is(err, sql.ErrNoRows) {
			return newError(CodeNotFound, "option %d not found", id)
		}
		if err != nil {
			return dbError("resolve option", err)
		}
		perDimension[dimID]++
		if multi == 0 && perDimension[dimID] > 1 {
			return newError(CodeSingleSelect, "dimension %q allows only one option per entry", dimName)
		}
	}
	return nil
}

func (s *Store) scanOneEntry(query string, args ...any) (*EntryWithTags, error) {
	e := &TimeEntry{}
	var startStr, createdAt, updatedAt string
	var endStr sql.NullString
	err := s.db.QueryRow(query, args...).Scan(
		&e.ID, &e.Title, &startStr, &endStr, &e.DurationSeconds, &e.Description, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dbError("get entry", err)
	}
	e.StartTime = parseTime(startStr)
	if endStr.Valid {
		t := parseTime(endStr.String)
		e.EndTime = &t
	}
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)

	tags, err := s.tagsForEntry(e.ID)
	if err != nil {
		return nil, err
	}
	return &EntryWithTags{TimeEntry: *e, Tags: tags}, nil
}

func scanEntryRow(rows *sql.Rows) (*TimeEntry, error) {
	e := &TimeEntry{}
	var startStr, createdAt, updatedAt string
	var endStr sql.NullString
	if err := rows.Scan(
		&e.ID, &e.Title, &startStr, &endStr, &e.DurationSeconds, &e.Description, &createdAt, &updatedAt,
	); err != nil {
		return nil, dbError("scan entry", err)
	}
	e.StartTime = parseTime(startStr)
	if endStr.Valid {
		t := parseTime(endStr.String)
		e.EndTime = &t
	}
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return e, nil
}

func (s *Store) tagsForEntry(entryID int64) ([]EntryTag, error) {
	rows, err := s.db.Query(
		`SELECT d.id, d.name, o.id, o.name, o.color
		 FROM entry_attributes ea
		 JOIN dimension_options o ON o.id = ea.option_id
		 JOIN dimensions d ON d.id = o.dimension_id
		 WHERE ea.entry_id = ?
		 ORDER BY d.sort_order, o.sort_order`, entryID,
	)
	if err != nil {
		return nil, dbError("list entry tags", err)
	}
	defer rows.Close()

	var tags []EntryTag
	for rows.Next() {
		var t EntryTag
		if err := rows.Scan(&t.DimensionID, &t.DimensionName, &t.OptionID, &t.OptionName, &t.OptionColor); err != nil {
			return nil, dbError("scan entry tag", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list entry tags", err)
	}
	return tags, nil
}
