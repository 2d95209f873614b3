package store

import (
	"database/sql"
	"errors"
	"strings"
)

const defaultOptionColor = "#3B82F6"

// CreateDimension adds a classification axis. A sortOrder of 0 assigns
// the next free slot at the end of the display order.
func (s *Store) CreateDimension(name string, sortOrder int, multiSelect bool) (*Dimension, error) {
	if err := s.checkDimensionName(name, 0); err != nil {
		return nil, err
	}
	if sortOrder == 0 {
		if err := s.db.QueryRow(
			`SELECT COALESCE(MAX(sort_order), 0) + 1 FROM dimensions`,
		).Scan(&sortOrder); err != nil {
			return nil, dbError("assign dimension order", err)
		}
	}

	res, err := s.db.Exec(
		`INSERT INTO dimensions (name, multi_select, sort_order) VALUES (?, ?, ?)`,
		name, boolToInt(multiSelect), sortOrder,
	)
	if err != nil {
		return nil, dbError("insert dimension", err)
	}
	id, _ := res.LastInsertId()
	return s.GetDimension(id)
}

func (s *Store) GetDimension(id int64) (*Dimension, error) {
	d := &Dimension{}
	var active, multi int
	var createdAt, updatedAt string
	err := s.db.QueryRow(
		`SELECT id, name, is_active, multi_select, sort_order, created_at, updated_at
		 FROM dimensions WHERE id = ?`, id,
	).Scan(&d.ID, &d.Name, &active, &multi, &d.SortOrder, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newError(CodeNotFound, "dimension %d not found", id)
	}
	if err != nil {
		return nil, dbError("get dimension", err)
	}
	d.Active = active == 1
	d.MultiSelect = multi == 1
	d.CreatedAt = parseTime(createdAt)
	d.UpdatedAt = parseTime(updatedAt)
	return d, nil
}

// ListDimensions returns dimensions in display order, each with its
// options in display order. Inactive dimensions are included only when
// requested.
func (s *Store) ListDimensions(includeInactive bool) ([]DimensionWithOptions, error) {
	query := `SELECT id, name, is_active, multi_select, sort_order, created_at, updated_at FROM dimensions`
	if !includeInactive {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY sort_order ASC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, dbError("list dimensions", err)
	}
	defer rows.Close()

	var dims []DimensionWithOptions
	for rows.Next() {
		var d DimensionWithOptions
		var active, multi int
		var createdAt, updatedAt string
		if err := rows.Scan(&d.ID, &d.Name, &active, &multi, &d.SortOrder, &createdAt, &updatedAt); err != nil {
			return nil, dbError("scan dimension", err)
		}
		d.Active = active == 1
		d.MultiSelect = multi == 1
		d.CreatedAt = parseTime(createdAt)
		d.UpdatedAt = parseTime(updatedAt)
		dims = append(dims, d)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list dimensions", err)
	}

	for i := range dims {
		opts, err := s.optionsForDimension(dims[i].ID)
		if err != nil {
			return nil, err
		}
		dims[i].Options = opts
	}
	return dims, nil
}

// UpdateDimension applies a partial update. The updated_at column is
// maintained by the schema trigger.
func (s *Store) UpdateDimension(id int64, patch DimensionPatch) error {
	if patch.Name != nil {
		if err := s.checkDimensionName(*patch.Name, id); err != nil {
			return err
		}
	}

	var sets []string
	var args []any
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.SortOrder != nil {
		sets = append(sets, "sort_order = ?")
		args = append(args, *patch.SortOrder)
	}
	if patch.MultiSelect != nil {
		sets = append(sets, "multi_select = ?")
		args = append(args, boolToInt(*patch.MultiSelect))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	res, err := s.db.Exec(`UPDATE dimensions SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return dbError("update dimension", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return newError(CodeNotFound, "dimension %d not found", id)
	}
	return nil
}

// DeleteDimension hard-deletes a dimension, its options, and all tag
// links referencing those options. Entries themselves are kept; they
// just lose this axis of classification.
func (s *Store) DeleteDimension(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return dbError("begin delete dimension", err)
	}
	defer tx.Rollback()

	// Tag links hold a RESTRICT reference to options, so they must go
	// before the option cascade can run.
	if _, err := tx.Exec(
		`DELETE FROM entry_attributes
		 WHERE option_id IN (SELECT id FROM dimension_options WHERE dimension_id = ?)`, id,
	); err != nil {
		return dbError("delete dimension links", err)
	}

	res, err := tx.Exec(`DELETE FROM dimensions WHERE id = ?`, id)
	if err != nil {
		return dbError("delete dimension", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return newError(CodeNotFound, "dimension %d not found", id)
	}

	if err := tx.Commit(); err != nil {
		return dbError("commit delete dimension", err)
	}
	return nil
}

// ToggleDimension flips the active flag without touching options or
// entries.
func (s *Store) ToggleDimension(id int64, active bool) error {
	res, err := s.db.Exec(`UPDATE dimensions SET is_active = ? WHERE id = ?`, boolToInt(active), id)
	if err != nil {
		return dbError("toggle dimension", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return newError(CodeNotFound, "dimension %d not found", id)
	}
	return nil
}

// CreateOption adds a value under a dimension. An empty color gets the
// default; a sortOrder of 0 assigns the next slot within the dimension.
func (s *Store) CreateOption(dimensionID int64, name, color string, sortOrder int) (*DimensionOption, error) {
	if _, err := s.GetDimension(dimensionID); err != nil {
		return nil, err
	}

	var existing int64
	err := s.db.QueryRow(
		`SELECT id FROM dimension_options WHERE dimension_id = ? AND name = ?`,
		dimensionID, name,
	).Scan(&existing)
	if err == nil {
		return nil, newError(CodeDuplicateName, "option %q already exists in this dimension", name)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, dbError("check option name", err)
	}

	if color == "" {
		color = defaultOptionColor
	}
	if sortOrder == 0 {
		if err := s.db.QueryRow(
			`SELECT COALESCE(MAX(sort_order), 0) + 1 FROM dimension_options WHERE dimension_id = ?`,
			dimensionID,
		).Scan(&sortOrder); err != nil {
			return nil, dbError("assign option order", err)
		}
	}

	res, err := s.db.Exec(
		`INSERT INTO dimension_options (dimension_id, name, color, sort_order) VALUES (?, ?, ?, ?)`,
		dimensionID, name, color, sortOrder,
	)
	if err != nil {
		return nil, dbError("insert option", err)
	}
	id, _ := res.LastInsertId()
	return s.GetOption(id)
}

func (s *Store) GetOption(id int64) (*DimensionOption, error) {
	o := &DimensionOption{}
	var createdAt, updatedAt string
	err := s.db.QueryRow(
		`SELECT id, dimension_id, name, color, sort_order, created_at, updated_at
		 FROM dimension_options WHERE id = ?`, id,
	).Scan(&o.ID, &o.DimensionID, &o.Name, &o.Color, &o.SortOrder, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newError(CodeNotFound, "option %d not found", id)
	}
	if err != nil {
		return nil, dbError("get option", err)
	}
	o.CreatedAt = parseTime(createdAt)
	o.UpdatedAt = parseTime(updatedAt)
	return o, nil
}

func (s *Store) UpdateOption(id int64, patch OptionPatch) error {
	if patch.Name != nil {
		opt, err := s.GetOption(id)
		if err != nil {
			return err
		}
		var existing int64
		err = s.db.QueryRow(
			`SELECT id FROM dimension_options WHERE dimension_id = ? AND name = ? AND id != ?`,
			opt.DimensionID, *patch.Name, id,
		).Scan(&existing)
		if err == nil {
			return newError(CodeDuplicateName, "option %q already exists in this dimension", *patch.Name)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return dbError("check option name", err)
		}
	}

	var sets []string
	var args []any
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Color != nil {
		sets = append(sets, "color = ?")
		args = append(args, *patch.Color)
	}
	if patch.SortOrder != nil {
		sets = append(sets, "sort_order = ?")
		args = append(args, *patch.SortOrder)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	res, err := s.db.Exec(`UPDATE dimension_options SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return dbError("update option", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return newError(CodeNotFound, "option %d not found", id)
	}
	return nil
}

// DeleteOption refuses to remove an option still referenced by any
// entry: silently cascading would erase historical classification.
func (s *Store) DeleteOption(id int64) error {
	var refs int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM entry_attributes WHERE option_id = ?`, id,
	).Scan(&refs); err != nil {
		return dbError("count option references", err)
	}
	if refs > 0 {
		return newError(CodeHasReferences, "option %d is referenced by %d entries", id, refs)
	}

	res, err := s.db.Exec(`DELETE FROM dimension_options WHERE id = ?`, id)
	if err != nil {
		return dbError("delete option", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return newError(CodeNotFound, "option %d not found", id)
	}
	return nil
}

func (s *Store) optionsForDimension(dimensionID int64) ([]DimensionOption, error) {
	rows, err := s.db.Query(
		`SELECT id, dimension_id, name, color, sort_order, created_at, updated_at
		 FROM dimension_options WHERE dimension_id = ? ORDER BY sort_order ASC`, dimensionID,
	)
	if err != nil {
		return nil, dbError("list options", err)
	}
	defer rows.Close()

	var opts []DimensionOption
	for rows.Next() {
		var o DimensionOption
		var createdAt, updatedAt string
		if err := rows.Scan(&o.ID, &o.DimensionID, &o.Name, &o.Color, &o.SortOrder, &createdAt, &updatedAt); err != nil {
			return nil, dbError("scan option", err)
		}
		o.CreatedAt = parseTime(createdAt)
		o.UpdatedAt = parseTime(updatedAt)
		opts = append(opts, o)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list options", err)
	}
	return opts, nil
}

// checkDimensionName rejects a name already used by another active
// dimension. The check mirrors the UNIQUE constraint but yields a
// precise code before the constraint fires.
func (s *Store) checkDimensionName(name string, excludeID int64) error {
	var existing int64
	err := s.db.QueryRow(
		`SELECT id FROM dimensions WHERE name = ? AND is_active = 1 AND id != ?`,
		name, excludeID,
	).Scan(&existing)
	if err == nil {
		return newError(CodeDuplicateName, "dimension %q already exists", name)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return dbError("check dimension name", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
