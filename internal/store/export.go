package store

import "strings"

// ExportRows produces the denormalized projection feeding the tabular
// export writers: one row per entry, newest first, with every tag
// rendered as "Dimension: Option".
func (s *Store) ExportRows(f ExportFilter) ([]ExportRow, error) {
	query := `SELECT id, DATE(start_time), start_time, end_time, title, duration_seconds, description
	          FROM time_entries WHERE 1=1`
	var args []any

	if f.From != nil {
		query += ` AND DATE(start_time) >= ?`
		args = append(args, dayString(*f.From))
	}
	if f.To != nil {
		query += ` AND DATE(start_time) <= ?`
		args = append(args, dayString(*f.To))
	}
	if len(f.OptionIDs) > 0 {
		placeholders := strings.Repeat("?,", len(f.OptionIDs))
		query += ` AND id IN (SELECT entry_id FROM entry_attributes WHERE option_id IN (` +
			placeholders[:len(placeholders)-1] + `))`
		for _, id := range f.OptionIDs {
			args = append(args, id)
		}
	}
	query += ` ORDER BY start_time DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, &Error{Code: CodeExportError, Message: "export query failed", cause: err}
	}
	defer rows.Close()

	type rawRow struct {
		id      int64
		row     ExportRow
		seconds int64
	}
	var raw []rawRow
	for rows.Next() {
		var r rawRow
		var startStr string
		var endStr, desc stringOrNull
		if err := rows.Scan(&r.id, &r.row.Date, &startStr, &endStr, &r.row.Title, &r.seconds, &desc); err != nil {
			return nil, &Error{Code: CodeExportError, Message: "export scan failed", cause: err}
		}
		r.row.Start = parseTime(startStr).Format("15:04")
		if endStr != "" {
			r.row.End = parseTime(string(endStr)).Format("15:04")
		}
		r.row.Minutes = r.seconds / 60
		r.row.Hours = float64(r.seconds) / 3600.0
		r.row.Notes = string(desc)
		raw = append(raw, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Code: CodeExportError, Message: "export query failed", cause: err}
	}

	out := make([]ExportRow, 0, len(raw))
	for _, r := range raw {
		tags, err := s.tagsForEntry(r.id)
		if err != nil {
			return nil, err
		}
		labels := make([]string, 0, len(tags))
		for _, t := range tags {
			labels = append(labels, t.DimensionName+": "+t.OptionName)
		}
		r.row.Tags = strings.Join(labels, "; ")
		out = append(out, r.row)
	}
	return out, nil
}

// stringOrNull scans TEXT columns that may be NULL into a plain string.
type stringOrNull string

func (s *stringOrNull) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = ""
	case string:
		*s = stringOrNull(v)
	case []byte:
		*s = stringOrNull(v)
	}
	return nil
}
