package store

import (
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/facet-dev/facet/internal/timeutil"
)

// StatsByDimension sums recorded time per option of one dimension over
// the inclusive day range. Percentages are taken against the grand total
// of all entries in the range so that figures from different dimensions
// share one denominator. Options with no accumulated time are omitted.
func (s *Store) StatsByDimension(dimensionID int64, from, to time.Time) ([]OptionStats, error) {
	if _, err := s.GetDimension(dimensionID); err != nil {
		return nil, err
	}

	var totalSeconds int64
	if err := s.db.QueryRow(
		`SELECT COALESCE(SUM(duration_seconds), 0) FROM time_entries
		 WHERE DATE(start_time) BETWEEN ? AND ?`,
		dayString(from), dayString(to),
	).Scan(&totalSeconds); err != nil {
		return nil, dbError("total duration", err)
	}

	rows, err := s.db.Query(
		`SELECT o.id, o.name, o.color,
		        SUM(te.duration_seconds) AS seconds,
		        COUNT(te.id) AS entry_count
		 FROM dimension_options o
		 JOIN entry_attributes ea ON ea.option_id = o.id
		 JOIN time_entries te ON te.id = ea.entry_id
		 WHERE o.dimension_id = ?
		   AND DATE(te.start_time) BETWEEN ? AND ?
		 GROUP BY o.id, o.name, o.color
		 HAVING SUM(te.duration_seconds) > 0
		 ORDER BY seconds DESC`,
		dimensionID, dayString(from), dayString(to),
	)
	if err != nil {
		return nil, dbError("dimension stats", err)
	}
	defer rows.Close()

	var stats []OptionStats
	for rows.Next() {
		var st OptionStats
		if err := rows.Scan(&st.OptionID, &st.OptionName, &st.Color, &st.Seconds, &st.EntryCount); err != nil {
			return nil, dbError("scan stats", err)
		}
		st.Hours = float64(st.Seconds) / 3600.0
		if totalSeconds > 0 {
			st.Percentage = float64(st.Seconds) * 100.0 / float64(totalSeconds)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("dimension stats", err)
	}
	return stats, nil
}

// TrendByDimension produces one row per (bucket, option) over the range,
// bucketed by calendar day or ISO-8601 week. Rows are ordered by bucket
// ascending, then hours descending within a bucket.
func (s *Store) TrendByDimension(dimensionID int64, from, to time.Time, groupBy GroupBy) ([]TrendPoint, error) {
	if _, err := s.GetDimension(dimensionID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT DATE(te.start_time) AS day, o.id, o.name, o.color,
		        SUM(te.duration_seconds) AS seconds
		 FROM time_entries te
		 JOIN entry_attributes ea ON ea.entry_id = te.id
		 JOIN dimension_options o ON o.id = ea.option_id
		 WHERE o.dimension_id = ?
		   AND DATE(te.start_time) BETWEEN ? AND ?
		 GROUP BY day, o.id
		 ORDER BY day ASC`,
		dimensionID, dayString(from), dayString(to),
	)
	if err != nil {
		return nil, dbError("dimension trend", err)
	}
	defer rows.Close()

	type key struct {
		bucket   string
		optionID int64
	}
	seconds := make(map[key]int64)
	meta := make(map[int64]struct{ name, color string })
	for rows.Next() {
		var day, name, color string
		var optionID, secs int64
		if err := rows.Scan(&day, &optionID, &name, &color, &secs); err != nil {
			return nil, dbError("scan trend", err)
		}
		bucket := day
		if groupBy == GroupByWeek {
			d, err := timeutil.ParseDay(day)
			if err != nil {
				return nil, dbError("parse trend day", err)
			}
			bucket = timeutil.WeekBucket(d)
		}
		seconds[key{bucket, optionID}] += secs
		meta[optionID] = struct{ name, color string }{name, color}
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("dimension trend", err)
	}

	points := make([]TrendPoint, 0, len(seconds))
	for k, secs := range seconds {
		m := meta[k.optionID]
		points = append(points, TrendPoint{
			Bucket:     k.bucket,
			OptionID:   k.optionID,
			OptionName: m.name,
			Color:      m.color,
			Hours:      float64(secs) / 3600.0,
		})
	}
	// Zero-padded day and week keys sort chronologically as strings.
	sort.Slice(points, func(i, j int) bool {
		if points[i].Bucket != points[j].Bucket {
			return points[i].Bucket < points[j].Bucket
		}
		if points[i].Hours != points[j].Hours {
			return points[i].Hours > points[j].Hours
		}
		return points[i].OptionID < points[j].OptionID
	})
	return points, nil
}

// TotalHours returns the grand total (fractional hours) and entry count
// over the inclusive day range.
func (s *Store) TotalHours(from, to time.Time) (RangeTotal, error) {
	var total RangeTotal
	var seconds int64
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(duration_seconds), 0), COUNT(*)
		 FROM time_entries
		 WHERE DATE(start_time) BETWEEN ? AND ?`,
		dayString(from), dayString(to),
	).Scan(&seconds, &total.Entries)
	if err != nil {
		return RangeTotal{}, dbError("total hours", err)
	}
	total.Hours = float64(seconds) / 3600.0
	return total, nil
}

// ActivityRanking groups entries by title, ordered by accumulated hours
// descending. A non-positive limit falls back to the ranking_limit
// setting.
func (s *Store) ActivityRanking(from, to time.Time, limit int) ([]ActivityRank, error) {
	if limit <= 0 {
		limit = s.settingInt("ranking_limit", 10)
	}

	rows, err := s.db.Query(
		`SELECT title, SUM(duration_seconds), COUNT(*)
		 FROM time_entries
		 WHERE DATE(start_time) BETWEEN ? AND ?
		 GROUP BY title
		 ORDER BY SUM(duration_seconds) DESC
		 LIMIT ?`,
		dayString(from), dayString(to), limit,
	)
	if err != nil {
		return nil, dbError("activity ranking", err)
	}
	defer rows.Close()

	var ranking []ActivityRank
	for rows.Next() {
		var r ActivityRank
		var seconds int64
		if err := rows.Scan(&r.Title, &seconds, &r.Frequency); err != nil {
			return nil, dbError("scan ranking", err)
		}
		r.Hours = float64(seconds) / 3600.0
		ranking = append(ranking, r)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("activity ranking", err)
	}
	return ranking, nil
}

// SmartDefaults returns the option ids of the most recent entry with an
// exact title match, for prefilling tag selection when a recurring
// activity is re-entered. No match yields an empty set, not an error.
func (s *Store) SmartDefaults(title string) ([]int64, error) {
	var entryID int64
	err := s.db.QueryRow(
		`SELECT id FROM time_entries WHERE title = ? ORDER BY start_time DESC LIMIT 1`,
		title,
	).Scan(&entryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dbError("smart defaults", err)
	}

	rows, err := s.db.Query(
		`SELECT option_id FROM entry_attributes WHERE entry_id = ? ORDER BY option_id`,
		entryID,
	)
	if err != nil {
		return nil, dbError("smart defaults", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, dbError("scan smart defaults", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("smart defaults", err)
	}
	return ids, nil
}

// SearchActivities returns distinct titles starting with keyword, most
// recently created first, capped by the search_limit setting.
func (s *Store) SearchActivities(keyword string) ([]string, error) {
	limit := s.settingInt("search_limit", 10)
	rows, err := s.db.Query(
		`SELECT title FROM time_entries
		 WHERE title LIKE ? || '%'
		 GROUP BY title
		 ORDER BY MAX(created_at) DESC, MAX(id) DESC
		 LIMIT ?`,
		keyword, limit,
	)
	if err != nil {
		return nil, dbError("search activities", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, dbError("scan search result", err)
		}
		titles = append(titles, t)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("search activities", err)
	}
	return titles, nil
}

func (s *Store) settingInt(key string, fallback int) int {
	v, err := s.GetSetting(key)
	if err != nil {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
