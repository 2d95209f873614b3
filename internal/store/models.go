package store

import "time"

type Dimension struct {
	ID          int64
	Name        string
	Active      bool
	MultiSelect bool
	SortOrder   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type DimensionOption struct {
	ID          int64
	DimensionID int64
	Name        string
	Color       string
	SortOrder   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DimensionWithOptions is the read model used by listing callers: a
// dimension together with its options in display order.
type DimensionWithOptions struct {
	Dimension
	Options []DimensionOption
}

type TimeEntry struct {
	ID              int64
	Title           string
	StartTime       time.Time
	EndTime         *time.Time // nil while the entry is running
	DurationSeconds int64      // 0 while running, end-start otherwise
	Description     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Running reports whether the entry has no end time yet.
func (e *TimeEntry) Running() bool { return e.EndTime == nil }

// EntryTag is one resolved tag link of an entry: the option plus its
// owning dimension, denormalized for display.
type EntryTag struct {
	DimensionID   int64
	DimensionName string
	OptionID      int64
	OptionName    string
	OptionColor   string
}

type EntryWithTags struct {
	TimeEntry
	Tags []EntryTag
}

// Gap is a derived unrecorded interval between two consecutive entries
// on the same day. It is never stored.
type Gap struct {
	Start           time.Time
	End             time.Time
	DurationSeconds int64
}

// NullableTime distinguishes "leave unchanged" (Set false) from
// "set to null" (Set true, Time nil) from "set to a value".
type NullableTime struct {
	Set  bool
	Time *time.Time
}

func SetTime(t time.Time) NullableTime { return NullableTime{Set: true, Time: &t} }
func ClearTime() NullableTime          { return NullableTime{Set: true} }

// EntryPatch is a partial update of a time entry. Nil pointer fields are
// left untouched. A non-nil OptionIDs (including an empty slice) replaces
// the full set of tag links.
type EntryPatch struct {
	Title       *string
	Start       *time.Time
	End         NullableTime
	Description *string
	OptionIDs   []int64
}

type DimensionPatch struct {
	Name        *string
	SortOrder   *int
	MultiSelect *bool
}

type OptionPatch struct {
	Name      *string
	Color     *string
	SortOrder *int
}

// OptionStats is one row of StatsByDimension. Percentage is computed
// against the grand total of all entries in the range, not the
// dimension's subtotal, so percentages stay comparable across dimensions.
type OptionStats struct {
	OptionID   int64
	OptionName string
	Color      string
	Seconds    int64
	Hours      float64
	Percentage float64
	EntryCount int
}

// TrendPoint is one (bucket, option) row of TrendByDimension. Bucket is
// either a day ("2026-08-28") or an ISO week ("2026-W35").
type TrendPoint struct {
	Bucket     string
	OptionID   int64
	OptionName string
	Color      string
	Hours      float64
}

type GroupBy string

const (
	GroupByDay  GroupBy = "day"
	GroupByWeek GroupBy = "week"
)

type RangeTotal struct {
	Hours   float64
	Entries int
}

type ActivityRank struct {
	Title     string
	Hours     float64
	Frequency int
}

// ExportRow is the flat, denormalized projection consumed by the
// tabular export writers.
type ExportRow struct {
	Date    string
	Start   string
	End     string
	Title   string
	Tags    string // "Dimension: Option" pairs joined with "; "
	Minutes int64
	Hours   float64
	Notes   string
}

// ExportFilter narrows the export projection. Nil dates mean unbounded;
// a non-empty OptionIDs keeps only entries tagged with at least one of
// the given options.
type ExportFilter struct {
	From      *time.Time
	To        *time.Time
	OptionIDs []int64
}

type Setting struct {
	Key   string
	Value string
}
