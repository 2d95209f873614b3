package store

import (
	"testing"
	"time"
)

func seedExportFixture(t *testing.T, s *Store) (work, life *DimensionOption) {
	t.Helper()
	domain := mustDimension(t, s, "Domain", false)
	work = mustOption(t, s, domain.ID, "Work", "")
	life = mustOption(t, s, domain.ID, "Life", "")

	e := mustEntry(t, s, "Write report",
		localTime(2026, time.March, 2, 9, 0), localTime(2026, time.March, 2, 10, 30), work.ID)
	notes := "quarterly draft"
	if err := s.UpdateEntry(e.ID, EntryPatch{Description: &notes}); err != nil {
		t.Fatal(err)
	}
	mustEntry(t, s, "Lunch",
		localTime(2026, time.March, 2, 12, 0), localTime(2026, time.March, 2, 12, 45), life.ID)
	mustEntry(t, s, "Gym",
		localTime(2026, time.March, 4, 18, 0), localTime(2026, time.March, 4, 19, 0), life.ID)
	return work, life
}

func TestExportRows(t *testing.T) {
	s := newTestStore(t)
	seedExportFixture(t, s)

	rows, err := s.ExportRows(ExportFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	// Newest first.
	if rows[0].Title != "Gym" || rows[2].Title != "Write report" {
		t.Fatalf("unexpected order: %q ... %q", rows[0].Title, rows[2].Title)
	}

	report := rows[2]
	if report.Date != "2026-03-02" || report.Start != "09:00" || report.End != "10:30" {
		t.Fatalf("unexpected times: %+v", report)
	}
	if report.Minutes != 90 {
		t.Fatalf("expected 90 minutes, got %d", report.Minutes)
	}
	if report.Hours != 1.5 {
		t.Fatalf("expected 1.5 hours, got %v", report.Hours)
	}
	if report.Tags != "Domain: Work" {
		t.Fatalf("unexpected tag label %q", report.Tags)
	}
	if report.Notes != "quarterly draft" {
		t.Fatalf("unexpected notes %q", report.Notes)
	}
}

func TestExportRowsDateFilter(t *testing.T) {
	s := newTestStore(t)
	seedExportFixture(t, s)

	day := localTime(2026, time.March, 2, 0, 0)
	rows, err := s.ExportRows(ExportFilter{From: &day, To: &day})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows for March 2, got %d", len(rows))
	}

	from := localTime(2026, time.March, 3, 0, 0)
	rows, err = s.ExportRows(ExportFilter{From: &from})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Title != "Gym" {
		t.Fatalf("expected only Gym after March 3, got %+v", rows)
	}
}

func TestExportRowsOptionFilter(t *testing.T) {
	s := newTestStore(t)
	_, life := seedExportFixture(t, s)

	rows, err := s.ExportRows(ExportFilter{OptionIDs: []int64{life.ID}})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 Life rows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.Tags != "Domain: Life" {
			t.Fatalf("unexpected row in filter: %+v", r)
		}
	}
}

func TestExportRowsRunningEntry(t *testing.T) {
	s := newTestStore(t)
	fixedClock(s, localTime(2026, time.March, 2, 9, 0))
	if _, err := s.SwitchActivity("Write report", nil, ""); err != nil {
		t.Fatal(err)
	}

	rows, err := s.ExportRows(ExportFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].End != "" || rows[0].Minutes != 0 {
		t.Fatalf("running entry should export without end: %+v", rows[0])
	}
}

func TestExportRowsMultipleTags(t *testing.T) {
	s := newTestStore(t)
	domain := mustDimension(t, s, "Domain", false)
	project := mustDimension(t, s, "Project", false)
	work := mustOption(t, s, domain.ID, "Work", "")
	apollo := mustOption(t, s, project.ID, "Apollo", "")

	mustEntry(t, s, "Write report",
		localTime(2026, time.March, 2, 9, 0), localTime(2026, time.March, 2, 10, 0), work.ID, apollo.ID)

	rows, err := s.ExportRows(ExportFilter{})
	if err != nil {
		t.Fatal(err)
	}
	// Tags follow dimension sort order.
	if rows[0].Tags != "Domain: Work; Project: Apollo" {
		t.Fatalf("unexpected tag label %q", rows[0].Tags)
	}
}
