package store

import (
	"math"
	"testing"
	"time"
)

// seedStatsFixture lays down two single-select dimensions and a handful
// of closed entries across the first week of March 2026.
//
//	Domain:  Work (#EF4444), Life (#10B981)
//	Project: Apollo
//
//	Mon 02  Write report  09:00–11:00  Work, Apollo   (2h)
//	Mon 02  Lunch         12:00–13:00  Life           (1h)
//	Tue 03  Write report  09:00–10:00  Work, Apollo   (1h)
//	Tue 03  Untagged      20:00–21:00                 (1h)
func seedStatsFixture(t *testing.T, s *Store) (work, life, apollo *DimensionOption) {
	t.Helper()
	domain := mustDimension(t, s, "Domain", false)
	project := mustDimension(t, s, "Project", false)
	work = mustOption(t, s, domain.ID, "Work", "#EF4444")
	life = mustOption(t, s, domain.ID, "Life", "#10B981")
	apollo = mustOption(t, s, project.ID, "Apollo", "")

	mustEntry(t, s, "Write report",
		localTime(2026, time.March, 2, 9, 0), localTime(2026, time.March, 2, 11, 0), work.ID, apollo.ID)
	mustEntry(t, s, "Lunch",
		localTime(2026, time.March, 2, 12, 0), localTime(2026, time.March, 2, 13, 0), life.ID)
	mustEntry(t, s, "Write report",
		localTime(2026, time.March, 3, 9, 0), localTime(2026, time.March, 3, 10, 0), work.ID, apollo.ID)
	mustEntry(t, s, "Untagged",
		localTime(2026, time.March, 3, 20, 0), localTime(2026, time.March, 3, 21, 0))
	return work, life, apollo
}

func closeEnough(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestStatsByDimension(t *testing.T) {
	s := newTestStore(t)
	work, life, _ := seedStatsFixture(t, s)

	from := localTime(2026, time.March, 2, 0, 0)
	to := localTime(2026, time.March, 8, 0, 0)

	domain, err := s.GetOption(work.ID)
	if err != nil {
		t.Fatal(err)
	}
	stats, err := s.StatsByDimension(domain.DimensionID, from, to)
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 options with time, got %d", len(stats))
	}

	// Ordered by accumulated time descending: Work 3h, Life 1h. The grand
	// total across ALL entries in range is 5h, so shares are 60% and 20%.
	if stats[0].OptionID != work.ID || stats[0].Seconds != 3*3600 {
		t.Fatalf("unexpected first row: %+v", stats[0])
	}
	if !closeEnough(stats[0].Percentage, 60.0) {
		t.Fatalf("expected 60%%, got %v", stats[0].Percentage)
	}
	if stats[0].EntryCount != 2 {
		t.Fatalf("expected 2 entries for Work, got %d", stats[0].EntryCount)
	}
	if stats[1].OptionID != life.ID || !closeEnough(stats[1].Percentage, 20.0) {
		t.Fatalf("unexpected second row: %+v", stats[1])
	}
}

func TestStatsGlobalDenominatorSharedAcrossDimensions(t *testing.T) {
	s := newTestStore(t)
	_, _, apollo := seedStatsFixture(t, s)

	from := localTime(2026, time.March, 2, 0, 0)
	to := localTime(2026, time.March, 8, 0, 0)

	opt, err := s.GetOption(apollo.ID)
	if err != nil {
		t.Fatal(err)
	}
	stats, err := s.StatsByDimension(opt.DimensionID, from, to)
	if err != nil {
		t.Fatal(err)
	}
	// Apollo carries 3h of the same 5h grand total: same denominator as
	// the Domain dimension, so cross-dimension figures are comparable.
	if len(stats) != 1 || !closeEnough(stats[0].Percentage, 60.0) {
		t.Fatalf("expected single 60%% row, got %+v", stats)
	}
}

func TestStatsExcludesZeroOptions(t *testing.T) {
	s := newTestStore(t)
	d := mustDimension(t, s, "Domain", false)
	work := mustOption(t, s, d.ID, "Work", "")
	mustOption(t, s, d.ID, "Idle", "")

	mustEntry(t, s, "Write report",
		localTime(2026, time.March, 2, 9, 0), localTime(2026, time.March, 2, 10, 0), work.ID)

	from := localTime(2026, time.March, 2, 0, 0)
	stats, err := s.StatsByDimension(d.ID, from, from)
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 1 || stats[0].OptionName != "Work" {
		t.Fatalf("expected only Work, got %+v", stats)
	}
}

func TestStatsUnknownDimension(t *testing.T) {
	s := newTestStore(t)
	from := localTime(2026, time.March, 2, 0, 0)
	_, err := s.StatsByDimension(77, from, from)
	if ErrCode(err) != CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestTrendByDay(t *testing.T) {
	s := newTestStore(t)
	work, _, _ := seedStatsFixture(t, s)

	from := localTime(2026, time.March, 2, 0, 0)
	to := localTime(2026, time.March, 8, 0, 0)

	opt, err := s.GetOption(work.ID)
	if err != nil {
		t.Fatal(err)
	}
	points, err := s.TrendByDimension(opt.DimensionID, from, to, GroupByDay)
	if err != nil {
		t.Fatal(err)
	}
	// Mon: Work 2h, Life 1h; Tue: Work 1h. Buckets ascend, hours descend
	// within a bucket.
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %+v", points)
	}
	if points[0].Bucket != "2026-03-02" || points[0].OptionName != "Work" || !closeEnough(points[0].Hours, 2.0) {
		t.Fatalf("unexpected first point: %+v", points[0])
	}
	if points[1].Bucket != "2026-03-02" || points[1].OptionName != "Life" {
		t.Fatalf("unexpected second point: %+v", points[1])
	}
	if points[2].Bucket != "2026-03-03" || !closeEnough(points[2].Hours, 1.0) {
		t.Fatalf("unexpected third point: %+v", points[2])
	}
}

func TestTrendByWeek(t *testing.T) {
	s := newTestStore(t)
	d := mustDimension(t, s, "Domain", false)
	work := mustOption(t, s, d.ID, "Work", "")

	// 2026-03-02 is a Monday: ISO week 2026-W10. The following Monday
	// starts W11.
	mustEntry(t, s, "A", localTime(2026, time.March, 2, 9, 0), localTime(2026, time.March, 2, 10, 0), work.ID)
	mustEntry(t, s, "B", localTime(2026, time.March, 4, 9, 0), localTime(2026, time.March, 4, 11, 0), work.ID)
	mustEntry(t, s, "C", localTime(2026, time.March, 9, 9, 0), localTime(2026, time.March, 9, 10, 0), work.ID)

	from := localTime(2026, time.March, 1, 0, 0)
	to := localTime(2026, time.March, 15, 0, 0)
	points, err := s.TrendByDimension(d.ID, from, to, GroupByWeek)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 week buckets, got %+v", points)
	}
	if points[0].Bucket != "2026-W10" || !closeEnough(points[0].Hours, 3.0) {
		t.Fatalf("unexpected W10 point: %+v", points[0])
	}
	if points[1].Bucket != "2026-W11" || !closeEnough(points[1].Hours, 1.0) {
		t.Fatalf("unexpected W11 point: %+v", points[1])
	}
}

func TestTotalHours(t *testing.T) {
	s := newTestStore(t)
	seedStatsFixture(t, s)

	from := localTime(2026, time.March, 2, 0, 0)
	to := localTime(2026, time.March, 8, 0, 0)
	total, err := s.TotalHours(from, to)
	if err != nil {
		t.Fatal(err)
	}
	if !closeEnough(total.Hours, 5.0) || total.Entries != 4 {
		t.Fatalf("expected 5h across 4 entries, got %+v", total)
	}

	// Narrowed to Monday only.
	total, err = s.TotalHours(from, from)
	if err != nil {
		t.Fatal(err)
	}
	if !closeEnough(total.Hours, 3.0) || total.Entries != 2 {
		t.Fatalf("expected 3h across 2 entries, got %+v", total)
	}
}

func TestActivityRanking(t *testing.T) {
	s := newTestStore(t)
	seedStatsFixture(t, s)

	from := localTime(2026, time.March, 2, 0, 0)
	to := localTime(2026, time.March, 8, 0, 0)
	ranking, err := s.ActivityRanking(from, to, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(ranking) != 3 {
		t.Fatalf("expected 3 titles, got %+v", ranking)
	}
	if ranking[0].Title != "Write report" || !closeEnough(ranking[0].Hours, 3.0) || ranking[0].Frequency != 2 {
		t.Fatalf("unexpected top activity: %+v", ranking[0])
	}

	// An explicit limit truncates.
	ranking, err = s.ActivityRanking(from, to, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(ranking) != 1 {
		t.Fatalf("expected 1 row with limit 1, got %d", len(ranking))
	}
}

func TestActivityRankingHonorsSetting(t *testing.T) {
	s := newTestStore(t)
	seedStatsFixture(t, s)
	if err := s.SetSetting("ranking_limit", "2"); err != nil {
		t.Fatal(err)
	}

	from := localTime(2026, time.March, 2, 0, 0)
	to := localTime(2026, time.March, 8, 0, 0)
	ranking, err := s.ActivityRanking(from, to, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(ranking) != 2 {
		t.Fatalf("expected setting-capped 2 rows, got %d", len(ranking))
	}
}

func TestSmartDefaults(t *testing.T) {
	s := newTestStore(t)
	work, _, apollo := seedStatsFixture(t, s)

	ids, err := s.SmartDefaults("Write report")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 option ids, got %v", ids)
	}
	want := map[int64]bool{work.ID: true, apollo.ID: true}
	for _, id := range ids {
		if !want[id] {
			t.Fatalf("unexpected option id %d in %v", id, ids)
		}
	}

	ids, err = s.SmartDefaults("Never happened")
	if err != nil {
		t.Fatal(err)
	}
	if ids != nil {
		t.Fatalf("expected no defaults for unknown title, got %v", ids)
	}
}

func TestSmartDefaultsUsesLatestEntry(t *testing.T) {
	s := newTestStore(t)
	d := mustDimension(t, s, "Domain", false)
	work := mustOption(t, s, d.ID, "Work", "")
	life := mustOption(t, s, d.ID, "Life", "")

	mustEntry(t, s, "Email",
		localTime(2026, time.March, 2, 9, 0), localTime(2026, time.March, 2, 10, 0), work.ID)
	mustEntry(t, s, "Email",
		localTime(2026, time.March, 3, 9, 0), localTime(2026, time.March, 3, 10, 0), life.ID)

	ids, err := s.SmartDefaults("Email")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != life.ID {
		t.Fatalf("expected latest entry's tags, got %v", ids)
	}
}

func TestSearchActivities(t *testing.T) {
	s := newTestStore(t)
	mustEntry(t, s, "Write report",
		localTime(2026, time.March, 2, 9, 0), localTime(2026, time.March, 2, 10, 0))
	mustEntry(t, s, "Write tests",
		localTime(2026, time.March, 2, 10, 0), localTime(2026, time.March, 2, 11, 0))
	mustEntry(t, s, "Lunch",
		localTime(2026, time.March, 2, 12, 0), localTime(2026, time.March, 2, 13, 0))
	// Duplicate title collapses.
	mustEntry(t, s, "Write report",
		localTime(2026, time.March, 3, 9, 0), localTime(2026, time.March, 3, 10, 0))

	titles, err := s.SearchActivities("Write")
	if err != nil {
		t.Fatal(err)
	}
	if len(titles) != 2 {
		t.Fatalf("expected 2 distinct titles, got %v", titles)
	}
	for _, title := range titles {
		if title != "Write report" && title != "Write tests" {
			t.Fatalf("unexpected title %q", title)
		}
	}

	titles, err = s.SearchActivities("zzz")
	if err != nil {
		t.Fatal(err)
	}
	if len(titles) != 0 {
		t.Fatalf("expected no matches, got %v", titles)
	}
}

func TestSearchActivitiesHonorsLimit(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetSetting("search_limit", "1"); err != nil {
		t.Fatal(err)
	}
	mustEntry(t, s, "Write report",
		localTime(2026, time.March, 2, 9, 0), localTime(2026, time.March, 2, 10, 0))
	mustEntry(t, s, "Write tests",
		localTime(2026, time.March, 2, 10, 0), localTime(2026, time.March, 2, 11, 0))

	titles, err := s.SearchActivities("Write")
	if err != nil {
		t.Fatal(err)
	}
	if len(titles) != 1 {
		t.Fatalf("expected limit of 1, got %v", titles)
	}
}
