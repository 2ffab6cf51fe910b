package service

import (
	"context"
	"testing"
	"time"

	"feedbackhub/internal/core/interval"
	"feedbackhub/internal/modkit/repokit"
	perr "feedbackhub/internal/platform/errors"
	"feedbackhub/internal/platform/testkit"
	"feedbackhub/internal/services/statistics/domain"
)

// fakeDB satisfies repokit.TxRunner; the fakes below ignore the Queryer so
// the query surface is inert
type fakeDB struct{ txCount int }

func (f *fakeDB) Exec(context.Context, string, ...any) (repokit.CommandTag, error) { return nil, nil }
func (f *fakeDB) Query(context.Context, string, ...any) (repokit.Rows, error)      { return nil, nil }
func (f *fakeDB) QueryRow(context.Context, string, ...any) repokit.Row             { return nil }
func (f *fakeDB) Tx(ctx context.Context, fn func(q repokit.Queryer) error) error {
	f.txCount++
	return fn(f)
}

type cellKey struct {
	kind domain.Kind
	dim  string
	date string
}

// fakeStats records writes and serves canned rows for reads
type fakeStats struct {
	cells map[cellKey]int64
	rows  []domain.Row
	fail  map[cellKey]error
}

func newFakeStats() *fakeStats { return &fakeStats{cells: map[cellKey]int64{}} }

func (f *fakeStats) key(kind domain.Kind, dim string, day time.Time) cellKey {
	return cellKey{kind: kind, dim: dim, date: day.Format(interval.DateFormat)}
}

func (f *fakeStats) FindRows(
	_ context.Context, _ domain.Kind, _ []string, _, _ time.Time,
) ([]domain.Row, error) {
	return f.rows, nil
}

func (f *fakeStats) UpsertCount(
	_ context.Context, kind domain.Kind, dim string, day time.Time, count int64,
) error {
	k := f.key(kind, dim, day)
	if err, ok := f.fail[k]; ok {
		return err
	}
	f.cells[k] = count
	return nil
}

func (f *fakeStats) IncrementCount(
	_ context.Context, kind domain.Kind, dim string, day time.Time, delta int64,
) error {
	f.cells[f.key(kind, dim, day)] += delta
	return nil
}

// fakeProjects serves fixed offsets and issue sets
type fakeProjects struct {
	offsets      map[string]string
	issues       map[string][]string
	names        map[string]string
	issueProject map[string]string
}

func (f *fakeProjects) TimezoneOffset(_ context.Context, projectID string) (string, error) {
	off, ok := f.offsets[projectID]
	if !ok {
		return "", perr.NotFoundf("project %s not found", projectID)
	}
	return off, nil
}

func (f *fakeProjects) ProjectIDByIssue(_ context.Context, issueID string) (string, error) {
	id, ok := f.issueProject[issueID]
	if !ok {
		return "", perr.NotFoundf("issue %s not found", issueID)
	}
	return id, nil
}

func (f *fakeProjects) IssueIDs(_ context.Context, projectID string) ([]string, error) {
	return f.issues[projectID], nil
}

func (f *fakeProjects) IssueNames(_ context.Context, ids []string) (map[string]string, error) {
	out := map[string]string{}
	for _, id := range ids {
		if n, ok := f.names[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

// fakeEvents counts raw event timestamps inside half-open windows
type fakeEvents struct {
	issueEvents    map[string][]time.Time // projectID -> issue created_at
	feedbackEvents map[string][]time.Time // issueID -> feedback created_at
}

func countIn(ts []time.Time, from, to time.Time) int64 {
	var n int64
	for _, t := range ts {
		if !t.Before(from) && t.Before(to) {
			n++
		}
	}
	return n
}

func (f *fakeEvents) CountIssuesCreated(_ context.Context, projectID string, from, to time.Time) (int64, error) {
	return countIn(f.issueEvents[projectID], from, to), nil
}

func (f *fakeEvents) CountFeedbackCreated(_ context.Context, issueID string, from, to time.Time) (int64, error) {
	return countIn(f.feedbackEvents[issueID], from, to), nil
}

func newEngine(
	db *fakeDB, stats *fakeStats, events *fakeEvents, projects *fakeProjects,
) *Service {
	return New(
		db,
		repokit.BindFunc[domain.StatsRepo](func(repokit.Queryer) domain.StatsRepo { return stats }),
		repokit.BindFunc[domain.EventsRepo](func(repokit.Queryer) domain.EventsRepo { return events }),
		projects,
		Config{},
	)
}

func utc(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func day(s string) time.Time {
	t, err := time.Parse(interval.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBackfillPositiveOffsetLabelsLocalDay(t *testing.T) {
	testkit.Serial(t)

	db := &fakeDB{}
	stats := newFakeStats()
	projects := &fakeProjects{offsets: map[string]string{"p1": "+09:00"}}
	events := &fakeEvents{issueEvents: map[string][]time.Time{
		"p1": {
			// 20:00Z is 05:00 on May 10 at +09:00
			utc("2023-05-09T20:00:00Z"),
			// 10:00Z is 19:00 on May 9 at +09:00
			utc("2023-05-09T10:00:00Z"),
		},
	}}

	testkit.Swap(t, &timeNow, func() time.Time { return utc("2023-05-12T03:00:00Z") })

	svc := newEngine(db, stats, events, projects)
	if err := svc.Backfill(context.Background(), domain.KindIssue, "p1", 3); err != nil {
		t.Fatalf("backfill: %v", err)
	}

	if got := stats.cells[stats.key(domain.KindIssue, "p1", day("2023-05-10"))]; got != 1 {
		t.Fatalf("local day 05-10: expected 1, got %d", got)
	}
	if got := stats.cells[stats.key(domain.KindIssue, "p1", day("2023-05-09"))]; got != 1 {
		t.Fatalf("local day 05-09: expected 1, got %d", got)
	}
	if len(stats.cells) != 2 {
		t.Fatalf("expected 2 cells written, got %d", len(stats.cells))
	}
}

func TestBackfillNegativeOffsetLabelsLocalDay(t *testing.T) {
	testkit.Serial(t)

	db := &fakeDB{}
	stats := newFakeStats()
	projects := &fakeProjects{offsets: map[string]string{"p1": "-05:00"}}
	events := &fakeEvents{issueEvents: map[string][]time.Time{
		// 02:00Z on May 10 is 21:00 on May 9 at -05:00
		"p1": {utc("2023-05-10T02:00:00Z")},
	}}

	testkit.Swap(t, &timeNow, func() time.Time { return utc("2023-05-12T03:00:00Z") })

	svc := newEngine(db, stats, events, projects)
	if err := svc.Backfill(context.Background(), domain.KindIssue, "p1", 3); err != nil {
		t.Fatalf("backfill: %v", err)
	}

	if got := stats.cells[stats.key(domain.KindIssue, "p1", day("2023-05-09"))]; got != 1 {
		t.Fatalf("local day 05-09: expected 1, got %d", got)
	}
	if len(stats.cells) != 1 {
		t.Fatalf("expected 1 cell written, got %d", len(stats.cells))
	}
}

func TestBackfillSkipsZeroDays(t *testing.T) {
	testkit.Serial(t)

	db := &fakeDB{}
	stats := newFakeStats()
	projects := &fakeProjects{offsets: map[string]string{"p1": "+00:00"}}
	events := &fakeEvents{}

	testkit.Swap(t, &timeNow, func() time.Time { return utc("2023-05-12T03:00:00Z") })

	svc := newEngine(db, stats, events, projects)
	if err := svc.Backfill(context.Background(), domain.KindIssue, "p1", 30); err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if len(stats.cells) != 0 {
		t.Fatalf("expected no rows written, got %d", len(stats.cells))
	}
}

func TestBackfillZeroDaysRunsNoTransactions(t *testing.T) {
	db := &fakeDB{}
	stats := newFakeStats()
	projects := &fakeProjects{offsets: map[string]string{"p1": "+00:00"}}

	svc := newEngine(db, stats, &fakeEvents{}, projects)
	if err := svc.Backfill(context.Background(), domain.KindIssue, "p1", 0); err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if db.txCount != 0 {
		t.Fatalf("expected zero transactions, got %d", db.txCount)
	}
}

func TestBackfillUnknownProject(t *testing.T) {
	svc := newEngine(&fakeDB{}, newFakeStats(), &fakeEvents{}, &fakeProjects{offsets: map[string]string{}})
	err := svc.Backfill(context.Background(), domain.KindIssue, "nope", 10)
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBackfillFeedbackSweepsEachIssue(t *testing.T) {
	testkit.Serial(t)

	db := &fakeDB{}
	stats := newFakeStats()
	projects := &fakeProjects{
		offsets: map[string]string{"p1": "+00:00"},
		issues:  map[string][]string{"p1": {"i1", "i2"}},
	}
	events := &fakeEvents{feedbackEvents: map[string][]time.Time{
		"i1": {utc("2023-05-10T08:00:00Z"), utc("2023-05-10T09:00:00Z")},
		"i2": {utc("2023-05-10T10:00:00Z")},
	}}

	testkit.Swap(t, &timeNow, func() time.Time { return utc("2023-05-12T00:30:00Z") })

	svc := newEngine(db, stats, events, projects)
	if err := svc.Backfill(context.Background(), domain.KindFeedbackIssue, "p1", 5); err != nil {
		t.Fatalf("backfill: %v", err)
	}

	if got := stats.cells[stats.key(domain.KindFeedbackIssue, "i1", day("2023-05-10"))]; got != 2 {
		t.Fatalf("i1: expected 2, got %d", got)
	}
	if got := stats.cells[stats.key(domain.KindFeedbackIssue, "i2", day("2023-05-10"))]; got != 1 {
		t.Fatalf("i2: expected 1, got %d", got)
	}
}

func TestBackfillContinuesPastFailingCell(t *testing.T) {
	testkit.Serial(t)

	db := &fakeDB{}
	stats := newFakeStats()
	projects := &fakeProjects{offsets: map[string]string{"p1": "+00:00"}}
	events := &fakeEvents{issueEvents: map[string][]time.Time{
		"p1": {
			utc("2023-05-09T08:00:00Z"),
			utc("2023-05-10T08:00:00Z"),
			utc("2023-05-11T08:00:00Z"),
		},
	}}
	stats.fail = map[cellKey]error{
		stats.key(domain.KindIssue, "p1", day("2023-05-10")): perr.DBf("write blew up"),
	}

	testkit.Swap(t, &timeNow, func() time.Time { return utc("2023-05-12T00:30:00Z") })

	svc := newEngine(db, stats, events, projects)
	if err := svc.Backfill(context.Background(), domain.KindIssue, "p1", 5); err != nil {
		t.Fatalf("backfill: %v", err)
	}

	if _, ok := stats.cells[stats.key(domain.KindIssue, "p1", day("2023-05-10"))]; ok {
		t.Fatalf("failing cell should not land, got %v", stats.cells)
	}
	if got := stats.cells[stats.key(domain.KindIssue, "p1", day("2023-05-09"))]; got != 1 {
		t.Fatalf("2023-05-09: expected 1, got %d", got)
	}
	if got := stats.cells[stats.key(domain.KindIssue, "p1", day("2023-05-11"))]; got != 1 {
		t.Fatalf("2023-05-11: expected 1, got %d", got)
	}
}

func TestRecordEventZeroDeltaIsNoOp(t *testing.T) {
	db := &fakeDB{}
	stats := newFakeStats()
	// no offsets: a lookup would fail, proving zero-delta returns early
	svc := newEngine(db, stats, &fakeEvents{}, &fakeProjects{offsets: map[string]string{}})

	if err := svc.RecordEvent(context.Background(), domain.KindIssue, "p1", time.Now(), 0); err != nil {
		t.Fatalf("zero delta: %v", err)
	}
	if len(stats.cells) != 0 {
		t.Fatalf("expected no writes")
	}
}

func TestRecordEventUsesProjectLocalDay(t *testing.T) {
	stats := newFakeStats()
	projects := &fakeProjects{
		offsets:      map[string]string{"p1": "+09:00"},
		issueProject: map[string]string{"i1": "p1"},
	}
	svc := newEngine(&fakeDB{}, stats, &fakeEvents{}, projects)

	// 20:00Z lands on the next local day at +09:00
	at := utc("2023-05-09T20:00:00Z")
	if err := svc.RecordEvent(context.Background(), domain.KindFeedbackIssue, "i1", at, 1); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := stats.cells[stats.key(domain.KindFeedbackIssue, "i1", day("2023-05-10"))]; got != 1 {
		t.Fatalf("expected cell on 05-10, cells: %+v", stats.cells)
	}
}

func TestRecordEventNegativeDelta(t *testing.T) {
	stats := newFakeStats()
	projects := &fakeProjects{offsets: map[string]string{"p1": "+00:00"}}
	svc := newEngine(&fakeDB{}, stats, &fakeEvents{}, projects)

	at := utc("2023-05-09T12:00:00Z")
	if err := svc.RecordEvent(context.Background(), domain.KindIssue, "p1", at, -1); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := stats.cells[stats.key(domain.KindIssue, "p1", day("2023-05-09"))]; got != -1 {
		t.Fatalf("expected -1, got %d", got)
	}
}

func TestRecordEventUnknownIssue(t *testing.T) {
	svc := newEngine(&fakeDB{}, newFakeStats(), &fakeEvents{}, &fakeProjects{})
	err := svc.RecordEvent(context.Background(), domain.KindFeedbackIssue, "ghost", time.Now(), 1)
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestQueryProjectStatsWeekBuckets(t *testing.T) {
	stats := newFakeStats()
	stats.rows = []domain.Row{
		{DimensionID: "p1", Date: day("2023-01-01"), Count: 1},
		{DimensionID: "p1", Date: day("2023-01-02"), Count: 2},
		{DimensionID: "p1", Date: day("2023-01-08"), Count: 3},
		{DimensionID: "p1", Date: day("2023-02-01"), Count: 4},
	}
	projects := &fakeProjects{offsets: map[string]string{"p1": "+00:00"}}
	svc := newEngine(&fakeDB{}, stats, &fakeEvents{}, projects)

	res, err := svc.QueryProjectStats(context.Background(), domain.QueryInput{
		ProjectID: "p1",
		StartDate: day("2023-01-01"),
		EndDate:   day("2023-02-05"),
		Interval:  interval.Week,
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	want := []domain.Bucket{
		{StartDate: "2023-01-01", EndDate: "2023-01-01", Count: 1},
		{StartDate: "2023-01-02", EndDate: "2023-01-08", Count: 5},
		{StartDate: "2023-01-30", EndDate: "2023-02-05", Count: 4},
	}
	if len(res.Statistics) != len(want) {
		t.Fatalf("expected %d buckets, got %+v", len(want), res.Statistics)
	}
	for i, w := range want {
		if res.Statistics[i] != w {
			t.Fatalf("bucket %d: expected %+v, got %+v", i, w, res.Statistics[i])
		}
	}
}

func TestQueryProjectStatsMonthBuckets(t *testing.T) {
	stats := newFakeStats()
	stats.rows = []domain.Row{
		{DimensionID: "p1", Date: day("2023-01-05"), Count: 6},
		{DimensionID: "p1", Date: day("2023-02-10"), Count: 4},
	}
	projects := &fakeProjects{offsets: map[string]string{"p1": "+00:00"}}
	svc := newEngine(&fakeDB{}, stats, &fakeEvents{}, projects)

	res, err := svc.QueryProjectStats(context.Background(), domain.QueryInput{
		ProjectID: "p1",
		StartDate: day("2023-01-01"),
		EndDate:   day("2023-02-28"),
		Interval:  interval.Month,
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	want := []domain.Bucket{
		{StartDate: "2023-01-01", EndDate: "2023-01-31", Count: 6},
		{StartDate: "2023-02-01", EndDate: "2023-02-28", Count: 4},
	}
	if len(res.Statistics) != len(want) {
		t.Fatalf("expected %d buckets, got %+v", len(want), res.Statistics)
	}
	for i, w := range want {
		if res.Statistics[i] != w {
			t.Fatalf("bucket %d: expected %+v, got %+v", i, w, res.Statistics[i])
		}
	}
}

func TestQueryProjectStatsEmptyRange(t *testing.T) {
	projects := &fakeProjects{offsets: map[string]string{"p1": "+00:00"}}
	svc := newEngine(&fakeDB{}, newFakeStats(), &fakeEvents{}, projects)

	res, err := svc.QueryProjectStats(context.Background(), domain.QueryInput{
		ProjectID: "p1",
		StartDate: day("2023-01-01"),
		EndDate:   day("2023-01-31"),
		Interval:  interval.Day,
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(res.Statistics) != 0 {
		t.Fatalf("expected empty statistics, got %+v", res.Statistics)
	}
}

func TestQueryProjectStatsReversedRange(t *testing.T) {
	svc := newEngine(&fakeDB{}, newFakeStats(), &fakeEvents{}, &fakeProjects{})

	_, err := svc.QueryProjectStats(context.Background(), domain.QueryInput{
		ProjectID: "p1",
		StartDate: day("2023-02-01"),
		EndDate:   day("2023-01-01"),
		Interval:  interval.Day,
	})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if err.Error() != "endDate must be later than startDate" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestQueryProjectStatsSingleDayRange(t *testing.T) {
	stats := newFakeStats()
	stats.rows = []domain.Row{
		{DimensionID: "p1", Date: day("2023-01-01"), Count: 7},
	}
	projects := &fakeProjects{offsets: map[string]string{"p1": "+00:00"}}
	svc := newEngine(&fakeDB{}, stats, &fakeEvents{}, projects)

	res, err := svc.QueryProjectStats(context.Background(), domain.QueryInput{
		ProjectID: "p1",
		StartDate: day("2023-01-01"),
		EndDate:   day("2023-01-01"),
		Interval:  interval.Day,
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	want := domain.Bucket{StartDate: "2023-01-01", EndDate: "2023-01-01", Count: 7}
	if len(res.Statistics) != 1 || res.Statistics[0] != want {
		t.Fatalf("expected %+v, got %+v", want, res.Statistics)
	}
}

func TestQueryProjectStatsUnknownProject(t *testing.T) {
	svc := newEngine(&fakeDB{}, newFakeStats(), &fakeEvents{}, &fakeProjects{})

	_, err := svc.QueryProjectStats(context.Background(), domain.QueryInput{
		ProjectID: "ghost",
		StartDate: day("2023-01-01"),
		EndDate:   day("2023-01-31"),
		Interval:  interval.Day,
	})
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestQueryIssueStatsGroupsPerIssue(t *testing.T) {
	stats := newFakeStats()
	stats.rows = []domain.Row{
		{DimensionID: "i1", Date: day("2023-03-01"), Count: 2},
		{DimensionID: "i1", Date: day("2023-03-02"), Count: 1},
		{DimensionID: "i2", Date: day("2023-03-02"), Count: 1},
	}
	projects := &fakeProjects{
		names: map[string]string{"i1": "Login is broken", "i2": "Dark mode"},
	}
	svc := newEngine(&fakeDB{}, stats, &fakeEvents{}, projects)

	res, err := svc.QueryIssueStats(context.Background(), domain.GroupedQueryInput{
		IssueIDs:  []string{"i1", "i2"},
		StartDate: day("2023-03-01"),
		EndDate:   day("2023-03-10"),
		Interval:  interval.Day,
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	if len(res.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %+v", res.Issues)
	}
	i1 := res.Issues[0]
	if i1.ID != "i1" || i1.Name != "Login is broken" || len(i1.Statistics) != 2 {
		t.Fatalf("i1: %+v", i1)
	}
	if i1.Statistics[0].FeedbackCount != 2 || i1.Statistics[1].FeedbackCount != 1 {
		t.Fatalf("i1 counts: %+v", i1.Statistics)
	}
	i2 := res.Issues[1]
	if i2.ID != "i2" || len(i2.Statistics) != 1 || i2.Statistics[0].FeedbackCount != 1 {
		t.Fatalf("i2: %+v", i2)
	}
}

func TestQueryIssueStatsOmitsIssueWithoutRows(t *testing.T) {
	stats := newFakeStats()
	stats.rows = []domain.Row{
		{DimensionID: "i1", Date: day("2023-03-02"), Count: 3},
	}
	projects := &fakeProjects{
		names: map[string]string{"i1": "Login is broken", "i2": "Quiet issue"},
	}
	svc := newEngine(&fakeDB{}, stats, &fakeEvents{}, projects)

	res, err := svc.QueryIssueStats(context.Background(), domain.GroupedQueryInput{
		IssueIDs:  []string{"i1", "i2"},
		StartDate: day("2023-03-01"),
		EndDate:   day("2023-03-10"),
		Interval:  interval.Week,
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(res.Issues) != 1 || res.Issues[0].ID != "i1" {
		t.Fatalf("expected only i1, got %+v", res.Issues)
	}
}

func TestQueryIssueStatsEmptyFindYieldsEmptyIssues(t *testing.T) {
	projects := &fakeProjects{names: map[string]string{"i1": "a", "i2": "b"}}
	svc := newEngine(&fakeDB{}, newFakeStats(), &fakeEvents{}, projects)

	res, err := svc.QueryIssueStats(context.Background(), domain.GroupedQueryInput{
		IssueIDs:  []string{"i1", "i2"},
		StartDate: day("2023-03-01"),
		EndDate:   day("2023-03-10"),
		Interval:  interval.Day,
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if res.Issues == nil || len(res.Issues) != 0 {
		t.Fatalf("expected empty issue list, got %+v", res.Issues)
	}
}
