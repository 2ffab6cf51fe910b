package sched

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"feedbackhub/internal/core/tzoffset"
	perr "feedbackhub/internal/platform/errors"
	"feedbackhub/internal/services/statistics/domain"
)

type fakeRegistry struct {
	jobs   map[string]string // name -> cron spec
	cmds   map[string]func()
	addErr error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{jobs: map[string]string{}, cmds: map[string]func(){}}
}

func (f *fakeRegistry) Has(name string) bool { _, ok := f.jobs[name]; return ok }

func (f *fakeRegistry) Add(name, spec string, cmd func()) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.jobs[name] = spec
	f.cmds[name] = cmd
	return nil
}

type fakeLocker struct {
	acquired bool
	err      error
	releases int
}

func (f *fakeLocker) Acquire(context.Context, string, time.Duration) (bool, error) {
	return f.acquired, f.err
}
func (f *fakeLocker) Release(context.Context, string) error { f.releases++; return nil }
func (f *fakeLocker) Close() error                          { return nil }

type fakeBackfiller struct {
	calls []domain.Kind
	days  int
}

func (f *fakeBackfiller) Backfill(_ context.Context, kind domain.Kind, _ string, days int) error {
	f.calls = append(f.calls, kind)
	f.days = days
	return nil
}

type fakeProjects struct{ offsets map[string]string }

func (f *fakeProjects) TimezoneOffset(_ context.Context, id string) (string, error) {
	off, ok := f.offsets[id]
	if !ok {
		return "", perr.NotFoundf("project %s not found", id)
	}
	return off, nil
}
func (f *fakeProjects) ProjectIDByIssue(context.Context, string) (string, error) { return "", nil }
func (f *fakeProjects) IssueIDs(context.Context, string) ([]string, error)       { return nil, nil }
func (f *fakeProjects) IssueNames(context.Context, []string) (map[string]string, error) {
	return nil, nil
}

func TestCronHour(t *testing.T) {
	cases := []struct {
		offset string
		hour   int
	}{
		{"+00:00", 0},
		{"+09:00", 15},
		{"-05:00", 5},
		{"-03:30", 4},  // floor(-3.5) = -4
		{"+05:45", 19}, // floor(5.75) = 5
		{"+14:00", 10},
	}
	for _, c := range cases {
		require.Equal(t, c.hour, CronHour(tzoffset.MustParse(c.offset)), "offset %s", c.offset)
	}
}

func TestRegisterDailyJobSpec(t *testing.T) {
	reg := newFakeRegistry()
	projects := &fakeProjects{offsets: map[string]string{"p1": "+09:00"}}
	s := New(reg, nil, projects, &fakeBackfiller{}, Config{})

	require.NoError(t, s.RegisterDailyJob(context.Background(), domain.KindIssue, "p1"))
	require.Equal(t, "0 15 * * *", reg.jobs["issue-statistics-p1"])
}

func TestRegisterDailyJobIdempotent(t *testing.T) {
	reg := newFakeRegistry()
	projects := &fakeProjects{offsets: map[string]string{"p1": "+00:00"}}
	s := New(reg, nil, projects, &fakeBackfiller{}, Config{})

	require.NoError(t, s.RegisterDailyJob(context.Background(), domain.KindIssue, "p1"))
	require.NoError(t, s.RegisterDailyJob(context.Background(), domain.KindIssue, "p1"))
	require.Len(t, reg.jobs, 1)
}

func TestRegisterDailyJobsBothKinds(t *testing.T) {
	reg := newFakeRegistry()
	projects := &fakeProjects{offsets: map[string]string{"p1": "-05:00"}}
	s := New(reg, nil, projects, &fakeBackfiller{}, Config{})

	require.NoError(t, s.RegisterDailyJobs(context.Background(), "p1"))
	require.Equal(t, "0 5 * * *", reg.jobs["issue-statistics-p1"])
	require.Equal(t, "5 5 * * *", reg.jobs["feedback-issue-statistics-p1"])
}

func TestRegisterDailyJobUnknownProject(t *testing.T) {
	s := New(newFakeRegistry(), nil, &fakeProjects{offsets: map[string]string{}}, &fakeBackfiller{}, Config{})
	err := s.RegisterDailyJob(context.Background(), domain.KindIssue, "nope")
	require.True(t, perr.IsCode(err, perr.ErrorCodeNotFound))
}

func TestRegisterDailyJobRegistryError(t *testing.T) {
	reg := newFakeRegistry()
	reg.addErr = errors.New("bad spec")
	projects := &fakeProjects{offsets: map[string]string{"p1": "+00:00"}}
	s := New(reg, nil, projects, &fakeBackfiller{}, Config{})

	err := s.RegisterDailyJob(context.Background(), domain.KindIssue, "p1")
	require.EqualError(t, err, "bad spec")
}

func runRegistered(t *testing.T, reg *fakeRegistry, name string) {
	t.Helper()
	cmd, ok := reg.cmds[name]
	require.True(t, ok, "job %s not registered", name)
	cmd()
}

func TestRunHoldsAndReleasesLock(t *testing.T) {
	reg := newFakeRegistry()
	locks := &fakeLocker{acquired: true}
	bf := &fakeBackfiller{}
	projects := &fakeProjects{offsets: map[string]string{"p1": "+00:00"}}
	s := New(reg, locks, projects, bf, Config{BackfillDays: 90})

	require.NoError(t, s.RegisterDailyJob(context.Background(), domain.KindIssue, "p1"))
	runRegistered(t, reg, "issue-statistics-p1")

	require.Equal(t, []domain.Kind{domain.KindIssue}, bf.calls)
	require.Equal(t, 90, bf.days)
	require.Equal(t, 1, locks.releases)
}

func TestRunSkipsWhenLockHeldElsewhere(t *testing.T) {
	reg := newFakeRegistry()
	locks := &fakeLocker{acquired: false}
	bf := &fakeBackfiller{}
	projects := &fakeProjects{offsets: map[string]string{"p1": "+00:00"}}
	s := New(reg, locks, projects, bf, Config{})

	require.NoError(t, s.RegisterDailyJob(context.Background(), domain.KindIssue, "p1"))
	runRegistered(t, reg, "issue-statistics-p1")

	require.Empty(t, bf.calls)
	require.Zero(t, locks.releases)
}

func TestRunProceedsOnLockError(t *testing.T) {
	reg := newFakeRegistry()
	locks := &fakeLocker{err: errors.New("redis down")}
	bf := &fakeBackfiller{}
	projects := &fakeProjects{offsets: map[string]string{"p1": "+00:00"}}
	s := New(reg, locks, projects, bf, Config{})

	require.NoError(t, s.RegisterDailyJob(context.Background(), domain.KindIssue, "p1"))
	runRegistered(t, reg, "issue-statistics-p1")

	require.Equal(t, []domain.Kind{domain.KindIssue}, bf.calls)
	require.Zero(t, locks.releases)
}
