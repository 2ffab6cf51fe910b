package sched

import (
	"context"
	"fmt"
	"math"
	"time"

	"feedbackhub/internal/core/tzoffset"
	"feedbackhub/internal/platform/logger"
	"feedbackhub/internal/platform/store"
	"feedbackhub/internal/services/statistics/domain"
)

// Backfiller recomputes one project's daily cells; the statistics engine
// satisfies this
type Backfiller interface {
	Backfill(ctx context.Context, kind domain.Kind, projectID string, days int) error
}

// Config for the scheduler
type Config struct {
	// BackfillDays per nightly run; <=0 -> 365
	BackfillDays int

	// LockTTL bounds how long a crashed run can starve its peers; <=0 -> 5m
	LockTTL time.Duration
}

// Scheduler places one daily job per (kind, project) on the registry. The
// firing hour is chosen so each run lands just after the project's local
// midnight
type Scheduler struct {
	Registry Registry
	Locks    store.Locker
	Projects domain.ProjectsRepo
	Backfill Backfiller
	Cfg      Config
}

// New constructs the scheduler
func New(reg Registry, locks store.Locker, projects domain.ProjectsRepo, bf Backfiller, cfg Config) *Scheduler {
	if reg == nil {
		panic("sched.Scheduler requires a registry")
	}
	if bf == nil {
		panic("sched.Scheduler requires a backfiller")
	}
	if cfg.BackfillDays <= 0 {
		cfg.BackfillDays = 365
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 5 * time.Minute
	}
	return &Scheduler{Registry: reg, Locks: locks, Projects: projects, Backfill: bf, Cfg: cfg}
}

// RegisterDailyJobs implements the projects registrar port: one job per
// statistic kind
func (s *Scheduler) RegisterDailyJobs(ctx context.Context, projectID string) error {
	for _, kind := range []domain.Kind{domain.KindIssue, domain.KindFeedbackIssue} {
		if err := s.RegisterDailyJob(ctx, kind, projectID); err != nil {
			return err
		}
	}
	return nil
}

// RegisterDailyJob registers the daily run for one (kind, project) pair.
// Registration is idempotent: an already-present job name is skipped with a
// log line, not an error. Registry failures propagate
func (s *Scheduler) RegisterDailyJob(ctx context.Context, kind domain.Kind, projectID string) error {
	offStr, err := s.Projects.TimezoneOffset(ctx, projectID)
	if err != nil {
		return err
	}
	off, err := tzoffset.Parse(offStr)
	if err != nil {
		return err
	}

	name := kind.JobName(projectID)
	if s.Registry.Has(name) {
		logger.C(ctx).Debug().Str("job", name).Msg("sched: job already registered")
		return nil
	}

	spec := fmt.Sprintf("%d %d * * *", kind.CronMinute(), CronHour(off))
	return s.Registry.Add(name, spec, func() { s.runOnce(kind, projectID) })
}

// CronHour maps a project's UTC offset to the UTC hour whose run covers the
// project's freshly completed local day
func CronHour(off tzoffset.Offset) int {
	return (24 - int(math.Floor(off.Hours()))) % 24
}

// runOnce executes one scheduled sweep under the kind's execution lock.
// A clean lock miss skips the run; a lock-service error is logged and the
// sweep proceeds anyway, trading strict exclusivity for availability
func (s *Scheduler) runOnce(kind domain.Kind, projectID string) {
	ctx := context.Background()
	log := logger.Get().With().
		Str("kind", string(kind)).
		Str("project_id", projectID).
		Logger()

	acquired := false
	if s.Locks != nil {
		ok, err := s.Locks.Acquire(ctx, kind.LockKey(), s.Cfg.LockTTL)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("sched: lock acquire failed, running unlocked")
		case !ok:
			log.Info().Msg("sched: lock held elsewhere, skipping run")
			return
		default:
			acquired = true
		}
	}
	if acquired {
		defer func() {
			if err := s.Locks.Release(ctx, kind.LockKey()); err != nil {
				log.Warn().Err(err).Msg("sched: lock release failed")
			}
		}()
	}

	if err := s.Backfill.Backfill(ctx, kind, projectID, s.Cfg.BackfillDays); err != nil {
		log.Error().Err(err).Msg("sched: daily statistics run failed")
	}
}
