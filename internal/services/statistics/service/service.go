// Package service implements the daily statistics engine: nightly window
// recomputation, live counter updates, and bucketed reads
package service

import (
	"time"

	"feedbackhub/internal/modkit/repokit"
	"feedbackhub/internal/services/statistics/domain"
)

// timeNow is swapped in tests
var timeNow = time.Now

// Config for the statistics engine
type Config struct {
	// BackfillDays is how far back the nightly run recomputes; <=0 -> 365
	BackfillDays int
}

// Service implements the statistics engine
type Service struct {
	DB       repokit.TxRunner
	Stats    repokit.Binder[domain.StatsRepo]
	Events   repokit.Binder[domain.EventsRepo]
	Projects domain.ProjectsRepo
	Cfg      Config
}

// New constructs the statistics engine
func New(
	db repokit.TxRunner,
	stats repokit.Binder[domain.StatsRepo],
	events repokit.Binder[domain.EventsRepo],
	projects domain.ProjectsRepo,
	cfg Config,
) *Service {
	if db == nil {
		panic("statistics.Service requires a non nil TxRunner")
	}
	if stats == nil || events == nil {
		panic("statistics.Service requires non nil repo binders")
	}
	if projects == nil {
		panic("statistics.Service requires a projects port")
	}
	if cfg.BackfillDays <= 0 {
		cfg.BackfillDays = 365
	}
	return &Service{DB: db, Stats: stats, Events: events, Projects: projects, Cfg: cfg}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
