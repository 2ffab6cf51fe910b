package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"feedbackhub/internal/platform/config"
	"feedbackhub/internal/platform/logger"
	"feedbackhub/internal/platform/store"

	"feedbackhub/internal/modkit/repokit"
	projrepo "feedbackhub/internal/services/projects/repo"
	statsdom "feedbackhub/internal/services/statistics/domain"
	statsrepo "feedbackhub/internal/services/statistics/repo"
	"feedbackhub/internal/services/statistics/sched"
	statssvc "feedbackhub/internal/services/statistics/service"
)

func main() {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	redisCfg := root.Prefix("SERVICE_REDIS_")
	statsCfg := root.Prefix("CORE_STATS_")

	l := logger.Get()

	var (
		fRunNow = flag.Bool("run-now", false, "run one backfill sweep for every project and exit")
		fDays   = flag.Int("days", 0, "override backfill window in days (0 = configured default)")
	)
	flag.Parse()

	st, err := store.Open(context.Background(), store.Config{
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		Redis: store.RedisConfig{
			Enabled: true,
			Addr:    redisCfg.MustString("ADDR"),
			DB:      redisCfg.MayInt("DB", 0),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	projBinder := projrepo.NewPG()
	projectsPort := projBinder.Bind(st.PG)
	eventsBinder := repokit.BindFunc[statsdom.EventsRepo](
		func(q repokit.Queryer) statsdom.EventsRepo { return projBinder.Bind(q) },
	)

	days := statsCfg.MayInt("BACKFILL_DAYS", 365)
	if *fDays > 0 {
		days = *fDays
	}

	engine := statssvc.New(st.PG, statsrepo.NewPG(), eventsBinder, projectsPort, statssvc.Config{
		BackfillDays: days,
	})

	ctx := context.Background()
	ids, err := projectsPort.ListProjectIDs(ctx)
	if err != nil {
		l.Panic().Err(err).Msg("listing projects failed")
	}

	if *fRunNow {
		for _, id := range ids {
			for _, kind := range []statsdom.Kind{statsdom.KindIssue, statsdom.KindFeedbackIssue} {
				if err := engine.Backfill(ctx, kind, id, days); err != nil {
					l.Error().Err(err).
						Str("kind", string(kind)).
						Str("project_id", id).
						Msg("backfill failed")
				}
			}
		}
		return
	}

	registry := sched.NewCronRegistry()
	scheduler := sched.New(registry, st.Locks, projectsPort, engine, sched.Config{
		BackfillDays: days,
		LockTTL:      statsCfg.MayDuration("LOCK_TTL", 0),
	})

	for _, id := range ids {
		if err := scheduler.RegisterDailyJobs(ctx, id); err != nil {
			l.Error().Err(err).Str("project_id", id).Msg("job registration failed")
		}
	}
	l.Info().Int("projects", len(ids)).Msg("scheduler: daily jobs registered")

	registry.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	l.Info().Msg("scheduler: shutting down")
	<-registry.Stop().Done()
}
