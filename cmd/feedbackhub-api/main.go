package main

import (
	"context"

	"feedbackhub/internal/platform/config"
	"feedbackhub/internal/platform/logger"
	phttp "feedbackhub/internal/platform/net/http"
	"feedbackhub/internal/platform/store"

	"feedbackhub/internal/modkit/repokit"
	"feedbackhub/internal/services/api"
	projrepo "feedbackhub/internal/services/projects/repo"
	projsvc "feedbackhub/internal/services/projects/service"
	statsdom "feedbackhub/internal/services/statistics/domain"
	statsrepo "feedbackhub/internal/services/statistics/repo"
	"feedbackhub/internal/services/statistics/sched"
	statssvc "feedbackhub/internal/services/statistics/service"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	redisCfg := root.Prefix("SERVICE_REDIS_")
	statsCfg := root.Prefix("CORE_STATS_")

	l := logger.Get()

	st, err := store.Open(
		context.Background(),
		store.Config{
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustString("DBURL"),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", true),
			},
			Redis: store.RedisConfig{
				Enabled: true,
				Addr:    redisCfg.MustString("ADDR"),
				DB:      redisCfg.MayInt("DB", 0),
			},
		},
		store.WithLogger(*logger.Get()),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	projBinder := projrepo.NewPG()
	statsBinder := statsrepo.NewPG()
	projectsPort := projBinder.Bind(st.PG)
	eventsBinder := repokit.BindFunc[statsdom.EventsRepo](
		func(q repokit.Queryer) statsdom.EventsRepo { return projBinder.Bind(q) },
	)

	engine := statssvc.New(st.PG, statsBinder, eventsBinder, projectsPort, statssvc.Config{
		BackfillDays: statsCfg.MayInt("BACKFILL_DAYS", 365),
	})

	// in-process registry: projects created through this API get their daily
	// jobs immediately; the standalone scheduler covers the rest of the fleet
	registry := sched.NewCronRegistry()
	scheduler := sched.New(registry, st.Locks, projectsPort, engine, sched.Config{
		BackfillDays: statsCfg.MayInt("BACKFILL_DAYS", 365),
		LockTTL:      statsCfg.MayDuration("LOCK_TTL", 0),
	})

	projects := projsvc.New(st.PG, projBinder).
		WithRecorder(engine).
		WithRegistrar(scheduler)

	srv := phttp.NewServer(apiCfg)
	api.Mount(srv.Router(), api.Options{
		Config:   apiCfg,
		Store:    st,
		Projects: projects,
		Stats:    engine,
	})

	registry.Start()
	defer func() { <-registry.Stop().Done() }()

	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
