// Package api provides the HTTP API for the application
package api

import (
	"feedbackhub/internal/platform/config"
	"feedbackhub/internal/platform/logger"
	phttp "feedbackhub/internal/platform/net/http"
	"feedbackhub/internal/platform/store"

	"feedbackhub/internal/modkit"
	"feedbackhub/internal/modkit/httpkit"
	"feedbackhub/internal/modkit/module"

	eventsmod "feedbackhub/internal/services/api/events/module"
	issuesmod "feedbackhub/internal/services/api/issues/module"
	metamod "feedbackhub/internal/services/api/meta/module"
	projectsmod "feedbackhub/internal/services/api/projects/module"

	projsvc "feedbackhub/internal/services/projects/service"
	statssvc "feedbackhub/internal/services/statistics/service"
)

// Options are the API options
type Options struct {
	Config   config.Conf
	Store    *store.Store
	Projects *projsvc.Service
	Stats    *statssvc.Service
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	deps := modkit.Deps{
		Log:   *logger.Get(),
		Cfg:   opt.Config,
		PG:    opt.Store.PG,
		Locks: opt.Store.Locks,
	}

	mods := []modkit.Module{
		metamod.New(deps),
		projectsmod.New(deps, opt.Projects, opt.Stats),
		issuesmod.New(deps, opt.Projects, opt.Stats),
		eventsmod.New(deps, opt.Stats),
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its prefix
			m.MountRoutes(api)
		}
	})
}
