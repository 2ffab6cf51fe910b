// Package module wires the projects API using modkit
package module

import (
	stdhttp "net/http"

	modkit "feedbackhub/internal/modkit"
	"feedbackhub/internal/modkit/httpkit"

	projhttp "feedbackhub/internal/services/api/projects/http"
	projsvc "feedbackhub/internal/services/projects/service"
)

// Ports exposed by the projects module for cross-module wiring
type Ports struct {
	Projects *projsvc.Service
}

// Module implements the projects module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(stdhttp.Handler) stdhttp.Handler

	svc      *projsvc.Service
	stats    projhttp.StatsQuerier
	register func(httpkit.Router)
}

// New constructs the projects module around an already-wired service
func New(deps modkit.Deps, svc *projsvc.Service, stats projhttp.StatsQuerier, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("projects"),
		modkit.WithPrefix("/projects"),
	}, opts...)...)

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		svc:    svc,
		stats:  stats,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		projhttp.Register(r, m.svc, m.stats)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.prefix, m.mws, m.register)
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return modkit.MustName(m.name) }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return Ports{Projects: m.svc} }
