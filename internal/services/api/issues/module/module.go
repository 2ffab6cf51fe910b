// Package module wires the issues API using modkit
package module

import (
	stdhttp "net/http"

	modkit "feedbackhub/internal/modkit"
	"feedbackhub/internal/modkit/httpkit"

	issuehttp "feedbackhub/internal/services/api/issues/http"
	projsvc "feedbackhub/internal/services/projects/service"
)

// Module implements the issues module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(stdhttp.Handler) stdhttp.Handler

	register func(httpkit.Router)
}

// New constructs the issues module around already-wired services
func New(deps modkit.Deps, projects *projsvc.Service, stats issuehttp.StatsQuerier, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("issues"),
		modkit.WithPrefix("/issues"),
	}, opts...)...)

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		issuehttp.Register(r, projects, stats)
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
func (m *Module) Ports() any { return nil }
