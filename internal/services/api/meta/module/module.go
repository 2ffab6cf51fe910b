// Package module wires meta endpoints into the API using a tiny module
package module

import (
	stdhttp "net/http"
	"time"

	modkit "feedbackhub/internal/modkit"
	"feedbackhub/internal/modkit/httpkit"

	metahttp "feedbackhub/internal/services/api/meta/http"
)

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(stdhttp.Handler) stdhttp.Handler

	register  func(httpkit.Router)
	startedAt time.Time
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		startedAt: time.Now(),
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		metahttp.Register(r, metahttp.Deps{
			ServiceName: "feedbackhub-api",
			StartedAt:   m.startedAt,
			PG:          deps.PG,
			Locks:       deps.Locks,
		})
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
