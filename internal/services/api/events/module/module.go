// Package module wires the events API using modkit
package module

import (
	stdhttp "net/http"

	modkit "feedbackhub/internal/modkit"
	"feedbackhub/internal/modkit/httpkit"

	eventhttp "feedbackhub/internal/services/api/events/http"
)

// Module implements the events module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(stdhttp.Handler) stdhttp.Handler

	register func(httpkit.Router)
}

// New constructs the events module around the statistics recorder
func New(deps modkit.Deps, rec eventhttp.Recorder, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("events"),
		modkit.WithPrefix("/events"),
	}, opts...)...)

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		eventhttp.Register(r, rec)
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
