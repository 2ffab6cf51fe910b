package modkit

import (
	"net/http"

	phttp "feedbackhub/internal/platform/net/http"
)

// Built is a plain struct with the fields modules care about
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
	Ports  any

	// router hook set via options and exposed to modules
	Register func(phttp.Router)
}

// Build applies Option funcs to an internal buildCfg and returns a plain struct
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	if c.register == nil {
		c.register = func(phttp.Router) {}
	}
	return Built{
		Name:     c.name,
		Prefix:   c.prefix,
		Mw:       append([]func(http.Handler) http.Handler(nil), c.mw...),
		Ports:    c.ports,
		Register: c.register,
	}
}

// MustName panics when a module forgot to set its name
func MustName(name string) string {
	if name == "" {
		panic("modkit: empty module name")
	}
	return name
}

// MustPrefix panics when a module prefix is missing or not rooted
func MustPrefix(prefix string) string {
	if prefix == "" || prefix[0] != '/' {
		panic("modkit: module prefix must start with /")
	}
	return prefix
}
