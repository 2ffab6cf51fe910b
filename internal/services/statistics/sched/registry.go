// Package sched registers and runs the recurring daily statistics jobs
package sched

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
)

// Registry registers named cron jobs. Names are unique; registering a
// taken name is the caller's bug to avoid via Has
type Registry interface {
	Has(name string) bool
	Add(name, spec string, cmd func()) error
}

// CronRegistry implements Registry on a robfig cron runner
type CronRegistry struct {
	mu      sync.Mutex
	c       *cron.Cron
	entries map[string]cron.EntryID
}

// NewCronRegistry constructs a stopped registry; call Start to begin firing
func NewCronRegistry() *CronRegistry {
	return &CronRegistry{
		c:       cron.New(),
		entries: map[string]cron.EntryID{},
	}
}

// Has implements Registry
func (r *CronRegistry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[name]
	return ok
}

// Add implements Registry
func (r *CronRegistry) Add(name, spec string, cmd func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, err := r.c.AddFunc(spec, cmd)
	if err != nil {
		return err
	}
	r.entries[name] = id
	return nil
}

// Start begins firing registered jobs on their schedules
func (r *CronRegistry) Start() { r.c.Start() }

// Stop halts scheduling and returns a context that completes when running
// jobs finish
func (r *CronRegistry) Stop() context.Context { return r.c.Stop() }
