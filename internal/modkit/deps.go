package modkit

import (
	"feedbackhub/internal/modkit/repokit"
	"feedbackhub/internal/platform/config"
	"feedbackhub/internal/platform/logger"
	"feedbackhub/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log   logger.Logger
	Cfg   config.Conf
	PG    repokit.TxRunner
	Locks store.Locker
}
