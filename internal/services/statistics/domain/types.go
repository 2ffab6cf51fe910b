// Package domain holds the statistics engine types and ports
package domain

import (
	"fmt"
	"time"
)

// Kind selects which statistic a call operates on.
// Each kind owns one daily-count table, one raw-event counter, and one cron slot
type Kind string

const (
	// KindIssue counts issues created per project per local day
	KindIssue Kind = "issue"

	// KindFeedbackIssue counts feedback received per issue per local day
	KindFeedbackIssue Kind = "feedback-issue"
)

// Valid reports whether k names a known statistic
func (k Kind) Valid() bool { return k == KindIssue || k == KindFeedbackIssue }

// JobName is the deterministic scheduler name for a project's daily job
func (k Kind) JobName(projectID string) string {
	return fmt.Sprintf("%s-statistics-%s", k, projectID)
}

// LockKey is the cross-instance execution lock name
func (k Kind) LockKey() string {
	if k == KindIssue {
		return "ISSUE_STATISTICS"
	}
	return "FEEDBACK_ISSUE_STATISTICS"
}

// CronMinute is the fixed minute-of-hour for the daily run.
// The two kinds fire on different minutes so their jobs never collide
func (k Kind) CronMinute() int {
	if k == KindIssue {
		return 0
	}
	return 5
}

// Row is one persisted daily aggregate
type Row struct {
	DimensionID string
	Date        time.Time
	Count       int64
}
