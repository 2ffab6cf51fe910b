package domain

import (
	"context"
	"time"
)

// Recorder receives live create events so daily counters stay current
// between nightly runs
type Recorder interface {
	RecordIssueCreated(ctx context.Context, projectID string, at time.Time) error
	RecordFeedbackCreated(ctx context.Context, issueID string, at time.Time) error
}

// Registrar schedules a project's recurring statistics jobs
type Registrar interface {
	RegisterDailyJobs(ctx context.Context, projectID string) error
}
