package domain

import (
	"context"
	"time"

	"feedbackhub/internal/core/interval"
)

// StatsRepo is the daily-aggregate store for one Kind's table
type StatsRepo interface {
	// FindRows returns rows for the given dimensions inside [from, to],
	// ordered by dimension then date ascending
	FindRows(ctx context.Context, kind Kind, dimensionIDs []string, from, to time.Time) ([]Row, error)

	// UpsertCount overwrites the count for (dimension, day), inserting when absent
	UpsertCount(ctx context.Context, kind Kind, dimensionID string, day time.Time, count int64) error

	// IncrementCount adds delta to an existing row's count, or inserts a fresh
	// row carrying delta when none exists yet
	IncrementCount(ctx context.Context, kind Kind, dimensionID string, day time.Time, delta int64) error
}

// ProjectsRepo exposes the project/issue lookups the engine needs
type ProjectsRepo interface {
	// TimezoneOffset returns the project's fixed UTC offset string ("+09:00").
	// Missing projects surface as a not-found error
	TimezoneOffset(ctx context.Context, projectID string) (string, error)

	// ProjectIDByIssue resolves the owning project of an issue
	ProjectIDByIssue(ctx context.Context, issueID string) (string, error)

	// IssueIDs lists all issue ids belonging to a project
	IssueIDs(ctx context.Context, projectID string) ([]string, error)

	// IssueNames maps issue ids to display names
	IssueNames(ctx context.Context, issueIDs []string) (map[string]string, error)
}

// EventsRepo counts raw events inside a half-open window [from, to)
type EventsRepo interface {
	CountIssuesCreated(ctx context.Context, projectID string, from, to time.Time) (int64, error)
	CountFeedbackCreated(ctx context.Context, issueID string, from, to time.Time) (int64, error)
}

// QueryInput is a bucketed-statistics request for a project's issue counts
type QueryInput struct {
	ProjectID string
	StartDate time.Time
	EndDate   time.Time
	Interval  interval.Granularity
}

// GroupedQueryInput is a bucketed-statistics request for feedback counts,
// grouped per issue
type GroupedQueryInput struct {
	IssueIDs  []string
	StartDate time.Time
	EndDate   time.Time
	Interval  interval.Granularity
}

// Bucket is one aggregated time bucket in a query result
type Bucket struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Count     int64  `json:"count"`
}

// FeedbackBucket mirrors Bucket with the feedback-specific count field name
type FeedbackBucket struct {
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	FeedbackCount int64  `json:"feedbackCount"`
}

// IssueStats is one issue's bucketed feedback counts
type IssueStats struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Statistics []FeedbackBucket `json:"statistics"`
}

// ProjectStatsResult is the response shape for issue-count queries
type ProjectStatsResult struct {
	Statistics []Bucket `json:"statistics"`
}

// GroupedStatsResult is the response shape for feedback-count queries
type GroupedStatsResult struct {
	Issues []IssueStats `json:"issues"`
}
