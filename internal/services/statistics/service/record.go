package service

import (
	"context"
	"time"

	"feedbackhub/internal/core/tzoffset"
	perr "feedbackhub/internal/platform/errors"
	"feedbackhub/internal/services/statistics/domain"
)

// RecordEvent applies a live delta to the daily cell covering eventTime in
// the owning project's local day. A zero delta is a no-op before any lookup.
// Negative deltas are allowed; retractions may drive a cell below zero until
// the nightly run rewrites it.
//
// The read and write inside the repo are not wrapped in a transaction, so
// two racing deltas for the same cell can lose one update. The nightly
// recomputation is the corrective
func (s *Service) RecordEvent(
	ctx context.Context,
	kind domain.Kind,
	dimensionID string,
	eventTime time.Time,
	delta int64,
) error {
	if delta == 0 {
		return nil
	}
	if !kind.Valid() {
		return perr.InvalidArgf("unknown statistic kind %q", kind)
	}

	projectID := dimensionID
	if kind == domain.KindFeedbackIssue {
		var err error
		if projectID, err = s.Projects.ProjectIDByIssue(ctx, dimensionID); err != nil {
			return err
		}
	}

	offStr, err := s.Projects.TimezoneOffset(ctx, projectID)
	if err != nil {
		return err
	}
	off, err := tzoffset.Parse(offStr)
	if err != nil {
		return err
	}

	localDay := truncateDay(eventTime.UTC().Add(off.Duration()))
	return s.Stats.Bind(s.DB).IncrementCount(ctx, kind, dimensionID, localDay, delta)
}

// RecordIssueCreated implements the projects recorder port
func (s *Service) RecordIssueCreated(ctx context.Context, projectID string, at time.Time) error {
	return s.RecordEvent(ctx, domain.KindIssue, projectID, at, 1)
}

// RecordFeedbackCreated implements the projects recorder port
func (s *Service) RecordFeedbackCreated(ctx context.Context, issueID string, at time.Time) error {
	return s.RecordEvent(ctx, domain.KindFeedbackIssue, issueID, at, 1)
}
