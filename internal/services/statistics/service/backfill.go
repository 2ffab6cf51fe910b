package service

import (
	"context"
	"time"

	"feedbackhub/internal/core/tzoffset"
	"feedbackhub/internal/modkit/repokit"
	perr "feedbackhub/internal/platform/errors"
	"feedbackhub/internal/platform/logger"
	"feedbackhub/internal/services/statistics/domain"
)

// Backfill recomputes days daily cells for one project's statistic from raw
// events, walking backward from yesterday. Each (day, dimension) cell is its
// own transaction: the raw-event count and the upsert commit together, and a
// failed cell is logged and skipped so the rest of the sweep still lands.
// Days already counted as zero are left untouched
func (s *Service) Backfill(ctx context.Context, kind domain.Kind, projectID string, days int) error {
	if !kind.Valid() {
		return perr.InvalidArgf("unknown statistic kind %q", kind)
	}
	offStr, err := s.Projects.TimezoneOffset(ctx, projectID)
	if err != nil {
		return err
	}
	off, err := tzoffset.Parse(offStr)
	if err != nil {
		return err
	}

	dims, err := s.dimensions(ctx, kind, projectID)
	if err != nil {
		return err
	}
	if days <= 0 || len(dims) == 0 {
		return nil
	}

	now := timeNow().UTC()
	shift := off.Duration()

	for d := 1; d <= days; d++ {
		// The project's local day maps onto a shifted UTC window
		dayStart := truncateDay(now.AddDate(0, 0, -d))
		from := dayStart.Add(-shift)
		to := dayStart.AddDate(0, 0, 1).Add(-shift)

		var label time.Time
		if off.Negative() {
			label = truncateDay(from)
		} else {
			label = truncateDay(to.Add(-time.Second))
		}

		for _, dim := range dims {
			if err := s.backfillCell(ctx, kind, dim, from, to, label); err != nil {
				logger.C(ctx).Warn().Err(err).
					Str("kind", string(kind)).
					Str("dimension_id", dim).
					Time("date", label).
					Msg("statistics: backfill cell failed")
			}
		}
	}
	return nil
}

// backfillCell counts raw events in [from, to) and overwrites the daily row,
// both inside one transaction. Zero counts write nothing
func (s *Service) backfillCell(
	ctx context.Context,
	kind domain.Kind,
	dimensionID string,
	from, to, label time.Time,
) error {
	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		n, err := s.countEvents(ctx, s.Events.Bind(q), kind, dimensionID, from, to)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		return s.Stats.Bind(q).UpsertCount(ctx, kind, dimensionID, label, n)
	})
}

func (s *Service) countEvents(
	ctx context.Context,
	events domain.EventsRepo,
	kind domain.Kind,
	dimensionID string,
	from, to time.Time,
) (int64, error) {
	if kind == domain.KindIssue {
		return events.CountIssuesCreated(ctx, dimensionID, from, to)
	}
	return events.CountFeedbackCreated(ctx, dimensionID, from, to)
}

// dimensions resolves the row keys a statistic sweeps for one project
func (s *Service) dimensions(ctx context.Context, kind domain.Kind, projectID string) ([]string, error) {
	if kind == domain.KindIssue {
		return []string{projectID}, nil
	}
	return s.Projects.IssueIDs(ctx, projectID)
}
