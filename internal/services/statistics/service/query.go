package service

import (
	"context"
	"time"

	"feedbackhub/internal/core/interval"
	"feedbackhub/internal/services/statistics/domain"
)

// QueryProjectStats folds a project's daily issue counts into buckets of the
// requested granularity, anchored at the range end
func (s *Service) QueryProjectStats(
	ctx context.Context,
	in domain.QueryInput,
) (domain.ProjectStatsResult, error) {
	if in.EndDate.Before(in.StartDate) {
		return domain.ProjectStatsResult{}, interval.ErrInvalidRange
	}
	if _, err := s.Projects.TimezoneOffset(ctx, in.ProjectID); err != nil {
		return domain.ProjectStatsResult{}, err
	}

	rows, err := s.Stats.Bind(s.DB).FindRows(
		ctx, domain.KindIssue, []string{in.ProjectID}, in.StartDate, in.EndDate)
	if err != nil {
		return domain.ProjectStatsResult{}, err
	}

	buckets, err := foldBuckets(rows, in.StartDate, in.EndDate, in.Interval)
	if err != nil {
		return domain.ProjectStatsResult{}, err
	}
	return domain.ProjectStatsResult{Statistics: buckets}, nil
}

// QueryIssueStats folds feedback counts for the requested issues into
// per-issue bucket lists. Issues with no rows in range are omitted, so an
// empty find yields an empty issue list; issues appear in row encounter
// order, which is ascending id since the store sorts by dimension. Buckets
// are shaped by the overall requested range, not each issue's own rows
func (s *Service) QueryIssueStats(
	ctx context.Context,
	in domain.GroupedQueryInput,
) (domain.GroupedStatsResult, error) {
	if in.EndDate.Before(in.StartDate) {
		return domain.GroupedStatsResult{}, interval.ErrInvalidRange
	}

	rows, err := s.Stats.Bind(s.DB).FindRows(
		ctx, domain.KindFeedbackIssue, in.IssueIDs, in.StartDate, in.EndDate)
	if err != nil {
		return domain.GroupedStatsResult{}, err
	}

	order := make([]string, 0, len(in.IssueIDs))
	byIssue := make(map[string][]domain.Row, len(in.IssueIDs))
	for _, r := range rows {
		if _, ok := byIssue[r.DimensionID]; !ok {
			order = append(order, r.DimensionID)
		}
		byIssue[r.DimensionID] = append(byIssue[r.DimensionID], r)
	}

	out := domain.GroupedStatsResult{Issues: make([]domain.IssueStats, 0, len(order))}
	if len(order) == 0 {
		return out, nil
	}

	names, err := s.Projects.IssueNames(ctx, order)
	if err != nil {
		return domain.GroupedStatsResult{}, err
	}

	for _, id := range order {
		buckets, err := foldBuckets(byIssue[id], in.StartDate, in.EndDate, in.Interval)
		if err != nil {
			return domain.GroupedStatsResult{}, err
		}
		fb := make([]domain.FeedbackBucket, 0, len(buckets))
		for _, b := range buckets {
			fb = append(fb, domain.FeedbackBucket{
				StartDate:     b.StartDate,
				EndDate:       b.EndDate,
				FeedbackCount: b.Count,
			})
		}
		out.Issues = append(out.Issues, domain.IssueStats{
			ID:         id,
			Name:       names[id],
			Statistics: fb,
		})
	}
	return out, nil
}

// foldBuckets sums daily rows into their covering buckets. Buckets appear in
// first-touched order, which is chronological when rows arrive date-ascending.
// Buckets no row lands in are never emitted
func foldBuckets(
	rows []domain.Row,
	rangeStart, rangeEnd time.Time,
	g interval.Granularity,
) ([]domain.Bucket, error) {
	out := make([]domain.Bucket, 0, len(rows))
	index := make(map[string]int, len(rows))

	for _, r := range rows {
		span, err := interval.Compute(rangeStart, rangeEnd, r.Date, g)
		if err != nil {
			return nil, err
		}
		if i, ok := index[span.Start]; ok {
			out[i].Count += r.Count
			continue
		}
		index[span.Start] = len(out)
		out = append(out, domain.Bucket{StartDate: span.Start, EndDate: span.End, Count: r.Count})
	}
	return out, nil
}
