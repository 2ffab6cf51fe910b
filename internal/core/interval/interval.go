// Package interval computes aligned reporting buckets for daily statistics.
// Buckets are anchored to the end of the query range and walk backward in
// whole day/week/month strides, with the first stride clamped to the range start
package interval

import (
	"time"

	perr "feedbackhub/internal/platform/errors"
)

// DateFormat is the wire format for bucket boundary dates
const DateFormat = "2006-01-02"

// Granularity selects the bucket stride
type Granularity string

// Supported granularities
const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

// ParseGranularity validates a caller supplied interval string
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case Day, Week, Month:
		return Granularity(s), nil
	}
	return "", perr.InvalidArgf("interval must be one of day, week, month")
}

// ErrInvalidRange is returned when the query range is reversed.
// The message is part of the API contract
var ErrInvalidRange = perr.New(perr.ErrorCodeInvalidArgument, "endDate must be later than startDate")

// Span is one bucket's inclusive boundary, formatted yyyy-MM-dd
type Span struct {
	Start string
	End   string
}

// Compute returns the aligned bucket containing point for the given overall
// range and granularity. Both range bounds and the point are treated as
// calendar days; time-of-day is ignored
func Compute(rangeStart, rangeEnd, point time.Time, g Granularity) (Span, error) {
	rangeStart = truncateDay(rangeStart)
	rangeEnd = truncateDay(rangeEnd)
	point = truncateDay(point)

	if rangeEnd.Before(rangeStart) {
		return Span{}, ErrInvalidRange
	}

	if g == Day {
		d := point.Format(DateFormat)
		return Span{Start: d, End: d}, nil
	}

	// whole units between point and rangeEnd, truncated toward zero
	diff := wholeUnitsBetween(point, rangeEnd, g)
	if diff < 0 {
		diff = -diff
	}
	count := diff + 1

	startCount, endCount := count, count-1
	if count == 0 {
		startCount, endCount = 1, 0
	}

	start := subUnits(rangeEnd, startCount, g).AddDate(0, 0, 1)
	end := subUnits(rangeEnd, endCount, g)

	// partial first bucket: never report days before the query range
	if start.Before(rangeStart) {
		start = rangeStart
	}

	return Span{Start: start.Format(DateFormat), End: end.Format(DateFormat)}, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// wholeUnitsBetween counts full weeks/months from a to b, truncated toward zero
func wholeUnitsBetween(a, b time.Time, g Granularity) int {
	if g == Week {
		days := int(b.Sub(a).Hours() / 24)
		return days / 7
	}

	// calendar months: count month boundaries, then back off one when the
	// partial month at the end has not completed
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if months == 0 {
		return 0
	}
	if months > 0 && addMonthsClamped(a, months).After(b) {
		months--
	}
	if months < 0 && addMonthsClamped(a, months).Before(b) {
		months++
	}
	return months
}

func subUnits(t time.Time, n int, g Granularity) time.Time {
	if g == Week {
		return t.AddDate(0, 0, -7*n)
	}
	return addMonthsClamped(t, -n)
}

// addMonthsClamped shifts by whole months keeping the day-of-month, clamping
// to the last day of the target month (Jan 31 - 1 month is Dec 31, but
// Mar 31 - 1 month is Feb 28/29, never Mar 2)
func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := daysIn(firstOfTarget.Year(), firstOfTarget.Month()); d > last {
		d = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, 0, 0, 0, 0, time.UTC)
}

func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
