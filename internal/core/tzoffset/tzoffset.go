// Package tzoffset parses the fixed "±HH:MM" UTC offsets projects carry.
// Offsets are plain numeric shifts; no IANA zone rules or DST are modeled
package tzoffset

import (
	"strconv"
	"strings"
	"time"

	perr "feedbackhub/internal/platform/errors"
)

// Offset is a fixed UTC offset
type Offset struct {
	hours   int
	minutes int
	neg     bool
}

// Parse accepts strings like "+09:00", "-03:30", "+00:00"
func Parse(s string) (Offset, error) {
	if len(s) != 6 || (s[0] != '+' && s[0] != '-') || s[3] != ':' {
		return Offset{}, perr.InvalidArgf("invalid timezone offset %q, want ±HH:MM", s)
	}
	hh, err := strconv.Atoi(s[1:3])
	if err != nil || hh > 14 {
		return Offset{}, perr.InvalidArgf("invalid timezone offset hours in %q", s)
	}
	mm, err := strconv.Atoi(s[4:6])
	if err != nil || mm > 59 {
		return Offset{}, perr.InvalidArgf("invalid timezone offset minutes in %q", s)
	}
	return Offset{hours: hh, minutes: mm, neg: s[0] == '-'}, nil
}

// MustParse is Parse for static offsets in tests
func MustParse(s string) Offset {
	o, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return o
}

// Hours returns the offset as signed fractional hours (-03:30 is -3.5)
func (o Offset) Hours() float64 {
	h := float64(o.hours) + float64(o.minutes)/60
	if o.neg {
		return -h
	}
	return h
}

// WholeHours returns the hour part truncated toward zero with the sign applied
func (o Offset) WholeHours() int {
	if o.neg {
		return -o.hours
	}
	return o.hours
}

// Duration returns the offset as a time.Duration
func (o Offset) Duration() time.Duration {
	d := time.Duration(o.hours)*time.Hour + time.Duration(o.minutes)*time.Minute
	if o.neg {
		return -d
	}
	return d
}

// Negative reports whether the offset is west of UTC
func (o Offset) Negative() bool { return o.neg && (o.hours > 0 || o.minutes > 0) }

// String formats the offset back to ±HH:MM
func (o Offset) String() string {
	var b strings.Builder
	if o.neg {
		b.WriteByte('-')
	} else {
		b.WriteByte('+')
	}
	if o.hours < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.Itoa(o.hours))
	b.WriteByte(':')
	if o.minutes < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.Itoa(o.minutes))
	return b.String()
}
