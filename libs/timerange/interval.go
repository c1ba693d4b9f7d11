// Package timerange models closed ranges of instants and the calendar walks over them.
//
// An Interval is the inclusive range [start, end]. Values are immutable: every
// operation returns a new Interval or a primitive, so intervals can be shared
// freely between goroutines.
package timerange

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidRange = errors.New("timerange: start is after end")
	ErrInvalidStep  = errors.New("timerange: step must be positive")
)

type Interval struct {
	start time.Time
	end   time.Time
}

// New returns the interval [start, end]. start == end is a valid zero-length interval.
func New(start, end time.Time) (Interval, error) {
	if start.After(end) {
		return Interval{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Interval{start: start, end: end}, nil
}

// MustNew is New for literals known to be ordered. It panics on ErrInvalidRange.
func MustNew(start, end time.Time) Interval {
	iv, err := New(start, end)
	if err != nil {
		panic(err)
	}
	return iv
}

func (iv Interval) Start() time.Time { return iv.start }
func (iv Interval) End() time.Time   { return iv.end }

func (iv Interval) Duration() time.Duration {
	return iv.end.Sub(iv.start)
}

// IsEmpty reports a zero-length interval. Intersections without overlap collapse to one.
func (iv Interval) IsEmpty() bool {
	return iv.start.Equal(iv.end)
}

// Contains reports whether start <= t <= end.
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.start) && !t.After(iv.end)
}

// Overlaps reports whether the closed ranges share at least one instant.
func (iv Interval) Overlaps(o Interval) bool {
	return !iv.start.After(o.end) && !o.start.After(iv.end)
}

// IntersectionWith returns the common part of both intervals. When they do not
// overlap the result is the degenerate interval {newStart, newStart}; callers
// tell "no overlap" from "touching at one instant" with Overlaps.
func (iv Interval) IntersectionWith(o Interval) Interval {
	start := later(iv.start, o.start)
	end := earlier(iv.end, o.end)
	if start.After(end) {
		return Interval{start: start, end: start}
	}
	return Interval{start: start, end: end}
}

// UnionWith returns the convex hull of both intervals. Disjoint inputs still
// produce a single interval spanning the gap between them.
func (iv Interval) UnionWith(o Interval) Interval {
	return Interval{
		start: earlier(iv.start, o.start),
		end:   later(iv.end, o.end),
	}
}

// Equal compares both endpoints as instants, ignoring location.
func (iv Interval) Equal(o Interval) bool {
	return iv.start.Equal(o.start) && iv.end.Equal(o.end)
}

// String renders the ISO 8601 "start/end" form.
func (iv Interval) String() string {
	return iv.start.Format(time.RFC3339) + "/" + iv.end.Format(time.RFC3339)
}

// Parse reads the "start/end" form produced by String. A bare date
// (2006-01-02) is accepted for either side and means midnight UTC.
func Parse(s string) (Interval, error) {
	left, right, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Interval{}, fmt.Errorf("timerange: %q is not start/end", s)
	}
	start, err := ParseInstant(left)
	if err != nil {
		return Interval{}, err
	}
	end, err := ParseInstant(right)
	if err != nil {
		return Interval{}, err
	}
	return New(start, end)
}

// ParseInstant accepts RFC 3339 timestamps and plain dates.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("timerange: invalid instant %q", s)
	}
	return t, nil
}

func earlier(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}

func later(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
