package timerange

import (
	"fmt"
	"iter"
	"time"
)

// GenerateSequence yields start, start+step, start+2*step, ... up to and including
// end when it lands exactly on a step. The returned sequence holds no state between
// iterations, so it can be ranged over any number of times.
func GenerateSequence(iv Interval, step time.Duration) (iter.Seq[time.Time], error) {
	if step <= 0 {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidStep, step)
	}
	start, end := iv.start, iv.end
	return func(yield func(time.Time) bool) {
		for t := start; !t.After(end); t = t.Add(step) {
			if !yield(t) {
				return
			}
		}
	}, nil
}

// Days yields the same wall-clock time on each calendar day from start through end.
// Day steps go through AddDate, so a day is not assumed to be 24 hours long.
func Days(iv Interval) iter.Seq[time.Time] {
	start, end := iv.start, iv.end
	return func(yield func(time.Time) bool) {
		for i := 0; ; i++ {
			t := start.AddDate(0, 0, i)
			if t.After(end) {
				return
			}
			if !yield(t) {
				return
			}
		}
	}
}

// CountMatching counts the calendar days in iv for which match holds.
func CountMatching(iv Interval, match func(time.Time) bool) int {
	n := 0
	for day := range Days(iv) {
		if match(day) {
			n++
		}
	}
	return n
}

// SplitByCalendarMonth cuts iv at every month boundary it crosses. The first piece
// starts at iv.Start, the last ends at iv.End, and neighbours share the boundary
// instant (midnight on the 1st, in iv.Start's location).
func SplitByCalendarMonth(iv Interval) []Interval {
	if iv.IsEmpty() {
		return []Interval{iv}
	}
	var out []Interval
	cursor := iv.start
	for cursor.Before(iv.end) {
		end := earlier(firstOfNextMonth(cursor), iv.end)
		out = append(out, Interval{start: cursor, end: end})
		cursor = end
	}
	return out
}

func firstOfNextMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
}

// ISOWeekday numbers days 1=Monday through 7=Sunday.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func IsWeekday(t time.Time) bool { return ISOWeekday(t) <= 5 }
func IsWeekend(t time.Time) bool { return ISOWeekday(t) >= 6 }
