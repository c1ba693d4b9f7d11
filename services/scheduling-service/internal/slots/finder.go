// Package slots searches for meeting hours that every participant's business
// window accepts.
//
// The search is first-fit over whole UTC hours: candidates are tried in
// ascending order and the first one open in every window wins. A search that
// runs out of candidates is a normal outcome (StateExhausted), not an error.
package slots

import (
	"errors"
	"fmt"
	"time"

	"github.com/md-rashed-zaman/meetingtime/libs/timerange"
	"github.com/md-rashed-zaman/meetingtime/services/scheduling-service/internal/businesshours"
)

var (
	ErrNoConstraints    = errors.New("slots: at least one business window is required")
	ErrInvalidHourRange = errors.New("slots: need 0 <= from < to <= 24")
)

type State int

const (
	StateSearching State = iota
	StateFound
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateSearching:
		return "searching"
	case StateFound:
		return "found"
	case StateExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// HourRange is the half-open band [From, To) of UTC hours to scan on each day.
type HourRange struct {
	From int
	To   int
}

var FullDay = HourRange{From: 0, To: 24}

func (r HourRange) validate() error {
	if r.From < 0 || r.To > 24 || r.From >= r.To {
		return fmt.Errorf("%w: got [%d,%d)", ErrInvalidHourRange, r.From, r.To)
	}
	return nil
}

// Result is the outcome of a search. Slot is set only when State is StateFound;
// Checked counts the candidate hours evaluated before the search stopped.
type Result struct {
	State   State
	Slot    time.Time
	Checked int
}

func (r Result) Found() bool { return r.State == StateFound }

// Find returns the earliest UTC hour on day's calendar date, within hours, at
// which every window is open. Only the date of day is used.
func Find(day time.Time, hours HourRange, windows []businesshours.Window) (Result, error) {
	if err := checkInputs(hours, windows); err != nil {
		return Result{}, err
	}
	res := Result{State: StateSearching}
	scanDay(utcDate(day), hours, windows, &res)
	if res.State == StateSearching {
		res.State = StateExhausted
	}
	return res, nil
}

// FindAll returns every hour on day's calendar date, within hours, that all windows accept.
func FindAll(day time.Time, hours HourRange, windows []businesshours.Window) ([]time.Time, error) {
	if err := checkInputs(hours, windows); err != nil {
		return nil, err
	}
	base := utcDate(day)
	var out []time.Time
	for h := hours.From; h < hours.To; h++ {
		candidate := base.Add(time.Duration(h) * time.Hour)
		if openInAll(candidate, windows) {
			out = append(out, candidate)
		}
	}
	return out, nil
}

// FindInRange scans the calendar dates from iv.Start through iv.End in order and
// returns the first slot found on any of them. Each end contributes its date as
// written, so an interval whose start date is later than its end date (possible
// across distant offsets) is rejected with timerange.ErrInvalidRange.
func FindInRange(iv timerange.Interval, hours HourRange, windows []businesshours.Window) (Result, error) {
	if err := checkInputs(hours, windows); err != nil {
		return Result{}, err
	}
	span, err := DaySpan(iv)
	if err != nil {
		return Result{}, err
	}
	res := Result{State: StateSearching}
	for day := range timerange.Days(span) {
		if scanDay(day, hours, windows, &res) {
			break
		}
	}
	if res.State == StateSearching {
		res.State = StateExhausted
	}
	return res, nil
}

// DaySpan returns the UTC-midnight span of calendar dates FindInRange walks for iv.
func DaySpan(iv timerange.Interval) (timerange.Interval, error) {
	return timerange.New(utcDate(iv.Start()), utcDate(iv.End()))
}

func scanDay(day time.Time, hours HourRange, windows []businesshours.Window, res *Result) bool {
	for h := hours.From; h < hours.To; h++ {
		candidate := day.Add(time.Duration(h) * time.Hour)
		res.Checked++
		if openInAll(candidate, windows) {
			res.State = StateFound
			res.Slot = candidate
			return true
		}
	}
	return false
}

func openInAll(candidate time.Time, windows []businesshours.Window) bool {
	for _, w := range windows {
		if !w.IsOpenAt(candidate) {
			return false
		}
	}
	return true
}

func checkInputs(hours HourRange, windows []businesshours.Window) error {
	if len(windows) == 0 {
		return ErrNoConstraints
	}
	return hours.validate()
}

// utcDate keeps the calendar date of t as written and pins it to midnight UTC.
func utcDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
