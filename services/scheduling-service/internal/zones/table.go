package zones

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrUnknownZone   = errors.New("zones: unknown zone")
	ErrInvalidOffset = errors.New("zones: invalid offset")
	ErrDuplicateZone = errors.New("zones: duplicate zone")
)

// maxOffset bounds offsets to the widest one in civil use (UTC+14).
const maxOffset = 14 * time.Hour

// Offset is a fixed, DST-free distance from UTC under a label such as "EST".
type Offset struct {
	Label  string
	Offset time.Duration
}

// Location returns a fixed zone whose wall clock runs Offset ahead of UTC.
func (o Offset) Location() *time.Location {
	return time.FixedZone(o.Label, int(o.Offset/time.Second))
}

func (o Offset) String() string {
	return o.Label + " (UTC" + FormatOffset(o.Offset) + ")"
}

// Table maps labels to offsets. It has no mutators; build a new one to change it.
type Table struct {
	byLabel map[string]Offset
}

func NewTable(offsets ...Offset) (*Table, error) {
	byLabel := make(map[string]Offset, len(offsets))
	for _, o := range offsets {
		label := strings.TrimSpace(o.Label)
		if label == "" {
			return nil, fmt.Errorf("%w: empty label", ErrInvalidOffset)
		}
		if o.Offset < -maxOffset || o.Offset > maxOffset {
			return nil, fmt.Errorf("%w: %s is %s from UTC", ErrInvalidOffset, label, o.Offset)
		}
		if _, ok := byLabel[label]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateZone, label)
		}
		byLabel[label] = Offset{Label: label, Offset: o.Offset}
	}
	return &Table{byLabel: byLabel}, nil
}

// Standard returns a fresh table of common fixed offsets. Labels name the
// standard-time offset only; EST stays at -05:00 all year.
func Standard() *Table {
	t, err := NewTable(
		Offset{Label: "UTC", Offset: 0},
		Offset{Label: "GMT", Offset: 0},
		Offset{Label: "EST", Offset: -5 * time.Hour},
		Offset{Label: "CST", Offset: -6 * time.Hour},
		Offset{Label: "MST", Offset: -7 * time.Hour},
		Offset{Label: "PST", Offset: -8 * time.Hour},
		Offset{Label: "CET", Offset: 1 * time.Hour},
		Offset{Label: "EET", Offset: 2 * time.Hour},
		Offset{Label: "IST", Offset: 5*time.Hour + 30*time.Minute},
		Offset{Label: "NPT", Offset: 5*time.Hour + 45*time.Minute},
		Offset{Label: "JST", Offset: 9 * time.Hour},
		Offset{Label: "AEST", Offset: 10 * time.Hour},
	)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) OffsetFor(label string) (Offset, error) {
	o, ok := t.byLabel[strings.TrimSpace(label)]
	if !ok {
		return Offset{}, fmt.Errorf("%w: %q", ErrUnknownZone, label)
	}
	return o, nil
}

// ToUTC reads the wall clock of local as a time in zone label and returns the
// matching UTC instant. The location carried by local is ignored.
func (t *Table) ToUTC(local time.Time, label string) (time.Time, error) {
	o, err := t.OffsetFor(label)
	if err != nil {
		return time.Time{}, err
	}
	wall := time.Date(local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), time.UTC)
	return wall.Add(-o.Offset), nil
}

// Convert re-expresses a wall-clock time from one zone in another. The returned
// value is the same instant ToUTC(at, from) returns, placed in the target zone's
// fixed location. Its wall clock reads at - from + to, but the instant itself is
// not shifted by the target offset: Convert(...).UTC() equals ToUTC(at, from).
func (t *Table) Convert(at time.Time, from, to string) (time.Time, error) {
	utc, err := t.ToUTC(at, from)
	if err != nil {
		return time.Time{}, err
	}
	target, err := t.OffsetFor(to)
	if err != nil {
		return time.Time{}, err
	}
	return utc.In(target.Location()), nil
}

func (t *Table) Labels() []string {
	labels := make([]string, 0, len(t.byLabel))
	for label := range t.byLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// All returns the offsets ordered by label.
func (t *Table) All() []Offset {
	out := make([]Offset, 0, len(t.byLabel))
	for _, label := range t.Labels() {
		out = append(out, t.byLabel[label])
	}
	return out
}

func (t *Table) Len() int { return len(t.byLabel) }

// ParseOffset accepts "+05:30", "-0800", "-5", "UTC+8", "GMT-03:30", "Z" and "UTC".
func ParseOffset(s string) (time.Duration, error) {
	raw := strings.TrimSpace(s)
	v := strings.ToUpper(raw)
	v = strings.TrimPrefix(v, "UTC")
	v = strings.TrimPrefix(v, "GMT")
	if v == "" || v == "Z" || v == "0" {
		return 0, nil
	}

	sign := time.Duration(1)
	switch v[0] {
	case '+':
		v = v[1:]
	case '-':
		sign = -1
		v = v[1:]
	}

	var hh, mm string
	switch {
	case strings.Contains(v, ":"):
		hh, mm, _ = strings.Cut(v, ":")
	case len(v) == 4:
		hh, mm = v[:2], v[2:]
	default:
		hh, mm = v, "0"
	}
	hours, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOffset, raw)
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil || minutes < 0 || minutes > 59 || hours < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOffset, raw)
	}
	d := sign * (time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute)
	if d < -maxOffset || d > maxOffset {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOffset, raw)
	}
	return d, nil
}

// FormatOffset renders d as ±hh:mm.
func FormatOffset(d time.Duration) string {
	sign := "+"
	if d < 0 {
		sign = "-"
		d = -d
	}
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%s%02d:%02d", sign, h, m)
}
