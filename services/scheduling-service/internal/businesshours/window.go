package businesshours

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/md-rashed-zaman/meetingtime/libs/timerange"
	"github.com/md-rashed-zaman/meetingtime/services/scheduling-service/internal/zones"
)

var (
	ErrInvalidHours = errors.New("businesshours: need 0 <= start hour < end hour <= 24")
	ErrInvalidDays  = errors.New("businesshours: invalid day list")
)

// DayFilter decides whether a weekday (1=Monday .. 7=Sunday) is a working day.
type DayFilter func(weekday int) bool

func Everyday(int) bool         { return true }
func Weekdays(weekday int) bool { return weekday >= 1 && weekday <= 5 }

func OnlyDays(days ...int) DayFilter {
	var set [8]bool
	for _, d := range days {
		if d >= 1 && d <= 7 {
			set[d] = true
		}
	}
	return func(weekday int) bool {
		return weekday >= 1 && weekday <= 7 && set[weekday]
	}
}

// Window is the rule "open from StartHour to EndHour local time on matching days"
// for one zone. Open time is [StartHour, EndHour).
type Window struct {
	zone      zones.Offset
	startHour int
	endHour   int
	days      DayFilter
}

// New validates the hours. A nil days filter opens every day of the week.
func New(zone zones.Offset, startHour, endHour int, days DayFilter) (Window, error) {
	if startHour < 0 || endHour > 24 || startHour >= endHour {
		return Window{}, fmt.Errorf("%w: got %d-%d", ErrInvalidHours, startHour, endHour)
	}
	if days == nil {
		days = Everyday
	}
	return Window{zone: zone, startHour: startHour, endHour: endHour, days: days}, nil
}

func (w Window) Zone() zones.Offset { return w.zone }
func (w Window) StartHour() int     { return w.startHour }
func (w Window) EndHour() int       { return w.endHour }

// IsOpenAt checks only the local hour, so 16:59 is open for a window ending at 17.
func (w Window) IsOpenAt(utc time.Time) bool {
	local := utc.In(w.zone.Location())
	if !w.days(timerange.ISOWeekday(local)) {
		return false
	}
	h := local.Hour()
	return h >= w.startHour && h < w.endHour
}

func (w Window) String() string {
	return fmt.Sprintf("%s %02d:00-%02d:00", w.zone.Label, w.startHour, w.endHour)
}

var dayNames = map[string]int{
	"mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6, "sun": 7,
}

// ParseDays reads "weekdays", "weekends", "all", "mon-fri", "mon,wed,fri" or
// numeric forms like "1-5". An empty string means every day.
func ParseDays(s string) (DayFilter, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "", "all", "everyday", "daily":
		return Everyday, nil
	case "weekdays":
		return Weekdays, nil
	case "weekends":
		return OnlyDays(6, 7), nil
	}

	var days []int
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		from, to, isRange := strings.Cut(part, "-")
		a, err := parseDay(from)
		if err != nil {
			return nil, err
		}
		if !isRange {
			days = append(days, a)
			continue
		}
		b, err := parseDay(to)
		if err != nil {
			return nil, err
		}
		// sat-mon wraps through the weekend
		for d := a; ; d = d%7 + 1 {
			days = append(days, d)
			if d == b {
				break
			}
		}
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDays, s)
	}
	return OnlyDays(days...), nil
}

func parseDay(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 3 {
		if d, ok := dayNames[s[:3]]; ok {
			return d, nil
		}
	}
	if len(s) == 1 && s[0] >= '1' && s[0] <= '7' {
		return int(s[0] - '0'), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDays, s)
}
