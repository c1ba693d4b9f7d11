// Package planner turns wire-level meeting requests into business windows and
// runs the slot finder over them.
package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/md-rashed-zaman/meetingtime/libs/metrics"
	otelx "github.com/md-rashed-zaman/meetingtime/libs/otel"
	"github.com/md-rashed-zaman/meetingtime/libs/timerange"
	"github.com/md-rashed-zaman/meetingtime/services/scheduling-service/internal/businesshours"
	"github.com/md-rashed-zaman/meetingtime/services/scheduling-service/internal/slots"
	"github.com/md-rashed-zaman/meetingtime/services/scheduling-service/internal/zones"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrInvalidRequest wraps every validation failure so transports can map it to
// a client error without knowing each package's sentinels.
var ErrInvalidRequest = errors.New("invalid request")

// maxRangeDays bounds multi-day searches.
const maxRangeDays = 31

type WindowSpec struct {
	Zone      string `json:"zone"`
	StartHour int    `json:"start_hour"`
	EndHour   int    `json:"end_hour"`
	Days      string `json:"days"`
}

// Request asks for the first common hour on Day, or on any day from Day
// through Until when Until is set. FromHour/ToHour bound the UTC hours scanned.
type Request struct {
	Day      string       `json:"day"`
	Until    string       `json:"until,omitempty"`
	FromHour *int         `json:"from_hour,omitempty"`
	ToHour   *int         `json:"to_hour,omitempty"`
	Windows  []WindowSpec `json:"windows"`
}

type Plan struct {
	State   string      `json:"state"`
	Slot    *time.Time  `json:"slot,omitempty"`
	Checked int         `json:"checked"`
	Common  []time.Time `json:"common_hours,omitempty"`
}

type Planner struct {
	zones *zones.Table
}

func New(table *zones.Table) *Planner {
	return &Planner{zones: table}
}

func (p *Planner) Zones() *zones.Table { return p.zones }

func (p *Planner) Plan(ctx context.Context, req Request) (Plan, error) {
	_, span := otelx.Tracer("planner").Start(ctx, "slots.find",
		trace.WithAttributes(
			attribute.Int("slots.windows", len(req.Windows)),
			attribute.String("slots.day", req.Day),
		),
	)
	defer span.End()

	start := time.Now()
	plan, err := p.plan(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.ObserveSlotSearch("error", 0, time.Since(start))
		return Plan{}, err
	}
	span.SetAttributes(
		attribute.String("slots.state", plan.State),
		attribute.Int("slots.checked", plan.Checked),
	)
	metrics.ObserveSlotSearch(plan.State, plan.Checked, time.Since(start))
	return plan, nil
}

func (p *Planner) plan(req Request) (Plan, error) {
	windows, err := p.Windows(req.Windows)
	if err != nil {
		return Plan{}, err
	}
	hours := slots.FullDay
	if req.FromHour != nil {
		hours.From = *req.FromHour
	}
	if req.ToHour != nil {
		hours.To = *req.ToHour
	}
	day, err := timerange.ParseInstant(req.Day)
	if err != nil {
		return Plan{}, invalid(err)
	}

	if strings.TrimSpace(req.Until) == "" {
		res, err := slots.Find(day, hours, windows)
		if err != nil {
			return Plan{}, invalid(err)
		}
		common, err := slots.FindAll(day, hours, windows)
		if err != nil {
			return Plan{}, invalid(err)
		}
		return toPlan(res, common), nil
	}

	until, err := timerange.ParseInstant(req.Until)
	if err != nil {
		return Plan{}, invalid(err)
	}
	iv, err := timerange.New(day, until)
	if err != nil {
		return Plan{}, invalid(err)
	}
	span, err := slots.DaySpan(iv)
	if err != nil {
		return Plan{}, invalid(err)
	}
	if span.Duration() > maxRangeDays*24*time.Hour {
		return Plan{}, invalid(fmt.Errorf("range longer than %d days", maxRangeDays))
	}
	res, err := slots.FindInRange(iv, hours, windows)
	if err != nil {
		return Plan{}, invalid(err)
	}
	return toPlan(res, nil), nil
}

// Windows resolves zone labels against the table and validates each rule.
func (p *Planner) Windows(specs []WindowSpec) ([]businesshours.Window, error) {
	out := make([]businesshours.Window, 0, len(specs))
	for i, s := range specs {
		zone, err := p.zones.OffsetFor(s.Zone)
		if err != nil {
			return nil, invalid(fmt.Errorf("window %d: %w", i, err))
		}
		days, err := businesshours.ParseDays(s.Days)
		if err != nil {
			return nil, invalid(fmt.Errorf("window %d: %w", i, err))
		}
		w, err := businesshours.New(zone, s.StartHour, s.EndHour, days)
		if err != nil {
			return nil, invalid(fmt.Errorf("window %d: %w", i, err))
		}
		out = append(out, w)
	}
	return out, nil
}

func toPlan(res slots.Result, common []time.Time) Plan {
	plan := Plan{State: res.State.String(), Checked: res.Checked, Common: common}
	if res.Found() {
		slot := res.Slot
		plan.Slot = &slot
	}
	return plan
}

func invalid(err error) error {
	if errors.Is(err, ErrInvalidRequest) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
}
