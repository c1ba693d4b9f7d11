package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/md-rashed-zaman/meetingtime/libs/httpx"
	"github.com/md-rashed-zaman/meetingtime/libs/metrics"
	"github.com/md-rashed-zaman/meetingtime/libs/timerange"
)

type Handler struct {
	logger           *slog.Logger
	maxSequenceItems int
	maxSpan          time.Duration
}

type Options struct {
	MaxSequenceItems int
	// MaxSpanDays bounds the start..end span of every query interval.
	MaxSpanDays int
}

func New(logger *slog.Logger, opts Options) *Handler {
	if opts.MaxSequenceItems <= 0 {
		opts.MaxSequenceItems = 1000
	}
	if opts.MaxSpanDays <= 0 {
		opts.MaxSpanDays = 3660
	}
	return &Handler{
		logger:           logger,
		maxSequenceItems: opts.MaxSequenceItems,
		maxSpan:          time.Duration(opts.MaxSpanDays) * 24 * time.Hour,
	}
}

// Register mounts the calendar routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/calendar/working-days", h.WorkingDays)
	mux.HandleFunc("GET /api/v1/calendar/months", h.Months)
	mux.HandleFunc("GET /api/v1/calendar/sequence", h.Sequence)
	mux.HandleFunc("POST /api/v1/calendar/compare", h.Compare)
}

type intervalJSON struct {
	Start           string `json:"start"`
	End             string `json:"end"`
	DurationSeconds int64  `json:"duration_seconds"`
	Empty           bool   `json:"empty"`
}

func toJSON(iv timerange.Interval) intervalJSON {
	return intervalJSON{
		Start:           iv.Start().Format(time.RFC3339),
		End:             iv.End().Format(time.RFC3339),
		DurationSeconds: int64(iv.Duration() / time.Second),
		Empty:           iv.IsEmpty(),
	}
}

func (h *Handler) WorkingDays(w http.ResponseWriter, r *http.Request) {
	iv, ok := h.intervalFromQuery(w, r, "working_days")
	if !ok {
		return
	}
	working, weekend := 0, 0
	for day := range timerange.Days(iv) {
		if timerange.IsWeekday(day) {
			working++
		} else {
			weekend++
		}
	}

	metrics.ObserveCalendarRequest("working_days", metrics.ResultSuccess)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"start":         iv.Start().Format(time.RFC3339),
		"end":           iv.End().Format(time.RFC3339),
		"working_days":  working,
		"weekend_days":  weekend,
		"calendar_days": working + weekend,
	})
}

func (h *Handler) Months(w http.ResponseWriter, r *http.Request) {
	iv, ok := h.intervalFromQuery(w, r, "months")
	if !ok {
		return
	}

	type month struct {
		Month string `json:"month"`
		intervalJSON
		WorkingDays int `json:"working_days"`
	}
	parts := timerange.SplitByCalendarMonth(iv)
	out := make([]month, 0, len(parts))
	for i, p := range parts {
		out = append(out, month{
			Month:        p.Start().Format("2006-01"),
			intervalJSON: toJSON(p),
			WorkingDays:  workingDaysInPiece(p, i < len(parts)-1),
		})
	}

	metrics.ObserveCalendarRequest("months", metrics.ResultSuccess)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"months": out,
	})
}

// workingDaysInPiece drops the boundary instant shared with the next piece, so
// the 1st of a month is counted once, in its own month.
func workingDaysInPiece(p timerange.Interval, hasNext bool) int {
	end := p.End()
	if hasNext {
		end = end.Add(-time.Nanosecond)
	}
	iv, err := timerange.New(p.Start(), end)
	if err != nil {
		return 0
	}
	return timerange.CountMatching(iv, timerange.IsWeekday)
}

func (h *Handler) Sequence(w http.ResponseWriter, r *http.Request) {
	iv, ok := h.intervalFromQuery(w, r, "sequence")
	if !ok {
		return
	}
	step, err := time.ParseDuration(strings.TrimSpace(r.URL.Query().Get("step")))
	if err != nil {
		h.fail(w, "sequence", "step must be a Go duration such as 30m or 24h", http.StatusBadRequest)
		return
	}
	seq, err := timerange.GenerateSequence(iv, step)
	if err != nil {
		h.fail(w, "sequence", err.Error(), http.StatusBadRequest)
		return
	}

	instants := make([]string, 0)
	truncated := false
	for at := range seq {
		if len(instants) == h.maxSequenceItems {
			truncated = true
			break
		}
		instants = append(instants, at.Format(time.RFC3339))
	}

	metrics.ObserveCalendarRequest("sequence", metrics.ResultSuccess)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"step":      step.String(),
		"count":     len(instants),
		"truncated": truncated,
		"instants":  instants,
	})
}

func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	var req struct {
		A struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"a"`
		B struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"b"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, "compare", "invalid json body", http.StatusBadRequest)
		return
	}
	a, err := parseInterval(req.A.Start, req.A.End)
	if err != nil {
		h.fail(w, "compare", "a: "+err.Error(), http.StatusBadRequest)
		return
	}
	b, err := parseInterval(req.B.Start, req.B.End)
	if err != nil {
		h.fail(w, "compare", "b: "+err.Error(), http.StatusBadRequest)
		return
	}

	metrics.ObserveCalendarRequest("compare", metrics.ResultSuccess)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"a":            toJSON(a),
		"b":            toJSON(b),
		"overlaps":     a.Overlaps(b),
		"intersection": toJSON(a.IntersectionWith(b)),
		"union":        toJSON(a.UnionWith(b)),
	})
}

func (h *Handler) intervalFromQuery(w http.ResponseWriter, r *http.Request, endpoint string) (timerange.Interval, bool) {
	q := r.URL.Query()
	iv, err := parseInterval(q.Get("start"), q.Get("end"))
	if err != nil {
		h.fail(w, endpoint, err.Error(), http.StatusBadRequest)
		return timerange.Interval{}, false
	}
	if iv.Duration() > h.maxSpan {
		h.fail(w, endpoint, fmt.Sprintf("span longer than %d days", int(h.maxSpan/(24*time.Hour))), http.StatusBadRequest)
		return timerange.Interval{}, false
	}
	return iv, true
}

func parseInterval(start, end string) (timerange.Interval, error) {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return timerange.Interval{}, errors.New("start and end are required")
	}
	s, err := timerange.ParseInstant(start)
	if err != nil {
		return timerange.Interval{}, err
	}
	e, err := timerange.ParseInstant(end)
	if err != nil {
		return timerange.Interval{}, err
	}
	return timerange.New(s, e)
}

func (h *Handler) fail(w http.ResponseWriter, endpoint, msg string, status int) {
	metrics.ObserveCalendarRequest(endpoint, metrics.ResultError)
	h.logger.Debug("calendar request rejected", "endpoint", endpoint, "reason", msg)
	http.Error(w, msg, status)
}
