package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newMux(maxItems int) *http.ServeMux {
	return newMuxWithOptions(Options{MaxSequenceItems: maxItems})
}

func newMuxWithOptions(opts Options) *http.ServeMux {
	mux := http.NewServeMux()
	New(slog.New(slog.NewTextHandler(io.Discard, nil)), opts).Register(mux)
	return mux
}

func do(t *testing.T, mux *http.ServeMux, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rw := httptest.NewRecorder()
	mux.ServeHTTP(rw, httptest.NewRequest(method, target, r))
	if rw.Code != http.StatusOK {
		return rw, nil
	}
	var out map[string]any
	if err := json.Unmarshal(rw.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rw, out
}

func TestWorkingDays_FirstQuarter(t *testing.T) {
	rw, out := do(t, newMux(0), http.MethodGet, "/api/v1/calendar/working-days?start=2024-01-01&end=2024-03-31", "")
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rw.Code, rw.Body.String())
	}
	if out["working_days"].(float64) != 65 {
		t.Fatalf("expected 65 working days, got %v", out["working_days"])
	}
	if out["calendar_days"].(float64) != 91 {
		t.Fatalf("expected 91 calendar days, got %v", out["calendar_days"])
	}
}

func TestWorkingDays_Validation(t *testing.T) {
	mux := newMux(0)
	for _, target := range []string{
		"/api/v1/calendar/working-days?start=2024-03-31&end=2024-01-01",
		"/api/v1/calendar/working-days?start=2024-01-01",
		"/api/v1/calendar/working-days?start=yesterday&end=2024-01-01",
	} {
		rw, _ := do(t, mux, http.MethodGet, target, "")
		if rw.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rw.Code)
		}
	}
}

func TestMonths_SplitsQuarterAndCountsEachDayOnce(t *testing.T) {
	rw, out := do(t, newMux(0), http.MethodGet, "/api/v1/calendar/months?start=2024-01-01&end=2024-03-31", "")
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rw.Code, rw.Body.String())
	}
	months := out["months"].([]any)
	if len(months) != 3 {
		t.Fatalf("expected 3 months, got %d", len(months))
	}
	want := []struct {
		month   string
		working float64
	}{{"2024-01", 23}, {"2024-02", 21}, {"2024-03", 21}}
	for i, m := range months {
		obj := m.(map[string]any)
		if obj["month"] != want[i].month || obj["working_days"].(float64) != want[i].working {
			t.Fatalf("month %d: expected %s with %v working days, got %v", i, want[i].month, want[i].working, obj)
		}
	}
	if months[0].(map[string]any)["end"] != "2024-02-01T00:00:00Z" {
		t.Fatalf("expected January to end at the February boundary, got %v", months[0])
	}
}

func TestSequence(t *testing.T) {
	mux := newMux(3)
	rw, out := do(t, mux, http.MethodGet, "/api/v1/calendar/sequence?start=2024-03-15T00:00:00Z&end=2024-03-15T02:00:00Z&step=30m", "")
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rw.Code, rw.Body.String())
	}
	if out["count"].(float64) != 3 || out["truncated"] != true {
		t.Fatalf("expected 3 truncated instants, got %v", out)
	}

	rw, _ = do(t, mux, http.MethodGet, "/api/v1/calendar/sequence?start=2024-03-15&end=2024-03-16&step=0s", "")
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero step, got %d", rw.Code)
	}
}

func TestCompare_DisjointQuarters(t *testing.T) {
	body := `{"a":{"start":"2024-01-01","end":"2024-03-31"},"b":{"start":"2024-04-01","end":"2024-06-30"}}`
	rw, out := do(t, newMux(0), http.MethodPost, "/api/v1/calendar/compare", body)
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rw.Code, rw.Body.String())
	}
	if out["overlaps"] != false {
		t.Fatalf("expected no overlap, got %v", out["overlaps"])
	}
	inter := out["intersection"].(map[string]any)
	if inter["empty"] != true {
		t.Fatalf("expected empty intersection, got %v", inter)
	}
	union := out["union"].(map[string]any)
	if union["duration_seconds"].(float64) != 181*24*3600 {
		t.Fatalf("expected 181 days, got %v", union["duration_seconds"])
	}
}

func TestCompare_RejectsUnknownFields(t *testing.T) {
	rw, _ := do(t, newMux(0), http.MethodPost, "/api/v1/calendar/compare", `{"c":{}}`)
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
}

func TestSpanLimit(t *testing.T) {
	mux := newMuxWithOptions(Options{MaxSpanDays: 366})
	for _, target := range []string{
		"/api/v1/calendar/months?start=0001-01-01&end=9999-12-31",
		"/api/v1/calendar/working-days?start=2020-01-01&end=2024-01-01",
		"/api/v1/calendar/sequence?start=2020-01-01&end=2024-01-01&step=24h",
	} {
		rw, _ := do(t, mux, http.MethodGet, target, "")
		if rw.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rw.Code)
		}
	}

	rw, out := do(t, mux, http.MethodGet, "/api/v1/calendar/working-days?start=2024-01-01&end=2024-12-31", "")
	if rw.Code != http.StatusOK {
		t.Fatalf("expected leap year within limit, got %d: %s", rw.Code, rw.Body.String())
	}
	if out["calendar_days"].(float64) != 366 {
		t.Fatalf("expected 366 calendar days, got %v", out["calendar_days"])
	}

	rw, _ = do(t, newMux(0), http.MethodGet, "/api/v1/calendar/months?start=0001-01-01&end=9999-12-31", "")
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected default limit to reject ten millennia, got %d", rw.Code)
	}
}
