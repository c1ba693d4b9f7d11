package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/md-rashed-zaman/meetingtime/services/scheduling-service/internal/planner"
	"github.com/md-rashed-zaman/meetingtime/services/scheduling-service/internal/zones"
)

func newMux(t *testing.T) *http.ServeMux {
	t.Helper()
	table, err := zones.NewTable(
		zones.Offset{Label: "EST", Offset: -5 * time.Hour},
		zones.Offset{Label: "PST", Offset: -8 * time.Hour},
		zones.Offset{Label: "CET", Offset: time.Hour},
		zones.Offset{Label: "IST", Offset: 5*time.Hour + 30*time.Minute},
	)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	mux := http.NewServeMux()
	New(slog.New(slog.NewTextHandler(io.Discard, nil)), planner.New(table)).Register(mux)
	return mux
}

func TestListZones(t *testing.T) {
	rw := httptest.NewRecorder()
	newMux(t).ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/api/v1/zones", nil))
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	var out []map[string]any
	if err := json.Unmarshal(rw.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 4 || out[1]["label"] != "EST" || out[1]["offset"] != "-05:00" {
		t.Fatalf("unexpected zones %v", out)
	}
	if out[2]["offset_minutes"].(float64) != 330 {
		t.Fatalf("expected IST at 330 minutes, got %v", out[2])
	}
}

func TestConvert(t *testing.T) {
	mux := newMux(t)
	rw := httptest.NewRecorder()
	mux.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/api/v1/zones/convert?at=2024-03-15T09:00:00Z&from=PST&to=IST", nil))
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rw.Code, rw.Body.String())
	}
	var out map[string]string
	if err := json.Unmarshal(rw.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["utc"] != "2024-03-15T17:00:00Z" || out["converted"] != "2024-03-15T22:30:00+05:30" {
		t.Fatalf("unexpected conversion %v", out)
	}

	rw = httptest.NewRecorder()
	mux.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/api/v1/zones/convert?at=2024-03-15T09:00:00Z&from=PST&to=MARS", nil))
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown zone, got %d", rw.Code)
	}
}

func TestFindSlot(t *testing.T) {
	mux := newMux(t)
	body := `{"day":"2024-03-15","windows":[
		{"zone":"EST","start_hour":9,"end_hour":17,"days":"weekdays"},
		{"zone":"PST","start_hour":8,"end_hour":17,"days":"weekdays"},
		{"zone":"CET","start_hour":9,"end_hour":18,"days":"weekdays"}]}`
	rw := httptest.NewRecorder()
	mux.ServeHTTP(rw, httptest.NewRequest(http.MethodPost, "/api/v1/slots/find", strings.NewReader(body)))
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rw.Code, rw.Body.String())
	}
	var out map[string]any
	if err := json.Unmarshal(rw.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["state"] != "found" || out["slot"] != "2024-03-15T16:00:00Z" {
		t.Fatalf("expected slot at 16:00 UTC, got %v", out)
	}
}

func TestFindSlot_ClientErrors(t *testing.T) {
	mux := newMux(t)
	for _, body := range []string{
		`{"day":"2024-03-15","windows":[]}`,
		`{"day":"2024-03-15","windows":[{"zone":"MARS","start_hour":9,"end_hour":17}]}`,
		`{"day":"2024-03-15","windows":[{"zone":"EST","start_hour":17,"end_hour":9}]}`,
		`not json`,
	} {
		rw := httptest.NewRecorder()
		mux.ServeHTTP(rw, httptest.NewRequest(http.MethodPost, "/api/v1/slots/find", strings.NewReader(body)))
		if rw.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rw.Code)
		}
	}
}

func TestFindSlot_ExhaustedIsOK(t *testing.T) {
	body := `{"day":"2024-03-16","windows":[{"zone":"EST","start_hour":9,"end_hour":17,"days":"weekdays"}]}`
	rw := httptest.NewRecorder()
	newMux(t).ServeHTTP(rw, httptest.NewRequest(http.MethodPost, "/api/v1/slots/find", strings.NewReader(body)))
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	if !strings.Contains(rw.Body.String(), `"state":"exhausted"`) {
		t.Fatalf("expected exhausted state, got %s", rw.Body.String())
	}
}
