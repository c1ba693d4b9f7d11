package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/md-rashed-zaman/meetingtime/libs/httpx"
	"github.com/md-rashed-zaman/meetingtime/libs/timerange"
	"github.com/md-rashed-zaman/meetingtime/services/scheduling-service/internal/planner"
	"github.com/md-rashed-zaman/meetingtime/services/scheduling-service/internal/zones"
)

type Handler struct {
	logger  *slog.Logger
	planner *planner.Planner
}

func New(logger *slog.Logger, p *planner.Planner) *Handler {
	return &Handler{logger: logger, planner: p}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/zones", h.ListZones)
	mux.HandleFunc("GET /api/v1/zones/convert", h.Convert)
	mux.HandleFunc("POST /api/v1/slots/find", h.FindSlot)
}

func (h *Handler) ListZones(w http.ResponseWriter, _ *http.Request) {
	type zone struct {
		Label         string `json:"label"`
		Offset        string `json:"offset"`
		OffsetMinutes int    `json:"offset_minutes"`
	}
	all := h.planner.Zones().All()
	out := make([]zone, 0, len(all))
	for _, z := range all {
		out = append(out, zone{
			Label:         z.Label,
			Offset:        zones.FormatOffset(z.Offset),
			OffsetMinutes: int(z.Offset / time.Minute),
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// Convert reads the wall clock in "at" (any offset suffix is ignored) as a time
// in zone "from" and returns it in UTC and in zone "to".
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from := strings.TrimSpace(q.Get("from"))
	to := strings.TrimSpace(q.Get("to"))
	if from == "" || to == "" {
		http.Error(w, "from and to are required", http.StatusBadRequest)
		return
	}
	at, err := timerange.ParseInstant(q.Get("at"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	table := h.planner.Zones()
	utc, err := table.ToUTC(at, from)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	converted, err := table.Convert(at, from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"from":      from,
		"to":        to,
		"utc":       utc.Format(time.RFC3339),
		"converted": converted.Format(time.RFC3339),
	})
}

func (h *Handler) FindSlot(w http.ResponseWriter, r *http.Request) {
	var req planner.Request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	plan, err := h.planner.Plan(r.Context(), req)
	if err != nil {
		if errors.Is(err, planner.ErrInvalidRequest) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("slot search failed", "err", err, "request_id", httpx.RequestIDFromContext(r.Context()))
		http.Error(w, "failed to search slots", http.StatusInternalServerError)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, plan)
}
