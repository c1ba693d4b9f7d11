// Package proposals answers meeting slot requests arriving over Kafka with a
// proposed slot event.
package proposals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/md-rashed-zaman/meetingtime/libs/kafkax"
	"github.com/md-rashed-zaman/meetingtime/libs/metrics"
	"github.com/md-rashed-zaman/meetingtime/services/scheduling-service/internal/planner"
	"github.com/segmentio/kafka-go"
)

const (
	TopicRequested = "meeting.slot.requested.v1"
	TopicProposed  = "meeting.slot.proposed.v1"

	// StateRejected marks a proposal whose request failed validation.
	StateRejected = "rejected"
)

var ErrMissingMeetingID = errors.New("meeting_id is required")

// SlotRequested is the payload on TopicRequested. The planner request fields
// sit at the top level next to meeting_id.
type SlotRequested struct {
	MeetingID string `json:"meeting_id"`
	planner.Request
}

type SlotProposed struct {
	MeetingID   string      `json:"meeting_id"`
	RequestID   string      `json:"request_event_id,omitempty"`
	State       string      `json:"state"`
	Slot        *time.Time  `json:"slot,omitempty"`
	Checked     int         `json:"checked"`
	Reason      string      `json:"reason,omitempty"`
	ProposedAt  time.Time   `json:"proposed_at"`
	CommonHours []time.Time `json:"common_hours,omitempty"`
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Handler struct {
	logger  *slog.Logger
	planner *planner.Planner
	writer  MessageWriter
	topic   string
	now     func() time.Time
}

func NewHandler(logger *slog.Logger, p *planner.Planner, writer MessageWriter) *Handler {
	return &Handler{
		logger:  logger,
		planner: p,
		writer:  writer,
		topic:   TopicProposed,
		now:     time.Now,
	}
}

// Handle plans one request and publishes the outcome. Invalid requests still
// get a proposal in StateRejected so the requester is not left waiting;
// undecodable payloads are returned as errors.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	var req SlotRequested
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		metrics.ObserveProposal(metrics.ResultError)
		return fmt.Errorf("decode slot request: %w", err)
	}
	if req.MeetingID == "" {
		metrics.ObserveProposal(metrics.ResultError)
		return ErrMissingMeetingID
	}

	in := kafkax.ExtractEventMeta(msg)
	out := SlotProposed{
		MeetingID:  req.MeetingID,
		RequestID:  in.EventID,
		ProposedAt: h.now().UTC(),
	}

	plan, err := h.planner.Plan(ctx, req.Request)
	switch {
	case err == nil:
		out.State = plan.State
		out.Slot = plan.Slot
		out.Checked = plan.Checked
		out.CommonHours = plan.Common
	case errors.Is(err, planner.ErrInvalidRequest):
		out.State = StateRejected
		out.Reason = err.Error()
	default:
		metrics.ObserveProposal(metrics.ResultError)
		return err
	}

	if err := h.publish(ctx, out); err != nil {
		metrics.ObserveProposal(metrics.ResultError)
		return err
	}
	metrics.ObserveProposal(metrics.ResultSuccess)
	h.logger.Info("slot proposal published",
		"meeting_id", out.MeetingID,
		"state", out.State,
		"request_event_id", in.EventID,
	)
	return nil
}

func (h *Handler) publish(ctx context.Context, out SlotProposed) error {
	payload, err := json.Marshal(out)
	if err != nil {
		return err
	}
	msg, _ := kafkax.NewMessage(h.topic, h.topic, out.MeetingID, payload)
	msg.Headers = kafkax.InjectTraceHeaders(ctx, msg.Headers)
	if err := h.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", h.topic, err)
	}
	return nil
}
