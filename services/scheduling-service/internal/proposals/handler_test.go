package proposals

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/md-rashed-zaman/meetingtime/libs/kafkax"
	"github.com/md-rashed-zaman/meetingtime/services/scheduling-service/internal/planner"
	"github.com/md-rashed-zaman/meetingtime/services/scheduling-service/internal/zones"
	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func newHandler(t *testing.T, w MessageWriter) *Handler {
	t.Helper()
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), planner.New(zones.Standard()), w)
	h.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return h
}

func requestMessage(t *testing.T, body string) kafka.Message {
	t.Helper()
	msg, _ := kafkax.NewMessage(TopicRequested, TopicRequested, "m-1", []byte(body))
	return msg
}

func decodeProposal(t *testing.T, msg kafka.Message) SlotProposed {
	t.Helper()
	var out SlotProposed
	if err := json.Unmarshal(msg.Value, &out); err != nil {
		t.Fatalf("decode proposal: %v", err)
	}
	return out
}

func TestHandle_PublishesFoundSlot(t *testing.T) {
	w := &fakeWriter{}
	h := newHandler(t, w)
	in := requestMessage(t, `{"meeting_id":"m-1","day":"2024-03-15","windows":[
		{"zone":"EST","start_hour":9,"end_hour":17,"days":"weekdays"},
		{"zone":"CET","start_hour":9,"end_hour":17,"days":"weekdays"}]}`)

	if err := h.Handle(context.Background(), in); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(w.msgs))
	}
	msg := w.msgs[0]
	if msg.Topic != TopicProposed || string(msg.Key) != "m-1" {
		t.Fatalf("unexpected topic/key %s/%s", msg.Topic, msg.Key)
	}
	if kafkax.HeaderValue(msg.Headers, "event_type") != TopicProposed || kafkax.HeaderValue(msg.Headers, "event_id") == "" {
		t.Fatalf("expected event headers, got %v", msg.Headers)
	}

	out := decodeProposal(t, msg)
	want := time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC)
	if out.State != "found" || out.Slot == nil || !out.Slot.Equal(want) {
		t.Fatalf("expected found at %s, got %+v", want, out)
	}
	if out.RequestID != kafkax.HeaderValue(in.Headers, "event_id") {
		t.Fatalf("expected request event id to be echoed, got %q", out.RequestID)
	}
}

func TestHandle_InvalidRequestIsRejectedNotDropped(t *testing.T) {
	w := &fakeWriter{}
	h := newHandler(t, w)
	in := requestMessage(t, `{"meeting_id":"m-2","day":"2024-03-15","windows":[{"zone":"MARS","start_hour":9,"end_hour":17}]}`)

	if err := h.Handle(context.Background(), in); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	out := decodeProposal(t, w.msgs[0])
	if out.State != StateRejected || out.Reason == "" || out.Slot != nil {
		t.Fatalf("expected rejected proposal with reason, got %+v", out)
	}
}

func TestHandle_Errors(t *testing.T) {
	h := newHandler(t, &fakeWriter{})
	if err := h.Handle(context.Background(), requestMessage(t, `{`)); err == nil {
		t.Fatal("expected decode error")
	}
	if err := h.Handle(context.Background(), requestMessage(t, `{"day":"2024-03-15"}`)); !errors.Is(err, ErrMissingMeetingID) {
		t.Fatalf("expected ErrMissingMeetingID, got %v", err)
	}

	boom := errors.New("broker down")
	h = newHandler(t, &fakeWriter{err: boom})
	err := h.Handle(context.Background(), requestMessage(t, `{"meeting_id":"m-3","day":"2024-03-15","windows":[{"zone":"UTC","start_hour":9,"end_hour":17}]}`))
	if !errors.Is(err, boom) {
		t.Fatalf("expected writer error, got %v", err)
	}
}
