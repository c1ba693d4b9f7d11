package kafkax

import (
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestNewMessageRoundTripsMeta(t *testing.T) {
	msg, meta := NewMessage("meeting.slot.proposed.v1", "meeting.slot.proposed", "", []byte(`{}`))
	if meta.EventID == "" {
		t.Fatal("expected generated event id")
	}
	if string(msg.Key) != meta.EventID {
		t.Fatalf("expected key %q, got %q", meta.EventID, msg.Key)
	}
	got := ExtractEventMeta(msg)
	if got != meta {
		t.Fatalf("expected %+v, got %+v", meta, got)
	}
}

func TestExtractEventMeta_Fallbacks(t *testing.T) {
	msg := kafka.Message{Topic: "meeting.slot.requested.v1", Key: []byte("req-1")}
	meta := ExtractEventMeta(msg)
	if meta.EventID != "req-1" || meta.EventType != "meeting.slot.requested.v1" {
		t.Fatalf("unexpected meta %+v", meta)
	}
}

func TestSplitBrokers(t *testing.T) {
	got := SplitBrokers(" kafka-1:9092, ,kafka-2:9092 ")
	if len(got) != 2 || got[0] != "kafka-1:9092" || got[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers %v", got)
	}
}

func TestTraceHeaderCarrierOverwrites(t *testing.T) {
	c := &kafkaHeaderCarrier{headers: []kafka.Header{{Key: "traceparent", Value: []byte("old")}}}
	c.Set("traceparent", "new")
	if c.Get("traceparent") != "new" || len(c.headers) != 1 {
		t.Fatalf("expected overwrite in place, got %+v", c.headers)
	}
}

func TestTraceHeaderCarrierAppends(t *testing.T) {
	c := &kafkaHeaderCarrier{headers: []kafka.Header{{Key: "event_id", Value: []byte("e1")}}}
	c.Set("traceparent", "00-abc-def-01")
	if len(c.headers) != 2 || c.Get("traceparent") != "00-abc-def-01" {
		t.Fatalf("expected appended header, got %+v", c.headers)
	}
	keys := c.Keys()
	if len(keys) != 2 || keys[0] != "event_id" {
		t.Fatalf("unexpected keys %v", keys)
	}
}
