package consumer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

// sliceReader hands out queued messages and then blocks until ctx ends.
type sliceReader struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	fail   int
	closed bool
}

func (r *sliceReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if r.fail > 0 {
		r.fail--
		r.mu.Unlock()
		return kafka.Message{}, errors.New("transient")
	}
	if len(r.msgs) > 0 {
		msg := r.msgs[0]
		r.msgs = r.msgs[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *sliceReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

type memInbox struct {
	seen map[string]bool
}

func (m *memInbox) Record(_ context.Context, eventID, _ string) (bool, error) {
	if m.seen[eventID] {
		return false, nil
	}
	m.seen[eventID] = true
	return true, nil
}

func message(id string) kafka.Message {
	return kafka.Message{
		Topic:   "meeting.slot.requested.v1",
		Headers: []kafka.Header{{Key: "event_id", Value: []byte(id)}},
	}
}

func runUntil(t *testing.T, c *Consumer, done <-chan struct{}) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(finished)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for handler")
	}
	cancel()
	<-finished
}

func TestConsumer_SkipsDuplicates(t *testing.T) {
	reader := &sliceReader{msgs: []kafka.Message{message("a"), message("a"), message("b")}}
	var handled []string
	done := make(chan struct{})
	handler := func(_ context.Context, msg kafka.Message) error {
		handled = append(handled, string(msg.Headers[0].Value))
		if len(handled) == 2 {
			close(done)
		}
		return nil
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewWithReader(logger, reader, &memInbox{seen: map[string]bool{}}, handler)

	runUntil(t, c, done)

	if len(handled) != 2 || handled[0] != "a" || handled[1] != "b" {
		t.Fatalf("expected [a b], got %v", handled)
	}
	if !reader.closed {
		t.Fatal("expected reader to be closed on shutdown")
	}
}

func TestConsumer_RetriesReadErrorsAndSurvivesHandlerErrors(t *testing.T) {
	reader := &sliceReader{fail: 2, msgs: []kafka.Message{message("x"), message("y")}}
	calls := 0
	done := make(chan struct{})
	handler := func(context.Context, kafka.Message) error {
		calls++
		if calls == 2 {
			close(done)
		}
		return errors.New("bad payload")
	}
	c := NewWithReader(slog.New(slog.NewTextHandler(io.Discard, nil)), reader, nil, handler)
	c.retryDelay = time.Millisecond

	runUntil(t, c, done)

	if calls != 2 {
		t.Fatalf("expected both messages handled, got %d", calls)
	}
}

func TestConsumer_HandlerPanicDoesNotStopLoop(t *testing.T) {
	reader := &sliceReader{msgs: []kafka.Message{message("p"), message("q")}}
	var handled []string
	done := make(chan struct{})
	handler := func(_ context.Context, msg kafka.Message) error {
		id := string(msg.Headers[0].Value)
		if id == "p" {
			panic("bad input")
		}
		handled = append(handled, id)
		close(done)
		return nil
	}
	c := NewWithReader(slog.New(slog.NewTextHandler(io.Discard, nil)), reader, nil, handler)

	runUntil(t, c, done)

	if len(handled) != 1 || handled[0] != "q" {
		t.Fatalf("expected the message after the panic to be handled, got %v", handled)
	}
}
