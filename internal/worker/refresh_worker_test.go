package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rentdash/internal/amqp"
)

type recordingInvalidator struct {
	mu      sync.Mutex
	reasons []string
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
}

func (r *recordingInvalidator) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reasons)
}

// fakeConsumer delivers queued messages, then fails once before blocking
type fakeConsumer struct {
	mu         sync.Mutex
	messages   []*amqp.DatasetRefreshMessage
	calls      int
	reconnects int
}

func (f *fakeConsumer) ConsumeDatasetRefresh(ctx context.Context, handler func(context.Context, *amqp.DatasetRefreshMessage) error) error {
	f.mu.Lock()
	f.calls++
	call := f.calls
	msgs := f.messages
	f.messages = nil
	f.mu.Unlock()

	for _, m := range msgs {
		if err := handler(ctx, m); err != nil {
			return err
		}
	}
	if call == 1 {
		return errors.New("message channel closed")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeConsumer) Reconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reconnects++
	return nil
}

func TestHandleRefreshMessageInvalidates(t *testing.T) {
	inv := &recordingInvalidator{}
	w := NewRefreshWorker(&fakeConsumer{}, inv)

	if err := w.HandleRefreshMessage(context.Background(), amqp.NewDatasetRefreshMessage("sqlite:test.db", 3)); err != nil {
		t.Fatalf("HandleRefreshMessage: %v", err)
	}
	if inv.count() != 1 || inv.reasons[0] != "refresh from sqlite:test.db" {
		t.Fatalf("unexpected invalidations %v", inv.reasons)
	}
}

func TestRunReconnectsAndStops(t *testing.T) {
	inv := &recordingInvalidator{}
	consumer := &fakeConsumer{messages: []*amqp.DatasetRefreshMessage{
		amqp.NewDatasetRefreshMessage("a", 1),
		amqp.NewDatasetRefreshMessage("b", 2),
	}}
	w := NewRefreshWorker(consumer, inv)
	w.retryBackoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for {
		consumer.mu.Lock()
		calls := consumer.calls
		consumer.mu.Unlock()
		if calls >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("worker did not resume consuming")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if inv.count() != 2 {
		t.Errorf("invalidations = %d, want 2", inv.count())
	}
	if consumer.reconnects != 1 {
		t.Errorf("reconnects = %d, want 1", consumer.reconnects)
	}
}
