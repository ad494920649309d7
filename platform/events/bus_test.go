package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

type testEvent struct {
	BaseEvent
}

func (testEvent) EventName() string { return "test.happened" }

func TestInMemoryBus_PublishSyncJoinsErrors(t *testing.T) {
	bus := NewInMemoryBus(nil)
	var calls atomic.Int32

	bus.Subscribe("test.happened", HandlerFunc(func(context.Context, Event) error {
		calls.Add(1)
		return errors.New("first")
	}))
	bus.Subscribe("test.happened", HandlerFunc(func(context.Context, Event) error {
		calls.Add(1)
		panic("boom")
	}))
	bus.Subscribe("other", HandlerFunc(func(context.Context, Event) error {
		t.Fatalf("unrelated handler must not run")
		return nil
	}))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent()})
	if err == nil {
		t.Fatalf("expected joined error")
	}
	if calls.Load() != 2 {
		t.Fatalf("expected both handlers to run, got %d", calls.Load())
	}
}

func TestInMemoryBus_PublishRunsAsync(t *testing.T) {
	bus := NewInMemoryBus(nil)
	var calls atomic.Int32
	for range 3 {
		bus.Subscribe("test.happened", HandlerFunc(func(ctx context.Context, _ Event) error {
			if ctx.Err() != nil {
				t.Errorf("expected detached context")
			}
			calls.Add(1)
			return nil
		}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, testEvent{BaseEvent: NewBaseEvent()})
	cancel()
	bus.Wait()

	if calls.Load() != 3 {
		t.Fatalf("expected 3 handler calls, got %d", calls.Load())
	}
}
