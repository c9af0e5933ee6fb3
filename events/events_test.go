package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransactionalBusFlushDelivers(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan BetSettledEvent, 1)
	var wg sync.WaitGroup
	wg.Add(1)

	mainBus.Subscribe(EventTypeBetSettled, func(ctx context.Context, event Event) {
		defer wg.Done()
		if settled, ok := event.(BetSettledEvent); ok {
			select {
			case eventReceived <- settled:
			case <-time.After(1 * time.Second):
				t.Error("Timeout sending event to channel")
			}
		} else {
			t.Errorf("Expected BetSettledEvent, got %T", event)
		}
	})

	testEvent := BetSettledEvent{
		BetID:     7,
		Player:    "alice",
		RequestID: "req-1",
		Rolled:    3,
		Won:       true,
		Payout:    5880,
	}

	transactionalBus.Publish(testEvent)

	err := transactionalBus.Flush(context.Background())
	assert.NoError(t, err)

	wg.Wait()

	select {
	case received := <-eventReceived:
		assert.Equal(t, testEvent, received)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

func TestTransactionalBusDiscard(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	delivered := make(chan Event, 1)
	mainBus.Subscribe(EventTypePaidOut, func(ctx context.Context, event Event) {
		delivered <- event
	})

	transactionalBus.Publish(PaidOutEvent{
		CallerID:  "betting-game",
		Recipient: "alice",
		Amount:    5880,
	})

	// discard simulates a rolled-back transaction
	transactionalBus.Discard()

	err := transactionalBus.Flush(context.Background())
	assert.NoError(t, err)

	select {
	case <-delivered:
		t.Fatal("Discarded event must not be delivered")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestBusDeliversOnlyMatchingType(t *testing.T) {
	bus := NewBus()

	requested := make(chan Event, 1)
	bus.Subscribe(EventTypeRandomnessRequested, func(ctx context.Context, event Event) {
		requested <- event
	})

	bus.Emit(context.Background(), RoundStartedEvent{RoundID: 5})

	select {
	case ev := <-requested:
		t.Fatalf("Handler received unrelated event %T", ev)
	case <-time.After(200 * time.Millisecond):
	}

	bus.Emit(context.Background(), RandomnessRequestedEvent{RequestID: "req-1", Consumer: "betting-game"})

	select {
	case ev := <-requested:
		assert.Equal(t, EventTypeRandomnessRequested, ev.Type())
	case <-time.After(2 * time.Second):
		t.Fatal("Handler did not receive its event")
	}
}

func TestBusHandlerPanicDoesNotPropagate(t *testing.T) {
	bus := NewBus()

	done := make(chan struct{})
	bus.Subscribe(EventTypeRoundStarted, func(ctx context.Context, event Event) {
		panic("handler bug")
	})
	bus.Subscribe(EventTypeRoundStarted, func(ctx context.Context, event Event) {
		close(done)
	})

	bus.Emit(context.Background(), RoundStartedEvent{RoundID: 5})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Second handler never ran")
	}
}
