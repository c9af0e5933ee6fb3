package events

import (
	"context"
	"sync"

	"playvault/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeDepositReceived     EventType = "deposit_received"
	EventTypePaidOut             EventType = "paid_out"
	EventTypeBetPlaced           EventType = "bet_placed"
	EventTypeBetSettled          EventType = "bet_settled"
	EventTypeRandomnessRequested EventType = "randomness_requested"
	EventTypeRoundEntered        EventType = "round_entered"
	EventTypeWinnerPicked        EventType = "winner_picked"
	EventTypeRoundStarted        EventType = "round_started"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// DepositReceivedEvent represents value arriving at the vault
type DepositReceivedEvent struct {
	Depositor  string
	Amount     int64
	NewBalance int64
}

func (e DepositReceivedEvent) Type() EventType {
	return EventTypeDepositReceived
}

// PaidOutEvent represents a successful vault payout
type PaidOutEvent struct {
	CallerID  string
	Recipient string
	Amount    int64
}

func (e PaidOutEvent) Type() EventType {
	return EventTypePaidOut
}

// BetPlacedEvent represents a dice bet entering the system
type BetPlacedEvent struct {
	BetID     int64
	Player    string
	Amount    int64
	Choice    int
	RequestID string
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// BetSettledEvent is emitted for wins and losses alike
type BetSettledEvent struct {
	BetID     int64
	Player    string
	RequestID string
	Rolled    int
	Won       bool
	Payout    int64
}

func (e BetSettledEvent) Type() EventType {
	return EventTypeBetSettled
}

// RandomnessRequestedEvent represents a request forwarded to the oracle
type RandomnessRequestedEvent struct {
	RequestID string
	Consumer  string
	Request   models.OracleRequest
}

func (e RandomnessRequestedEvent) Type() EventType {
	return EventTypeRandomnessRequested
}

// RoundEnteredEvent represents a paid raffle entry
type RoundEnteredEvent struct {
	RoundID int64
	Player  string
	Amount  int64
	Pot     int64
}

func (e RoundEnteredEvent) Type() EventType {
	return EventTypeRoundEntered
}

// WinnerPickedEvent represents a settled raffle round
type WinnerPickedEvent struct {
	RoundID      int64
	Winner       string
	WinningIndex int
	Pot          int64
	RequestID    string
}

func (e WinnerPickedEvent) Type() EventType {
	return EventTypeWinnerPicked
}

// RoundStartedEvent represents a fresh round opening for entries
type RoundStartedEvent struct {
	RoundID int64
}

func (e RoundStartedEvent) Type() EventType {
	return EventTypeRoundStarted
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make([]Handler, 0)
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// A transactional event bus for holding pending events coupled to the Unit of Work.
// Flushes to the underlying event bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// called after successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Use background context for event emission to avoid issues with
	// transaction context expiration
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// called after db rollback or to clear state.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
