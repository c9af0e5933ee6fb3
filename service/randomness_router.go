package service

import (
	"context"
	"fmt"
	"sync"

	"playvault/events"
	"playvault/models"

	log "github.com/sirupsen/logrus"
)

// RouterConfig carries the router's deployment-time constants.
type RouterConfig struct {
	// OracleID is the only identity accepted on the fulfillment path
	OracleID string

	// DispatchKey is the capability key presented to consumers' Settle
	DispatchKey string

	// Request is the fixed record forwarded with every oracle request
	Request models.OracleRequest
}

type randomnessRouter struct {
	uowFactory UnitOfWorkFactory
	oracle     Oracle
	cfg        RouterConfig

	mu        sync.RWMutex
	consumers map[string]RandomnessConsumer
}

// NewRandomnessRouter creates the router. The router holds no game state of
// its own; beyond the pending-request lookup, all idempotence and state
// validation belongs to the registered consumers.
func NewRandomnessRouter(uowFactory UnitOfWorkFactory, oracle Oracle, cfg RouterConfig) RandomnessRouter {
	return &randomnessRouter{
		uowFactory: uowFactory,
		oracle:     oracle,
		cfg:        cfg,
		consumers:  make(map[string]RandomnessConsumer),
	}
}

// RegisterConsumer registers a game's settlement entry point
func (r *randomnessRouter) RegisterConsumer(consumer RandomnessConsumer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consumers[consumer.Name()] = consumer
}

// Request forwards a randomness request to the oracle and records the
// correlation entry in the caller's transaction. The request id is returned
// synchronously so the caller can index it locally.
func (r *randomnessRouter) Request(ctx context.Context, uow UnitOfWork, consumer string) (string, error) {
	requestID, err := r.oracle.Request(ctx, r.cfg.Request)
	if err != nil {
		return "", fmt.Errorf("oracle request failed: %w", err)
	}

	req := &models.RandomnessRequest{
		RequestID: requestID,
		Consumer:  consumer,
	}
	if err := uow.RandomnessRequestRepository().Create(ctx, req); err != nil {
		return "", err
	}

	uow.EventBus().Publish(events.RandomnessRequestedEvent{
		RequestID: requestID,
		Consumer:  consumer,
		Request:   r.cfg.Request,
	})

	log.WithFields(log.Fields{
		"requestID": requestID,
		"consumer":  consumer,
	}).Info("Randomness requested")
	return requestID, nil
}

// Fulfill routes one delivered random word to the requesting consumer. The
// dispatch is fire-and-forget: an error from the consumer propagates to the
// oracle transport and the fulfillment is never redelivered.
func (r *randomnessRouter) Fulfill(ctx context.Context, oracleID, requestID string, randomWords []uint64) error {
	if oracleID != r.cfg.OracleID {
		return models.ErrNotOracle
	}
	if len(randomWords) == 0 {
		return fmt.Errorf("fulfillment for %s carried no random words", requestID)
	}

	// Resolve the consumer. The pending row itself is consumed inside the
	// consumer's settlement transaction, not here.
	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	req, err := uow.RandomnessRequestRepository().Get(ctx, requestID)
	uow.Rollback()
	if err != nil {
		return err
	}
	if req == nil {
		return fmt.Errorf("%w: %s", models.ErrUnknownRequest, requestID)
	}

	r.mu.RLock()
	consumer, ok := r.consumers[req.Consumer]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no consumer registered for %q", req.Consumer)
	}

	log.WithFields(log.Fields{
		"requestID": requestID,
		"consumer":  req.Consumer,
	}).Info("Routing fulfillment to consumer")
	return consumer.Settle(ctx, r.cfg.DispatchKey, requestID, randomWords[0])
}
