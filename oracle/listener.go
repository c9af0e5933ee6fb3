package oracle

import (
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// FulfillmentMessage is the wire form of an inbound fulfillment.
type FulfillmentMessage struct {
	OracleID    string   `json:"oracle_id"`
	RequestID   string   `json:"request_id"`
	RandomWords []uint64 `json:"random_words"`
}

// FulfillmentSink receives verified fulfillments from the transport
type FulfillmentSink interface {
	Fulfill(ctx context.Context, oracleID, requestID string, randomWords []uint64) error
}

// subscriber is the part of the transport the listener needs
type subscriber interface {
	Subscribe(subject string, handler func([]byte) error) error
}

// FulfillmentListener routes fulfillment messages into the randomness router.
type FulfillmentListener struct {
	client subscriber
	sink   FulfillmentSink
}

// NewFulfillmentListener creates a listener feeding sink
func NewFulfillmentListener(client subscriber, sink FulfillmentSink) *FulfillmentListener {
	return &FulfillmentListener{client: client, sink: sink}
}

// Start subscribes to the fulfillment subject. Handlers run on the NATS
// delivery goroutine; errors are logged by the transport and the message is
// not redelivered.
func (l *FulfillmentListener) Start(ctx context.Context) error {
	return l.client.Subscribe(SubjectFulfillments, func(data []byte) error {
		return l.handleMessage(ctx, data)
	})
}

func (l *FulfillmentListener) handleMessage(ctx context.Context, data []byte) error {
	var msg FulfillmentMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("failed to unmarshal fulfillment: %w", err)
	}

	log.WithFields(log.Fields{
		"requestID": msg.RequestID,
		"oracleID":  msg.OracleID,
		"words":     len(msg.RandomWords),
	}).Info("Fulfillment received")

	if err := l.sink.Fulfill(ctx, msg.OracleID, msg.RequestID, msg.RandomWords); err != nil {
		return fmt.Errorf("fulfillment for %s rejected: %w", msg.RequestID, err)
	}
	return nil
}
