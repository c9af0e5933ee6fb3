package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"playvault/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// RequestMessage is the wire form of an outbound randomness request.
type RequestMessage struct {
	RequestID   string               `json:"request_id"`
	Request     models.OracleRequest `json:"request"`
	RequestedAt time.Time            `json:"requested_at"`
}

// publisher is the part of the transport the oracle needs
type publisher interface {
	Publish(subject string, data []byte) error
}

// NatsOracle forwards randomness requests over NATS. The request id is
// assigned locally so the caller can index it before any fulfillment exists.
type NatsOracle struct {
	client publisher
}

// NewNatsOracle creates the NATS-backed oracle
func NewNatsOracle(client publisher) *NatsOracle {
	return &NatsOracle{client: client}
}

// Request publishes one randomness request and returns its id
func (o *NatsOracle) Request(ctx context.Context, req models.OracleRequest) (string, error) {
	msg := RequestMessage{
		RequestID:   uuid.New().String(),
		Request:     req,
		RequestedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal oracle request: %w", err)
	}

	if err := o.client.Publish(SubjectRequests, data); err != nil {
		return "", fmt.Errorf("failed to publish oracle request: %w", err)
	}

	log.WithFields(log.Fields{
		"requestID": msg.RequestID,
		"subject":   SubjectRequests,
	}).Debug("Oracle request published")
	return msg.RequestID, nil
}
