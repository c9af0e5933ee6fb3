package oracle

import (
	"context"
	"encoding/json"
	"testing"

	"playvault/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) Publish(subject string, data []byte) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

func (m *mockTransport) Subscribe(subject string, handler func([]byte) error) error {
	args := m.Called(subject, handler)
	return args.Error(0)
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Fulfill(ctx context.Context, oracleID, requestID string, randomWords []uint64) error {
	args := m.Called(ctx, oracleID, requestID, randomWords)
	return args.Error(0)
}

func TestNatsOracle_Request(t *testing.T) {
	transport := new(mockTransport)
	o := NewNatsOracle(transport)

	req := models.OracleRequest{
		KeyID:         "key-hash",
		Confirmations: 3,
		WordCount:     1,
	}

	var captured RequestMessage
	transport.On("Publish", SubjectRequests, mock.MatchedBy(func(data []byte) bool {
		return json.Unmarshal(data, &captured) == nil
	})).Return(nil)

	requestID, err := o.Request(context.Background(), req)

	assert.NoError(t, err)
	assert.Equal(t, requestID, captured.RequestID)
	assert.Equal(t, req, captured.Request)

	// request ids are proper UUIDs
	_, err = uuid.Parse(requestID)
	assert.NoError(t, err)

	transport.AssertExpectations(t)
}

func TestFulfillmentListener_RoutesToSink(t *testing.T) {
	ctx := context.Background()
	sink := new(mockSink)
	listener := NewFulfillmentListener(nil, sink)

	msg := FulfillmentMessage{
		OracleID:    "oracle-1",
		RequestID:   "req-42",
		RandomWords: []uint64{99},
	}
	data, err := json.Marshal(msg)
	assert.NoError(t, err)

	sink.On("Fulfill", ctx, "oracle-1", "req-42", []uint64{99}).Return(nil)

	err = listener.handleMessage(ctx, data)
	assert.NoError(t, err)

	sink.AssertExpectations(t)
}

func TestFulfillmentListener_MalformedMessage(t *testing.T) {
	sink := new(mockSink)
	listener := NewFulfillmentListener(nil, sink)

	err := listener.handleMessage(context.Background(), []byte("not json"))
	assert.Error(t, err)
	sink.AssertNotCalled(t, "Fulfill", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
