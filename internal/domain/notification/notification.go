package notification

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Stream event names pushed to connected operator clients.
const (
	EventWorkOrderViewed     = "work_order_viewed"
	EventWorkOrderAccepted   = "work_order_accepted"
	EventWorkOrderRejected   = "work_order_rejected"
	EventCounterSubmitted    = "counter_offer_submitted"
	EventCounterDecided      = "counter_offer_decided"
	EventWorkOrderProgressed = "work_order_progressed"
)

// StreamMessage is a message delivered over the operator event stream.
type StreamMessage struct {
	ID        string          `json:"id"`
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewStreamMessage creates a stream message.
func NewStreamMessage(event string, data json.RawMessage) *StreamMessage {
	return &StreamMessage{
		ID:        uuid.New().String(),
		Event:     event,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// StreamClient represents an active operator stream connection.
type StreamClient struct {
	ClientID    string
	ConnectedAt time.Time
	MessageChan chan *StreamMessage
}

// NewStreamClient creates a stream client.
func NewStreamClient(clientID string) *StreamClient {
	return &StreamClient{
		ClientID:    clientID,
		ConnectedAt: time.Now().UTC(),
		MessageChan: make(chan *StreamMessage, 100),
	}
}

// Close closes the client's message channel.
func (c *StreamClient) Close() {
	close(c.MessageChan)
}

// Hub broadcasts stream messages to connected operator clients. Delivery is
// best-effort and must never block a mutation.
type Hub interface {
	Broadcast(msg *StreamMessage)
}
