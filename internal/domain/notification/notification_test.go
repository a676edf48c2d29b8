package notification

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStreamMessage(t *testing.T) {
	data := json.RawMessage(`{"workOrderId":"abc"}`)
	msg := NewStreamMessage(EventWorkOrderViewed, data)

	require.NotNil(t, msg)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, EventWorkOrderViewed, msg.Event)
	assert.Equal(t, data, msg.Data)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestNewStreamClient(t *testing.T) {
	client := NewStreamClient("client-123")

	require.NotNil(t, client)
	assert.Equal(t, "client-123", client.ClientID)
	assert.False(t, client.ConnectedAt.IsZero())
	assert.NotNil(t, client.MessageChan)
}

func TestStreamClient_Close(t *testing.T) {
	client := NewStreamClient("client-123")

	client.Close()

	assert.Panics(t, func() {
		client.MessageChan <- &StreamMessage{}
	})
}
