package sse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphinus/kewa-app-sub000/internal/domain/notification"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	c1 := notification.NewStreamClient("c1")
	c2 := notification.NewStreamClient("c2")
	hub.Register(c1)
	hub.Register(c2)
	assert.Equal(t, 2, hub.ClientCount())

	msg := notification.NewStreamMessage(notification.EventWorkOrderViewed, json.RawMessage(`{}`))
	hub.Broadcast(msg)

	for _, c := range []*notification.StreamClient{c1, c2} {
		select {
		case got := <-c.MessageChan:
			assert.Equal(t, msg.ID, got.ID)
		default:
			t.Fatalf("client %s did not receive the broadcast", c.ClientID)
		}
	}
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	c := notification.NewStreamClient("c1")
	hub.Register(c)
	hub.Unregister("c1")
	assert.Equal(t, 0, hub.ClientCount())

	// Unregistering twice must not panic.
	hub.Unregister("c1")
}

func TestHubSkipsFullClients(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	c := notification.NewStreamClient("c1")
	hub.Register(c)

	msg := notification.NewStreamMessage(notification.EventWorkOrderProgressed, json.RawMessage(`{}`))
	for i := 0; i < cap(c.MessageChan)+10; i++ {
		hub.Broadcast(msg)
	}

	// Channel holds at most its capacity; the rest were dropped, not blocked.
	require.Equal(t, cap(c.MessageChan), len(c.MessageChan))
}
