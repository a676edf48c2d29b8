package sse

import (
	"sync"

	"github.com/alphinus/kewa-app-sub000/internal/domain/notification"
)

// Hub manages operator stream clients. It implements notification.Hub.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*notification.StreamClient
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*notification.StreamClient),
	}
}

func (h *Hub) Register(client *notification.StreamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ClientID] = client
}

func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[clientID]; ok {
		c.Close()
		delete(h.clients, clientID)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast delivers a message to every connected client. A client whose
// channel is full is skipped; delivery is best-effort.
func (h *Hub) Broadcast(msg *notification.StreamMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		trySend(c, msg)
	}
}

func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		c.Close()
		delete(h.clients, id)
	}
}

func trySend(c *notification.StreamClient, msg *notification.StreamMessage) bool {
	select {
	case c.MessageChan <- msg:
		return true
	default:
		return false
	}
}
