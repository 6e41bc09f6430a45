package websocket

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// Hub keeps the set of connected clients and routes messages to them.
// A user may hold several simultaneous connections (multiple tabs).
type Hub struct {
	mu sync.RWMutex

	// userID -> set of connections
	clients map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a hub. Call Run in a goroutine to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		done:       make(chan struct{}),
	}
}

// Run processes register and unregister requests until Close is called.
func (h *Hub) Run() {
	log.Printf("[WebSocketHub] Started")
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			h.closeAll()
			log.Printf("[WebSocketHub] Stopped")
			return
		}
	}
}

// Close stops the hub and disconnects every client.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	conns, ok := h.clients[client.UserID]
	if !ok {
		conns = make(map[*Client]struct{})
		h.clients[client.UserID] = conns
	}
	conns[client] = struct{}{}
	total := h.countLocked()
	h.mu.Unlock()

	client.registrationComplete <- struct{}{}
	log.Printf("[WebSocketHub] Client registered: user=%s conn=%s total=%d",
		client.UserID, client.ConnectionID, total)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if conns, ok := h.clients[client.UserID]; ok {
		if _, present := conns[client]; present {
			delete(conns, client)
			if len(conns) == 0 {
				delete(h.clients, client.UserID)
			}
			client.CloseSend()
		}
	}
	total := h.countLocked()
	h.mu.Unlock()

	log.Printf("[WebSocketHub] Client unregistered: user=%s conn=%s total=%d",
		client.UserID, client.ConnectionID, total)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.clients {
		for client := range conns {
			client.CloseSend()
		}
	}
	h.clients = make(map[string]map[*Client]struct{})
}

func (h *Hub) countLocked() int {
	total := 0
	for _, conns := range h.clients {
		total += len(conns)
	}
	return total
}

// SendToUser queues a message on every connection of the user. Returns
// true when at least one connection accepted it.
func (h *Hub) SendToUser(userID string, message []byte) bool {
	h.mu.RLock()
	conns := h.clients[userID]
	targets := make([]*Client, 0, len(conns))
	for client := range conns {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	delivered := false
	for _, client := range targets {
		if client.enqueue(message) {
			delivered = true
		}
	}
	return delivered
}

// SendJSONToUser marshals v and sends it to the user.
func (h *Hub) SendJSONToUser(userID string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message for user %s: %w", userID, err)
	}
	if !h.SendToUser(userID, data) {
		return fmt.Errorf("user %s has no active connections", userID)
	}
	return nil
}

// BroadcastJSON marshals v and sends it to every connected client.
func (h *Hub) BroadcastJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast: %w", err)
	}

	h.mu.RLock()
	targets := make([]*Client, 0)
	for _, conns := range h.clients {
		for client := range conns {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range targets {
		client.enqueue(data)
	}
	return nil
}

// ClientCount returns the number of open connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.countLocked()
}

// UserCount returns the number of distinct connected users.
func (h *Hub) UserCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// IsUserConnected reports whether the user has at least one connection.
func (h *Hub) IsUserConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// GetMetrics returns basic hub statistics.
func (h *Hub) GetMetrics() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return map[string]interface{}{
		"connection_count": h.countLocked(),
		"user_count":       len(h.clients),
	}
}
