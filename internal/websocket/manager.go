package websocket

import (
	"encoding/json"
	"fmt"
	"log"
)

// Event is the envelope of every websocket message.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Manager dispatches incoming client messages and pushes server events.
type Manager struct {
	hub            HubInterface
	messageHandler map[string]func(data json.RawMessage, client *Client) error
}

// NewManager creates a websocket manager on top of a hub.
func NewManager(hub HubInterface) *Manager {
	m := &Manager{
		hub:            hub,
		messageHandler: make(map[string]func(data json.RawMessage, client *Client) error),
	}
	m.RegisterHandler(CLIENT_PING, m.handlePing)
	return m
}

// RegisterHandler registers a handler for one incoming message type.
func (m *Manager) RegisterHandler(eventType string, handler func(data json.RawMessage, client *Client) error) {
	m.messageHandler[eventType] = handler
	log.Printf("[WebSocketManager] Registered handler for message type: %s", eventType)
}

// HandleMessage dispatches an incoming client message. A returned error
// closes the connection.
func (m *Manager) HandleMessage(message []byte, client *Client) error {
	var event Event
	if err := json.Unmarshal(message, &event); err != nil {
		log.Printf("[WebSocketManager] Failed to unmarshal message from %s: %v", client.UserID, err)
		m.SendErrorToClient(client, "invalid_message_format", "Invalid JSON format")
		return err
	}

	handler, ok := m.messageHandler[event.Type]
	if !ok {
		log.Printf("[WebSocketManager] No handler for message type %q from client %s", event.Type, client.UserID)
		m.SendErrorToClient(client, "unknown_message_type", fmt.Sprintf("Unknown message type: %s", event.Type))
		return nil
	}

	rawMessage, _ := json.Marshal(event.Data)
	if err := handler(rawMessage, client); err != nil {
		log.Printf("[WebSocketManager] Handler for %q failed for client %s: %v", event.Type, client.UserID, err)
		return err
	}
	return nil
}

func (m *Manager) handlePing(_ json.RawMessage, client *Client) error {
	return m.hub.SendJSONToUser(client.UserID, Event{Type: SERVER_PONG})
}

// SendErrorToClient sends a standardized error message. The connection
// stays open.
func (m *Manager) SendErrorToClient(client *Client, code string, message string) {
	errorEvent := Event{
		Type: SERVER_ERROR,
		Data: map[string]string{
			"code":    code,
			"message": message,
		},
	}
	if err := m.hub.SendJSONToUser(client.UserID, errorEvent); err != nil {
		log.Printf("[WebSocketManager] Failed to send error to client %s: %v", client.UserID, err)
	}
}

// BroadcastEvent sends an event to every connected client.
func (m *Manager) BroadcastEvent(eventType string, data interface{}) error {
	return m.hub.BroadcastJSON(Event{Type: eventType, Data: data})
}

// SendEventToUser sends an event to one user. Satisfies the notifier
// interfaces of the service layer.
func (m *Manager) SendEventToUser(userID string, eventType string, data interface{}) error {
	return m.hub.SendJSONToUser(userID, Event{Type: eventType, Data: data})
}

// GetMetrics returns the current websocket statistics.
func (m *Manager) GetMetrics() map[string]interface{} {
	return m.hub.GetMetrics()
}
