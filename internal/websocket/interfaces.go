package websocket

// HubInterface is what the Manager needs from a hub implementation.
type HubInterface interface {
	// BroadcastJSON sends a JSON payload to every connected client.
	BroadcastJSON(v interface{}) error

	// SendJSONToUser sends a JSON payload to one user.
	SendJSONToUser(userID string, v interface{}) error

	// SendToUser sends a raw message to one user.
	SendToUser(userID string, message []byte) bool

	// GetMetrics returns hub statistics.
	GetMetrics() map[string]interface{}

	// ClientCount returns the number of open connections.
	ClientCount() int
}
