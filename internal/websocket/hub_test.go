package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func registerTestClient(t *testing.T, hub *Hub, userID string) *Client {
	t.Helper()
	client := NewClient(hub, nil, userID)
	hub.register <- client
	select {
	case <-client.registrationComplete:
	case <-time.After(time.Second):
		t.Fatalf("client %s was not registered in time", userID)
	}
	return client
}

func TestHub_SendToUser(t *testing.T) {
	// Arrange
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	client := registerTestClient(t, hub, "42")
	other := registerTestClient(t, hub, "43")

	// Act
	delivered := hub.SendToUser("42", []byte(`{"type":"test"}`))

	// Assert
	assert.True(t, delivered)
	select {
	case msg := <-client.send:
		assert.JSONEq(t, `{"type":"test"}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("expected a message for user 42")
	}
	assert.Empty(t, other.send)
}

func TestHub_SendToUser_NoConnection(t *testing.T) {
	// Arrange
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	// Act & Assert
	assert.False(t, hub.SendToUser("99", []byte("hello")))
	assert.Error(t, hub.SendJSONToUser("99", Event{Type: "test"}))
}

func TestHub_MultipleConnectionsPerUser(t *testing.T) {
	// Arrange
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	first := registerTestClient(t, hub, "42")
	second := registerTestClient(t, hub, "42")

	assert.Equal(t, 2, hub.ClientCount())
	assert.Equal(t, 1, hub.UserCount())

	// Act
	hub.SendToUser("42", []byte("ping"))

	// Assert: both connections receive the message.
	assert.Len(t, first.send, 1)
	assert.Len(t, second.send, 1)
}

func TestHub_Unregister(t *testing.T) {
	// Arrange
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	client := registerTestClient(t, hub, "42")

	// Act
	hub.unregister <- client

	// Assert
	assert.Eventually(t, func() bool {
		return !hub.IsUserConnected("42")
	}, time.Second, 10*time.Millisecond)
	assert.True(t, client.IsSendClosed())
}

func TestHub_BroadcastJSON(t *testing.T) {
	// Arrange
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	a := registerTestClient(t, hub, "1")
	b := registerTestClient(t, hub, "2")

	// Act
	err := hub.BroadcastJSON(Event{Type: "announcement", Data: "maintenance"})

	// Assert
	assert.NoError(t, err)
	assert.Len(t, a.send, 1)
	assert.Len(t, b.send, 1)
}
