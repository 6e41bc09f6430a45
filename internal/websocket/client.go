package websocket

import (
	"bytes"
	"fmt"
	"log"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Allowed time to write a message to the peer.
	writeWait = 10 * time.Second

	// Allowed time to read the next pong from the peer.
	pongWait = 30 * time.Second

	// Ping period, must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512

	clientBufferSize = 128
)

var (
	newline = []byte{'\n'}
	space   = []byte{' '}
)

// Client sits between one websocket connection and the hub.
type Client struct {
	UserID string

	// ConnectionID distinguishes multiple connections of one user.
	ConnectionID string

	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	sendClosed atomic.Bool

	lastActivity time.Time

	registrationComplete chan struct{}
}

// NewClient wraps an upgraded connection for the given user.
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		UserID:               userID,
		ConnectionID:         uuid.New().String(),
		hub:                  hub,
		conn:                 conn,
		send:                 make(chan []byte, clientBufferSize),
		lastActivity:         time.Now(),
		registrationComplete: make(chan struct{}, 1),
	}
}

// StartPumps registers the client and starts the read and write loops.
func (c *Client) StartPumps(messageHandler func(message []byte, client *Client) error) {
	if c.UserID == "" {
		log.Printf("[WebSocket] Client has no UserID, dropping connection")
		c.conn.Close()
		return
	}

	c.hub.register <- c

	select {
	case <-c.registrationComplete:
	case <-time.After(5 * time.Second):
		log.Printf("[WebSocket] Timeout registering client %s", c.UserID)
		c.conn.Close()
		return
	}

	go c.writePump()
	go c.readPump(messageHandler)
}

// enqueue puts a message on the send channel without blocking. A full
// buffer drops the message, slow consumers must not stall the hub.
func (c *Client) enqueue(message []byte) bool {
	if c.sendClosed.Load() {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		log.Printf("[WebSocket] Send buffer full for user=%s conn=%s, message dropped",
			c.UserID, c.ConnectionID)
		return false
	}
}

// readPump reads messages from the connection and hands them to the handler.
func (c *Client) readPump(messageHandler func(message []byte, client *Client) error) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
		log.Printf("[WebSocket] Read pump stopped for user=%s conn=%s", c.UserID, c.ConnectionID)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.lastActivity = time.Now()
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("[WebSocket] Read error for user=%s conn=%s: %v", c.UserID, c.ConnectionID, err)
			}
			break
		}

		c.lastActivity = time.Now()

		if handlerErr := safeHandleMessage(message, c, messageHandler); handlerErr != nil {
			log.Printf("[WebSocket] Handler error for user=%s conn=%s: %v, closing connection",
				c.UserID, c.ConnectionID, handlerErr)
			break
		}
	}
}

// safeHandleMessage calls the handler behind a recover so a panicking
// handler kills one connection, not the process.
func safeHandleMessage(message []byte, client *Client, messageHandler func(message []byte, client *Client) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[WebSocket] PANIC in message handler for user=%s conn=%s: %v\n%s",
				client.UserID, client.ConnectionID, r, string(debug.Stack()))
			err = fmt.Errorf("panic recovered: %v", r)
		}
	}()

	message = bytes.TrimSpace(bytes.Replace(message, newline, space, -1))
	if messageHandler != nil {
		err = messageHandler(message, client)
	}
	return err
}

// writePump drains the send channel into the connection and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		log.Printf("[WebSocket] Write pump stopped for user=%s conn=%s", c.UserID, c.ConnectionID)
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if _, err := w.Write(message); err != nil {
				log.Printf("[WebSocket] Write error for user=%s conn=%s: %v", c.UserID, c.ConnectionID, err)
			}
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// CloseSend closes the send channel exactly once.
func (c *Client) CloseSend() bool {
	if c.sendClosed.CompareAndSwap(false, true) {
		close(c.send)
		return true
	}
	return false
}

// IsSendClosed reports whether the send channel is closed.
func (c *Client) IsSendClosed() bool {
	return c.sendClosed.Load()
}

// GetUserIDUint converts the string UserID to uint, 0 on failure.
func (c *Client) GetUserIDUint() uint {
	var userIDUint uint
	if _, err := fmt.Sscan(c.UserID, &userIDUint); err != nil {
		log.Printf("[WebSocket] Failed to parse UserID %q: %v", c.UserID, err)
		return 0
	}
	return userIDUint
}
