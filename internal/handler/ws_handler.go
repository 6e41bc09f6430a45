package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/yourusername/elearn-api/internal/websocket"
	"github.com/yourusername/elearn-api/pkg/auth"
)

// WSHandler upgrades websocket connections for attempt and
// notification events.
type WSHandler struct {
	wsHub      *websocket.Hub
	wsManager  *websocket.Manager
	jwtService *auth.JWTService
}

// NewWSHandler creates a new websocket handler.
func NewWSHandler(wsHub *websocket.Hub, wsManager *websocket.Manager, jwtService *auth.JWTService) *WSHandler {
	return &WSHandler{
		wsHub:      wsHub,
		wsManager:  wsManager,
		jwtService: jwtService,
	}
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// An empty Origin means a non-browser client (mobile app,
		// curl). Those are allowed.
		if origin == "" {
			return true
		}

		// Keep this list in sync with the CORS config in main.go.
		allowedOrigins := []string{
			"http://localhost:5173",
			"http://localhost:3000",
			"http://localhost:8000",
		}

		for _, allowed := range allowedOrigins {
			if origin == allowed {
				return true
			}
		}

		log.Printf("[WSHandler] Rejected unauthorized origin: %s", origin)
		return false
	},
	EnableCompression: true,
}

// HandleConnection handles GET /ws. Authentication uses a short-lived
// single-purpose ticket passed as ?ticket=, never the session token.
func (h *WSHandler) HandleConnection(c *gin.Context) {
	ticket := c.Query("ticket")
	if ticket == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing authentication ticket parameter"})
		return
	}

	claims, err := h.jwtService.ParseWSTicket(c.Request.Context(), ticket)
	if err != nil {
		log.Printf("[WSHandler] Invalid or expired ticket: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired ticket"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		log.Printf("[WSHandler] Upgrade failed: %v", err)
		return
	}

	client := websocket.NewClient(h.wsHub, conn, strconv.FormatUint(uint64(claims.UserID), 10))
	client.StartPumps(h.wsManager.HandleMessage)

	log.Printf("[WSHandler] Connection established for user %d (connection %s)",
		claims.UserID, client.ConnectionID)
}
