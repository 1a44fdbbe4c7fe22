package push

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/qrbell/qrbell/utils"
)

// Hub holds the staff device connections and fans payloads out to them.
// Clients are scoped to one restaurant; a client registered with an empty
// restaurant id receives every payload (monitoring consoles).
type Hub struct {
	clients map[*websocket.Conn]client
	mu      sync.Mutex
}

type client struct {
	ID           string
	RestaurantID string
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]client)}
}

// Register adds a connection and returns its assigned client id.
func (h *Hub) Register(conn *websocket.Conn, restaurantID string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := uuid.NewString()
	h.clients[conn] = client{ID: id, RestaurantID: restaurantID}
	return id
}

// Unregister removes and closes a connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

// ClientCount reports the number of connected devices for a restaurant.
func (h *Hub) ClientCount(restaurantID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, cl := range h.clients {
		if cl.RestaurantID == restaurantID || cl.RestaurantID == "" {
			n++
		}
	}
	return n
}

// Broadcast sends data to every device watching restaurantID. A failed
// write is logged and skipped; the read pump notices the dead connection
// and unregisters it.
func (h *Hub) Broadcast(restaurantID string, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, cl := range h.clients {
		if cl.RestaurantID != restaurantID && cl.RestaurantID != "" {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("push: write to client %s failed: %v", cl.ID, err)
		}
	}
}
