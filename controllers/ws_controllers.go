package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/qrbell/qrbell/push"
	"github.com/qrbell/qrbell/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StaffSocketHandler -> GET /ws/staff?restaurant=
// Staff devices hold this socket open to receive alert notifications.
func StaffSocketHandler(hub *push.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		restaurantID := c.Query("restaurant")

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		clientID := hub.Register(ws, restaurantID)
		utils.InfoLogger.Printf("Staff device %s connected (restaurant=%s)", clientID, restaurantID)

		// Read pump: the hub writes, the client only pings. A read error
		// means the device went away.
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.Unregister(ws)
		utils.InfoLogger.Printf("Staff device %s disconnected", clientID)
	}
}
