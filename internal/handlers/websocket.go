package handlers

import (
  "context"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/gorilla/websocket"

  "github.com/r7ala/r7ala-backend/internal/logger"
  "github.com/r7ala/r7ala-backend/internal/requestdata"
  "github.com/r7ala/r7ala-backend/internal/socket"
)

var upgrader = websocket.Upgrader{
  CheckOrigin: func(r *http.Request) bool {
    return true
  },
}

// WsHandler upgrades the connection and enrolls it into the authenticated
// user's group. Every socket of the same user joins the same group, so
// pushes reach all devices/tabs at once.
func WsHandler(hub *socket.Hub, log *logger.Logger) gin.HandlerFunc {
  return func(c *gin.Context) {
    rd := requestdata.GetRequestData(c.Request.Context())
    if rd == nil || rd.UserID == 0 {
      c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
      return
    }
    conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
    if err != nil {
      log.Warn("Failed to upgrade to websocket", "error", err)
      return
    }

    // Own context: the socket outlives the HTTP request.
    ctx, cancel := context.WithCancel(context.Background())
    client := socket.NewClient(conn, hub, cancel, log)
    hub.Subscribe(client, []string{socket.UserChannel(rd.UserID)})

    go client.Run(ctx)
  }
}
