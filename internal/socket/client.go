package socket

import (
  "context"
  "encoding/json"
  "sync"
  "time"

  "github.com/google/uuid"
  "github.com/gorilla/websocket"

  "github.com/r7ala/r7ala-backend/internal/logger"
)

//---------------------------------------------------------------------
// Tunables
//---------------------------------------------------------------------
const (
  OutboundChanBuffer = 256

  writeWait  = 10 * time.Second
  pongWait   = 60 * time.Second
  pingPeriod = (pongWait * 9) / 10
)

//---------------------------------------------------------------------
// Client
//---------------------------------------------------------------------
type Client struct {
  ID        uuid.UUID
  Conn      *websocket.Conn
  Hub       *Hub
  Log       *logger.Logger
  cancelFn  context.CancelFunc
  closeOnce sync.Once
  Outbound  chan Message
}

// NewClient constructs a fully-initialised Client. The cancel function comes
// from the handler so the HTTP context can finish while the WS lives on.
func NewClient(conn *websocket.Conn, hub *Hub, cancel context.CancelFunc, log *logger.Logger) *Client {
  return &Client{
    ID:       uuid.New(),
    Conn:     conn,
    Hub:      hub,
    Log:      log,
    cancelFn: cancel,
    Outbound: make(chan Message, OutboundChanBuffer),
  }
}

// Run drives both pumps; it returns when the connection dies, cleanly or not.
func (c *Client) Run(ctx context.Context) {
  go c.writeLoop(ctx)
  c.readLoop(ctx)
}

//---------------------------------------------------------------------
// readLoop – keep-alives and teardown detection
//---------------------------------------------------------------------
// The socket is push-only: inbound frames carry no protocol, the read loop
// exists so pongs keep the deadline alive and so any read error (including
// an abnormal drop with no close frame) tears the client down.
func (c *Client) readLoop(ctx context.Context) {
  defer c.close()

  c.Conn.SetReadLimit(1 << 20) // 1 MiB
  _ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
  c.Conn.SetPongHandler(func(string) error {
    _ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
    return nil
  })

  for {
    select {
    case <-ctx.Done():
      return

    default:
      if _, _, err := c.Conn.ReadMessage(); err != nil {
        c.Log.Debug("websocket read error → closing client", "client", c.ID, "error", err)
        return
      }
    }
  }
}

//---------------------------------------------------------------------
// writeLoop – Hub → outbound
//---------------------------------------------------------------------
func (c *Client) writeLoop(ctx context.Context) {
  ticker := time.NewTicker(pingPeriod)
  defer func() {
    ticker.Stop()
    c.close()
  }()

  for {
    select {
    case <-ctx.Done():
      c.Log.Debug("writeLoop ctx done → shutdown", "client", c.ID)
      return

    case msg, ok := <-c.Outbound:
      _ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
      if !ok {
        _ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
        return
      }
      if err := c.writeJSON(msg); err != nil {
        c.Log.Warn("failed writing JSON", "client", c.ID, "error", err)
        return
      }

    case <-ticker.C: // keep-alive ping
      _ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
      if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
        c.Log.Debug("ping error → shutdown", "client", c.ID, "error", err)
        return
      }
    }
  }
}

//---------------------------------------------------------------------
// utilities
//---------------------------------------------------------------------
func (c *Client) writeJSON(v interface{}) error {
  payload, err := json.Marshal(v)
  if err != nil {
    return err
  }
  w, err := c.Conn.NextWriter(websocket.TextMessage)
  if err != nil {
    return err
  }
  if _, err = w.Write(payload); err != nil {
    _ = w.Close()
    return err
  }
  return w.Close()
}

// close is invoked from both pumps; the Once keeps the second invocation,
// and any teardown racing an abnormal disconnect, harmless.
func (c *Client) close() {
  c.closeOnce.Do(func() {
    c.Log.Debug("closing client connection", "client", c.ID)
    if c.cancelFn != nil {
      c.cancelFn() // stop the sibling pump
    }
    _ = c.Conn.Close()
    // Leave the hub before closing Outbound, or a broadcast racing the
    // teardown could send on a closed channel.
    c.Hub.Unsubscribe(c)
    close(c.Outbound)
  })
}
