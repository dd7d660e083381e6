package socket

import (
  "context"
  "net/http"
  "net/http/httptest"
  "strings"
  "testing"

  "github.com/gorilla/websocket"
  "github.com/stretchr/testify/require"
)

// dialClient builds a real websocket pair and a hub-subscribed Client around
// the server side of it.
func dialClient(t *testing.T, hub *Hub, userID uint) (*Client, *websocket.Conn) {
  t.Helper()
  upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
  clientCh := make(chan *Client, 1)
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    conn, err := upgrader.Upgrade(w, r, nil)
    if err != nil {
      return
    }
    _, cancel := context.WithCancel(context.Background())
    client := NewClient(conn, hub, cancel, hub.log)
    hub.Subscribe(client, []string{UserChannel(userID)})
    clientCh <- client
  }))
  t.Cleanup(srv.Close)

  wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
  dialed, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
  require.NoError(t, err)
  if resp != nil {
    _ = resp.Body.Close()
  }
  t.Cleanup(func() { _ = dialed.Close() })

  return <-clientCh, dialed
}

// A push racing a disconnect must find the client already gone from the hub;
// sending on the closed Outbound channel would panic right here.
func TestCloseLeavesHubBeforeReleasingOutbound(t *testing.T) {
  hub := newTestHub(t)
  client, _ := dialClient(t, hub, 7)

  client.close()
  client.close() // both pumps tear down; the second call must stay harmless

  hub.PushToUser(context.Background(), 7, "message-created", "late")
}
