package socket

import (
  "context"
  "fmt"
  "sync"

  "github.com/google/uuid"

  "github.com/r7ala/r7ala-backend/internal/logger"
)

// Message is the envelope every push travels in. Channel is the fan-out
// target (a per-user group), Event names what happened.
type Message struct {
  Channel string      `json:"channel"`
  Event   string      `json:"event"`
  Payload interface{} `json:"payload"`
}

// UserChannel is the group every socket of a user joins on connect.
func UserChannel(userID uint) string {
  return fmt.Sprintf("user-%d", userID)
}

// Hub owns the per-channel membership registry. It is the only cross-request
// shared mutable state in the realtime layer and is mutated exclusively by
// the connect/disconnect paths.
type Hub struct {
  log       *logger.Logger
  mu        sync.RWMutex
  channels  map[string]map[uuid.UUID]*Client

  // optional bridge for multi-instance fan-out
  redisPubSub *RedisPubSub
}

func NewHub(log *logger.Logger) *Hub {
  return &Hub{
    log:      log.With("component", "Hub"),
    channels: make(map[string]map[uuid.UUID]*Client),
  }
}

func (h *Hub) SetRedisPubSub(rp *RedisPubSub) {
  h.redisPubSub = rp
}

func (h *Hub) Subscribe(client *Client, channels []string) {
  h.mu.Lock()
  defer h.mu.Unlock()

  for _, ch := range channels {
    if h.channels[ch] == nil {
      h.channels[ch] = make(map[uuid.UUID]*Client)
    }
    h.channels[ch][client.ID] = client
  }
  h.log.Debug("Client subscribed", "client", client.ID, "channels", channels)
}

// Unsubscribe removes the client from every channel. Safe to call more than
// once; abnormal disconnects land here via the client's close path.
func (h *Hub) Unsubscribe(client *Client) {
  h.mu.Lock()
  defer h.mu.Unlock()

  for ch, clientsMap := range h.channels {
    if _, ok := clientsMap[client.ID]; ok {
      delete(clientsMap, client.ID)
      if len(clientsMap) == 0 {
        delete(h.channels, ch)
      }
    }
  }
  h.log.Debug("Client unsubscribed from all channels", "client", client.ID)
}

// localBroadcast fans out to the sockets this instance holds. A channel with
// no members means the user is offline here; the message is dropped.
func (h *Hub) localBroadcast(msg Message) {
  h.mu.RLock()
  defer h.mu.RUnlock()

  clientsMap, ok := h.channels[msg.Channel]
  if !ok {
    return
  }
  for _, client := range clientsMap {
    select {
    case client.Outbound <- msg:
    default:
      h.log.Warn("Dropping message to client; outbound buffer full", "client", client.ID, "channel", msg.Channel)
    }
  }
}

// BroadcastGlobal delivers locally and, when the Redis bridge is configured,
// publishes so other instances deliver to their own sockets.
func (h *Hub) BroadcastGlobal(ctx context.Context, msg Message) {
  h.localBroadcast(msg)

  if h.redisPubSub != nil {
    if err := h.redisPubSub.Publish(msg); err != nil {
      h.log.Warn("Failed to publish to Redis", "error", err)
    }
  }
}

// PushToUser is the delivery entry point the messaging engine calls. It is
// fire-and-forget: no acknowledgement, no retry, no error to the caller.
func (h *Hub) PushToUser(ctx context.Context, userID uint, event string, payload interface{}) {
  h.BroadcastGlobal(ctx, Message{
    Channel: UserChannel(userID),
    Event:   event,
    Payload: payload,
  })
}
