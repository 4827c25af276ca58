package realtime

import (
	"context"
	"sync"

	"social/utils"
)

// Presence is the externally-shared connected-user registry, implemented
// by the cache package on Redis.
type Presence interface {
	SetOnline(ctx context.Context, userID string)
	SetOffline(ctx context.Context, userID string)
	Heartbeat(ctx context.Context, userID string)
}

// Hub routes notification payloads to the websocket connections of their
// recipients. Connections register per user id; a user may hold several
// (one per device). Presence is mirrored to Redis so other instances can
// see who is connected.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}

	presence Presence
}

func NewHub(presence Presence) *Hub {
	return &Hub{
		clients:  make(map[string]map[*Client]struct{}),
		presence: presence,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*Client]struct{})
	}
	h.clients[c.userID][c] = struct{}{}
	h.mu.Unlock()

	h.presence.SetOnline(context.Background(), c.userID)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients[c.userID], c)
	lastConnection := len(h.clients[c.userID]) == 0
	if lastConnection {
		delete(h.clients, c.userID)
	}
	h.mu.Unlock()

	if lastConnection {
		h.presence.SetOffline(context.Background(), c.userID)
	}
}

// Publish delivers a payload to every open connection of a user. Slow
// consumers are skipped: delivery is best-effort, the notification row in
// the database is the source of truth.
func (h *Hub) Publish(userID string, payload any) {
	message := utils.ToJson(payload)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		select {
		case c.send <- message:
		default:
		}
	}
}
