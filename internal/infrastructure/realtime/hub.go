package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub tracks live connections grouped into per-user logical channels.
// Events are addressed to a user, not to a single socket, so a user connected
// from several devices receives every push on all of them. Fan-out to a
// conversation is just a PushToUsers over its current membership.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Connection            // connectionID -> connection
	users map[string]map[string]*Connection // userID -> connectionID -> connection
}

// NewHub constructs an initialized Hub.
func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]*Connection),
		users: make(map[string]map[string]*Connection),
	}
}

// Attach registers a connection under its user's channel and starts its write
// loop. Unlike a single-session registry, an existing connection for the same
// user is left untouched.
func (h *Hub) Attach(conn *Connection) {
	h.mu.Lock()
	h.conns[conn.ID] = conn
	channel := h.users[conn.UserID]
	if channel == nil {
		channel = make(map[string]*Connection)
		h.users[conn.UserID] = channel
	}
	channel[conn.ID] = conn
	h.mu.Unlock()

	conn.Start()
}

// Detach removes a connection if it is still tracked. The user's channel is
// dropped when its last connection goes away.
func (h *Hub) Detach(conn *Connection) {
	h.mu.Lock()
	delete(h.conns, conn.ID)
	if channel, ok := h.users[conn.UserID]; ok {
		delete(channel, conn.ID)
		if len(channel) == 0 {
			delete(h.users, conn.UserID)
		}
	}
	h.mu.Unlock()
}

// PushToUser writes payload to every live connection of the user and returns
// how many connections accepted it. Zero means the user has no reachable
// device on this node.
func (h *Hub) PushToUser(userID string, payload []byte) int {
	h.mu.RLock()
	channel := h.users[userID]
	conns := make([]*Connection, 0, len(channel))
	for _, conn := range channel {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, conn := range conns {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// PushToUsers delivers payload to each listed user's channel.
func (h *Hub) PushToUsers(userIDs []string, payload []byte) int {
	delivered := 0
	for _, id := range userIDs {
		delivered += h.PushToUser(id, payload)
	}
	return delivered
}

// ConnectionCount reports the number of live connections for the user.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// Close terminates all tracked connections and clears hub state.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*Connection, 0, len(h.conns))
	for _, conn := range h.conns {
		conns = append(conns, conn)
	}
	h.conns = make(map[string]*Connection)
	h.users = make(map[string]map[string]*Connection)
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close(websocket.CloseGoingAway, "hub shutdown")
	}
}
