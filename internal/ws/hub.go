package ws

import (
	"sync"

	"auction-house/utils"
)

// Hub maintains the set of live clients and their auction room
// membership. A client belongs to at most one room at a time; empty
// rooms are pruned on leave/unregister.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{} // key: auctionID -> room members
	clients map[*Client]string              // key: client -> joined auctionID ("" if none)

	// validateToken resolves an auth token to a user id. Optional;
	// unauthenticated clients still receive broadcasts.
	validateToken func(token string) (string, error)
}

// NewHub creates an empty broadcast hub
func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]string),
	}
}

// SetTokenValidator installs the resolver used for inbound auth messages
func (h *Hub) SetTokenValidator(fn func(token string) (string, error)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.validateToken = fn
}

// Register adds a client to the hub with no room membership
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = ""
}

// Unregister removes a client from the hub and from whatever room it
// occupied. Idempotent.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	auctionID, ok := h.clients[c]
	if !ok {
		return
	}
	delete(h.clients, c)
	if auctionID != "" {
		h.leaveRoomLocked(c, auctionID)
	}
}

func (h *Hub) leaveRoomLocked(c *Client, auctionID string) {
	room, ok := h.rooms[auctionID]
	if !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, auctionID)
	}
}

// Join subscribes a client to an auction room, leaving any previously
// joined room first.
func (h *Hub) Join(c *Client, auctionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	prev, ok := h.clients[c]
	if !ok {
		return
	}
	if prev == auctionID {
		return
	}
	if prev != "" {
		h.leaveRoomLocked(c, prev)
	}

	room, ok := h.rooms[auctionID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[auctionID] = room
	}
	room[c] = struct{}{}
	h.clients[c] = auctionID
}

// Leave unsubscribes a client from an auction room
func (h *Hub) Leave(c *Client, auctionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[c] != auctionID {
		return
	}
	h.clients[c] = ""
	h.leaveRoomLocked(c, auctionID)
}

// BroadcastToAuction delivers an event to every client in the auction's
// room. Delivery is non-blocking per client: a client whose send buffer
// is full is dropped and unregistered rather than stalling the others.
func (h *Hub) BroadcastToAuction(auctionID string, e Event) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[auctionID]))
	for c := range h.rooms[auctionID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	h.deliver(targets, e)
}

// BroadcastAll delivers an event to every connected client regardless
// of room membership.
func (h *Hub) BroadcastAll(e Event) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	h.deliver(targets, e)
}

func (h *Hub) deliver(targets []*Client, e Event) {
	for _, c := range targets {
		if c.trySend(e) {
			continue
		}
		utils.Warn("ws: dropping slow client", map[string]any{"user_id": c.userID})
		h.Unregister(c)
		c.close()
	}
}

// RoomSize returns the number of clients subscribed to an auction
func (h *Hub) RoomSize(auctionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[auctionID])
}

// ClientCount returns the number of registered clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and empties the hub
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.rooms = make(map[string]map[*Client]struct{})
	h.clients = make(map[*Client]string)
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}
