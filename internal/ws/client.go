package ws

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"auction-house/utils"

	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds a single write to the peer
	writeWait = 10 * time.Second

	// defaultProbeInterval is the liveness ping period
	defaultProbeInterval = 30 * time.Second

	// maxMissedProbes is the number of consecutive unanswered pings
	// after which a connection is forcibly closed
	maxMissedProbes = 2

	// sendBufferSize is the per-client outbound event buffer
	sendBufferSize = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// inboundMessage is the client -> server protocol
type inboundMessage struct {
	Type      string `json:"type"`
	Token     string `json:"token,omitempty"`
	AuctionID string `json:"auctionId,omitempty"`
}

// Client is one live subscriber connection. All outbound events go
// through the buffered send channel so one slow peer never blocks a
// broadcast.
type Client struct {
	hub           *Hub
	conn          *websocket.Conn
	send          chan Event
	done          chan struct{}
	probeInterval time.Duration
	missedProbes  int32
	userID        string
	closeOnce     sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, probeInterval time.Duration) *Client {
	if probeInterval <= 0 {
		probeInterval = defaultProbeInterval
	}
	return &Client{
		hub:           hub,
		conn:          conn,
		send:          make(chan Event, sendBufferSize),
		done:          make(chan struct{}),
		probeInterval: probeInterval,
	}
}

// ServeWS upgrades an HTTP request to a websocket connection and
// registers the resulting client with the hub.
func ServeWS(h *Hub, probeInterval time.Duration, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		utils.Warn("ws: upgrade failed", map[string]any{"error": err.Error()})
		return
	}

	c := newClient(h, conn, probeInterval)
	h.Register(c)

	go c.writePump()
	go c.readPump()

	c.trySend(Event{Type: EventConnected})
}

// trySend queues an event without blocking. Returns false if the
// client's buffer is full or the client is shutting down.
func (c *Client) trySend(e Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- e:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// writePump drains the send channel to the peer and drives the
// liveness probe. A connection that leaves two consecutive probes
// unanswered is terminated.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.probeInterval)
	defer func() {
		ticker.Stop()
		c.hub.Unregister(c)
		c.close()
	}()

	for {
		select {
		case e := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(e); err != nil {
				return
			}
		case <-ticker.C:
			if atomic.LoadInt32(&c.missedProbes) >= maxMissedProbes {
				utils.Warn("ws: client failed liveness probes", map[string]any{"user_id": c.userID})
				return
			}
			atomic.AddInt32(&c.missedProbes, 1)
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// readPump processes the inbound client protocol until the connection
// drops, then guarantees room cleanup.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.close()
	}()

	c.conn.SetPongHandler(func(string) error {
		atomic.StoreInt32(&c.missedProbes, 0)
		return nil
	})

	for {
		var msg inboundMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "ping":
			c.trySend(Event{Type: EventPong})
		case "auth":
			c.authenticate(msg.Token)
		case "joinAuction":
			if msg.AuctionID != "" {
				c.hub.Join(c, msg.AuctionID)
				utils.Info("ws: client joined auction", map[string]any{"auction_id": msg.AuctionID})
			}
		case "leaveAuction":
			c.hub.Leave(c, msg.AuctionID)
			utils.Info("ws: client left auction", map[string]any{"auction_id": msg.AuctionID})
		default:
			utils.Warn("ws: unknown message type", map[string]any{"type": msg.Type})
		}
	}
}

func (c *Client) authenticate(token string) {
	c.hub.mu.RLock()
	validate := c.hub.validateToken
	c.hub.mu.RUnlock()

	if validate == nil || token == "" {
		return
	}
	userID, err := validate(token)
	if err != nil {
		utils.Warn("ws: auth message rejected", map[string]any{"error": err.Error()})
		return
	}
	c.userID = userID
}
