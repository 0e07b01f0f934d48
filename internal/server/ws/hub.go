// Package ws bridges the Redis signal bus to WebSocket clients so the
// sidepanel can render search progress incrementally.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/David-McSharry/quantify/internal/domain"
)

const (
	// writeWait is the maximum time to wait for a write to complete.
	writeWait = 10 * time.Second

	// pongWait is the maximum time to wait for a pong from the client.
	pongWait = 60 * time.Second

	// pingPeriod sends pings at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is the maximum size of an incoming message.
	maxMessageSize = 4096

	// sendBufferSize is the channel buffer for outgoing messages per client.
	sendBufferSize = 256
)

// progressChannelPrefix scopes one Redis pub/sub channel per search.
const progressChannelPrefix = "ch:search:"

// ProgressChannel returns the Redis channel carrying progress events for one
// search.
func ProgressChannel(searchID string) string {
	return progressChannelPrefix + searchID
}

// progressPattern subscribes to every search at once.
const progressPattern = progressChannelPrefix + "*"

// upgrader configures the WebSocket upgrade parameters. Origin checks happen
// in the CORS middleware in front of the mux.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// client represents a single WebSocket connection.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu      sync.RWMutex
	watched map[string]bool // search IDs this client follows; empty means all
}

// watchMsg is the JSON message a client sends to follow or drop specific
// searches. A client that never sends one receives every search's events.
type watchMsg struct {
	Watch   []string `json:"watch"`
	Unwatch []string `json:"unwatch"`
}

// Hub manages connected WebSocket clients and fans progress events from the
// Redis signal bus out to them.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan broadcastMsg
	register   chan *client
	unregister chan *client
	bus        domain.SignalBus
	mu         sync.RWMutex
	logger     *slog.Logger
	startedAt  time.Time
}

// broadcastMsg carries a progress payload with the search ID parsed from its
// source channel.
type broadcastMsg struct {
	searchID string
	data     []byte
}

// NewHub creates a WebSocket hub fed by the given signal bus.
func NewHub(bus domain.SignalBus, logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan broadcastMsg, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		bus:        bus,
		logger:     logger.With(slog.String("component", "ws")),
		startedAt:  time.Now().UTC(),
	}
}

// Run starts the hub's main event loop. It should be called in a goroutine.
// The loop exits when the provided context is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	go h.subscribeProgress(ctx)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return ctx.Err()

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.logger.Info("client connected", slog.Int("total_clients", h.clientCount()))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.logger.Info("client disconnected", slog.Int("total_clients", h.clientCount()))

		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				if !c.watches(msg.searchID) {
					continue
				}
				select {
				case c.send <- msg.data:
				default:
					// Client's send buffer is full; drop the message.
					h.logger.Warn("dropping message for slow client")
				}
			}
			h.mu.RUnlock()
		}
	}
}

// subscribeProgress subscribes to the progress channel pattern and forwards
// received events to the hub's broadcast loop.
func (h *Hub) subscribeProgress(ctx context.Context) {
	msgCh, err := h.bus.Subscribe(ctx, progressPattern)
	if err != nil {
		h.logger.Error("subscribe failed",
			slog.String("pattern", progressPattern),
			slog.String("error", err.Error()))
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-msgCh:
			if !ok {
				h.logger.Warn("progress subscription closed")
				return
			}
			h.broadcast <- broadcastMsg{
				searchID: searchIDFromPayload(data),
				data:     data,
			}
		}
	}
}

// searchIDFromPayload pulls the search ID out of a progress event so the hub
// can route it without re-decoding the full event.
func searchIDFromPayload(data []byte) string {
	var partial struct {
		SearchID string `json:"search_id"`
	}
	if err := json.Unmarshal(data, &partial); err != nil {
		return ""
	}
	return partial.SearchID
}

// HandleWS upgrades an HTTP request to a WebSocket connection and registers
// the client with the hub.
// GET /ws
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		watched: make(map[string]bool),
	}

	h.register <- c
	c.sendInitialStatus()

	go c.writePump()
	go c.readPump()
}

// clientCount returns the number of currently connected clients.
func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// readPump reads watch requests from the WebSocket connection.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("unexpected close error", slog.String("error", err.Error()))
			}
			return
		}

		var msg watchMsg
		if jsonErr := json.Unmarshal(message, &msg); jsonErr == nil &&
			(len(msg.Watch) > 0 || len(msg.Unwatch) > 0) {
			c.handleWatch(msg)
		}
	}
}

// handleWatch narrows or widens the set of searches this client follows.
func (c *client) handleWatch(msg watchMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range msg.Watch {
		c.watched[id] = true
	}
	for _, id := range msg.Unwatch {
		delete(c.watched, id)
	}
}

// watches reports whether this client should receive events for a search. A
// client with no explicit watch list follows everything.
func (c *client) watches(searchID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.watched) == 0 {
		return true
	}
	return c.watched[searchID]
}

// sendInitialStatus pushes a small JSON envelope so clients can immediately
// mark the connection as healthy even when no search is running yet.
func (c *client) sendInitialStatus() {
	uptime := int64(time.Since(c.hub.startedAt).Seconds())
	if uptime < 0 {
		uptime = 0
	}

	msg, err := json.Marshal(map[string]any{
		"type": "status",
		"payload": map[string]any{
			"ws_connected":   true,
			"uptime_seconds": uptime,
		},
	})
	if err != nil {
		return
	}

	select {
	case c.send <- msg:
	default:
	}
}

// writePump pumps messages from the hub to the WebSocket connection as JSON
// text frames, with periodic ping frames for keepalive.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
