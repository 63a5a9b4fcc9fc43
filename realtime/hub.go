package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 64
)

// Frame is one outbound WebSocket message: the full new value at a path.
type Frame struct {
	Path string          `json:"path"`
	Data json.RawMessage `json:"data"`
}

// clientCommand is what browsers send to manage their subscriptions.
type clientCommand struct {
	Action string `json:"action"` // "subscribe" or "unsubscribe"
	Path   string `json:"path"`
}

// Hub upgrades HTTP requests to WebSocket connections and bridges them to the
// snapshot store. Each connection carries its own subscription set; initial
// paths may be given via the "paths" query parameter (comma separated) and
// adjusted later with subscribe/unsubscribe commands.
type Hub struct {
	store    Store
	upgrader websocket.Upgrader
}

// NewHub creates a hub over the given store. Origin checking is left to the
// reverse proxy in front of the service.
func NewHub(store Store) *Hub {
	return &Hub{
		store: store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP implements http.Handler.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("realtime: websocket upgrade failed: %v", err)
		return
	}

	c := &wsClient{
		hub:  h,
		conn: conn,
		send: make(chan Frame, sendBuffer),
		subs: make(map[string]UnsubscribeFunc),
	}
	for _, p := range strings.Split(r.URL.Query().Get("paths"), ",") {
		if p = strings.TrimSpace(p); p != "" {
			c.subscribe(p)
		}
	}

	go c.writeLoop()
	go c.readLoop()
}

type wsClient struct {
	hub  *Hub
	conn *websocket.Conn

	send chan Frame

	mu     sync.Mutex
	subs   map[string]UnsubscribeFunc
	closed bool
}

func (c *wsClient) subscribe(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if _, ok := c.subs[path]; ok {
		return
	}
	c.subs[path] = c.hub.store.Subscribe(path, func(snap Snapshot) {
		frame := Frame{Path: path, Data: json.RawMessage(snap)}
		select {
		case c.send <- frame:
		default:
			// Slow consumer; drop the frame rather than block publishers.
		}
	})
}

func (c *wsClient) unsubscribe(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if unsub, ok := c.subs[path]; ok {
		unsub()
		delete(c.subs, path)
	}
}

func (c *wsClient) teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for _, unsub := range c.subs {
		unsub()
	}
	c.subs = nil
	close(c.send)
}

func (c *wsClient) readLoop() {
	defer func() {
		c.teardown()
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd clientCommand
		if err := json.Unmarshal(payload, &cmd); err != nil || cmd.Path == "" {
			continue
		}
		switch cmd.Action {
		case "subscribe":
			c.subscribe(cmd.Path)
		case "unsubscribe":
			c.unsubscribe(cmd.Path)
		}
	}
}

func (c *wsClient) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
