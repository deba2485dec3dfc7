// Package panel pushes active-timer snapshots to connected dashboard panels
// over websockets, replacing interval polling with a subscribe/broadcast
// model. A panel receives the current snapshot on connect and an update
// whenever timer state changes.
package panel

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/model"
)

const (
	_writeWait      = 10 * time.Second
	_pongWait       = 60 * time.Second
	_pingPeriod     = 30 * time.Second
	_sendBufferSize = 8
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Panels run on trusted displays inside the warehouse network.
		return true
	},
}

// ActiveTimer is one running timer as shown on the panel.
type ActiveTimer struct {
	Number      string      `json:"number"`
	Stage       model.Stage `json:"stage"`
	PersonID    model.ID    `json:"personId"`
	PersonName  string      `json:"personName"`
	ItemCount   int         `json:"itemCount"`
	VolumeCount int         `json:"volumeCount"`
	StartedAt   time.Time   `json:"startedAt"`
}

// Snapshot is the full panel state pushed to clients.
type Snapshot struct {
	Type   string        `json:"type"`
	At     time.Time     `json:"at"`
	Timers []ActiveTimer `json:"timers"`
}

type Hub struct {
	Logger *slog.Logger

	mu       sync.Mutex
	clients  map[*client]struct{}
	snapshot []byte
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Logger:  logger.With("module", "panel"),
		clients: make(map[*client]struct{}),
	}
}

// ClientCount reports the number of connected panels.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish stores the snapshot as the new connect-time state and fans it out
// to every connected panel. Clients that cannot keep up have the message
// dropped rather than blocking the publisher.
func (h *Hub) Publish(timers []ActiveTimer, now time.Time) {
	snapshot := Snapshot{Type: "update", At: now, Timers: timers}

	data, err := json.Marshal(snapshot)
	if err != nil {
		h.Logger.Warn("failed to marshal snapshot", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.snapshot = data

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.Logger.Debug("panel client buffer full, dropping update")
		}
	}
}

// Handle upgrades the request and attaches the client to the hub.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Warn("failed to upgrade connection", "error", err)
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, _sendBufferSize),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	initial := h.snapshot
	h.mu.Unlock()

	if initial == nil {
		initial, _ = json.Marshal(Snapshot{Type: "snapshot", At: time.Now(), Timers: []ActiveTimer{}})
	}
	c.send <- initial

	go c.writePump()
	go c.readPump()
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// readPump discards incoming messages; panels are display-only. It keeps the
// connection alive via pong handling and detaches the client on close.
func (c *client) readPump() {
	defer func() {
		c.hub.drop(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(_pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(_pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.Logger.Debug("panel client read error", "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(_pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(_writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(_writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
