package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/covera-io/covera/internal/domain"
	"github.com/covera-io/covera/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	sendBufferSize = 16
)

// AlertEvent is pushed to stream subscribers when a scan finds a
// non-nominal KPI day
type AlertEvent struct {
	ContractID int64             `json:"contract_id"`
	Alert      domain.AlertPoint `json:"alert"`
	ScannedAt  time.Time         `json:"scanned_at"`
}

// Hub fans alert events out to connected websocket subscribers
// ⭐ SSOT: 알림 스트림 연결은 이 허브에서만 관리
type Hub struct {
	logger   *logger.Logger
	upgrader websocket.Upgrader

	clients map[*client]bool
	mu      sync.Mutex
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a new alert stream hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		logger: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The API carries no credentials; cross-origin dashboards
			// may subscribe
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]bool),
	}
}

// ServeWS upgrades an HTTP request to a websocket subscription
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	h.mu.Lock()
	h.clients[c] = true
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.WithField("subscribers", count).Debug("Alert stream subscriber connected")

	go h.writePump(c)
	go h.readPump(c)
}

// Broadcast sends an alert event to every subscriber. Slow subscribers
// with a full send buffer are dropped rather than blocking the scan.
func (h *Hub) Broadcast(event AlertEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal alert event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.dropLocked(c)
		}
	}
}

// Relay feeds externally published alert events into the hub. The
// scheduler process publishes scan results through Redis; the API process
// runs Relay over that subscription so stream subscribers receive them.
// Returns when events closes.
func (h *Hub) Relay(events <-chan []byte) {
	for payload := range events {
		var event AlertEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			h.logger.WithError(err).Warn("Dropping malformed alert event")
			continue
		}
		h.Broadcast(event)
	}
}

// SubscriberCount returns the number of connected subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every subscriber
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		h.dropLocked(c)
	}
}

// dropLocked removes a client; callers must hold h.mu
func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	_ = c.conn.Close()
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

// readPump discards inbound messages; the stream is one-way. Its real job
// is noticing the peer going away.
func (h *Hub) readPump(c *client) {
	defer h.drop(c)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				// Hub dropped this client
				_ = c.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
				return
			}

			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.drop(c)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.drop(c)
				return
			}
		}
	}
}
