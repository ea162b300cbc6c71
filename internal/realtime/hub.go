// Package realtime pushes new notifications to connected browsers over
// websockets.
package realtime

import (
	"context"
	"net/http"
	"sync"
	"time"

	"staffdesk/internal/metrics"
	"staffdesk/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// Conn is the part of *websocket.Conn the write pump uses.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type message struct {
	accountID    int
	notification *models.Notification
}

// client owns one connection. Only its writePump writes to conn.
type client struct {
	accountID int
	conn      Conn
	send      chan *models.Notification
}

// Hub tracks open connections per account. Run fans queued notifications
// out to per-connection buffers and never touches the network itself; a
// connection whose buffer is full is dropped.
type Hub struct {
	mu        sync.Mutex
	clients   map[int]map[Conn]*client
	broadcast chan message
	log       zerolog.Logger
	upgrader  websocket.Upgrader

	// SendBuffer is the per-connection queue length. Set before Register.
	SendBuffer int
	WriteWait  time.Duration
	PingPeriod time.Duration
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:   make(map[int]map[Conn]*client),
		broadcast: make(chan message, 256),
		log:       log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		SendBuffer: sendBuffer,
		WriteWait:  writeWait,
		PingPeriod: pingPeriod,
	}
}

// Publish queues a notification for the account's connections. It never
// blocks; when the queue is full the push is dropped since the row is
// already persisted.
func (h *Hub) Publish(accountID int, n *models.Notification) {
	select {
	case h.broadcast <- message{accountID: accountID, notification: n}:
	default:
		h.log.Warn().Int("account_id", accountID).Msg("realtime queue full, dropping push")
	}
}

// Run delivers queued notifications until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case msg := <-h.broadcast:
			h.send(msg)
		}
	}
}

func (h *Hub) send(msg message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients[msg.accountID] {
		select {
		case c.send <- msg.notification:
		default:
			h.log.Warn().Int("account_id", msg.accountID).Msg("websocket client too slow, closing")
			h.removeLocked(c)
			c.conn.Close()
		}
	}
}

// Register adds conn for accountID and starts its write pump.
func (h *Hub) Register(accountID int, conn Conn) {
	c := &client{accountID: accountID, conn: conn, send: make(chan *models.Notification, h.SendBuffer)}

	h.mu.Lock()
	if h.clients[accountID] == nil {
		h.clients[accountID] = make(map[Conn]*client)
	}
	h.clients[accountID][conn] = c
	h.mu.Unlock()

	metrics.WebsocketConnections.Inc()
	go h.writePump(c)
}

func (h *Hub) Unregister(accountID int, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[accountID][conn]; ok {
		h.removeLocked(c)
	}
}

// removeLocked closes c.send, which stops its write pump.
func (h *Hub) removeLocked(c *client) {
	conns := h.clients[c.accountID]
	if conns[c.conn] != c {
		return
	}
	delete(conns, c.conn)
	if len(conns) == 0 {
		delete(h.clients, c.accountID)
	}
	close(c.send)
	metrics.WebsocketConnections.Dec()
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case n, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(h.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(n); err != nil {
				h.Unregister(c.accountID, c.conn)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(h.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.Unregister(c.accountID, c.conn)
				return
			}
		}
	}
}

// Connections returns the number of open connections for an account.
func (h *Hub) Connections(accountID int) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[accountID])
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.clients {
		for _, c := range conns {
			h.removeLocked(c)
		}
	}
}

// Serve upgrades the request and keeps the connection registered until
// the client goes away or stops answering pings. The caller must have
// authenticated accountID.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, accountID int) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.Register(accountID, conn)
	defer h.Unregister(accountID, conn)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
