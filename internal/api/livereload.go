package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ReloadMessage is pushed to browsers when content changes
type ReloadMessage struct {
	Type     string `json:"type"`
	Revision string `json:"revision"`
}

func encodeMessage(kind, revision string) ([]byte, error) {
	return json.Marshal(ReloadMessage{Type: kind, Revision: revision})
}

// Hub fans reload notifications out to connected live-reload clients
type Hub struct {
	mu      sync.Mutex
	clients map[*liveClient]struct{}
}

type liveClient struct {
	send chan []byte
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{clients: make(map[*liveClient]struct{})}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Notify sends a reload message to every client. Clients that are not
// keeping up are disconnected.
func (h *Hub) Notify(revision string) {
	data, err := encodeMessage("reload", revision)
	if err != nil {
		slog.Error("failed to marshal reload message", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slog.Debug("dropping slow live-reload client")
			delete(h.clients, c)
			close(c.send)
		}
	}
	slog.Debug("live-reload notified", "revision", revision, "clients", len(h.clients))
}

func (h *Hub) register(c *liveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *liveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// ServeWS upgrades the request and streams reload messages until the client
// goes away. The current revision is sent right after connecting so a page
// rendered before a reload refreshes immediately.
func (h *Hub) ServeWS(current func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hello, err := encodeMessage("hello", current())
		if err != nil {
			slog.Error("failed to marshal hello message", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("failed to upgrade to websocket", "error", err)
			return
		}

		c := &liveClient{send: make(chan []byte, 4)}
		c.send <- hello
		h.register(c)
		slog.Debug("live-reload client connected", "remote_addr", r.RemoteAddr)

		go h.writeLoop(conn, c)
		h.readLoop(conn, c)

		slog.Debug("live-reload client disconnected", "remote_addr", r.RemoteAddr)
	}
}

// readLoop discards client messages and returns when the connection closes
func (h *Hub) readLoop(conn *websocket.Conn, c *liveClient) {
	defer func() {
		h.unregister(c)
		conn.Close()
	}()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("websocket read error", "error", err)
			}
			return
		}
	}
}

// writeLoop sends queued messages and keepalive pings
func (h *Hub) writeLoop(conn *websocket.Conn, c *liveClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Debug("failed to send live-reload message", "error", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
