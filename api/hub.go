package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rustyeddy/lotboard/internal/telemetry"
	"github.com/rustyeddy/lotboard/lot"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Event is pushed to websocket clients.
type Event struct {
	Type  string     `json:"type"`
	Quote *lot.Quote `json:"quote,omitempty"`
	Lot   *lot.Lot   `json:"lot,omitempty"`
}

// Hub fans events out to connected websocket clients.
type Hub struct {
	log      *slog.Logger
	metrics  *telemetry.Metrics
	upgrader websocket.Upgrader

	// pingPeriod must stay below pongWait so idle clients answer in time.
	pongWait   time.Duration
	pingPeriod time.Duration

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
}

func NewHub(logger *slog.Logger, m *telemetry.Metrics) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		log:     logger,
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pongWait:   pongWait,
		pingPeriod: pingPeriod,
		clients:    make(map[*websocket.Conn]*sync.Mutex),
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(conn *websocket.Conn) *sync.Mutex {
	wmu := &sync.Mutex{}
	h.mu.Lock()
	h.clients[conn] = wmu
	n := len(h.clients)
	h.mu.Unlock()
	h.metrics.SetWSClients(n)
	return wmu
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.metrics.SetWSClients(n)
	}
	_ = conn.Close()
}

// ServeWS upgrades the request and holds the connection until the client
// goes away. Incoming messages are ignored. The connection is pinged every
// pingPeriod and dropped when no pong arrives within pongWait.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	wmu := h.add(conn)
	defer h.remove(conn)

	done := make(chan struct{})
	defer close(done)
	go h.ping(conn, wmu, done)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
	}
}

func (h *Hub) ping(conn *websocket.Conn, wmu *sync.Mutex, done <-chan struct{}) {
	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			wmu.Lock()
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			wmu.Unlock()
			if err != nil {
				h.log.Debug("websocket ping failed", slog.String("error", err.Error()))
				h.remove(conn)
				return
			}
		}
	}
}

// Broadcast writes ev to every client, dropping clients that fail.
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	type target struct {
		conn *websocket.Conn
		mu   *sync.Mutex
	}
	targets := make([]target, 0, len(h.clients))
	for conn, mu := range h.clients {
		targets = append(targets, target{conn, mu})
	}
	h.mu.RUnlock()

	for _, t := range targets {
		t.mu.Lock()
		_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := t.conn.WriteJSON(ev)
		t.mu.Unlock()
		if err != nil {
			h.log.Debug("dropping websocket client", slog.String("error", err.Error()))
			h.remove(t.conn)
		}
	}
}
