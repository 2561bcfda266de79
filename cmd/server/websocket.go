// WebSocket bridge: pushes every store event to connected UI clients.
package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hungduong/loveanniversary/internal/events"
	"github.com/hungduong/loveanniversary/internal/ident"
	"github.com/hungduong/loveanniversary/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The server binds localhost only; accept local pages.
		host := r.Host
		return strings.HasPrefix(host, "localhost") || strings.HasPrefix(host, "127.0.0.1")
	},
}

// WSClient represents one connected UI page.
type WSClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	hub  *WSHub
}

// WSHub maintains active client connections and broadcasts store events.
type WSHub struct {
	clients    map[string]*WSClient
	broadcast  chan []byte
	register   chan *WSClient
	unregister chan *WSClient
	stopCh     chan struct{}
	done       chan struct{}
	log        *logging.Logger
	mu         sync.RWMutex
}

// WSEnvelope wraps every message sent to clients.
type WSEnvelope struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// NewWSHub creates a hub and starts its dispatch loop.
func NewWSHub() *WSHub {
	hub := &WSHub{
		clients:    make(map[string]*WSClient),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
		log:        logging.Get().With("ws"),
	}
	go hub.run()
	return hub
}

// run manages client connections and broadcasts.
func (h *WSHub) run() {
	defer close(h.done)

	for {
		select {
		case <-h.stopCh:
			h.mu.Lock()
			for id, client := range h.clients {
				close(client.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client connected", logging.Fields{"client": client.id, "total": total})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client disconnected", logging.Fields{"client": client.id, "total": total})

		case message := <-h.broadcast:
			h.mu.Lock()
			for id, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Send buffer full; drop the client.
					close(client.send)
					delete(h.clients, id)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Stop shuts the hub down and disconnects all clients.
func (h *WSHub) Stop() {
	close(h.stopCh)
	<-h.done
}

// Bridge forwards every bus event to connected clients. The returned func
// detaches the bridge.
func (h *WSHub) Bridge(bus *events.Bus) func() {
	return bus.SubscribeAll(func(e events.Event) {
		envelope := WSEnvelope{
			Type:      string(e.Type),
			Data:      e.Payload,
			Timestamp: e.Timestamp.Unix(),
		}

		data, err := json.Marshal(envelope)
		if err != nil {
			h.log.Error("failed to marshal event", err, logging.Fields{"type": string(e.Type)})
			return
		}

		select {
		case h.broadcast <- data:
		case <-h.stopCh:
		}
	})
}

// readPump discards inbound messages and detects disconnects.
func (c *WSClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stopCh:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump delivers broadcasts and keeps the connection alive.
func (c *WSClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// HandleWebSocket upgrades /ws connections and registers them with the
// hub. A coupleId query parameter (from a partner's share link) is adopted
// through the resolver before the client starts receiving events.
func HandleWebSocket(hub *WSHub, resolver *ident.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if param := r.URL.Query().Get("coupleId"); param != "" {
			if _, _, err := resolver.Resolve(param); err != nil {
				hub.log.Error("failed to adopt couple id", err)
			}
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.log.Error("failed to upgrade connection", err)
			return
		}

		client := &WSClient{
			id:   ident.NewID(),
			conn: conn,
			send: make(chan []byte, 256),
			hub:  hub,
		}

		select {
		case hub.register <- client:
		case <-hub.stopCh:
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}
