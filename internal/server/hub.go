package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Frame types pushed over the event stream.
const (
	FrameCountdown       = "countdown"
	FrameDashboard       = "dashboard"
	FrameSessionStart    = "session_start"
	FrameSessionHide     = "session_hide"
	FrameWelcome         = "welcome"
	FrameFeedback        = "feedback"
	FrameUpdateAvailable = "update_available"
	FrameAlert           = "alert"
)

// Frame is the envelope for every event stream message.
type Frame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Hub manages WebSocket client connections and fans broadcast frames out to
// all of them. Register, unregister, and broadcast all go through channels,
// so it is safe for concurrent use.
type Hub struct {
	clients    map[*websocket.Conn]struct{}
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte
	done       chan struct{}
	upgrader   websocket.Upgrader
}

// NewHub allocates a hub with buffered channels. Call Run in a goroutine to
// start the event loop.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]struct{}),
		register:   make(chan *websocket.Conn, 16),
		unregister: make(chan *websocket.Conn, 16),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Local surfaces only; the server binds to loopback.
				return true
			},
		},
	}
}

// Run processes registrations, unregistrations, broadcasts, and keepalive
// pings in a single select loop until Close.
func (hub *Hub) Run() {
	ping := time.NewTicker(20 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-hub.done:
			for conn := range hub.clients {
				_ = conn.Close()
			}
			return

		case conn := <-hub.register:
			hub.clients[conn] = struct{}{}

		case conn := <-hub.unregister:
			delete(hub.clients, conn)
			_ = conn.Close()

		case msg := <-hub.broadcast:
			for conn := range hub.clients {
				_ = conn.SetWriteDeadline(time.Now().Add(3 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					delete(hub.clients, conn)
					_ = conn.Close()
				}
			}

		case <-ping.C:
			for conn := range hub.clients {
				_ = conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					delete(hub.clients, conn)
					_ = conn.Close()
				}
			}
		}
	}
}

// Close stops the event loop and drops every client.
func (hub *Hub) Close() {
	select {
	case <-hub.done:
	default:
		close(hub.done)
	}
}

// Handler upgrades incoming requests to WebSocket connections and registers
// them with the hub.
func (hub *Hub) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := hub.upgrader.Upgrade(w, r, nil)
		if err != nil {
			http.Error(w, "websocket upgrade failed", http.StatusBadRequest)
			return
		}
		hub.register <- conn

		go func() {
			defer func() { hub.unregister <- conn }()
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			conn.SetPongHandler(func(string) error {
				_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
				return nil
			})

			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	})
}

// Broadcast queues a frame for delivery to all connected clients. If the
// broadcast channel is full the frame is dropped rather than blocking the
// caller.
func (hub *Hub) Broadcast(frameType string, payload any) {
	raw, err := json.Marshal(Frame{Type: frameType, Payload: payload})
	if err != nil {
		return
	}
	select {
	case hub.broadcast <- raw:
	default:
	}
}
