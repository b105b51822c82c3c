package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	backend := httptest.NewServer(hub.Handler())
	t.Cleanup(backend.Close)

	wsURL := "ws" + strings.TrimPrefix(backend.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHubBroadcastReachesClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	conn := dialHub(t, hub)

	// Registration goes through the hub loop; let it land before the
	// broadcast.
	time.Sleep(100 * time.Millisecond)
	hub.Broadcast(FrameDashboard, nil)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if frame.Type != FrameDashboard {
		t.Fatalf("frame type: got %q", frame.Type)
	}
}

func TestHubCloseDropsClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialHub(t, hub)
	hub.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
