package feed

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialHub(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing hub: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcastsToAllClients(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(http.HandlerFunc(hub.Serve))
	t.Cleanup(server.Close)

	first := dialHub(t, server)
	second := dialHub(t, server)

	// Registration races the dial returning; wait for both.
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected 2 clients, got %d", hub.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Publish(EventOfferCreated, map[string]string{"id": "offer-1"})

	for i, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("client %d: reading event: %v", i, err)
		}

		var event Event
		if err := json.Unmarshal(payload, &event); err != nil {
			t.Fatalf("client %d: decoding event: %v", i, err)
		}
		if event.Type != EventOfferCreated {
			t.Errorf("client %d: expected type %q, got %q", i, EventOfferCreated, event.Type)
		}
		if event.At.IsZero() {
			t.Errorf("client %d: expected timestamp set", i)
		}
	}
}

func TestHubUnregistersOnDisconnect(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(http.HandlerFunc(hub.Serve))
	t.Cleanup(server.Close)

	conn := dialHub(t, server)

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() < 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	conn.Close()

	deadline = time.Now().Add(2 * time.Second)
	for hub.ClientCount() > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected 0 clients after disconnect, got %d", hub.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
