// ABOUTME: Tests for the status stream client
// ABOUTME: Tests connection, frame routing and close handling
package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/harperreed/sportsbrief/internal/briefing"
)

func TestNewClient(t *testing.T) {
	client := NewClient(Config{ServerAddr: "localhost:8931"})
	if client == nil {
		t.Fatal("expected client to be created")
	}

	if client.config.DialTimeout != 5*time.Second {
		t.Errorf("expected default dial timeout 5s, got %v", client.config.DialTimeout)
	}
	if client.IsConnected() {
		t.Error("expected client to start disconnected")
	}
}

// statusServer sends frames to the first client and then closes
func statusServer(t *testing.T, frames ...frame) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != StatusPath {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		conn.WriteJSON(frame{Type: "hello"})
		for _, f := range frames {
			conn.WriteJSON(f)
		}
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
}

func TestUpdatesRouted(t *testing.T) {
	srv := statusServer(t,
		frame{Type: "snapshot", Status: briefing.Status{Message: "idle"}},
		frame{Type: "status", Status: briefing.Status{Generating: true, Message: "Refining..."}},
	)
	defer srv.Close()

	client := NewClient(Config{ServerAddr: strings.TrimPrefix(srv.URL, "http://")})
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	var got []Update
	timeout := time.After(2 * time.Second)
	for done := false; !done; {
		select {
		case u, ok := <-client.Updates:
			if !ok {
				done = true
				break
			}
			got = append(got, u)
		case <-timeout:
			t.Fatal("timed out waiting for updates")
		}
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(got))
	}
	if !got[0].Snapshot || got[0].Status.Message != "idle" {
		t.Errorf("unexpected snapshot %+v", got[0])
	}
	if got[1].Snapshot || !got[1].Status.Generating {
		t.Errorf("unexpected update %+v", got[1])
	}
	if client.IsConnected() {
		t.Error("expected client to be disconnected after server close")
	}
}

func TestConnectFailure(t *testing.T) {
	client := NewClient(Config{ServerAddr: "127.0.0.1:1", DialTimeout: 500 * time.Millisecond})

	if err := client.Connect(context.Background()); err == nil {
		t.Error("expected dial error")
	}
}
