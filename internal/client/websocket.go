// ABOUTME: WebSocket client for a feed server's status stream
// ABOUTME: Handles connection and routes status frames to a channel
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/harperreed/sportsbrief/internal/briefing"
	"github.com/rs/zerolog/log"
)

// StatusPath is the status stream endpoint on a feed server
const StatusPath = "/ws/status"

// Config holds client configuration
type Config struct {
	ServerAddr  string // host:port
	DialTimeout time.Duration
}

// Client represents a status stream connection
type Client struct {
	config Config
	conn   *websocket.Conn
	mu     sync.RWMutex

	// Updates receives the snapshot and every later status. It is closed
	// when the connection ends.
	Updates chan Update

	connected bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// Update is one status frame from the server
type Update struct {
	Snapshot bool
	Status   briefing.Status
}

// frame mirrors the server's wire format
type frame struct {
	Type   string          `json:"type"`
	Status briefing.Status `json:"status"`
}

// NewClient creates a new status client
func NewClient(config Config) *Client {
	if config.DialTimeout <= 0 {
		config.DialTimeout = 5 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		config:  config,
		Updates: make(chan Update, 16),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Connect dials the status stream and starts routing frames
func (c *Client) Connect(ctx context.Context) error {
	u := url.URL{Scheme: "ws", Host: c.config.ServerAddr, Path: StatusPath}
	log.Debug().Str("url", u.String()).Msg("Connecting to status stream")

	dialer := websocket.Dialer{HandshakeTimeout: c.config.DialTimeout}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readMessages()

	return nil
}

// readMessages reads and routes incoming frames
func (c *Client) readMessages() {
	defer close(c.Updates)
	defer c.Close()

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.ctx.Done():
			default:
				log.Debug().Err(err).Msg("Status stream read error")
			}
			return
		}

		if messageType != websocket.TextMessage {
			continue
		}
		c.handleJSONMessage(data)
	}
}

// handleJSONMessage decodes one frame
func (c *Client) handleJSONMessage(data []byte) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		log.Warn().Err(err).Msg("Failed to parse status frame")
		return
	}

	switch f.Type {
	case "snapshot", "status":
		select {
		case c.Updates <- Update{Snapshot: f.Type == "snapshot", Status: f.Status}:
		case <-c.ctx.Done():
		}
	default:
		log.Debug().Str("type", f.Type).Msg("Unknown status frame type")
	}
}

// Close closes the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		c.connected = false
		c.cancel()
		c.conn.Close()
		log.Debug().Msg("Status stream closed")
	}
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
