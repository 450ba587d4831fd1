// ABOUTME: Live generation status over websocket
// ABOUTME: Pushes a snapshot on connect and every status change after it
package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/harperreed/sportsbrief/internal/briefing"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// statusMessage is one frame on the status socket
type statusMessage struct {
	Type   string          `json:"type"`
	Status briefing.Status `json:"status"`
}

func (s *Server) handleStatusSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Status websocket upgrade failed")
		return
	}
	defer conn.Close()

	updates, unsubscribe := s.runner.Subscribe()
	defer unsubscribe()

	log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("Status client connected")

	// reader only exists to notice the close and handle pongs
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(kind string, st briefing.Status) bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(statusMessage{Type: kind, Status: st}); err != nil {
			log.Debug().Err(err).Msg("Status client write failed")
			return false
		}
		return true
	}

	if !send("snapshot", s.runner.Status()) {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case st, ok := <-updates:
			if !ok {
				return
			}
			if !send("status", st) {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			log.Debug().Msg("Status client disconnected")
			return
		}
	}
}
