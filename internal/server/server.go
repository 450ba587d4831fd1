// ABOUTME: HTTP feed server for briefings and teams
// ABOUTME: gin JSON API, WAV audio, live status websocket, metrics and mDNS
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/harperreed/sportsbrief/internal/briefing"
	"github.com/harperreed/sportsbrief/internal/catalog"
	"github.com/harperreed/sportsbrief/internal/discovery"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// State is the persisted state the server reads and changes
type State interface {
	LikedTeams() ([]catalog.Team, error)
	ToggleTeam(team catalog.Team) (bool, error)
	Briefings() ([]briefing.Briefing, error)
	Briefing(id string) (briefing.Briefing, error)
}

// Generation is the briefing runner as seen by the server
type Generation interface {
	Status() briefing.Status
	Subscribe() (<-chan briefing.Status, func())
	TriggerAsync(ctx context.Context) error
}

// Logos resolves a logo URL to a cached local file
type Logos interface {
	Download(ctx context.Context, url string) (string, error)
}

// Config holds server configuration
type Config struct {
	Addr           string
	Name           string // mDNS instance name
	Version        string
	EnableMDNS     bool
	EnableMetrics  bool
	GenerateCtx    context.Context // parent of background generation runs
	ShutdownWindow time.Duration
}

// Server serves the briefing feed over HTTP
type Server struct {
	config  Config
	catalog *catalog.Catalog
	state   State
	runner  Generation
	logos   Logos

	router   *gin.Engine
	upgrader websocket.Upgrader
}

// New creates a server and registers its routes
func New(config Config, cat *catalog.Catalog, state State, runner Generation, logos Logos) *Server {
	if config.GenerateCtx == nil {
		config.GenerateCtx = context.Background()
	}
	if config.ShutdownWindow <= 0 {
		config.ShutdownWindow = 5 * time.Second
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	s := &Server{
		config:  config,
		catalog: cat,
		state:   state,
		runner:  runner,
		logos:   logos,
		router:  router,
		upgrader: websocket.Upgrader{
			// the feed is meant for the local network
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	api := router.Group("/api")
	{
		api.GET("/teams", s.handleTeams)
		api.GET("/teams/liked", s.handleLikedTeams)
		api.POST("/teams/:id/toggle", s.handleToggleTeam)
		api.GET("/teams/:id/logo", s.handleTeamLogo)

		api.GET("/briefings", s.handleBriefings)
		api.POST("/briefings/generate", s.handleGenerate)
		api.GET("/briefings/:id", s.handleBriefing)
		api.GET("/briefings/:id/audio.wav", s.handleBriefingAudio)

		api.GET("/status", s.handleStatus)
	}

	router.GET("/ws/status", s.handleStatusSocket)

	if config.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}

	if s.config.EnableMDNS {
		mgr := discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        ln.Addr().(*net.TCPAddr).Port,
			Version:     s.config.Version,
		})
		if err := mgr.Advertise(); err != nil {
			log.Warn().Err(err).Msg("Failed to start mDNS advertisement")
		} else {
			defer mgr.Stop()
		}
	}

	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.Serve(ln)
	}()

	log.Info().Str("addr", ln.Addr().String()).Msg("Feed server listening")

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("feed server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down feed server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownWindow)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down feed server: %w", err)
	}
	return nil
}

// requestLogger logs each request through zerolog
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(started)).
			Msg("HTTP request")
	}
}
