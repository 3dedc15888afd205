// Package web provides the HTTP/websocket surface the dashboard UI
// talks to: device scans, session control, plate queries and the live
// frame/plate feeds. The UI itself lives elsewhere; this package only
// serves its transport.
package web

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/platewatch/go-platewatch/pkg/capture"
	"github.com/platewatch/go-platewatch/pkg/hub"
	"github.com/platewatch/go-platewatch/pkg/plates"
)

// Server is the dashboard API server.
type Server struct {
	app    *fiber.App
	addr   string
	logger *slog.Logger

	session  *capture.Session
	backend  capture.Backend
	registry *plates.Registry
	zone     *plates.Zone

	frameHub *hub.Hub
	plateHub *hub.Hub
}

// NewServer wires the API around an existing capture session and
// registry. The hubs are owned by the server; their Run loops start
// with Start.
func NewServer(addr string, session *capture.Session, backend capture.Backend,
	registry *plates.Registry, zone *plates.Zone, logger *slog.Logger) *Server {

	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		addr:     addr,
		logger:   logger,
		session:  session,
		backend:  backend,
		registry: registry,
		zone:     zone,
		frameHub: hub.New("frames", logger),
		plateHub: hub.New("plates", logger),
	}

	app := fiber.New(fiber.Config{
		AppName:               "platewatch",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/devices", s.handleDevices)
	api.Get("/status", s.handleStatus)
	api.Post("/session/start", s.handleSessionStart)
	api.Post("/session/stop", s.handleSessionStop)
	api.Get("/plates", s.handlePlates)
	api.Get("/watchlist", s.handleWatchlist)
	api.Post("/watchlist/:plate", s.handleWatch)
	api.Delete("/watchlist/:plate", s.handleUnwatch)
	api.Post("/zone", s.handleSetZone)
	api.Get("/zone", s.handleGetZone)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/frames", websocket.New(s.handleFramesWS))
	app.Get("/ws/plates", websocket.New(s.handlePlatesWS))

	s.app = app
	return s
}

// Start runs the hub loops and listens on the configured address.
// It blocks; use StartAsync in a daemon.
func (s *Server) Start() error {
	go s.frameHub.Run()
	go s.plateHub.Run()

	s.logger.Info("dashboard API listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("dashboard server failed", "error", err)
		}
	}()
}

// Shutdown stops the listener and the hubs.
func (s *Server) Shutdown() error {
	s.frameHub.Close()
	s.plateHub.Close()
	return s.app.Shutdown()
}

// FrameClients reports how many dashboard clients are watching the
// frame feed. Producers skip JPEG encoding when nobody is connected.
func (s *Server) FrameClients() int {
	return s.frameHub.ClientCount()
}

// PublishFrame broadcasts an encoded JPEG frame to feed clients.
// It never blocks the caller.
func (s *Server) PublishFrame(jpeg []byte) {
	s.frameHub.BroadcastBinary(jpeg)
}

// PublishPlate broadcasts a plate observation to feed clients.
func (s *Server) PublishPlate(rec plates.Record) {
	if err := s.plateHub.BroadcastJSON(rec); err != nil {
		s.logger.Warn("failed to broadcast plate", "error", err)
	}
}

// handleFramesWS attaches a dashboard client to the frame feed.
func (s *Server) handleFramesWS(c *websocket.Conn) {
	hub.NewClient(s.frameHub, c).Run()
}

// handlePlatesWS attaches a dashboard client to the plate feed.
func (s *Server) handlePlatesWS(c *websocket.Conn) {
	hub.NewClient(s.plateHub, c).Run()
}
