package web

import (
	"image"

	"github.com/gofiber/fiber/v2"

	"github.com/platewatch/go-platewatch/pkg/capture"
	"github.com/platewatch/go-platewatch/pkg/plates"
)

// handleDevices runs a fresh device scan. The result is a snapshot;
// clients re-scan explicitly after plugging cameras in or out.
func (s *Server) handleDevices(c *fiber.Ctx) error {
	devices := capture.Scan(s.backend, s.logger)
	return c.JSON(fiber.Map{"devices": devices})
}

// handleStatus reports the session state and counters.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	status := fiber.Map{
		"stats":  s.session.Stats(),
		"plates": s.registry.Len(),
	}
	if src, ok := s.session.Source(); ok {
		status["source"] = src.String()
	}
	return c.JSON(status)
}

// StartRequest is the body of POST /api/session/start.
type StartRequest struct {
	// Source is a device index ("0") or a stream URL.
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	FPS    int    `json:"fps"`
}

// handleSessionStart opens the requested source. A session already
// running is stopped first; an open failure returns 502 with the
// error text and leaves the session idle.
func (s *Server) handleSessionStart(c *fiber.Ctx) error {
	var req StartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	hints := capture.DefaultHints()
	if req.Width > 0 {
		hints.Width = req.Width
	}
	if req.Height > 0 {
		hints.Height = req.Height
	}
	if req.FPS > 0 {
		hints.FPS = req.FPS
	}

	src := capture.ParseSource(req.Source)
	if err := s.session.Start(src, hints); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"source": src.String(),
		"state":  s.session.State().String(),
	})
}

// handleSessionStop stops the session; stopping an idle session is a
// no-op and still returns 200.
func (s *Server) handleSessionStop(c *fiber.Ctx) error {
	s.session.Stop()
	return c.JSON(fiber.Map{"state": s.session.State().String()})
}

// handlePlates returns observations, optionally filtered by
// ?filter=<substring>.
func (s *Server) handlePlates(c *fiber.Ctx) error {
	records := s.registry.Filter(c.Query("filter"))
	return c.JSON(fiber.Map{"plates": records})
}

func (s *Server) handleWatchlist(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"watchlist": s.registry.Watched()})
}

func (s *Server) handleWatch(c *fiber.Ctx) error {
	plate := plates.Normalize(c.Params("plate"))
	if plate == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "plate is required",
		})
	}
	s.registry.Watch(plate)
	return c.JSON(fiber.Map{"watchlist": s.registry.Watched()})
}

func (s *Server) handleUnwatch(c *fiber.Ctx) error {
	s.registry.Unwatch(c.Params("plate"))
	return c.JSON(fiber.Map{"watchlist": s.registry.Watched()})
}

// zonePoint is the wire form of one polygon vertex.
type zonePoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ZoneRequest is the body of POST /api/zone.
type ZoneRequest struct {
	Points []zonePoint `json:"points"`
}

func zonePoints(pts []image.Point) []zonePoint {
	out := make([]zonePoint, len(pts))
	for i, p := range pts {
		out[i] = zonePoint{X: p.X, Y: p.Y}
	}
	return out
}

// handleSetZone stores the detection-zone polygon drawn in the UI.
func (s *Server) handleSetZone(c *fiber.Ctx) error {
	var req ZoneRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	points := make([]image.Point, len(req.Points))
	for i, p := range req.Points {
		points[i] = image.Point{X: p.X, Y: p.Y}
	}

	if err := s.zone.Set(points); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"points": zonePoints(s.zone.Points())})
}

func (s *Server) handleGetZone(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"configured": s.zone.Configured(),
		"points":     zonePoints(s.zone.Points()),
	})
}
