// platewatchd is the platewatch daemon: it scans for cameras, opens a
// capture session, feeds frames and simulated plate observations to
// the dashboard API, and tears everything down cleanly on SIGINT.
package main

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/platewatch/go-platewatch/internal/config"
	"github.com/platewatch/go-platewatch/internal/log"
	"github.com/platewatch/go-platewatch/pkg/capture"
	"github.com/platewatch/go-platewatch/pkg/plates"
	"github.com/platewatch/go-platewatch/pkg/web"
)

func main() {
	if path := config.LogFile(); path != "" {
		log.InitFile(config.LogLevel(), path)
	} else {
		log.Init(config.LogLevel())
	}
	logger := log.L()

	backend, err := capture.NewBackend(capture.BackendAuto, logger)
	if err != nil {
		logger.Error("backend init failed", "error", err)
		os.Exit(1)
	}

	registry := plates.NewRegistry()
	zone := plates.NewZone()
	sim := plates.NewSimulator(plates.Template(config.PlateTemplate()), nil)

	var (
		server     *web.Server
		frameCount atomic.Uint64
	)
	plateRate := uint64(config.PlateRate())

	consumer := capture.ConsumerFuncs{
		Frame: func(f capture.Frame) {
			if server.FrameClients() > 0 {
				if jpeg, err := capture.EncodeJPEG(f); err == nil {
					server.PublishFrame(jpeg)
				} else {
					logger.Debug("frame encode failed", "error", err)
				}
			}

			// The recognizer is a simulator: every plateRate frames it
			// invents an observation so the dashboard has traffic.
			if n := frameCount.Add(1); n%plateRate == 0 {
				rec, watched := registry.Observe(
					sim.Generate(), sim.Confidence(), config.Source(), time.Now())
				server.PublishPlate(rec)
				if watched {
					logger.Info("watched plate observed",
						"plate", rec.Plate, "hits", rec.Hits)
				}
			}
		},
		Error: func(err error) {
			logger.Error("capture terminated", "error", err)
		},
	}

	session := capture.NewSession(capture.DefaultConfig(), backend, consumer, logger)
	server = web.NewServer(config.HTTPAddr(), session, backend, registry, zone, logger)

	devices := capture.Scan(backend, logger)
	logger.Info("camera scan", "devices", devices)

	hints := capture.Hints{
		Width:  config.Width(),
		Height: config.Height(),
		FPS:    config.FPS(),
	}
	src := capture.ParseSource(config.Source())
	if err := session.Start(src, hints); err != nil {
		// Keep serving: the dashboard can pick another source.
		logger.Warn("initial source not started", "source", src.String(), "error", err)
	}

	server.StartAsync()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	session.Stop()
	if err := server.Shutdown(); err != nil {
		logger.Warn("server shutdown", "error", err)
	}
}
