// Package config provides configuration helpers for platewatch
// commands. Everything is read from the environment with sensible
// defaults, so the daemon runs with no flags at all.
package config

import (
	"os"
	"strconv"
)

// Defaults for the daemon.
const (
	DefaultHTTPAddr  = ":8080"
	DefaultSource    = "0"
	DefaultWidth     = 1280
	DefaultHeight    = 720
	DefaultFPS       = 30
	DefaultLogLevel  = "info"
	DefaultLogFile   = ""
	DefaultTemplate  = "EU"
	DefaultPlateRate = 90 // frames between simulated plate observations
)

// HTTPAddr returns the dashboard listen address.
func HTTPAddr() string {
	return getString("PLATEWATCH_HTTP_ADDR", DefaultHTTPAddr)
}

// Source returns the configured capture source: a device index
// ("0", "1", ...) or a stream URL.
func Source() string {
	return getString("PLATEWATCH_SOURCE", DefaultSource)
}

// Width, Height and FPS return the capture hints.
func Width() int  { return getInt("PLATEWATCH_WIDTH", DefaultWidth) }
func Height() int { return getInt("PLATEWATCH_HEIGHT", DefaultHeight) }
func FPS() int    { return getInt("PLATEWATCH_FPS", DefaultFPS) }

// LogLevel returns the configured log level.
func LogLevel() string {
	return getString("PLATEWATCH_LOG_LEVEL", DefaultLogLevel)
}

// LogFile returns the flat log file path, empty for stdout only.
func LogFile() string {
	return getString("PLATEWATCH_LOG_FILE", DefaultLogFile)
}

// PlateTemplate returns the simulated plate format (EU, US, other).
func PlateTemplate() string {
	return getString("PLATEWATCH_PLATE_TEMPLATE", DefaultTemplate)
}

// PlateRate returns how many frames pass between simulated plate
// observations.
func PlateRate() int {
	return getInt("PLATEWATCH_PLATE_RATE", DefaultPlateRate)
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
