// Package plates holds the plate-observation side of the system: a
// random-plate simulator standing in for a real recognizer, an
// in-memory registry of observations, and the watchlist of plates to
// monitor.
package plates

import (
	"strings"
	"time"
)

// Record is one observed plate.
type Record struct {
	// ID is a unique identifier for the observation.
	ID string `json:"id"`

	// Plate is the normalized plate text.
	Plate string `json:"plate"`

	// Confidence is the reported recognition confidence (0-1).
	Confidence float64 `json:"confidence"`

	// Camera labels the source the plate was seen on.
	Camera string `json:"camera"`

	// FirstSeen and LastSeen bound the observation window.
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`

	// Hits counts how many times the plate was observed.
	Hits int `json:"hits"`

	// Watched is true when the plate is on the watchlist.
	Watched bool `json:"watched"`
}

// Normalize canonicalizes plate text for matching: uppercase, spaces
// trimmed, internal whitespace collapsed away.
func Normalize(plate string) string {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	return strings.ReplaceAll(plate, " ", "")
}
