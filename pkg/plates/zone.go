package plates

import (
	"fmt"
	"image"
	"sync"
)

// minZonePoints is the minimum polygon size for a usable zone.
const minZonePoints = 4

// Zone is the detection-zone polygon a user draws over the camera
// feed. The pipeline only stores the point list and hands it to
// whatever does detection; no geometry is evaluated here.
type Zone struct {
	mu     sync.RWMutex
	points []image.Point
}

// NewZone creates an unconfigured zone.
func NewZone() *Zone {
	return &Zone{}
}

// Set replaces the zone polygon. Fewer than four points is rejected,
// matching the minimum the drawing UI enforces.
func (z *Zone) Set(points []image.Point) error {
	if len(points) < minZonePoints {
		return fmt.Errorf("zone needs at least %d points, got %d", minZonePoints, len(points))
	}

	z.mu.Lock()
	z.points = append([]image.Point(nil), points...)
	z.mu.Unlock()
	return nil
}

// Points returns a copy of the zone polygon, or nil when unset.
func (z *Zone) Points() []image.Point {
	z.mu.RLock()
	defer z.mu.RUnlock()

	if z.points == nil {
		return nil
	}
	return append([]image.Point(nil), z.points...)
}

// Configured reports whether a usable zone has been set.
func (z *Zone) Configured() bool {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return len(z.points) >= minZonePoints
}

// Clear removes the zone.
func (z *Zone) Clear() {
	z.mu.Lock()
	z.points = nil
	z.mu.Unlock()
}
