package plates

import (
	"image"
	"math/rand"
	"regexp"
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"abc-123", "ABC-123"},
		{"  AB 12 CD  ", "AB12CD"},
		{"xyz789", "XYZ789"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSimulatorTemplates(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	tests := []struct {
		template Template
		pattern  string
	}{
		{TemplateEU, `^[A-HJ-NP-Z]{3}-[0-9]{3}$`},
		{TemplateUS, `^[0-9]{4}[A-HJ-NP-Z]{3}$`},
		{TemplateOther, `^[A-HJ-NP-Z]{2}[0-9]{4}$`},
	}

	for _, tt := range tests {
		sim := NewSimulator(tt.template, rng)
		re := regexp.MustCompile(tt.pattern)
		for i := 0; i < 50; i++ {
			plate := sim.Generate()
			if !re.MatchString(plate) {
				t.Fatalf("template %s produced %q, want match for %s",
					tt.template, plate, tt.pattern)
			}
		}
	}
}

func TestSimulatorDeterministic(t *testing.T) {
	a := NewSimulator(TemplateEU, rand.New(rand.NewSource(7)))
	b := NewSimulator(TemplateEU, rand.New(rand.NewSource(7)))

	for i := 0; i < 10; i++ {
		if pa, pb := a.Generate(), b.Generate(); pa != pb {
			t.Fatalf("same seed diverged: %q vs %q", pa, pb)
		}
	}
}

func TestSimulatorConfidenceRange(t *testing.T) {
	sim := NewSimulator(TemplateEU, rand.New(rand.NewSource(1)))
	for i := 0; i < 100; i++ {
		c := sim.Confidence()
		if c < 0.7 || c >= 1.0 {
			t.Fatalf("confidence %f outside [0.7, 1.0)", c)
		}
	}
}

func TestRegistryObserveMergesRepeats(t *testing.T) {
	reg := NewRegistry()
	t0 := time.Now()

	first, _ := reg.Observe("abc-123", 0.8, "cam0", t0)
	second, _ := reg.Observe("ABC-123", 0.75, "cam0", t0.Add(time.Minute))

	if reg.Len() != 1 {
		t.Fatalf("expected 1 distinct plate, got %d", reg.Len())
	}
	if second.ID != first.ID {
		t.Error("repeat observation created a new record")
	}
	if second.Hits != 2 {
		t.Errorf("expected 2 hits, got %d", second.Hits)
	}
	if !second.FirstSeen.Equal(t0) {
		t.Error("first seen time moved on repeat observation")
	}
	if second.Confidence != 0.8 {
		t.Errorf("confidence should keep the best value, got %f", second.Confidence)
	}
}

func TestRegistryFilter(t *testing.T) {
	reg := NewRegistry()
	now := time.Now()
	reg.Observe("ABC-123", 0.9, "cam0", now)
	reg.Observe("XYZ-789", 0.9, "cam0", now.Add(time.Second))
	reg.Observe("ABD-456", 0.9, "cam0", now.Add(2*time.Second))

	got := reg.Filter("ab")
	if len(got) != 2 {
		t.Fatalf("expected 2 matches for 'ab', got %d", len(got))
	}
	// Most recently seen first.
	if got[0].Plate != "ABD-456" || got[1].Plate != "ABC-123" {
		t.Errorf("wrong order: %s, %s", got[0].Plate, got[1].Plate)
	}

	if all := reg.Filter(""); len(all) != 3 {
		t.Errorf("empty filter should match everything, got %d", len(all))
	}
	if none := reg.Filter("qq"); len(none) != 0 {
		t.Errorf("expected no matches, got %d", len(none))
	}
}

func TestRegistryWatchlist(t *testing.T) {
	reg := NewRegistry()

	reg.Watch("abc-123")
	if !reg.IsWatched("ABC-123") {
		t.Error("watchlist lookup should be case-insensitive")
	}

	_, hit := reg.Observe("ABC-123", 0.9, "cam0", time.Now())
	if !hit {
		t.Error("observation of a watched plate should report a hit")
	}
	_, hit = reg.Observe("XYZ-789", 0.9, "cam0", time.Now())
	if hit {
		t.Error("unwatched plate reported as hit")
	}

	reg.Unwatch("ABC-123")
	if reg.IsWatched("ABC-123") {
		t.Error("Unwatch did not remove the plate")
	}

	reg.Watch("aa-11")
	reg.Watch("bb-22")
	watched := reg.Watched()
	if len(watched) != 2 || watched[0] != "AA-11" || watched[1] != "BB-22" {
		t.Errorf("unexpected watchlist: %v", watched)
	}
}

func TestRegistryClearKeepsWatchlist(t *testing.T) {
	reg := NewRegistry()
	reg.Watch("ABC-123")
	reg.Observe("ABC-123", 0.9, "cam0", time.Now())

	reg.Clear()
	if reg.Len() != 0 {
		t.Errorf("expected empty registry, got %d", reg.Len())
	}
	if !reg.IsWatched("ABC-123") {
		t.Error("Clear dropped the watchlist")
	}
}

func TestZone(t *testing.T) {
	z := NewZone()
	if z.Configured() {
		t.Error("new zone should be unconfigured")
	}
	if z.Points() != nil {
		t.Error("new zone should have nil points")
	}

	if err := z.Set([]image.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}); err == nil {
		t.Error("three points should be rejected")
	}

	quad := []image.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	if err := z.Set(quad); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !z.Configured() {
		t.Error("zone should be configured")
	}

	pts := z.Points()
	pts[0].X = 99
	if z.Points()[0].X != 0 {
		t.Error("Points returned a shared slice")
	}

	z.Clear()
	if z.Configured() {
		t.Error("Clear did not reset the zone")
	}
}
