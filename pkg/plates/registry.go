package plates

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry is the in-memory store of plate observations plus the
// manually-maintained watchlist. All methods are safe for concurrent
// use; query results are snapshots.
type Registry struct {
	mu        sync.RWMutex
	records   map[string]*Record // keyed by normalized plate
	watchlist map[string]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		records:   make(map[string]*Record),
		watchlist: make(map[string]bool),
	}
}

// Observe records a plate sighting, merging repeat sightings into one
// record (first/last seen window, hit count). It returns a copy of the
// updated record and whether the plate is on the watchlist.
func (r *Registry) Observe(plate string, confidence float64, camera string, at time.Time) (Record, bool) {
	key := Normalize(plate)

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[key]
	if !ok {
		rec = &Record{
			ID:        uuid.NewString(),
			Plate:     key,
			FirstSeen: at,
		}
		r.records[key] = rec
	}

	rec.LastSeen = at
	rec.Hits++
	if confidence > rec.Confidence {
		rec.Confidence = confidence
	}
	if camera != "" {
		rec.Camera = camera
	}
	rec.Watched = r.watchlist[key]

	return *rec, rec.Watched
}

// All returns every record, most recently seen first.
func (r *Registry) All() []Record {
	return r.Filter("")
}

// Filter returns records whose plate contains the given text,
// case-insensitive, most recently seen first. An empty filter matches
// everything.
func (r *Registry) Filter(contains string) []Record {
	needle := Normalize(contains)

	r.mu.RLock()
	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		if needle != "" && !strings.Contains(rec.Plate, needle) {
			continue
		}
		out = append(out, *rec)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].LastSeen.After(out[j].LastSeen)
	})
	return out
}

// Len returns the number of distinct plates observed.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Clear drops all observations. The watchlist is kept.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.records = make(map[string]*Record)
	r.mu.Unlock()
}

// Watch adds a plate to the watchlist.
func (r *Registry) Watch(plate string) {
	key := Normalize(plate)
	if key == "" {
		return
	}

	r.mu.Lock()
	r.watchlist[key] = true
	if rec, ok := r.records[key]; ok {
		rec.Watched = true
	}
	r.mu.Unlock()
}

// Unwatch removes a plate from the watchlist.
func (r *Registry) Unwatch(plate string) {
	key := Normalize(plate)

	r.mu.Lock()
	delete(r.watchlist, key)
	if rec, ok := r.records[key]; ok {
		rec.Watched = false
	}
	r.mu.Unlock()
}

// IsWatched reports whether the plate is on the watchlist.
func (r *Registry) IsWatched(plate string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.watchlist[Normalize(plate)]
}

// Watched returns the watchlist, sorted.
func (r *Registry) Watched() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.watchlist))
	for p := range r.watchlist {
		out = append(out, p)
	}
	r.mu.RUnlock()

	sort.Strings(out)
	return out
}
