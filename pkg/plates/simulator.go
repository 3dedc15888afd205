package plates

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Template selects the plate format the simulator generates.
type Template string

const (
	// TemplateEU generates "ABC-123".
	TemplateEU Template = "EU"
	// TemplateUS generates "1234ABC".
	TemplateUS Template = "US"
	// TemplateOther generates "AB1234".
	TemplateOther Template = "other"
)

// plateLetters excludes I and O, which read as 1 and 0 on real plates.
const (
	plateLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	plateDigits  = "0123456789"
)

// Simulator generates random plate strings. There is no recognition
// pipeline behind it; it exists so the rest of the system has
// realistic traffic to move around.
type Simulator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	template Template
}

// NewSimulator creates a simulator with the given template. A nil rng
// gets a time-seeded one; tests pass a seeded rand.Rand for
// deterministic output.
func NewSimulator(template Template, rng *rand.Rand) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if template == "" {
		template = TemplateEU
	}
	return &Simulator{rng: rng, template: template}
}

// SetTemplate switches the generated plate format.
func (s *Simulator) SetTemplate(t Template) {
	s.mu.Lock()
	s.template = t
	s.mu.Unlock()
}

// Template returns the active plate format.
func (s *Simulator) Template() Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.template
}

// Generate returns one random plate in the active template.
func (s *Simulator) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.template {
	case TemplateUS:
		return fmt.Sprintf("%s%s", s.pick(plateDigits, 4), s.pick(plateLetters, 3))
	case TemplateOther:
		return fmt.Sprintf("%s%s", s.pick(plateLetters, 2), s.pick(plateDigits, 4))
	default: // TemplateEU
		return fmt.Sprintf("%s-%s", s.pick(plateLetters, 3), s.pick(plateDigits, 3))
	}
}

// Confidence returns a simulated recognition confidence in [0.7, 1.0).
func (s *Simulator) Confidence() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return 0.7 + 0.3*s.rng.Float64()
}

func (s *Simulator) pick(alphabet string, n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = alphabet[s.rng.Intn(len(alphabet))]
	}
	return string(out)
}
