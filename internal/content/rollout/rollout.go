// internal/content/rollout/rollout.go
package rollout

import (
	"math/rand"
	"sync"
	"time"
)

// Selector gates access to specialized generation per business category.
// Each call draws independently, so the same request replayed may take a
// different path while the configured percentage holds in aggregate.
type Selector struct {
	mu          sync.Mutex
	rng         *rand.Rand
	percentages map[string]float64
}

// New builds a Selector over per-category rollout percentages (0-100).
// Categories absent from the map are fully gated off.
func New(percentages map[string]float64) *Selector {
	return NewWithSource(percentages, rand.NewSource(time.Now().UnixNano()))
}

// NewWithSource accepts an explicit random source so callers can pin the
// draw sequence.
func NewWithSource(percentages map[string]float64, source rand.Source) *Selector {
	return &Selector{
		rng:         rand.New(source),
		percentages: percentages,
	}
}

// ShouldUseSpecialized reports whether this request is admitted to the
// specialized tier for the given business type.
func (s *Selector) ShouldUseSpecialized(businessType string) bool {
	pct, ok := s.percentages[businessType]
	if !ok || pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}

	s.mu.Lock()
	draw := s.rng.Float64() * 100
	s.mu.Unlock()

	return draw < pct
}

// Percentage returns the configured rollout percentage for a business type.
func (s *Selector) Percentage(businessType string) float64 {
	return s.percentages[businessType]
}
