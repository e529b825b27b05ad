// internal/content/rollout/rollout_test.go
package rollout

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldUseSpecialized_ZeroPercentNeverAdmits(t *testing.T) {
	s := NewWithSource(map[string]float64{"restaurant": 0}, rand.NewSource(1))

	for i := 0; i < 1000; i++ {
		assert.False(t, s.ShouldUseSpecialized("restaurant"))
	}
}

func TestShouldUseSpecialized_UnknownCategoryNeverAdmits(t *testing.T) {
	s := NewWithSource(map[string]float64{"restaurant": 50}, rand.NewSource(1))

	for i := 0; i < 1000; i++ {
		assert.False(t, s.ShouldUseSpecialized("fitness"))
	}
}

func TestShouldUseSpecialized_FullRolloutAlwaysAdmits(t *testing.T) {
	s := NewWithSource(map[string]float64{"restaurant": 100}, rand.NewSource(1))

	for i := 0; i < 1000; i++ {
		assert.True(t, s.ShouldUseSpecialized("restaurant"))
	}
}

func TestShouldUseSpecialized_PartialRolloutApproximatesPercentage(t *testing.T) {
	s := NewWithSource(map[string]float64{"retail": 30}, rand.NewSource(42))

	const draws = 20000
	admitted := 0
	for i := 0; i < draws; i++ {
		if s.ShouldUseSpecialized("retail") {
			admitted++
		}
	}

	rate := float64(admitted) / draws * 100
	assert.InDelta(t, 30, rate, 2.0)
}

func TestShouldUseSpecialized_IndependentDrawsPerRequest(t *testing.T) {
	s := NewWithSource(map[string]float64{"fitness": 50}, rand.NewSource(7))

	outcomes := map[bool]int{}
	for i := 0; i < 200; i++ {
		outcomes[s.ShouldUseSpecialized("fitness")]++
	}

	// At 50% both outcomes must occur; identical decisions would mean the
	// draw is being cached per category.
	assert.Greater(t, outcomes[true], 0)
	assert.Greater(t, outcomes[false], 0)
}

func TestPercentage(t *testing.T) {
	s := New(map[string]float64{"beauty": 12.5})

	assert.Equal(t, 12.5, s.Percentage("beauty"))
	assert.Equal(t, 0.0, s.Percentage("unknown"))
}
