// internal/content/constraints/constraints_test.go
package constraints

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestEnforcer() *Enforcer {
	return New(map[string]int{
		"instagram": 5,
		"facebook":  3,
		"linkedin":  3,
		"twitter":   3,
		"tiktok":    3,
	}, 3)
}

func TestEnforceHashtagLimit_TruncatesPreservingOrder(t *testing.T) {
	e := newTestEnforcer()

	tags := []string{"#one", "#two", "#three", "#four", "#five", "#six", "#seven"}

	result := e.EnforceHashtagLimit(tags, "instagram")
	assert.Equal(t, []string{"#one", "#two", "#three", "#four", "#five"}, result)

	result = e.EnforceHashtagLimit(tags, "linkedin")
	assert.Equal(t, []string{"#one", "#two", "#three"}, result)
}

func TestEnforceHashtagLimit_WithinLimitUnchanged(t *testing.T) {
	e := newTestEnforcer()

	tags := []string{"#brunch", "#local"}

	assert.Equal(t, tags, e.EnforceHashtagLimit(tags, "instagram"))
	assert.Equal(t, tags, e.EnforceHashtagLimit(tags, "twitter"))
}

func TestEnforceHashtagLimit_UnknownPlatformUsesDefault(t *testing.T) {
	e := newTestEnforcer()

	tags := []string{"#a", "#b", "#c", "#d", "#e"}

	assert.Equal(t, []string{"#a", "#b", "#c"}, e.EnforceHashtagLimit(tags, "threads"))
}

func TestEnforceHashtagLimit_CaseInsensitivePlatform(t *testing.T) {
	e := newTestEnforcer()

	tags := []string{"#a", "#b", "#c", "#d", "#e", "#f"}

	assert.Len(t, e.EnforceHashtagLimit(tags, "Instagram"), 5)
	assert.Len(t, e.EnforceHashtagLimit(tags, "FACEBOOK"), 3)
}

func TestEnforceHashtagLimit_EmptyAndNil(t *testing.T) {
	e := newTestEnforcer()

	assert.Empty(t, e.EnforceHashtagLimit(nil, "instagram"))
	assert.Empty(t, e.EnforceHashtagLimit([]string{}, "facebook"))
}

func TestEnforceHashtagLimit_NeverExceedsCeiling(t *testing.T) {
	e := newTestEnforcer()

	platforms := []string{"instagram", "facebook", "linkedin", "twitter", "tiktok", "unknown"}

	for _, platform := range platforms {
		for n := 0; n <= 12; n++ {
			tags := make([]string, n)
			for i := range tags {
				tags[i] = fmt.Sprintf("#tag%d", i)
			}
			result := e.EnforceHashtagLimit(tags, platform)
			assert.LessOrEqual(t, len(result), e.HashtagLimit(platform),
				"platform %s with %d tags", platform, n)
		}
	}
}
