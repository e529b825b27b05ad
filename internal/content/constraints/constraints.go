// internal/content/constraints/constraints.go
package constraints

import "strings"

// Enforcer applies per-platform publishing constraints to generated
// content. It is pure: no network, no state, same input same output.
type Enforcer struct {
	limits       map[string]int
	defaultLimit int
}

// New builds an Enforcer from per-platform hashtag ceilings. Platforms
// missing from the map fall back to defaultLimit.
func New(limits map[string]int, defaultLimit int) *Enforcer {
	normalized := make(map[string]int, len(limits))
	for platform, limit := range limits {
		normalized[strings.ToLower(platform)] = limit
	}
	return &Enforcer{limits: normalized, defaultLimit: defaultLimit}
}

// HashtagLimit returns the hashtag ceiling for a platform.
func (e *Enforcer) HashtagLimit(platform string) int {
	if limit, ok := e.limits[strings.ToLower(platform)]; ok {
		return limit
	}
	return e.defaultLimit
}

// EnforceHashtagLimit truncates hashtags to the platform ceiling,
// preserving generation order. Lists already within the ceiling are
// returned unchanged.
func (e *Enforcer) EnforceHashtagLimit(hashtags []string, platform string) []string {
	limit := e.HashtagLimit(platform)
	if len(hashtags) <= limit {
		return hashtags
	}
	return hashtags[:limit]
}
