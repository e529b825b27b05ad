// internal/models/generation.go
package models

// Service tiers a caller can purchase. The charge is fixed by the requested
// tier before generation starts, regardless of which fallback path serves it.
const (
	ServiceTierBasic    = "basic"
	ServiceTierStandard = "standard"
	ServiceTierPremium  = "premium"
)

// Source tiers recorded on every result for observability.
const (
	SourceTierSpecialized = "specialized"
	SourceTierGeneric     = "generic"
	SourceTierTemplate    = "template"
)

type GenerationRequest struct {
	BrandProfile     BrandProfile `json:"brandProfile"`
	Platform         string       `json:"platform"`
	ContentGoal      string       `json:"contentGoal"`
	UseLocalLanguage bool         `json:"useLocalLanguage"`
	UserID           string       `json:"userId"`
	ServiceTier      string       `json:"serviceTier"`
}

type GenerationResult struct {
	Headline       string   `json:"headline"`
	Subheadline    string   `json:"subheadline"`
	Caption        string   `json:"caption"`
	CTA            string   `json:"cta"`
	Hashtags       []string `json:"hashtags"`
	SourceTier     string   `json:"sourceTier"`
	CoherenceScore int      `json:"coherenceScore"`
}
