// internal/workers/content/generate-content/models.go
package generatecontent

import "content-workers/internal/models"

type Input struct {
	BrandProfile     models.BrandProfile `json:"brandProfile"`
	Platform         string              `json:"platform"`
	ContentGoal      string              `json:"contentGoal"`
	UseLocalLanguage bool                `json:"useLocalLanguage"`
	UserID           string              `json:"userId"`
	ServiceTier      string              `json:"serviceTier"`
}

// Output is written back to the process. LowBalance lets the process route
// to the low-credit-alert task without another balance read.
type Output struct {
	Headline           string   `json:"headline"`
	Subheadline        string   `json:"subheadline,omitempty"`
	Caption            string   `json:"caption"`
	CTA                string   `json:"cta"`
	Hashtags           []string `json:"hashtags"`
	SourceTier         string   `json:"sourceTier"`
	CoherenceScore     int      `json:"coherenceScore"`
	BusinessType       string   `json:"businessType"`
	BusinessConfidence int      `json:"businessConfidence"`
	RemainingCredits   int64    `json:"remainingCredits"`
	LowBalance         bool     `json:"lowBalance"`
}
