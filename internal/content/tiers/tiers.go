// internal/content/tiers/tiers.go
package tiers

import (
	"context"
	"errors"

	"content-workers/internal/models"
)

var (
	ErrTimeout           = errors.New("TIER_TIMEOUT")
	ErrProviderFailed    = errors.New("TIER_PROVIDER_FAILED")
	ErrMalformedResponse = errors.New("TIER_MALFORMED_RESPONSE")
	ErrNoCapability      = errors.New("TIER_NO_CAPABILITY")
)

// Request carries everything a tier needs to produce a draft. Detection is
// filled upstream by the classifier.
type Request struct {
	Profile          *models.BrandProfile
	Detection        models.BusinessTypeDetection
	Platform         string
	ContentGoal      string
	UseLocalLanguage bool
}

// Draft is raw tier output before coherence validation and constraint
// enforcement.
type Draft struct {
	Headline    string   `json:"headline"`
	Subheadline string   `json:"subheadline"`
	Caption     string   `json:"caption"`
	CTA         string   `json:"cta"`
	Hashtags    []string `json:"hashtags"`
}

// Generator is a single generation tier. Implementations report failures
// through the sentinel errors above so the caller can record why a tier
// was skipped.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req *Request) (*Draft, error)
}
