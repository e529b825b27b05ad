// internal/content/tiers/specialized.go
package tiers

import (
	"context"
	"fmt"

	"content-workers/internal/common/config"
	"content-workers/internal/common/logger"
	"content-workers/internal/models"
)

// Specialized routes requests to a per-business-type provider. Only
// categories with a configured endpoint have the capability; callers
// check HasCapability before routing here.
type Specialized struct {
	providers map[string]*providerClient
}

func NewSpecialized(endpoints map[string]config.ProviderEndpoint, log logger.Logger) *Specialized {
	providers := make(map[string]*providerClient, len(endpoints))
	for businessType, endpoint := range endpoints {
		providers[businessType] = newProviderClient("specialized-"+businessType, endpoint, log)
	}
	return &Specialized{providers: providers}
}

func (s *Specialized) Name() string {
	return models.SourceTierSpecialized
}

// HasCapability reports whether a specialized provider exists for the
// business type.
func (s *Specialized) HasCapability(businessType string) bool {
	_, ok := s.providers[businessType]
	return ok
}

func (s *Specialized) Generate(ctx context.Context, req *Request) (*Draft, error) {
	provider, ok := s.providers[req.Detection.PrimaryType]
	if !ok {
		return nil, fmt.Errorf("%w: no specialized provider for %q", ErrNoCapability, req.Detection.PrimaryType)
	}
	return provider.generate(ctx, req)
}
