// internal/content/tiers/generic.go
package tiers

import (
	"context"

	"content-workers/internal/common/config"
	"content-workers/internal/common/logger"
	"content-workers/internal/models"
)

// Generic is the brand- and platform-aware provider that serves every
// business type. It sits between the specialized tier and the offline
// template floor.
type Generic struct {
	provider *providerClient
}

func NewGeneric(endpoint config.ProviderEndpoint, log logger.Logger) *Generic {
	return &Generic{provider: newProviderClient("generic", endpoint, log)}
}

func (g *Generic) Name() string {
	return models.SourceTierGeneric
}

func (g *Generic) Generate(ctx context.Context, req *Request) (*Draft, error) {
	return g.provider.generate(ctx, req)
}
