// internal/workers/content/generate-content/handler_test.go
package generatecontent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"content-workers/internal/common/logger"
	"content-workers/internal/content/orchestrator"
	"content-workers/internal/credits"
	"content-workers/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type stubPipeline struct {
	resp *orchestrator.Response
	err  error
	last *models.GenerationRequest
}

func (s *stubPipeline) HandleRequest(_ context.Context, req *models.GenerationRequest) (*orchestrator.Response, error) {
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func createTestConfig() *Config {
	return &Config{
		Timeout:             10 * time.Second,
		LowBalanceThreshold: 5,
	}
}

func createTestHandler(t *testing.T, pipeline Pipeline) *Handler {
	return NewHandler(createTestConfig(), pipeline, logger.NewTestLogger(t))
}

func createInput() *Input {
	return &Input{
		BrandProfile: models.BrandProfile{
			Name:        "Casa Verde",
			Description: "Modern Mexican cuisine",
		},
		Platform:    "instagram",
		ContentGoal: "promotion",
		UserID:      "user-1",
		ServiceTier: models.ServiceTierStandard,
	}
}

func successResponse(remaining int64) *orchestrator.Response {
	return &orchestrator.Response{
		Result: &models.GenerationResult{
			Headline:       "Fresh Pasta Nights",
			Caption:        "Handmade pasta every Friday night.",
			CTA:            "Reserve a table",
			Hashtags:       []string{"#pasta", "#dinner"},
			SourceTier:     models.SourceTierSpecialized,
			CoherenceScore: 80,
		},
		Detection: models.BusinessTypeDetection{
			PrimaryType:       "restaurant",
			PrimaryConfidence: 85,
		},
		RemainingCredits: remaining,
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	pipeline := &stubPipeline{resp: successResponse(12)}
	handler := createTestHandler(t, pipeline)

	output, err := handler.Execute(context.Background(), createInput())

	assert.NoError(t, err)
	assert.Equal(t, "Fresh Pasta Nights", output.Headline)
	assert.Equal(t, models.SourceTierSpecialized, output.SourceTier)
	assert.Equal(t, 80, output.CoherenceScore)
	assert.Equal(t, "restaurant", output.BusinessType)
	assert.Equal(t, 85, output.BusinessConfidence)
	assert.Equal(t, int64(12), output.RemainingCredits)
	assert.False(t, output.LowBalance)

	assert.Equal(t, "user-1", pipeline.last.UserID)
	assert.Equal(t, models.ServiceTierStandard, pipeline.last.ServiceTier)
}

func TestHandler_Execute_LowBalanceFlag(t *testing.T) {
	tests := []struct {
		name       string
		remaining  int64
		lowBalance bool
	}{
		{"well above threshold", 20, false},
		{"at threshold", 5, false},
		{"below threshold", 4, true},
		{"zero remaining", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline := &stubPipeline{resp: successResponse(tt.remaining)}
			handler := createTestHandler(t, pipeline)

			output, err := handler.Execute(context.Background(), createInput())

			assert.NoError(t, err)
			assert.Equal(t, tt.lowBalance, output.LowBalance)
		})
	}
}

// ==========================
// Validation Tests
// ==========================

func TestHandler_Execute_ValidatesInput(t *testing.T) {
	handler := createTestHandler(t, &stubPipeline{resp: successResponse(10)})

	missingUser := createInput()
	missingUser.UserID = ""
	_, err := handler.Execute(context.Background(), missingUser)
	assert.ErrorIs(t, err, ErrInvalidInput)

	missingPlatform := createInput()
	missingPlatform.Platform = ""
	_, err = handler.Execute(context.Background(), missingPlatform)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// ==========================
// Error Propagation Tests
// ==========================

func TestHandler_Execute_PropagatesPipelineErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"insufficient credits", &credits.InsufficientCreditsError{Required: 3, Remaining: 1}},
		{"all tiers exhausted", orchestrator.ErrAllTiersExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline := &stubPipeline{err: tt.err}
			handler := createTestHandler(t, pipeline)

			_, err := handler.Execute(context.Background(), createInput())

			assert.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
