// internal/content/orchestrator/orchestrator_test.go
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"content-workers/internal/common/config"
	"content-workers/internal/common/logger"
	"content-workers/internal/content/classifier"
	"content-workers/internal/content/coherence"
	"content-workers/internal/content/constraints"
	"content-workers/internal/content/rollout"
	"content-workers/internal/content/tiers"
	"content-workers/internal/credits"
	"content-workers/internal/models"
)

// ==========================
// Stubs
// ==========================

type stubGenerator struct {
	name  string
	draft *tiers.Draft
	err   error
	calls int
}

func (s *stubGenerator) Name() string { return s.name }

func (s *stubGenerator) Generate(_ context.Context, _ *tiers.Request) (*tiers.Draft, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	d := *s.draft
	return &d, nil
}

type stubSpecialized struct {
	stubGenerator
	capable bool
}

func (s *stubSpecialized) HasCapability(string) bool { return s.capable }

type stubLedger struct {
	deductCalls int
	addCalls    int
	deductErr   error
	remaining   int64

	lastDeductAmount int64
	lastDeductCtx    credits.Context
	lastAddAmount    int64
	lastAddCtx       credits.Context
}

func (s *stubLedger) Deduct(_ context.Context, userID string, amount int64, txCtx credits.Context) (*models.CreditAccount, error) {
	s.deductCalls++
	s.lastDeductAmount = amount
	s.lastDeductCtx = txCtx
	if s.deductErr != nil {
		return nil, s.deductErr
	}
	return &models.CreditAccount{UserID: userID, RemainingCredits: s.remaining}, nil
}

func (s *stubLedger) Add(_ context.Context, userID string, amount int64, txCtx credits.Context) (*models.CreditAccount, error) {
	s.addCalls++
	s.lastAddAmount = amount
	s.lastAddCtx = txCtx
	return &models.CreditAccount{UserID: userID, RemainingCredits: s.remaining + amount}, nil
}

// ==========================
// Fixtures
// ==========================

func coherentDraft(tier string) *tiers.Draft {
	return &tiers.Draft{
		Headline:    fmt.Sprintf("Fresh Pasta Nights (%s)", tier),
		Subheadline: "Every Friday",
		Caption:     "Fresh handmade pasta every Friday night, straight from our kitchen to your table.",
		CTA:         "Reserve a table",
		Hashtags:    []string{"#pasta", "#fresh", "#fridaynights", "#handmade", "#dinner", "#local", "#foodie"},
	}
}

func incoherentDraft() *tiers.Draft {
	return &tiers.Draft{
		Headline: "Quarterly Compliance Update",
		Caption:  "Our certified accountants handle bookkeeping, payroll and filings for small businesses.",
		CTA:      "Read more",
		Hashtags: []string{"#update"},
	}
}

func restaurantRequest() *models.GenerationRequest {
	return &models.GenerationRequest{
		BrandProfile: models.BrandProfile{
			Name:        "Casa Verde",
			Description: "Family-owned restaurant serving modern Mexican cuisine",
			Services:    []string{"dining", "catering"},
		},
		Platform:    "instagram",
		ContentGoal: "promotion",
		UserID:      "user-1",
		ServiceTier: models.ServiceTierPremium,
	}
}

type fixture struct {
	specialized *stubSpecialized
	generic     *stubGenerator
	template    *stubGenerator
	ledger      *stubLedger
	orch        *Orchestrator
}

func newFixture(opts ...func(*fixture)) *fixture {
	f := &fixture{
		specialized: &stubSpecialized{
			stubGenerator: stubGenerator{name: models.SourceTierSpecialized, draft: coherentDraft("specialized")},
			capable:       true,
		},
		generic:  &stubGenerator{name: models.SourceTierGeneric, draft: coherentDraft("generic")},
		template: &stubGenerator{name: models.SourceTierTemplate, draft: coherentDraft("template")},
		ledger:   &stubLedger{remaining: 7},
	}
	for _, opt := range opts {
		opt(f)
	}

	f.orch = New(Options{
		Classifier:  classifier.New(),
		Rollout:     rollout.NewWithSource(map[string]float64{"restaurant": 100}, rand.NewSource(1)),
		Specialized: f.specialized,
		Generic:     f.generic,
		Template:    f.template,
		Coherence:   coherence.New(60, 50, nil),
		Constraints: constraints.New(map[string]int{"instagram": 5}, 3),
		Ledger:      f.ledger,
		Credits: config.CreditsConfig{
			CostPerTier: map[string]int64{
				models.ServiceTierPremium:  3,
				models.ServiceTierStandard: 2,
				models.ServiceTierBasic:    1,
			},
			DefaultCost: 1,
		},
		Logger: logger.NewNoOpLogger(),
	})
	return f
}

// ==========================
// Happy path
// ==========================

func TestHandleRequest_SpecializedServesAdmittedRequest(t *testing.T) {
	f := newFixture()

	resp, err := f.orch.HandleRequest(context.Background(), restaurantRequest())

	assert.NoError(t, err)
	assert.Equal(t, models.SourceTierSpecialized, resp.Result.SourceTier)
	assert.Equal(t, "restaurant", resp.Detection.PrimaryType)
	assert.Equal(t, 1, f.specialized.calls)
	assert.Equal(t, 0, f.generic.calls)
	assert.Equal(t, 0, f.template.calls)

	// Premium request on instagram: charged 3, hashtags capped at 5.
	assert.Equal(t, int64(3), f.ledger.lastDeductAmount)
	assert.Equal(t, "premium", f.ledger.lastDeductCtx.TierRequested)
	assert.Len(t, resp.Result.Hashtags, 5)
	assert.Equal(t, []string{"#pasta", "#fresh", "#fridaynights", "#handmade", "#dinner"}, resp.Result.Hashtags)
	assert.Equal(t, int64(7), resp.RemainingCredits)
	assert.GreaterOrEqual(t, resp.Result.CoherenceScore, 60)
}

func TestHandleRequest_SpecializedTimeoutFallsToGeneric(t *testing.T) {
	f := newFixture(func(f *fixture) {
		f.specialized.err = tiers.ErrTimeout
	})

	resp, err := f.orch.HandleRequest(context.Background(), restaurantRequest())

	assert.NoError(t, err)
	assert.Equal(t, models.SourceTierGeneric, resp.Result.SourceTier)
	assert.Equal(t, 1, f.specialized.calls)
	assert.Equal(t, 1, f.generic.calls)
	assert.Equal(t, 0, f.template.calls)
}

func TestHandleRequest_RolloutGateSkipsSpecialized(t *testing.T) {
	f := newFixture()
	// general has no rollout entry; profile classifies as general.
	req := restaurantRequest()
	req.BrandProfile = models.BrandProfile{Name: "Zyxq", Description: "We do things"}

	resp, err := f.orch.HandleRequest(context.Background(), req)

	assert.NoError(t, err)
	assert.Equal(t, models.SourceTierGeneric, resp.Result.SourceTier)
	assert.Equal(t, 0, f.specialized.calls)
}

func TestHandleRequest_MissingCapabilitySkipsSpecialized(t *testing.T) {
	f := newFixture(func(f *fixture) {
		f.specialized.capable = false
	})

	resp, err := f.orch.HandleRequest(context.Background(), restaurantRequest())

	assert.NoError(t, err)
	assert.Equal(t, models.SourceTierGeneric, resp.Result.SourceTier)
	assert.Equal(t, 0, f.specialized.calls)
}

// ==========================
// Coherence gating
// ==========================

func TestHandleRequest_IncoherentSpecializedFallsToGeneric(t *testing.T) {
	f := newFixture(func(f *fixture) {
		f.specialized.draft = incoherentDraft()
	})

	resp, err := f.orch.HandleRequest(context.Background(), restaurantRequest())

	assert.NoError(t, err)
	assert.Equal(t, models.SourceTierGeneric, resp.Result.SourceTier)
	assert.Equal(t, 1, f.specialized.calls)
	assert.Equal(t, 1, f.generic.calls)
}

func TestHandleRequest_TemplateShipsEvenWhenIncoherent(t *testing.T) {
	f := newFixture(func(f *fixture) {
		f.specialized.err = tiers.ErrProviderFailed
		f.generic.err = tiers.ErrProviderFailed
		f.template.draft = incoherentDraft()
	})

	resp, err := f.orch.HandleRequest(context.Background(), restaurantRequest())

	assert.NoError(t, err)
	assert.Equal(t, models.SourceTierTemplate, resp.Result.SourceTier)
	assert.Less(t, resp.Result.CoherenceScore, 60)
}

// ==========================
// Degradation
// ==========================

func TestHandleRequest_FullDegradationToTemplate(t *testing.T) {
	f := newFixture(func(f *fixture) {
		f.specialized.err = tiers.ErrTimeout
		f.generic.err = tiers.ErrProviderFailed
	})

	resp, err := f.orch.HandleRequest(context.Background(), restaurantRequest())

	assert.NoError(t, err)
	assert.Equal(t, models.SourceTierTemplate, resp.Result.SourceTier)
	assert.Equal(t, 1, f.specialized.calls)
	assert.Equal(t, 1, f.generic.calls)
	assert.Equal(t, 1, f.template.calls)

	// Charged exactly once, no refund: the request produced content.
	assert.Equal(t, 1, f.ledger.deductCalls)
	assert.Equal(t, 0, f.ledger.addCalls)
}

func TestHandleRequest_AllTiersFailRefundsCharge(t *testing.T) {
	f := newFixture(func(f *fixture) {
		f.specialized.err = tiers.ErrTimeout
		f.generic.err = tiers.ErrProviderFailed
		f.template.err = errors.New("template render failed")
	})

	_, err := f.orch.HandleRequest(context.Background(), restaurantRequest())

	assert.ErrorIs(t, err, ErrAllTiersExhausted)
	assert.Equal(t, 1, f.ledger.deductCalls)
	assert.Equal(t, 1, f.ledger.addCalls)
	assert.Equal(t, int64(3), f.ledger.lastAddAmount)
	assert.Equal(t, "refund", f.ledger.lastAddCtx.Feature)
}

func TestHandleRequest_DisableFallbackPropagatesFirstFailure(t *testing.T) {
	f := newFixture(func(f *fixture) {
		f.specialized.err = tiers.ErrTimeout
	})
	f.orch.disableFallback = true

	_, err := f.orch.HandleRequest(context.Background(), restaurantRequest())

	assert.ErrorIs(t, err, tiers.ErrTimeout)
	assert.Equal(t, 0, f.generic.calls)
	assert.Equal(t, 0, f.template.calls)
	// The charge is returned: nothing was produced.
	assert.Equal(t, 1, f.ledger.addCalls)
}

// ==========================
// Admission
// ==========================

func TestHandleRequest_InsufficientCreditsRejectsBeforeGeneration(t *testing.T) {
	f := newFixture(func(f *fixture) {
		f.ledger.deductErr = &credits.InsufficientCreditsError{Required: 3, Remaining: 1}
	})

	_, err := f.orch.HandleRequest(context.Background(), restaurantRequest())

	assert.ErrorIs(t, err, credits.ErrInsufficientCredits)
	assert.Equal(t, 0, f.specialized.calls)
	assert.Equal(t, 0, f.generic.calls)
	assert.Equal(t, 0, f.template.calls)
	assert.Equal(t, 0, f.ledger.addCalls)
}

func TestHandleRequest_CostFollowsRequestedTier(t *testing.T) {
	tests := []struct {
		tier string
		cost int64
	}{
		{models.ServiceTierPremium, 3},
		{models.ServiceTierStandard, 2},
		{models.ServiceTierBasic, 1},
		{"unknown", 1},
	}

	for _, tt := range tests {
		t.Run(tt.tier, func(t *testing.T) {
			f := newFixture()
			req := restaurantRequest()
			req.ServiceTier = tt.tier

			_, err := f.orch.HandleRequest(context.Background(), req)

			assert.NoError(t, err)
			assert.Equal(t, tt.cost, f.ledger.lastDeductAmount)
		})
	}
}

func TestHandleRequest_DegradationDoesNotReprice(t *testing.T) {
	f := newFixture(func(f *fixture) {
		f.specialized.err = tiers.ErrTimeout
		f.generic.err = tiers.ErrProviderFailed
	})

	resp, err := f.orch.HandleRequest(context.Background(), restaurantRequest())

	assert.NoError(t, err)
	assert.Equal(t, models.SourceTierTemplate, resp.Result.SourceTier)
	assert.Equal(t, int64(3), f.ledger.lastDeductAmount)
	assert.Equal(t, "premium", f.ledger.lastDeductCtx.TierRequested)
}

// ==========================
// Constraint enforcement
// ==========================

func TestHandleRequest_HashtagCeilingHoldsForEveryTierAndPlatform(t *testing.T) {
	platforms := map[string]int{
		"instagram": 5,
		"facebook":  3,
		"linkedin":  3,
		"threads":   3, // unknown platform, default ceiling
	}

	for platform, limit := range platforms {
		for tagCount := 0; tagCount <= 10; tagCount++ {
			f := newFixture()
			draft := coherentDraft("specialized")
			draft.Hashtags = make([]string, tagCount)
			for i := range draft.Hashtags {
				draft.Hashtags[i] = fmt.Sprintf("#tag%d", i)
			}
			f.specialized.draft = draft

			req := restaurantRequest()
			req.Platform = platform

			resp, err := f.orch.HandleRequest(context.Background(), req)

			assert.NoError(t, err)
			assert.LessOrEqual(t, len(resp.Result.Hashtags), limit,
				"platform %s with %d tags", platform, tagCount)
			if tagCount <= limit {
				assert.Len(t, resp.Result.Hashtags, tagCount)
			}
		}
	}
}
