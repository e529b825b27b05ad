// internal/content/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"content-workers/internal/common/config"
	"content-workers/internal/common/logger"
	"content-workers/internal/common/metrics"
	"content-workers/internal/content/classifier"
	"content-workers/internal/content/coherence"
	"content-workers/internal/content/constraints"
	"content-workers/internal/content/rollout"
	"content-workers/internal/content/tiers"
	"content-workers/internal/credits"
	"content-workers/internal/models"
)

var ErrAllTiersExhausted = errors.New("ALL_TIERS_EXHAUSTED")

const generationFeature = "content-generation"

// CreditLedger is the slice of the ledger the orchestrator needs.
type CreditLedger interface {
	Deduct(ctx context.Context, userID string, amount int64, txCtx credits.Context) (*models.CreditAccount, error)
	Add(ctx context.Context, userID string, amount int64, txCtx credits.Context) (*models.CreditAccount, error)
}

// SpecializedTier is a Generator that only covers some business types.
type SpecializedTier interface {
	tiers.Generator
	HasCapability(businessType string) bool
}

// Options wires the orchestrator's collaborators.
type Options struct {
	Classifier  *classifier.Classifier
	Rollout     *rollout.Selector
	Specialized SpecializedTier
	Generic     tiers.Generator
	Template    tiers.Generator
	Coherence   *coherence.Validator
	Constraints *constraints.Enforcer
	Ledger      CreditLedger
	Credits     config.CreditsConfig
	Logger      logger.Logger

	// DisableFallback makes the first tier's failure terminal instead of
	// advancing the loop. Debug switch only.
	DisableFallback bool
}

// Response is a completed generation plus the billing state the caller
// reports back to the process.
type Response struct {
	Result           *models.GenerationResult
	Detection        models.BusinessTypeDetection
	RemainingCredits int64
}

// Orchestrator runs a generation request end to end: classification,
// credit admission, the tier fallback loop with coherence gating, and
// platform constraint enforcement on the way out.
type Orchestrator struct {
	classifier      *classifier.Classifier
	rollout         *rollout.Selector
	specialized     SpecializedTier
	generic         tiers.Generator
	template        tiers.Generator
	coherence       *coherence.Validator
	constraints     *constraints.Enforcer
	ledger          CreditLedger
	credits         config.CreditsConfig
	logger          logger.Logger
	disableFallback bool
}

func New(opts Options) *Orchestrator {
	return &Orchestrator{
		classifier:      opts.Classifier,
		rollout:         opts.Rollout,
		specialized:     opts.Specialized,
		generic:         opts.Generic,
		template:        opts.Template,
		coherence:       opts.Coherence,
		constraints:     opts.Constraints,
		ledger:          opts.Ledger,
		credits:         opts.Credits,
		logger:          opts.Logger.WithFields(map[string]interface{}{"component": "orchestrator"}),
		disableFallback: opts.DisableFallback,
	}
}

// HandleRequest serves one generation request. Credits are deducted
// before any tier runs; if every tier fails the deduction is refunded so
// a request that produced nothing costs nothing.
func (o *Orchestrator) HandleRequest(ctx context.Context, req *models.GenerationRequest) (*Response, error) {
	detection := o.classifier.Classify(&req.BrandProfile)
	cost := o.credits.Cost(req.ServiceTier)

	account, err := o.ledger.Deduct(ctx, req.UserID, cost, credits.Context{
		Feature:       generationFeature,
		TierRequested: req.ServiceTier,
	})
	if err != nil {
		metrics.GenerationRequests.WithLabelValues("rejected").Inc()
		o.logger.Warn("request rejected at admission", map[string]interface{}{
			"userId": req.UserID,
			"cost":   cost,
			"error":  err.Error(),
		})
		return nil, err
	}

	tierReq := &tiers.Request{
		Profile:          &req.BrandProfile,
		Detection:        detection,
		Platform:         req.Platform,
		ContentGoal:      req.ContentGoal,
		UseLocalLanguage: req.UseLocalLanguage,
	}

	result, err := o.runTiers(ctx, tierReq)
	if err != nil {
		o.refund(ctx, req, cost)
		metrics.GenerationRequests.WithLabelValues("exhausted").Inc()
		return nil, err
	}

	before := len(result.Hashtags)
	result.Hashtags = o.constraints.EnforceHashtagLimit(result.Hashtags, req.Platform)
	if trimmed := before - len(result.Hashtags); trimmed > 0 {
		metrics.HashtagsTrimmed.WithLabelValues(strings.ToLower(req.Platform)).Add(float64(trimmed))
	}

	metrics.GenerationRequests.WithLabelValues("success").Inc()
	o.logger.Info("generation completed", map[string]interface{}{
		"userId":         req.UserID,
		"businessType":   detection.PrimaryType,
		"sourceTier":     result.SourceTier,
		"coherenceScore": result.CoherenceScore,
		"hashtagCount":   len(result.Hashtags),
	})

	return &Response{
		Result:           result,
		Detection:        detection,
		RemainingCredits: account.RemainingCredits,
	}, nil
}

// runTiers walks the candidate tiers in order until one produces an
// acceptable draft. The template tier closes the list and cannot fail,
// so exhaustion is defensive rather than expected.
func (o *Orchestrator) runTiers(ctx context.Context, req *tiers.Request) (*models.GenerationResult, error) {
	var failures []string

	for _, gen := range o.candidates(req.Detection) {
		metrics.GenerationTierAttempts.WithLabelValues(gen.Name()).Inc()

		draft, err := gen.Generate(ctx, req)
		if err != nil {
			reason := failureReason(err)
			metrics.GenerationTierFailures.WithLabelValues(gen.Name(), reason).Inc()
			failures = append(failures, fmt.Sprintf("%s: %s", gen.Name(), reason))
			o.logger.Warn("tier failed", map[string]interface{}{
				"tier":   gen.Name(),
				"reason": reason,
				"error":  err.Error(),
			})
			if o.disableFallback {
				return nil, err
			}
			continue
		}

		check := o.coherence.Validate(draft.Headline, draft.Caption, req.Detection.PrimaryType)

		// The template is the liveness floor: its output ships with its
		// score as-is. Network tiers must pass the gate.
		if gen.Name() != models.SourceTierTemplate && !o.coherence.Passes(check) {
			metrics.CoherenceRejections.WithLabelValues(gen.Name()).Inc()
			failures = append(failures, fmt.Sprintf("%s: coherence %d", gen.Name(), check.Score))
			o.logger.Warn("draft rejected for coherence", map[string]interface{}{
				"tier":    gen.Name(),
				"score":   check.Score,
				"reasons": check.Reasons,
			})
			if o.disableFallback {
				return nil, fmt.Errorf("coherence rejected on %s: score %d", gen.Name(), check.Score)
			}
			continue
		}

		return &models.GenerationResult{
			Headline:       draft.Headline,
			Subheadline:    draft.Subheadline,
			Caption:        draft.Caption,
			CTA:            draft.CTA,
			Hashtags:       draft.Hashtags,
			SourceTier:     gen.Name(),
			CoherenceScore: check.Score,
		}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrAllTiersExhausted, strings.Join(failures, "; "))
}

// candidates orders the tiers for one request. Specialized is included
// only when a provider for the detected type exists and the rollout gate
// admits this request.
func (o *Orchestrator) candidates(detection models.BusinessTypeDetection) []tiers.Generator {
	var list []tiers.Generator
	if o.specialized != nil &&
		o.specialized.HasCapability(detection.PrimaryType) &&
		o.rollout.ShouldUseSpecialized(detection.PrimaryType) {
		list = append(list, o.specialized)
	}
	list = append(list, o.generic, o.template)
	return list
}

func (o *Orchestrator) refund(ctx context.Context, req *models.GenerationRequest, cost int64) {
	if _, err := o.ledger.Add(ctx, req.UserID, cost, credits.Context{
		Feature:       "refund",
		TierRequested: req.ServiceTier,
	}); err != nil {
		o.logger.Error("refund failed", map[string]interface{}{
			"userId": req.UserID,
			"cost":   cost,
			"error":  err.Error(),
		})
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, tiers.ErrTimeout):
		return "timeout"
	case errors.Is(err, tiers.ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, tiers.ErrNoCapability):
		return "no_capability"
	default:
		return "provider"
	}
}
