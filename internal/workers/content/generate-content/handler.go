// internal/workers/content/generate-content/handler.go
package generatecontent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	commonerrors "content-workers/internal/common/errors"
	"content-workers/internal/common/logger"
	"content-workers/internal/common/metrics"
	"content-workers/internal/content/orchestrator"
	"content-workers/internal/credits"
	"content-workers/internal/models"
)

const (
	TaskType = "generate-content"
)

var (
	ErrInvalidInput = errors.New("INVALID_INPUT")
)

// Pipeline is the orchestrator surface this worker drives.
type Pipeline interface {
	HandleRequest(ctx context.Context, req *models.GenerationRequest) (*orchestrator.Response, error)
}

type Handler struct {
	config   *Config
	pipeline Pipeline
	logger   logger.Logger
}

func NewHandler(config *Config, pipeline Pipeline, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		pipeline: pipeline,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, &commonerrors.StandardError{
			Code:      "PARSE_ERROR",
			Message:   "Could not parse job variables",
			Details:   err.Error(),
			Retryable: false,
			Timestamp: time.Now().UTC(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, h.classifyError(err))
		return
	}

	h.completeJob(client, job, output)
}

// classifyError maps pipeline errors onto the standardized error codes the
// workflow routes on.
func (h *Handler) classifyError(err error) *commonerrors.StandardError {
	var insufficient *credits.InsufficientCreditsError
	switch {
	case errors.Is(err, ErrInvalidInput):
		return &commonerrors.StandardError{
			Code:      "INVALID_INPUT",
			Message:   "Invalid generation request",
			Details:   err.Error(),
			Retryable: false,
			Timestamp: time.Now().UTC(),
		}
	case errors.As(err, &insufficient):
		return commonerrors.NewInsufficientCreditsError(insufficient.Required, insufficient.Remaining)
	case errors.Is(err, credits.ErrInsufficientCredits):
		return commonerrors.NewInsufficientCreditsError(0, 0)
	case errors.Is(err, credits.ErrAccountNotFound):
		return &commonerrors.StandardError{
			Code:      "ACCOUNT_NOT_FOUND",
			Message:   "No credit account for this user",
			Details:   err.Error(),
			Retryable: false,
			Timestamp: time.Now().UTC(),
		}
	case errors.Is(err, credits.ErrLedgerConflict):
		return commonerrors.NewLedgerConflictError(err)
	case errors.Is(err, orchestrator.ErrAllTiersExhausted):
		return commonerrors.NewAllTiersExhaustedError(err.Error())
	default:
		return &commonerrors.StandardError{
			Code:      "GENERATION_FAILED",
			Message:   "Content generation failed",
			Details:   err.Error(),
			Retryable: false,
			Timestamp: time.Now().UTC(),
		}
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.UserID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if input.Platform == "" {
		return nil, fmt.Errorf("%w: platform is required", ErrInvalidInput)
	}

	resp, err := h.pipeline.HandleRequest(ctx, &models.GenerationRequest{
		BrandProfile:     input.BrandProfile,
		Platform:         input.Platform,
		ContentGoal:      input.ContentGoal,
		UseLocalLanguage: input.UseLocalLanguage,
		UserID:           input.UserID,
		ServiceTier:      input.ServiceTier,
	})
	if err != nil {
		return nil, err
	}

	return &Output{
		Headline:           resp.Result.Headline,
		Subheadline:        resp.Result.Subheadline,
		Caption:            resp.Result.Caption,
		CTA:                resp.Result.CTA,
		Hashtags:           resp.Result.Hashtags,
		SourceTier:         resp.Result.SourceTier,
		CoherenceScore:     resp.Result.CoherenceScore,
		BusinessType:       resp.Detection.PrimaryType,
		BusinessConfidence: resp.Detection.PrimaryConfidence,
		RemainingCredits:   resp.RemainingCredits,
		LowBalance:         resp.RemainingCredits < h.config.LowBalanceThreshold,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, stdErr *commonerrors.StandardError) {
	bpmnErr := commonerrors.ConvertToBPMNError(stdErr)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, bpmnErr.Code).Inc()
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    bpmnErr.Code,
		"errorMessage": bpmnErr.Message,
		"retryable":    bpmnErr.Retryable,
	})

	// Retryable technical errors go back to the engine for another attempt.
	// Business errors are thrown as BPMN errors so the workflow can route on
	// the error code, with the error variables attached for downstream tasks.
	if bpmnErr.Retryable && job.Retries > 1 {
		_, err := client.NewFailJobCommand().
			JobKey(job.Key).
			Retries(job.Retries - 1).
			ErrorMessage(bpmnErr.Message).
			Send(context.Background())
		if err != nil {
			h.logger.Error("failed to fail job", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return
	}

	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if varsJSON, err := json.Marshal(bpmnErr.ToErrorVariables()); err == nil {
		if withVars, err := cmd.VariablesFromString(string(varsJSON)); err == nil {
			if _, err := withVars.Send(context.Background()); err != nil {
				h.logger.Error("failed to throw error", map[string]interface{}{
					"error": err.Error(),
				})
			}
			return
		}
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
