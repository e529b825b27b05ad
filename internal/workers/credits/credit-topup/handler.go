// internal/workers/credits/credit-topup/handler.go
package credittopup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"content-workers/internal/common/logger"
	"content-workers/internal/common/metrics"
	"content-workers/internal/credits"
	"content-workers/internal/models"
)

const (
	TaskType = "credit-topup"

	topupFeature = "credit-topup"
)

var (
	ErrInvalidTopup = errors.New("INVALID_TOPUP")
	ErrTopupFailed  = errors.New("CREDIT_TOPUP_FAILED")
)

// CreditAdder is the slice of the ledger this worker needs.
type CreditAdder interface {
	Add(ctx context.Context, userID string, amount int64, txCtx credits.Context) (*models.CreditAccount, error)
}

type Handler struct {
	config *Config
	ledger CreditAdder
	logger logger.Logger
}

func NewHandler(config *Config, ledger CreditAdder, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		ledger: ledger,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "CREDIT_TOPUP_FAILED"
		if errors.Is(err, ErrInvalidTopup) {
			errorCode = "INVALID_TOPUP"
		}
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.UserID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidTopup)
	}
	if input.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %d", ErrInvalidTopup, input.Amount)
	}
	if input.Amount > h.config.MaxTopup {
		return nil, fmt.Errorf("%w: amount %d exceeds maximum %d", ErrInvalidTopup, input.Amount, h.config.MaxTopup)
	}

	account, err := h.ledger.Add(ctx, input.UserID, input.Amount, credits.Context{
		Feature: topupFeature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTopupFailed, err)
	}

	h.logger.Info("credits added", map[string]interface{}{
		"userId":           input.UserID,
		"amount":           input.Amount,
		"paymentReference": input.PaymentReference,
		"remainingCredits": account.RemainingCredits,
	})

	return &Output{
		UserID:           input.UserID,
		Credited:         input.Amount,
		TotalCredits:     account.TotalCredits,
		RemainingCredits: account.RemainingCredits,
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
