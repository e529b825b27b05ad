// internal/workers/credits/credit-balance/handler.go
package creditbalance

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
	TaskType = "credit-balance"
)

var (
	ErrInvalidQuery       = errors.New("INVALID_BALANCE_QUERY")
	ErrBalanceCheckFailed = errors.New("BALANCE_CHECK_FAILED")
)

// BalanceReader is the slice of the ledger this worker needs.
type BalanceReader interface {
	GetBalance(ctx context.Context, userID string) (*models.CreditAccount, error)
}

type Handler struct {
	config *Config
	ledger BalanceReader
	logger logger.Logger
}

func NewHandler(config *Config, ledger BalanceReader, log logger.Logger) *Handler {
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
		errorCode := "BALANCE_CHECK_FAILED"
		switch {
		case errors.Is(err, ErrInvalidQuery):
			errorCode = "INVALID_BALANCE_QUERY"
		case errors.Is(err, credits.ErrAccountNotFound):
			errorCode = "ACCOUNT_NOT_FOUND"
		}
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.UserID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidQuery)
	}

	account, err := h.ledger.GetBalance(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, credits.ErrAccountNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrBalanceCheckFailed, err)
	}

	return &Output{
		UserID:           account.UserID,
		TotalCredits:     account.TotalCredits,
		UsedCredits:      account.UsedCredits,
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
