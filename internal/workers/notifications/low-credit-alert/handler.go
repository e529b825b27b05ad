// internal/workers/notifications/low-credit-alert/handler.go
package lowcreditalert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"content-workers/internal/common/logger"
	"content-workers/internal/common/metrics"
)

const (
	TaskType = "low-credit-alert"
)

var (
	ErrInvalidAlert = errors.New("INVALID_ALERT")
	ErrSendFailed   = errors.New("NOTIFICATION_SEND_FAILED")
)

// EmailSender matches the SES wrapper in internal/common/aws.
type EmailSender interface {
	SendPlainEmail(ctx context.Context, from, to, subject, body string) error
}

// SMSSender matches the SNS wrapper in internal/common/aws.
type SMSSender interface {
	SendText(ctx context.Context, phoneNumber, message string) error
}

type Handler struct {
	config *Config
	email  EmailSender
	sms    SMSSender
	logger logger.Logger
}

func NewHandler(config *Config, email EmailSender, sms SMSSender, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		email:  email,
		sms:    sms,
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
		errorCode := "NOTIFICATION_SEND_FAILED"
		if errors.Is(err, ErrInvalidAlert) {
			errorCode = "INVALID_ALERT"
		}
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

// execute prefers email and falls back to SMS. A recipient with neither
// channel configured is an input error, not a send failure.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.UserID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidAlert)
	}

	emailPossible := h.config.EmailEnabled && h.email != nil && input.Email != ""
	smsPossible := h.config.SMSEnabled && h.sms != nil && input.PhoneNumber != ""

	if !emailPossible && !smsPossible {
		return nil, fmt.Errorf("%w: no notification channel available for user %s", ErrInvalidAlert, input.UserID)
	}

	if emailPossible {
		if err := h.sendEmail(ctx, input); err == nil {
			return &Output{Notified: true, Channel: "email"}, nil
		} else if !smsPossible {
			return nil, fmt.Errorf("%w: email: %v", ErrSendFailed, err)
		} else {
			h.logger.Warn("email alert failed, falling back to sms", map[string]interface{}{
				"userId": input.UserID,
				"error":  err.Error(),
			})
		}
	}

	if err := h.sendSMS(ctx, input); err != nil {
		return nil, fmt.Errorf("%w: sms: %v", ErrSendFailed, err)
	}
	return &Output{Notified: true, Channel: "sms"}, nil
}

func (h *Handler) sendEmail(ctx context.Context, input *Input) error {
	subject := "Your content credits are running low"
	body := fmt.Sprintf(
		"You have %d credits left. Top up now to keep publishing without interruption.",
		input.RemainingCredits,
	)

	return h.email.SendPlainEmail(ctx, h.config.FromEmail, input.Email, subject, body)
}

func (h *Handler) sendSMS(ctx context.Context, input *Input) error {
	message := fmt.Sprintf("Low credit alert: %d credits left. Top up to keep publishing.", input.RemainingCredits)
	return h.sms.SendText(ctx, input.PhoneNumber, message)
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
