// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInsufficientCredits ErrorCode = "INSUFFICIENT_CREDITS"
	ErrCodeLedgerConflict      ErrorCode = "LEDGER_CONFLICT"
	ErrCodeLedgerCheckFailed   ErrorCode = "LEDGER_CHECK_FAILED"
	ErrCodeCreditTopupFailed   ErrorCode = "CREDIT_TOPUP_FAILED"

	ErrCodeTierTimeout           ErrorCode = "TIER_TIMEOUT"
	ErrCodeTierProviderFailed    ErrorCode = "TIER_PROVIDER_FAILED"
	ErrCodeTierMalformedResponse ErrorCode = "TIER_MALFORMED_RESPONSE"
	ErrCodeCoherenceRejected     ErrorCode = "COHERENCE_REJECTED"
	ErrCodeAllTiersExhausted     ErrorCode = "ALL_TIERS_EXHAUSTED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInsufficientCreditsError carries the required amount and current balance
// so the caller can render a top-up prompt. Never retried.
func NewInsufficientCreditsError(required, remaining int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeInsufficientCredits,
		Message:   "Not enough credits for this request",
		Details:   fmt.Sprintf("required: %d, remaining: %d", required, remaining),
		Retryable: false,
		Metadata: map[string]interface{}{
			"requiredCredits":  required,
			"remainingCredits": remaining,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewLedgerConflictError signals an optimistic-concurrency conflict on the
// balance row that survived the ledger's internal retries.
func NewLedgerConflictError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLedgerConflict,
		Message:   "Concurrent balance update conflict",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAllTiersExhaustedError should be unreachable given the template tier's
// unconditional success; kept to surface programming defects.
func NewAllTiersExhaustedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAllTiersExhausted,
		Message:   "Every generation tier failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes (same as internal).
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInsufficientCredits:      "INSUFFICIENT_CREDITS",
	ErrCodeLedgerConflict:           "LEDGER_CONFLICT",
	ErrCodeLedgerCheckFailed:        "LEDGER_CHECK_FAILED",
	ErrCodeCreditTopupFailed:        "CREDIT_TOPUP_FAILED",
	ErrCodeTierTimeout:              "TIER_TIMEOUT",
	ErrCodeTierProviderFailed:       "TIER_PROVIDER_FAILED",
	ErrCodeTierMalformedResponse:    "TIER_MALFORMED_RESPONSE",
	ErrCodeCoherenceRejected:        "COHERENCE_REJECTED",
	ErrCodeAllTiersExhausted:        "ALL_TIERS_EXHAUSTED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count per error code. Tier and
// coherence failures are recovered inside the orchestrator's fallback loop,
// so the workflow engine never retries them.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeLedgerCheckFailed,
		ErrCodeCreditTopupFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeNotificationSendFailed:
		return 3 // Retryable technical errors

	case ErrCodeLedgerConflict:
		return 2 // The ledger already retried with fresh reads internally

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	errorVariables := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		errorVariables[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: errorVariables,
	}
}
