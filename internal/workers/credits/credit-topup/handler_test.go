// internal/workers/credits/credit-topup/handler_test.go
package credittopup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"content-workers/internal/common/logger"
	"content-workers/internal/credits"
	"content-workers/internal/models"
)

type stubAdder struct {
	account *models.CreditAccount
	err     error

	lastUserID string
	lastAmount int64
	lastCtx    credits.Context
}

func (s *stubAdder) Add(_ context.Context, userID string, amount int64, txCtx credits.Context) (*models.CreditAccount, error) {
	s.lastUserID = userID
	s.lastAmount = amount
	s.lastCtx = txCtx
	if s.err != nil {
		return nil, s.err
	}
	return s.account, nil
}

func createTestHandler(t *testing.T, adder CreditAdder) *Handler {
	cfg := &Config{Timeout: 10 * time.Second, MaxTopup: 10000}
	return NewHandler(cfg, adder, logger.NewTestLogger(t))
}

func TestHandler_Execute_Success(t *testing.T) {
	adder := &stubAdder{account: &models.CreditAccount{
		UserID:           "user-1",
		TotalCredits:     30,
		UsedCredits:      4,
		RemainingCredits: 26,
	}}
	handler := createTestHandler(t, adder)

	output, err := handler.Execute(context.Background(), &Input{
		UserID:           "user-1",
		Amount:           20,
		PaymentReference: "pay_abc123",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(20), output.Credited)
	assert.Equal(t, int64(30), output.TotalCredits)
	assert.Equal(t, int64(26), output.RemainingCredits)

	assert.Equal(t, "user-1", adder.lastUserID)
	assert.Equal(t, int64(20), adder.lastAmount)
	assert.Equal(t, topupFeature, adder.lastCtx.Feature)
}

func TestHandler_Execute_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input *Input
	}{
		{"missing user", &Input{Amount: 10}},
		{"zero amount", &Input{UserID: "user-1", Amount: 0}},
		{"negative amount", &Input{UserID: "user-1", Amount: -5}},
		{"amount above maximum", &Input{UserID: "user-1", Amount: 10001}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adder := &stubAdder{}
			handler := createTestHandler(t, adder)

			_, err := handler.Execute(context.Background(), tt.input)

			assert.ErrorIs(t, err, ErrInvalidTopup)
			assert.Empty(t, adder.lastUserID, "ledger must not be touched on invalid input")
		})
	}
}

func TestHandler_Execute_LedgerFailure(t *testing.T) {
	adder := &stubAdder{err: errors.New("connection refused")}
	handler := createTestHandler(t, adder)

	_, err := handler.Execute(context.Background(), &Input{UserID: "user-1", Amount: 10})

	assert.ErrorIs(t, err, ErrTopupFailed)
}
