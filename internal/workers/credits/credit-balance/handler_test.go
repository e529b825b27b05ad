// internal/workers/credits/credit-balance/handler_test.go
package creditbalance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-workers/internal/common/logger"
	"content-workers/internal/credits"
	"content-workers/internal/models"
)

type stubReader struct {
	account *models.CreditAccount
	err     error
	calls   int
}

func (s *stubReader) GetBalance(_ context.Context, _ string) (*models.CreditAccount, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.account, nil
}

func createTestHandler(t *testing.T, reader BalanceReader) *Handler {
	return NewHandler(&Config{Timeout: 10 * time.Second}, reader, logger.NewTestLogger(t))
}

func TestHandler_Execute_Success(t *testing.T) {
	reader := &stubReader{account: &models.CreditAccount{
		UserID:           "user-1",
		TotalCredits:     10,
		UsedCredits:      4,
		RemainingCredits: 6,
	}}
	handler := createTestHandler(t, reader)

	output, err := handler.Execute(context.Background(), &Input{UserID: "user-1"})

	assert.NoError(t, err)
	assert.Equal(t, "user-1", output.UserID)
	assert.Equal(t, int64(10), output.TotalCredits)
	assert.Equal(t, int64(4), output.UsedCredits)
	assert.Equal(t, int64(6), output.RemainingCredits)
}

func TestHandler_Execute_RequiresUserID(t *testing.T) {
	reader := &stubReader{}
	handler := createTestHandler(t, reader)

	_, err := handler.Execute(context.Background(), &Input{})

	assert.ErrorIs(t, err, ErrInvalidQuery)
	assert.Equal(t, 0, reader.calls)
}

func TestHandler_Execute_AccountNotFound(t *testing.T) {
	reader := &stubReader{err: fmt.Errorf("%w: ghost", credits.ErrAccountNotFound)}
	handler := createTestHandler(t, reader)

	_, err := handler.Execute(context.Background(), &Input{UserID: "ghost"})

	assert.ErrorIs(t, err, credits.ErrAccountNotFound)
}

func TestHandler_Execute_WrapsReadFailures(t *testing.T) {
	reader := &stubReader{err: fmt.Errorf("connection reset")}
	handler := createTestHandler(t, reader)

	_, err := handler.Execute(context.Background(), &Input{UserID: "user-1"})

	assert.ErrorIs(t, err, ErrBalanceCheckFailed)
}

// TestHandler_Execute_SecondReadServedFromCache drives the real ledger
// against miniredis: only the first read may hit the database.
func TestHandler_Execute_SecondReadServedFromCache(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	ledger := credits.NewLedger(db, cache, logger.NewTestLogger(t))
	handler := createTestHandler(t, ledger)

	mock.ExpectQuery(`SELECT (.+) FROM credit_accounts WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "total_credits", "used_credits"}).
			AddRow("user-1", 10, 4))

	first, err := handler.Execute(context.Background(), &Input{UserID: "user-1"})
	assert.NoError(t, err)
	assert.Equal(t, int64(6), first.RemainingCredits)

	second, err := handler.Execute(context.Background(), &Input{UserID: "user-1"})
	assert.NoError(t, err)
	assert.Equal(t, first, second)

	assert.NoError(t, mock.ExpectationsWereMet())
}
