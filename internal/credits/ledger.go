// internal/credits/ledger.go
package credits

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"content-workers/internal/common/logger"
	"content-workers/internal/common/metrics"
	"content-workers/internal/models"
)

var (
	ErrInsufficientCredits = errors.New("INSUFFICIENT_CREDITS")
	ErrAccountNotFound     = errors.New("ACCOUNT_NOT_FOUND")
	ErrLedgerConflict      = errors.New("LEDGER_CONFLICT")
)

// InsufficientCreditsError carries the balance the caller needs to build a
// useful rejection message.
type InsufficientCreditsError struct {
	Required  int64
	Remaining int64
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: required %d, remaining %d", e.Required, e.Remaining)
}

func (e *InsufficientCreditsError) Is(target error) bool {
	return target == ErrInsufficientCredits
}

// Context tags a ledger mutation with the business reason it happened.
type Context struct {
	Feature       string
	TierRequested string
}

const (
	balanceCacheTTL    = 30 * time.Second
	maxConflictRetries = 3
)

// Ledger owns the credit_accounts and credit_transactions tables. Every
// mutation is a single DB transaction: a conditional balance update plus
// an audit row, so the audit trail can never disagree with the balance.
type Ledger struct {
	db     *sql.DB
	cache  *redis.Client
	logger logger.Logger
}

// NewLedger builds a Ledger. cache may be nil; balance reads then always
// hit Postgres.
func NewLedger(db *sql.DB, cache *redis.Client, log logger.Logger) *Ledger {
	return &Ledger{
		db:     db,
		cache:  cache,
		logger: log.WithFields(map[string]interface{}{"component": "credit-ledger"}),
	}
}

// Deduct atomically spends amount credits. The balance check and the
// decrement are one conditional UPDATE, so two concurrent deductions can
// never both succeed against the same credits. Callers deduct before
// performing billable work.
func (l *Ledger) Deduct(ctx context.Context, userID string, amount int64, txCtx Context) (*models.CreditAccount, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("deduct amount must be positive, got %d", amount)
	}

	account, err := l.mutateWithRetry(ctx, userID, amount, models.TransactionDeduction, txCtx)
	if err != nil {
		if errors.Is(err, ErrInsufficientCredits) {
			metrics.InsufficientCredits.Inc()
		}
		return nil, err
	}

	l.invalidate(ctx, userID)
	metrics.CreditsDeducted.Add(float64(amount))
	return account, nil
}

// Add credits a user's account: top-ups, trial grants, and refunds. An
// account that does not exist yet is created with the granted amount.
func (l *Ledger) Add(ctx context.Context, userID string, amount int64, txCtx Context) (*models.CreditAccount, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("add amount must be positive, got %d", amount)
	}

	account, err := l.mutateWithRetry(ctx, userID, amount, models.TransactionAddition, txCtx)
	if err != nil {
		return nil, err
	}

	l.invalidate(ctx, userID)
	metrics.CreditsAdded.Add(float64(amount))
	return account, nil
}

// GetBalance reads the current balance, serving from Redis when the entry
// is fresh. Mutations invalidate the entry so a stale read window is
// bounded by the TTL only when invalidation itself fails.
func (l *Ledger) GetBalance(ctx context.Context, userID string) (*models.CreditAccount, error) {
	if l.cache != nil {
		if data, err := l.cache.Get(ctx, balanceCacheKey(userID)).Bytes(); err == nil {
			var account models.CreditAccount
			if json.Unmarshal(data, &account) == nil {
				return &account, nil
			}
		}
	}

	var account models.CreditAccount
	err := l.db.QueryRowContext(ctx,
		`SELECT user_id, total_credits, used_credits FROM credit_accounts WHERE user_id = $1`,
		userID,
	).Scan(&account.UserID, &account.TotalCredits, &account.UsedCredits)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("read balance: %w", err)
	}
	account.RemainingCredits = account.TotalCredits - account.UsedCredits

	if l.cache != nil {
		if data, err := json.Marshal(&account); err == nil {
			if err := l.cache.Set(ctx, balanceCacheKey(userID), data, balanceCacheTTL).Err(); err != nil {
				l.logger.Debug("balance cache set failed", map[string]interface{}{
					"userId": userID,
					"error":  err.Error(),
				})
			}
		}
	}

	return &account, nil
}

func (l *Ledger) mutateWithRetry(ctx context.Context, userID string, amount int64, kind string, txCtx Context) (*models.CreditAccount, error) {
	var account *models.CreditAccount
	var err error

	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if attempt > 0 {
			metrics.LedgerConflicts.Inc()
			l.logger.Warn("ledger conflict, retrying", map[string]interface{}{
				"userId":  userID,
				"attempt": attempt,
			})
			select {
			case <-time.After(time.Duration(10<<(attempt-1)) * time.Millisecond):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		account, err = l.mutate(ctx, userID, amount, kind, txCtx)
		if err == nil || !errors.Is(err, ErrLedgerConflict) {
			return account, err
		}
	}

	return nil, err
}

func (l *Ledger) mutate(ctx context.Context, userID string, amount int64, kind string, txCtx Context) (*models.CreditAccount, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin ledger tx: %w", err)
	}
	defer tx.Rollback()

	var total, used int64
	switch kind {
	case models.TransactionDeduction:
		err = tx.QueryRowContext(ctx,
			`UPDATE credit_accounts
			 SET used_credits = used_credits + $1, updated_at = NOW()
			 WHERE user_id = $2 AND total_credits - used_credits >= $1
			 RETURNING total_credits, used_credits`,
			amount, userID,
		).Scan(&total, &used)
		if err == sql.ErrNoRows {
			// Condition failed: either no account or not enough credits.
			// Re-read outside the aborted row lock for the error payload.
			remaining, readErr := l.currentRemaining(ctx, userID)
			if readErr != nil {
				return nil, readErr
			}
			return nil, &InsufficientCreditsError{Required: amount, Remaining: remaining}
		}
	case models.TransactionAddition:
		err = tx.QueryRowContext(ctx,
			`UPDATE credit_accounts
			 SET total_credits = total_credits + $1, updated_at = NOW()
			 WHERE user_id = $2
			 RETURNING total_credits, used_credits`,
			amount, userID,
		).Scan(&total, &used)
		if err == sql.ErrNoRows {
			err = tx.QueryRowContext(ctx,
				`INSERT INTO credit_accounts (user_id, total_credits, used_credits, created_at, updated_at)
				 VALUES ($1, $2, 0, NOW(), NOW())
				 RETURNING total_credits, used_credits`,
				userID, amount,
			).Scan(&total, &used)
		}
	default:
		return nil, fmt.Errorf("unknown transaction kind %q", kind)
	}
	if err != nil {
		return nil, classifyLedgerError("update balance", err)
	}

	remaining := total - used
	balanceAfter := remaining
	var balanceBefore int64
	if kind == models.TransactionDeduction {
		balanceBefore = remaining + amount
	} else {
		balanceBefore = remaining - amount
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO credit_transactions
		 (id, user_id, type, amount, balance_before, balance_after, feature, tier_requested, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`,
		uuid.NewString(), userID, kind, amount, balanceBefore, balanceAfter, txCtx.Feature, txCtx.TierRequested,
	)
	if err != nil {
		return nil, classifyLedgerError("record transaction", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, classifyLedgerError("commit ledger tx", err)
	}

	l.logger.Info("ledger mutation committed", map[string]interface{}{
		"userId":        userID,
		"type":          kind,
		"amount":        amount,
		"balanceAfter":  balanceAfter,
		"feature":       txCtx.Feature,
		"tierRequested": txCtx.TierRequested,
	})

	return &models.CreditAccount{
		UserID:           userID,
		TotalCredits:     total,
		UsedCredits:      used,
		RemainingCredits: remaining,
	}, nil
}

func (l *Ledger) currentRemaining(ctx context.Context, userID string) (int64, error) {
	var total, used int64
	err := l.db.QueryRowContext(ctx,
		`SELECT total_credits, used_credits FROM credit_accounts WHERE user_id = $1`,
		userID,
	).Scan(&total, &used)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: %s", ErrAccountNotFound, userID)
	}
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return total - used, nil
}

func (l *Ledger) invalidate(ctx context.Context, userID string) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Del(ctx, balanceCacheKey(userID)).Err(); err != nil {
		l.logger.Warn("balance cache invalidation failed", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
	}
}

func balanceCacheKey(userID string) string {
	return "credits:balance:" + userID
}

// classifyLedgerError maps Postgres concurrency failures onto
// ErrLedgerConflict so the caller can retry with a fresh read.
func classifyLedgerError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case "40001", "40P01", "55P03":
			return fmt.Errorf("%w: %s: %v", ErrLedgerConflict, op, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
