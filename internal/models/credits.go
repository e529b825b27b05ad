// internal/models/credits.go
package models

import "time"

// Credit transaction types. Rows are append-only once written.
const (
	TransactionAddition  = "addition"
	TransactionDeduction = "deduction"
)

// CreditAccount mirrors the credit_accounts row. RemainingCredits is always
// TotalCredits - UsedCredits and is never negative after a committed mutation.
type CreditAccount struct {
	UserID           string `json:"userId"`
	TotalCredits     int64  `json:"totalCredits"`
	UsedCredits      int64  `json:"usedCredits"`
	RemainingCredits int64  `json:"remainingCredits"`
}

// CreditTransaction mirrors a credit_transactions row, written in the same
// database transaction as the balance change it records.
type CreditTransaction struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Type          string    `json:"type"`
	Amount        int64     `json:"amount"`
	BalanceBefore int64     `json:"balanceBefore"`
	BalanceAfter  int64     `json:"balanceAfter"`
	Feature       string    `json:"feature"`
	TierRequested string    `json:"tierRequested"`
	CreatedAt     time.Time `json:"createdAt"`
}
