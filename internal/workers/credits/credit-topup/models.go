// internal/workers/credits/credit-topup/models.go
package credittopup

type Input struct {
	UserID           string `json:"userId"`
	Amount           int64  `json:"amount"`
	PaymentReference string `json:"paymentReference,omitempty"`
}

type Output struct {
	UserID           string `json:"userId"`
	Credited         int64  `json:"credited"`
	TotalCredits     int64  `json:"totalCredits"`
	RemainingCredits int64  `json:"remainingCredits"`
}
