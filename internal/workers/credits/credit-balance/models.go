// internal/workers/credits/credit-balance/models.go
package creditbalance

type Input struct {
	UserID string `json:"userId"`
}

type Output struct {
	UserID           string `json:"userId"`
	TotalCredits     int64  `json:"totalCredits"`
	UsedCredits      int64  `json:"usedCredits"`
	RemainingCredits int64  `json:"remainingCredits"`
}
