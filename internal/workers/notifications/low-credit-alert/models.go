// internal/workers/notifications/low-credit-alert/models.go
package lowcreditalert

type Input struct {
	UserID           string `json:"userId"`
	Email            string `json:"email,omitempty"`
	PhoneNumber      string `json:"phoneNumber,omitempty"`
	RemainingCredits int64  `json:"remainingCredits"`
}

type Output struct {
	Notified bool   `json:"notified"`
	Channel  string `json:"channel,omitempty"`
}
