// internal/workers/notifications/low-credit-alert/config.go
package lowcreditalert

import "time"

type Config struct {
	Timeout      time.Duration
	FromEmail    string
	EmailEnabled bool
	SMSEnabled   bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      15 * time.Second,
		EmailEnabled: true,
		SMSEnabled:   false,
	}
}
