// internal/workers/credits/credit-topup/config.go
package credittopup

import "time"

type Config struct {
	Timeout  time.Duration
	MaxTopup int64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  15 * time.Second,
		MaxTopup: 10000,
	}
}
