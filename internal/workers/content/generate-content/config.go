// internal/workers/content/generate-content/config.go
package generatecontent

import "time"

type Config struct {
	Timeout             time.Duration
	LowBalanceThreshold int64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:             45 * time.Second,
		LowBalanceThreshold: 5,
	}
}
