// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct. It is built once at
// startup and injected into every component; nothing reads process-wide state
// after that.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Providers     ProvidersConfig         `mapstructure:"providers"`
	Content       ContentConfig           `mapstructure:"content"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name         string `mapstructure:"name"`
	Version      string `mapstructure:"version"`
	Environment  string `mapstructure:"environment"`
	RegistryPath string `mapstructure:"registry_path"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Generation Provider Config ---

// ProvidersConfig holds the external generation capabilities. Specialized
// endpoints are keyed by business type; a type without an entry has no
// specialized capability registered.
type ProvidersConfig struct {
	Specialized map[string]ProviderEndpoint `mapstructure:"specialized"`
	Generic     ProviderEndpoint            `mapstructure:"generic"`
}

type ProviderEndpoint struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
	MaxRetries  int     `mapstructure:"max_retries"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// --- Content Pipeline Config ---

type ContentConfig struct {
	Rollout   RolloutConfig   `mapstructure:"rollout"`
	Platforms PlatformConfig  `mapstructure:"platforms"`
	Coherence CoherenceConfig `mapstructure:"coherence"`
	Credits   CreditsConfig   `mapstructure:"credits"`
}

// RolloutConfig gates the specialized path per business type.
// Percentages are in [0,100]; a missing type rolls out at 0.
type RolloutConfig struct {
	Percentages map[string]float64 `mapstructure:"percentages"`
}

// PlatformConfig carries the per-platform hashtag ceilings enforced at the
// orchestrator's exit.
type PlatformConfig struct {
	HashtagLimits  map[string]int `mapstructure:"hashtag_limits"`
	DefaultHashtag int            `mapstructure:"default_hashtag_limit"`
}

// HashtagLimit returns the ceiling for a platform, falling back to the
// configured default for unknown platforms.
func (p PlatformConfig) HashtagLimit(platform string) int {
	if limit, ok := p.HashtagLimits[platform]; ok {
		return limit
	}
	return p.DefaultHashtag
}

// CoherenceConfig tunes the headline/caption validator. SynonymGroups is the
// hand-curated domain equivalence table; it lives in config because it is
// data, not logic, and is not assumed exhaustive.
type CoherenceConfig struct {
	PassScore        int        `mapstructure:"pass_score"`
	MinCaptionLength int        `mapstructure:"min_caption_length"`
	SynonymGroups    [][]string `mapstructure:"synonym_groups"`
}

// CreditsConfig prices requests by the requested service tier. The charge is
// fixed before generation starts; internal fallback never reprices.
type CreditsConfig struct {
	CostPerTier         map[string]int64 `mapstructure:"cost_per_tier"`
	DefaultCost         int64            `mapstructure:"default_cost"`
	LowBalanceThreshold int64            `mapstructure:"low_balance_threshold"`
}

// Cost returns the charge for a requested service tier.
func (c CreditsConfig) Cost(serviceTier string) int64 {
	if cost, ok := c.CostPerTier[serviceTier]; ok {
		return cost
	}
	return c.DefaultCost
}

// --- Notification / Logging Config ---

// NotificationConfig holds settings for the low-credit-alert worker.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
