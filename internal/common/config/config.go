// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	API           APIConfig          `mapstructure:"api"`
	Polling       PollingConfig      `mapstructure:"polling"`
	Recovery      RecoveryConfig     `mapstructure:"recovery"`
	Cache         CacheConfig        `mapstructure:"cache"`
	Store         StoreConfig        `mapstructure:"store"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Metrics       MetricsConfig      `mapstructure:"metrics"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// APIConfig holds settings for the backend REST API.
type APIConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	Timeout    int    `mapstructure:"timeout"`     // milliseconds
	MaxRetries int    `mapstructure:"max_retries"` // transport-level retries
	RetryDelay int    `mapstructure:"retry_delay"` // milliseconds
}

func (a APIConfig) GetTimeout() time.Duration {
	if a.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(a.Timeout) * time.Millisecond
}

// PollingConfig bounds the long-running-operation poll loop. The
// defaults give a five minute window: 60 attempts at 5s spacing.
type PollingConfig struct {
	Interval    int `mapstructure:"interval"`     // milliseconds
	MaxAttempts int `mapstructure:"max_attempts"` //
}

func (p PollingConfig) GetInterval() time.Duration {
	if p.Interval <= 0 {
		return 5 * time.Second
	}
	return time.Duration(p.Interval) * time.Millisecond
}

func (p PollingConfig) GetMaxAttempts() int {
	if p.MaxAttempts <= 0 {
		return 60
	}
	return p.MaxAttempts
}

// RecoveryConfig bounds the project re-creation loop after a backend
// cold start. Back-off is linear: BaseDelay times the attempt number.
type RecoveryConfig struct {
	MaxAttempts int `mapstructure:"max_attempts"`
	BaseDelay   int `mapstructure:"base_delay"` // milliseconds
}

func (r RecoveryConfig) GetMaxAttempts() int {
	if r.MaxAttempts <= 0 {
		return 3
	}
	return r.MaxAttempts
}

func (r RecoveryConfig) GetBaseDelay() time.Duration {
	if r.BaseDelay <= 0 {
		return 1500 * time.Millisecond
	}
	return time.Duration(r.BaseDelay) * time.Millisecond
}

// CacheConfig holds settings for the fallback report cache.
type CacheConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
	TTL   int         `mapstructure:"ttl"` // seconds; session-scoped default
}

func (c CacheConfig) GetTTL() time.Duration {
	if c.TTL <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.TTL) * time.Second
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StoreConfig holds settings for the local recovery-descriptor store.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// NotificationConfig holds settings for analysis-completion alerts.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
		ToEmail   string `mapstructure:"to_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled     bool   `mapstructure:"enabled"`
		PhoneNumber string `mapstructure:"phone_number"`
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

// MetricsConfig holds the /metrics listener settings used in watch mode.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}
