package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the staking history fetcher.
type Config struct {
	// StakingRewards API access
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimit      float64       `mapstructure:"rate_limit"`

	// Web server
	ServerPort   string        `mapstructure:"server_port"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`

	// Form defaults
	DefaultSlugs   string `mapstructure:"default_slugs"`
	DefaultMetrics string `mapstructure:"default_metrics"`
	LookbackDays   int    `mapstructure:"lookback_days"`
	CSVFilename    string `mapstructure:"csv_filename"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogPretty bool   `mapstructure:"log_pretty"`
}

// Load reads configuration from environment variables and optional config file.
// Environment variables take precedence over config file values.
//
// Recognised environment variables:
//   - STAKINGREWARDS_API_KEY (optional, used when no key is supplied per request)
//   - STAKINGREWARDS_BASE_URL (optional, defaults to production)
//   - REQUEST_TIMEOUT, RATE_LIMIT
//   - SERVER_PORT, FETCH_TIMEOUT
//   - DEFAULT_SLUGS, DEFAULT_METRICS, LOOKBACK_DAYS, CSV_FILENAME
//   - LOG_LEVEL, LOG_PRETTY
func Load() (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("")
	v.AutomaticEnv()

	v.SetDefault("base_url", "https://api.stakingrewards.com/public/query")
	v.SetDefault("request_timeout", 30*time.Second)
	v.SetDefault("rate_limit", 5.0)
	v.SetDefault("server_port", "8080")
	v.SetDefault("fetch_timeout", 10*time.Minute)
	v.SetDefault("default_slugs", "allnodes,p2p-validator")
	v.SetDefault("default_metrics", "staking_wallets,assets_under_management")
	v.SetDefault("lookback_days", 30)
	v.SetDefault("csv_filename", "comparison_data.csv")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)

	// Optionally read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.stakingfetcher")

	// Read config file (ignore if not found)
	_ = v.ReadInConfig()

	v.BindEnv("api_key", "STAKINGREWARDS_API_KEY")
	v.BindEnv("base_url", "STAKINGREWARDS_BASE_URL")
	v.BindEnv("request_timeout", "REQUEST_TIMEOUT")
	v.BindEnv("rate_limit", "RATE_LIMIT")
	v.BindEnv("server_port", "SERVER_PORT")
	v.BindEnv("fetch_timeout", "FETCH_TIMEOUT")
	v.BindEnv("default_slugs", "DEFAULT_SLUGS")
	v.BindEnv("default_metrics", "DEFAULT_METRICS")
	v.BindEnv("lookback_days", "LOOKBACK_DAYS")
	v.BindEnv("csv_filename", "CSV_FILENAME")
	v.BindEnv("log_level", "LOG_LEVEL")
	v.BindEnv("log_pretty", "LOG_PRETTY")

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var invalid []string
	if strings.TrimSpace(c.BaseURL) == "" {
		invalid = append(invalid, "STAKINGREWARDS_BASE_URL")
	}
	if c.RequestTimeout <= 0 {
		invalid = append(invalid, "REQUEST_TIMEOUT")
	}
	if c.RateLimit < 0 {
		invalid = append(invalid, "RATE_LIMIT")
	}
	if strings.TrimSpace(c.ServerPort) == "" {
		invalid = append(invalid, "SERVER_PORT")
	}
	if c.FetchTimeout <= 0 {
		invalid = append(invalid, "FETCH_TIMEOUT")
	}
	if c.LookbackDays < 0 {
		invalid = append(invalid, "LOOKBACK_DAYS")
	}
	if strings.TrimSpace(c.CSVFilename) == "" {
		invalid = append(invalid, "CSV_FILENAME")
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(invalid, ", "))
	}
	return nil
}

// DefaultRange returns the form's default dates: LookbackDays before now, and now.
func (c *Config) DefaultRange(now time.Time) (start, end time.Time) {
	return now.AddDate(0, 0, -c.LookbackDays), now
}
