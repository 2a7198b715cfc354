package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for the price fetcher application.
type Config struct {
	// Base URLs for API endpoints
	SahraBaseURL  string `mapstructure:"sahra_base_url"`
	MazdaxBaseURL string `mapstructure:"mazdax_base_url"`

	// Retry budget for generic requests
	RequestTryNumber int           `mapstructure:"request_try_number"`
	RequestTryTime   time.Duration `mapstructure:"request_try_time"`

	// Retry budget for price series lookups
	PriceSeriesTryNumber int           `mapstructure:"price_series_try_number"`
	PriceSeriesTryTime   time.Duration `mapstructure:"price_series_try_time"`

	HTTPTimeout time.Duration `mapstructure:"http_timeout"`

	// Symbols monitored by the spread loop
	SahraSymbol      string   `mapstructure:"sahra_symbol"`
	SahraCandle      string   `mapstructure:"sahra_candle"`
	SahraResolutions []string `mapstructure:"sahra_resolutions"`
	MazdaxSymbol     string   `mapstructure:"mazdax_symbol"`

	SpreadThreshold string          `mapstructure:"spread_threshold"`
	Threshold       decimal.Decimal `mapstructure:"-"`

	PollSchedule string `mapstructure:"poll_schedule"`
	LogLevel     string `mapstructure:"log_level"`
}

// Load reads configuration from environment variables and optional config file.
// Environment variables take precedence over config file values.
//
// Expected environment variables:
//   - SAHRA_BASE_URL
//   - MAZDAX_BASE_URL
//   - REQUEST_TRY_NUMBER, REQUEST_TRY_TIME (optional, default 3 and 1s)
//   - PRICE_SERIES_TRY_NUMBER, PRICE_SERIES_TRY_TIME (optional, default 5 and 2s)
//   - HTTP_TIMEOUT (optional, default 10s)
//   - SAHRA_SYMBOL, SAHRA_CANDLE, SAHRA_RESOLUTIONS, MAZDAX_SYMBOL (optional)
//   - SPREAD_THRESHOLD (optional, default 0.01)
//   - POLL_SCHEDULE (optional, default @every 1m)
//   - LOG_LEVEL (optional, default info)
func Load() (*Config, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.SetDefault("request_try_number", 3)
	v.SetDefault("request_try_time", time.Second)
	v.SetDefault("price_series_try_number", 5)
	v.SetDefault("price_series_try_time", 2*time.Second)
	v.SetDefault("http_timeout", 10*time.Second)
	v.SetDefault("sahra_symbol", "IRT1AHRM0001:1")
	v.SetDefault("sahra_candle", "sahra")
	v.SetDefault("sahra_resolutions", []string{"1", "5", "15", "60", "1D"})
	v.SetDefault("mazdax_symbol", "AHRM1IRR")
	v.SetDefault("spread_threshold", "0.01")
	v.SetDefault("poll_schedule", "@every 1m")
	v.SetDefault("log_level", "info")

	// Optionally read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.pricefetcher")

	// Read config file (ignore if not found)
	_ = v.ReadInConfig()

	v.BindEnv("sahra_base_url", "SAHRA_BASE_URL")
	v.BindEnv("mazdax_base_url", "MAZDAX_BASE_URL")

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var missing []string
	if config.SahraBaseURL == "" {
		missing = append(missing, "SAHRA_BASE_URL")
	}
	if config.MazdaxBaseURL == "" {
		missing = append(missing, "MAZDAX_BASE_URL")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.RequestTryNumber < 1 {
		return fmt.Errorf("invalid configuration: REQUEST_TRY_NUMBER must be at least 1, got %d", c.RequestTryNumber)
	}
	if c.PriceSeriesTryNumber < 1 {
		return fmt.Errorf("invalid configuration: PRICE_SERIES_TRY_NUMBER must be at least 1, got %d", c.PriceSeriesTryNumber)
	}
	if c.RequestTryTime < 0 || c.PriceSeriesTryTime < 0 {
		return fmt.Errorf("invalid configuration: retry intervals must not be negative")
	}

	threshold, err := decimal.NewFromString(c.SpreadThreshold)
	if err != nil {
		return fmt.Errorf("invalid configuration: SPREAD_THRESHOLD: %w", err)
	}
	if threshold.IsNegative() {
		return fmt.Errorf("invalid configuration: SPREAD_THRESHOLD must not be negative")
	}
	c.Threshold = threshold

	return nil
}
