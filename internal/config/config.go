package config

import (
	"errors"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	FeedURL        string `mapstructure:"feed_url"`
	HistoryAPIURL  string `mapstructure:"history_api_url"`
	DataDir        string `mapstructure:"data_dir"`
	BatchWindowMS  int    `mapstructure:"batch_window_ms"`
	BatchSize      int    `mapstructure:"batch_size"`
	HistoryTTLSec  int    `mapstructure:"history_ttl_sec"`
	MaxRecords     int    `mapstructure:"max_records"`
	DebugLogging   bool   `mapstructure:"debug_logging"`
	LogFile        string `mapstructure:"log_file"`
	ReconnectMaxMS int    `mapstructure:"reconnect_max_ms"`
}

const (
	DefaultBatchWindowMS  = 250
	DefaultBatchSize      = 64
	DefaultHistoryTTLSec  = 300
	DefaultMaxRecords     = 1000
	DefaultReconnectMaxMS = 30000
	DefaultDataDir        = "data"
	DefaultLogFile        = "logs/gxscan.log"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"batch_window_ms":  DefaultBatchWindowMS,
		"batch_size":       DefaultBatchSize,
		"history_ttl_sec":  DefaultHistoryTTLSec,
		"max_records":      DefaultMaxRecords,
		"reconnect_max_ms": DefaultReconnectMaxMS,
		"data_dir":         DefaultDataDir,
		"log_file":         DefaultLogFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.FeedURL == "" {
		return errors.New("missing feed_url in configuration")
	}
	if err := validateURL(cfg.FeedURL, "ws"); err != nil {
		return errors.New("invalid feed URL protocol")
	}
	if cfg.HistoryAPIURL != "" {
		if err := validateURL(cfg.HistoryAPIURL, "http"); err != nil {
			return errors.New("invalid history API URL protocol")
		}
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.BatchWindowMS <= 0 {
		return errors.New("invalid batch_window_ms")
	}
	if cfg.BatchSize <= 0 {
		return errors.New("invalid batch_size")
	}
	if cfg.HistoryTTLSec <= 0 {
		return errors.New("invalid history_ttl_sec")
	}
	if cfg.MaxRecords <= 0 {
		return errors.New("invalid max_records")
	}
	if cfg.ReconnectMaxMS <= 0 {
		return errors.New("invalid reconnect_max_ms")
	}
	return nil
}

func validateURL(rawURL string, protocol string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("GXSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if envFeed := v.GetString("FEED_URL"); envFeed != "" {
		cfg.FeedURL = envFeed
	}
	if envHistory := v.GetString("HISTORY_API_URL"); envHistory != "" {
		cfg.HistoryAPIURL = envHistory
	}
	return nil
}
