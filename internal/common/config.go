// Package common provides shared utilities for navcast
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for navcast
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Refresh     RefreshConfig `toml:"refresh"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds local persistence configuration.
type StorageConfig struct {
	DataPath  string `toml:"data_path"`  // directory for local data files
	FundsFile string `toml:"funds_file"` // fund list fallback file name
}

// FundsFilePath returns the absolute path of the local fund list file.
func (s *StorageConfig) FundsFilePath() string {
	name := s.FundsFile
	if name == "" {
		name = "funds.json"
	}
	return filepath.Join(s.DataPath, name)
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Tencent   TencentConfig   `toml:"tencent"`
	Eastmoney EastmoneyConfig `toml:"eastmoney"`
	JSONBin   JSONBinConfig   `toml:"jsonbin"`
}

// TencentConfig holds quote feed configuration
type TencentConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *TencentConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// EastmoneyConfig holds fund data provider configuration
type EastmoneyConfig struct {
	F10BaseURL string `toml:"f10_base_url"`
	APIBaseURL string `toml:"api_base_url"`
	DirBaseURL string `toml:"dir_base_url"`
	RateLimit  int    `toml:"rate_limit"`
	Timeout    string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EastmoneyConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 8 * time.Second
	}
	return d
}

// JSONBinConfig holds the remote fund list store configuration
type JSONBinConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	BinID   string `toml:"bin_id"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *JSONBinConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 8 * time.Second
	}
	return d
}

// RefreshConfig holds background refresh configuration
type RefreshConfig struct {
	QuoteInterval string `toml:"quote_interval"` // valuation cache warm interval
	HoldingsCron  string `toml:"holdings_cron"`  // daily holdings re-fetch schedule
}

// GetQuoteInterval parses and returns the refresh interval
func (c *RefreshConfig) GetQuoteInterval() time.Duration {
	d, err := time.ParseDuration(c.QuoteInterval)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			DataPath:  "data",
			FundsFile: "funds.json",
		},
		Clients: ClientsConfig{
			Tencent: TencentConfig{
				BaseURL:   "http://qt.gtimg.cn",
				RateLimit: 10,
				Timeout:   "5s",
			},
			Eastmoney: EastmoneyConfig{
				F10BaseURL: "http://fundf10.eastmoney.com",
				APIBaseURL: "http://api.fund.eastmoney.com",
				DirBaseURL: "http://fund.eastmoney.com",
				RateLimit:  5,
				Timeout:    "8s",
			},
			JSONBin: JSONBinConfig{
				BaseURL: "https://api.jsonbin.io/v3",
				Timeout: "8s",
			},
		},
		Refresh: RefreshConfig{
			QuoteInterval: "30s",
			HoldingsCron:  "10 18 * * *",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("NAVCAST_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("NAVCAST_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("NAVCAST_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("NAVCAST_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("NAVCAST_DATA_PATH"); path != "" {
		config.Storage.DataPath = path
	}

	if key := os.Getenv("NAVCAST_JSONBIN_API_KEY"); key != "" {
		config.Clients.JSONBin.APIKey = key
	}

	if bin := os.Getenv("NAVCAST_JSONBIN_BIN_ID"); bin != "" {
		config.Clients.JSONBin.BinID = bin
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
