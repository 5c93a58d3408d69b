package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the bridge
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Database   DatabaseConfig   `toml:"database"`
	Limits     LimitsConfig     `toml:"limits"`
	Audits     AuditsConfig     `toml:"audits"`
	Shards     ShardsConfig     `toml:"shards"`
	Processors ProcessorsConfig `toml:"processors"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	ReadTimeout  int    `toml:"read_timeout"`
	WriteTimeout int    `toml:"write_timeout"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"ssl_mode"`
}

// LimitsConfig holds free-tier bandwidth ceilings, in bytes per window
type LimitsConfig struct {
	HourBytes  int64 `toml:"hour_bytes"`
	DayBytes   int64 `toml:"day_bytes"`
	MonthBytes int64 `toml:"month_bytes"`
}

// AuditsConfig holds audit worker settings
type AuditsConfig struct {
	ClaimLimit int `toml:"claim_limit"`
}

// ShardsConfig holds frame/shard validation settings
type ShardsConfig struct {
	// StrictIndex validates frames whose lowest shard index is not
	// zero instead of waving them through.
	StrictIndex bool `toml:"strict_index"`
}

// ProcessorsConfig holds payment processor settings
type ProcessorsConfig struct {
	Default string `toml:"default"`
}

// Load loads configuration from a TOML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.SetDefaults()

	return &config, nil
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// DatabaseURL returns the PostgreSQL connection URL
func (c *DatabaseConfig) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// SetDefaults sets default values for config
func (c *Config) SetDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.User == "" {
		c.Database.User = "postgres"
	}
	if c.Database.Database == "" {
		c.Database.Database = "bridge"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Limits.HourBytes == 0 {
		c.Limits.HourBytes = 5 * 1024 * 1024 * 1024 // 5 GiB
	}
	if c.Limits.DayBytes == 0 {
		c.Limits.DayBytes = 20 * 1024 * 1024 * 1024 // 20 GiB
	}
	if c.Limits.MonthBytes == 0 {
		c.Limits.MonthBytes = 100 * 1024 * 1024 * 1024 // 100 GiB
	}
	if c.Audits.ClaimLimit == 0 {
		c.Audits.ClaimLimit = 100
	}
	if c.Processors.Default == "" {
		c.Processors.Default = "manual"
	}
}
