package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	Port        int    `mapstructure:"PORT"`
	Env         string `mapstructure:"APP_ENV"`      // development | production
	CORSOrigins string `mapstructure:"CORS_ORIGINS"` // comma separated, "*" for any

	// Row store
	StoreDriver          string `mapstructure:"STORE_DRIVER"` // memory | sqlite | postgres | sheets
	DatabaseURL          string `mapstructure:"DATABASE_URL"`
	SheetID              string `mapstructure:"SHEET_ID"`
	SheetCredentialsFile string `mapstructure:"SHEET_CREDENTIALS_FILE"`
	StoreRetryAttempts   int    `mapstructure:"STORE_RETRY_ATTEMPTS"`
	StoreRetryDelayMS    int    `mapstructure:"STORE_RETRY_DELAY_MS"`

	// Cache / lock; empty REDIS_URL keeps both in-process
	RedisURL        string `mapstructure:"REDIS_URL"`
	CacheTTLSeconds int    `mapstructure:"CACHE_TTL_SECONDS"`

	// Auth
	JWTSecret           string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours  int    `mapstructure:"JWT_EXPIRATION_HOURS"`
	AuthUsername        string `mapstructure:"AUTH_USERNAME"`
	AuthDefaultPassword string `mapstructure:"AUTH_DEFAULT_PASSWORD"`

	// Business
	DedupeWindowSeconds int    `mapstructure:"DEDUPE_WINDOW_SECONDS"`
	LowStockThreshold   int    `mapstructure:"LOW_STOCK_THRESHOLD"`
	ExportDir           string `mapstructure:"EXPORT_DIR"`
}

func (c *Config) DedupeWindow() time.Duration {
	return time.Duration(c.DedupeWindowSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c *Config) StoreRetryDelay() time.Duration {
	return time.Duration(c.StoreRetryDelayMS) * time.Millisecond
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", 8000)
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("CORS_ORIGINS", "*")
	viper.SetDefault("STORE_DRIVER", "sqlite")
	viper.SetDefault("DATABASE_URL", "file:ledger.db?cache=shared")
	viper.SetDefault("SHEET_ID", "")
	viper.SetDefault("SHEET_CREDENTIALS_FILE", "")
	viper.SetDefault("STORE_RETRY_ATTEMPTS", 4)
	viper.SetDefault("STORE_RETRY_DELAY_MS", 800)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("CACHE_TTL_SECONDS", 12)
	viper.SetDefault("JWT_SECRET", "dev-only-secret-change-me")
	viper.SetDefault("JWT_EXPIRATION_HOURS", 12)
	viper.SetDefault("AUTH_USERNAME", "owner")
	viper.SetDefault("AUTH_DEFAULT_PASSWORD", "1234")
	viper.SetDefault("DEDUPE_WINDOW_SECONDS", 120)
	viper.SetDefault("LOW_STOCK_THRESHOLD", 10)
	viper.SetDefault("EXPORT_DIR", "/tmp/tileledger/exports")

	// Optional .env file for local development; a missing file is fine
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
