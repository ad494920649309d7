// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetPublicRateLimit() float64
	GetPublicRateBurst() int
}

// SchedulerConfig provides settings for the asynq scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetRefreshCronSpec() string
}

// CacheConfig provides settings for the redis-backed caches.
type CacheConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetMarketPriceCacheTTL() time.Duration
}

// MarketPriceConfig provides settings for the day-ahead market price feed.
type MarketPriceConfig interface {
	GetEnergyZeroBaseURL() string
	GetMarketPriceFreshness() time.Duration
	GetMarketPriceTimeout() time.Duration
	IsMarketPriceFeedEnabled() bool
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketComparisonExports() string
	IsMinIOEnabled() bool
}

// ComparisonConfig provides settings for the comparison listing.
type ComparisonConfig interface {
	GetReferenceContractID() string
	GetComparisonWorkers() int
}

// TariffConfig points at the optional tariff schedule file.
type TariffConfig interface {
	GetTariffFile() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                          string
	HTTPAddr                     string
	DatabaseURL                  string
	JWTAccessSecret              string
	CORSAllowAll                 bool
	CORSOrigins                  []string
	CORSAllowCreds               bool
	PublicRateLimit              float64
	PublicRateBurst              int
	RedisURL                     string
	RedisTLSInsecure             bool
	AsynqQueueName               string
	AsynqConcurrency             int
	RefreshCronSpec              string
	MarketPriceCacheTTL          time.Duration
	EnergyZeroBaseURL            string
	MarketPriceFreshness         time.Duration
	MarketPriceTimeout           time.Duration
	MarketPriceFeedDisabled      bool
	MinIOEndpoint                string
	MinIOAccessKey               string
	MinIOSecretKey               string
	MinIOUseSSL                  bool
	MinIOMaxFileSize             int64
	MinioBucketComparisonExports string
	ReferenceContractID          string
	ComparisonWorkers            int
	TariffFile                   string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string         { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool       { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string    { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool     { return c.CORSAllowCreds }
func (c *Config) GetPublicRateLimit() float64 { return c.PublicRateLimit }
func (c *Config) GetPublicRateBurst() int     { return c.PublicRateBurst }

// SchedulerConfig and CacheConfig implementation
func (c *Config) GetRedisURL() string                   { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool             { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string             { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int              { return c.AsynqConcurrency }
func (c *Config) GetRefreshCronSpec() string            { return c.RefreshCronSpec }
func (c *Config) GetMarketPriceCacheTTL() time.Duration { return c.MarketPriceCacheTTL }

// MarketPriceConfig implementation
func (c *Config) GetEnergyZeroBaseURL() string           { return c.EnergyZeroBaseURL }
func (c *Config) GetMarketPriceFreshness() time.Duration { return c.MarketPriceFreshness }
func (c *Config) GetMarketPriceTimeout() time.Duration   { return c.MarketPriceTimeout }
func (c *Config) IsMarketPriceFeedEnabled() bool {
	return !c.MarketPriceFeedDisabled && c.EnergyZeroBaseURL != ""
}

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string   { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string  { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string  { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool       { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64 { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketComparisonExports() string {
	return c.MinioBucketComparisonExports
}
func (c *Config) IsMinIOEnabled() bool { return c.MinIOEndpoint != "" }

// ComparisonConfig implementation
func (c *Config) GetReferenceContractID() string { return c.ReferenceContractID }
func (c *Config) GetComparisonWorkers() int      { return c.ComparisonWorkers }

// TariffConfig implementation
func (c *Config) GetTariffFile() string { return c.TariffFile }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                          getEnv("APP_ENV", "development"),
		HTTPAddr:                     getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:                  getEnv("DATABASE_URL", ""),
		JWTAccessSecret:              getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:                 corsAllowAll,
		CORSOrigins:                  corsOrigins,
		CORSAllowCreds:               strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		PublicRateLimit:              mustFloat(getEnv("PUBLIC_RATE_LIMIT", "5")),
		PublicRateBurst:              mustInt(getEnv("PUBLIC_RATE_BURST", "20")),
		RedisURL:                     getEnv("REDIS_URL", ""),
		RedisTLSInsecure:             strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:               getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:             mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		RefreshCronSpec:              getEnv("MARKET_PRICE_REFRESH_CRON", "15 13 * * *"),
		MarketPriceCacheTTL:          mustDuration(getEnv("MARKET_PRICE_CACHE_TTL", "1h")),
		EnergyZeroBaseURL:            getEnv("ENERGYZERO_BASE_URL", "https://api.energyzero.nl"),
		MarketPriceFreshness:         mustDuration(getEnv("MARKET_PRICE_FRESHNESS", "24h")),
		MarketPriceTimeout:           mustDuration(getEnv("MARKET_PRICE_TIMEOUT", "10s")),
		MarketPriceFeedDisabled:      strings.EqualFold(getEnv("MARKET_PRICE_FEED_DISABLED", "false"), "true"),
		MinIOEndpoint:                getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:               getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:               getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:                  strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:             mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "20971520")),
		MinioBucketComparisonExports: getEnv("MINIO_BUCKET_COMPARISON_EXPORTS", "comparison-exports"),
		ReferenceContractID:          getEnv("REFERENCE_CONTRACT_ID", ""),
		ComparisonWorkers:            mustInt(getEnv("COMPARISON_WORKERS", "8")),
		TariffFile:                   getEnv("TARIFF_FILE", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.MarketPriceCacheTTL <= 0 || cfg.MarketPriceFreshness <= 0 || cfg.MarketPriceTimeout <= 0 {
		return nil, fmt.Errorf("market price durations must be positive")
	}
	if cfg.ComparisonWorkers < 1 {
		cfg.ComparisonWorkers = 1
	}
	if cfg.AsynqConcurrency < 1 {
		cfg.AsynqConcurrency = 1
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
