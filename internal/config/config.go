package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	MongoDBURI      string
	MongoDBPassword string

	JWTSecret     string
	TokenLifetime time.Duration

	StripeSecretKey string
	Currency        string
	PaymentTimeout  time.Duration

	// Booking policy knobs. Tax rate and invoice numbering are configuration,
	// not literals, so finance changes never require a deploy.
	TaxRate            float64
	InvoicePrefix      string
	CancellationWindow time.Duration
	ReserveMaxRetries  int

	// Optional infrastructure; empty values disable the feature.
	RedisAddr string
	AMQPURL   string
	CacheTTL  time.Duration
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:               getEnvWithDefault("PORT", "8080"),
		Environment:        getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:           getEnvWithDefault("LOG_LEVEL", "info"),
		MongoDBURI:         os.Getenv("MONGODB_URI"),
		MongoDBPassword:    os.Getenv("MONGODB_PASSWORD"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		TokenLifetime:      getDurationWithDefault("TOKEN_LIFETIME", time.Hour),
		StripeSecretKey:    os.Getenv("STRIPE_SECRET_KEY"),
		Currency:           getEnvWithDefault("CURRENCY", "usd"),
		PaymentTimeout:     getDurationWithDefault("PAYMENT_TIMEOUT", 15*time.Second),
		TaxRate:            getFloatWithDefault("TAX_RATE", 0.10),
		InvoicePrefix:      getEnvWithDefault("INVOICE_PREFIX", "INV-"),
		CancellationWindow: getDurationWithDefault("CANCELLATION_WINDOW", 24*time.Hour),
		ReserveMaxRetries:  getIntWithDefault("RESERVE_MAX_RETRIES", 3),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		AMQPURL:            os.Getenv("AMQP_URL"),
		CacheTTL:           getDurationWithDefault("CACHE_TTL", 30*time.Second),
	}

	// Validate required fields
	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.StripeSecretKey == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY is required")
	}
	if cfg.TaxRate < 0 || cfg.TaxRate >= 1 {
		return nil, fmt.Errorf("TAX_RATE must be in [0, 1)")
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
