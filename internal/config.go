package internal

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	Port        int
	LogLevel    string
	DatabaseUrl string

	// Operating timezone. Calendar-month quota windows are computed here.
	Timezone string
	Location *time.Location

	// Application base URL (checkout return links)
	BaseURL string

	// Plan catalog cache. Empty RedisURL disables caching.
	RedisURL     string
	PlanCacheTTL time.Duration

	// Notification feed
	NotificationWindow time.Duration
	NotificationLimit  int

	// Storage Configuration
	StorageProvider string // "local" or "r2"

	// Local Storage (development)
	LocalStoragePath string
	LocalStorageURL  string

	// R2 Storage (production)
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string

	// Subscription status sweep
	SweepEnabled  bool
	SweepInterval time.Duration
	SweepTimeout  time.Duration

	// Stripe Billing Configuration
	// In development, checkout and webhooks are disabled if these are empty.
	StripeSecretKey     string
	StripeWebhookSecret string

	// Stripe price ids per plan slug, bound to the seeded plans at startup
	StripePriceBasico       string
	StripePriceProfissional string
	StripePricePremium      string

	// Public form abuse protection
	ContactRateLimit  int
	ContactRateWindow time.Duration

	// Proxies (IPs or CIDRs) whose forwarding headers are trusted for the
	// client address. Empty trusts none.
	TrustedProxies []string

	// Admin endpoints basic auth
	AdminUsername string
	AdminPassword string

	// Error reporting. Empty disables Sentry.
	SentryDSN string

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsUsername string
	MetricsPassword string
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),
		Timezone: getEnv("TIMEZONE", "America/Sao_Paulo"),

		BaseURL: getEnv("BASE_URL", "http://localhost:8080"),

		RedisURL:     getEnv("REDIS_URL", ""),
		PlanCacheTTL: getEnvDuration("PLAN_CACHE_TTL", 10*time.Minute),

		NotificationWindow: getEnvDuration("NOTIFICATION_WINDOW", 30*24*time.Hour),
		NotificationLimit:  getEnvInt("NOTIFICATION_LIMIT", 50),

		// Storage defaults to local filesystem for development
		StorageProvider:  getEnv("STORAGE_PROVIDER", "local"),
		LocalStoragePath: getEnv("LOCAL_STORAGE_PATH", "./storage"),
		LocalStorageURL:  getEnv("LOCAL_STORAGE_URL", "http://localhost:8080/files"),

		// R2 configuration (production only)
		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:       getEnv("R2_PUBLIC_URL", ""),

		SweepEnabled:  getEnvBool("SWEEP_ENABLED", true),
		SweepInterval: getEnvDuration("SWEEP_INTERVAL", 15*time.Minute),
		SweepTimeout:  getEnvDuration("SWEEP_TIMEOUT", time.Minute),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),

		StripePriceBasico:       getEnv("STRIPE_PRICE_BASICO", ""),
		StripePriceProfissional: getEnv("STRIPE_PRICE_PROFISSIONAL", ""),
		StripePricePremium:      getEnv("STRIPE_PRICE_PREMIUM", ""),

		ContactRateLimit:  getEnvInt("CONTACT_RATE_LIMIT", 10),
		ContactRateWindow: getEnvDuration("CONTACT_RATE_WINDOW", time.Minute),
		TrustedProxies:    getEnvList("TRUSTED_PROXIES"),

		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		SentryDSN: getEnv("SENTRY_DSN", ""),

		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	// Required
	cfg.DatabaseUrl = os.Getenv("DATABASE_URL")
	if cfg.DatabaseUrl == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q is not a valid IANA zone: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	if cfg.NotificationLimit <= 0 {
		return nil, fmt.Errorf("NOTIFICATION_LIMIT must be positive, got: %d", cfg.NotificationLimit)
	}
	if cfg.NotificationWindow <= 0 {
		return nil, fmt.Errorf("NOTIFICATION_WINDOW must be positive, got: %s", cfg.NotificationWindow)
	}

	// Validate storage configuration
	if cfg.StorageProvider == "r2" {
		if cfg.R2AccountID == "" {
			return nil, fmt.Errorf("R2_ACCOUNT_ID is required when STORAGE_PROVIDER is 'r2'")
		}
		if cfg.R2AccessKeyID == "" {
			return nil, fmt.Errorf("R2_ACCESS_KEY_ID is required when STORAGE_PROVIDER is 'r2'")
		}
		if cfg.R2SecretAccessKey == "" {
			return nil, fmt.Errorf("R2_SECRET_ACCESS_KEY is required when STORAGE_PROVIDER is 'r2'")
		}
		if cfg.R2BucketName == "" {
			return nil, fmt.Errorf("R2_BUCKET_NAME is required when STORAGE_PROVIDER is 'r2'")
		}
	} else if cfg.StorageProvider != "local" {
		return nil, fmt.Errorf("STORAGE_PROVIDER must be either 'local' or 'r2', got: %s", cfg.StorageProvider)
	}

	if cfg.Env != "development" && cfg.StripeSecretKey != "" && cfg.StripeWebhookSecret == "" {
		return nil, fmt.Errorf("STRIPE_WEBHOOK_SECRET is required when STRIPE_SECRET_KEY is set")
	}

	return cfg, nil
}

// BillingEnabled reports whether Stripe credentials are configured.
func (c *Config) BillingEnabled() bool {
	return c.StripeSecretKey != "" && c.StripeWebhookSecret != ""
}

// StripePriceIDs maps plan slugs to their configured Stripe price ids.
// Unset prices are omitted.
func (c *Config) StripePriceIDs() map[string]string {
	prices := make(map[string]string)
	for slug, id := range map[string]string{
		"basico":       c.StripePriceBasico,
		"profissional": c.StripePriceProfissional,
		"premium":      c.StripePricePremium,
	} {
		if id != "" {
			prices[slug] = id
		}
	}
	return prices
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvList(key string) []string {
	var items []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
