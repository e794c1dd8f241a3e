package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string `validate:"required"`
	Port        string `validate:"required,numeric"`
	SiteURL     string `validate:"required,url"`
	Log         LogConfig
	Listings    ListingsConfig
	Hook        HookConfig
	CORS        CORSConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `validate:"required,oneof=trace debug info warn warning error fatal panic"`
	Format string `validate:"required,oneof=text json"`
}

// ListingsConfig holds the listings proxy configuration
type ListingsConfig struct {
	UpstreamURL    string        `validate:"required,url"`
	ListingBaseURL string        `validate:"required,url"`
	CacheMaxAge    int           `validate:"gte=0"`
	Timeout        time.Duration `validate:"gte=0"`
	UserAgent      string        `validate:"required"`
}

// HookConfig holds the lead hook forwarder configuration.
// An empty URL disables forwarding; a malformed one fails each forward, not startup.
type HookConfig struct {
	URL       string
	Source    string        `validate:"required"`
	Timeout   time.Duration `validate:"gte=0"`
	UserAgent string        `validate:"required"`
}

// CORSConfig holds cross-origin settings for the dev server
type CORSConfig struct {
	AllowedOrigins []string
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8888")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("SITE_URL", "http://localhost:8888")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LISTINGS_UPSTREAM_URL", "https://rentallistings.elitepropertymanagementsd.com/api/listings")
	v.SetDefault("LISTING_BASE_URL", "https://rentallistings.elitepropertymanagementsd.com/listings")
	v.SetDefault("LISTINGS_CACHE_MAX_AGE", 600)
	v.SetDefault("UPSTREAM_TIMEOUT", "0s")
	v.SetDefault("LISTINGS_USER_AGENT", "elite-rental-funnel/listings")
	v.SetDefault("HOOK_SOURCE", "elite-rental-funnel")
	v.SetDefault("HOOK_TIMEOUT", "0s")
	v.SetDefault("HOOK_USER_AGENT", "elite-rental-funnel/lead-hook")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	config := &Config{
		Environment: v.GetString("ENVIRONMENT"),
		Port:        v.GetString("PORT"),
		SiteURL:     strings.TrimRight(v.GetString("SITE_URL"), "/"),
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
		},
		Listings: ListingsConfig{
			UpstreamURL:    v.GetString("LISTINGS_UPSTREAM_URL"),
			ListingBaseURL: strings.TrimRight(v.GetString("LISTING_BASE_URL"), "/"),
			CacheMaxAge:    v.GetInt("LISTINGS_CACHE_MAX_AGE"),
			Timeout:        v.GetDuration("UPSTREAM_TIMEOUT"),
			UserAgent:      v.GetString("LISTINGS_USER_AGENT"),
		},
		Hook: HookConfig{
			URL:       strings.TrimSpace(v.GetString("HOOK_URL")),
			Source:    v.GetString("HOOK_SOURCE"),
			Timeout:   v.GetDuration("HOOK_TIMEOUT"),
			UserAgent: v.GetString("HOOK_USER_AGENT"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// HookEnabled reports whether a forwarding destination is configured
func (c *Config) HookEnabled() bool {
	return c.Hook.URL != ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetEnvAsBool gets an environment variable as boolean with a fallback value
func GetEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
