// Package config handles loading and validation of service configuration.
// Supports both development (env vars) and production (Secret Manager) modes.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/joho/godotenv"
)

// Sample selection strategies. Ranked is deterministic and the default;
// random picks uniformly among eligible candidates.
const (
	StrategyRanked = "ranked"
	StrategyRandom = "random"
)

// DefaultAPIVersion is the Shopify Admin API version used for all calls.
const DefaultAPIVersion = "2023-10"

// Config holds all service configuration.
// Environment determines whether secrets load from env vars (development)
// or Secret Manager (production).
type Config struct {
	// Server settings
	Port        string
	Environment string // "development" or "production"
	LogLevel    string // "debug", "info", "warn", "error"

	// GCP settings (required in production)
	GCPProject string
	StoreID    string

	// Enrichment behavior
	APIVersion      string
	SampleStrategy  string
	UpstreamTimeout time.Duration // per-call budget for enrichment lookups

	// Store credentials (loaded from secrets)
	Store StoreConfig
}

// StoreConfig contains the Shopify store credentials.
// In production this is loaded from Secret Manager as JSON.
type StoreConfig struct {
	AccessToken string `json:"access_token"`
	StoreDomain string `json:"store_domain"`
}

// Load reads configuration from file, environment, or Secret Manager.
// Priority: CONFIG_FILE (if set) → ENV vars / Secret Manager.
// Returns an error if either required secret is missing; the process must
// refuse to start without them.
func Load(ctx context.Context) (*Config, error) {
	// Best-effort .env for local development. Ignored when absent.
	if os.Getenv("ENVIRONMENT") != "production" {
		_ = godotenv.Load()
	}

	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromFile(configPath)
	}

	cfg := &Config{
		Port:            envOrDefault("PORT", "8080"),
		Environment:     envOrDefault("ENVIRONMENT", "development"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		GCPProject:      os.Getenv("GCP_PROJECT"),
		StoreID:         os.Getenv("STORE_ID"),
		APIVersion:      envOrDefault("API_VERSION", DefaultAPIVersion),
		SampleStrategy:  envOrDefault("SAMPLE_STRATEGY", StrategyRanked),
		UpstreamTimeout: upstreamTimeoutFromEnv(),
	}

	var err error
	if cfg.Environment == "production" {
		if cfg.GCPProject == "" {
			return nil, fmt.Errorf("GCP_PROJECT required in production environment")
		}
		if cfg.StoreID == "" {
			return nil, fmt.Errorf("STORE_ID required in production environment")
		}
		err = cfg.loadFromSecretManager(ctx)
	} else {
		err = cfg.loadFromEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("loading store config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile reads all configuration from a JSON file.
// Used for local development to avoid multiple ENV vars.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var fileConfig struct {
		Port            string      `json:"port"`
		Environment     string      `json:"environment"`
		LogLevel        string      `json:"log_level"`
		APIVersion      string      `json:"api_version"`
		SampleStrategy  string      `json:"sample_strategy"`
		UpstreamTimeout int         `json:"upstream_timeout_seconds"`
		Store           StoreConfig `json:"store"`
	}

	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg := &Config{
		Port:            withDefault(fileConfig.Port, "8080"),
		Environment:     withDefault(fileConfig.Environment, "development"),
		LogLevel:        withDefault(fileConfig.LogLevel, "info"),
		APIVersion:      withDefault(fileConfig.APIVersion, DefaultAPIVersion),
		SampleStrategy:  withDefault(fileConfig.SampleStrategy, StrategyRanked),
		UpstreamTimeout: time.Duration(fileConfig.UpstreamTimeout) * time.Second,
		Store:           fileConfig.Store,
	}
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = 10 * time.Second
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromSecretManager fetches store credentials from GCP Secret Manager.
// Secret name format: projects/{project}/secrets/{store_id}/versions/latest
func (c *Config) loadFromSecretManager(ctx context.Context) error {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	secretName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest",
		c.GCPProject, c.StoreID)

	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		return fmt.Errorf("accessing secret %s: %w", secretName, err)
	}

	if err := json.Unmarshal(result.Payload.Data, &c.Store); err != nil {
		return fmt.Errorf("parsing secret JSON: %w", err)
	}

	return nil
}

// loadFromEnv reads store credentials from individual environment variables.
// Used in development mode for local testing.
func (c *Config) loadFromEnv() error {
	c.Store = StoreConfig{
		AccessToken: os.Getenv("SHOPIFY_ACCESS_TOKEN"),
		StoreDomain: os.Getenv("SHOPIFY_STORE_DOMAIN"),
	}
	return nil
}

// validate checks that all required configuration fields are present.
func (c *Config) validate() error {
	if c.Store.AccessToken == "" {
		return fmt.Errorf("access token is required (SHOPIFY_ACCESS_TOKEN)")
	}
	if c.Store.StoreDomain == "" {
		return fmt.Errorf("store domain is required (SHOPIFY_STORE_DOMAIN)")
	}
	if strings.Contains(c.Store.StoreDomain, "://") {
		return fmt.Errorf("store domain must be a bare host, not a URL: %s", c.Store.StoreDomain)
	}
	switch c.SampleStrategy {
	case StrategyRanked, StrategyRandom:
	default:
		return fmt.Errorf("unknown sample strategy: %s", c.SampleStrategy)
	}
	return nil
}

// upstreamTimeoutFromEnv parses UPSTREAM_TIMEOUT (seconds) with a 10s default.
func upstreamTimeoutFromEnv() time.Duration {
	raw := os.Getenv("UPSTREAM_TIMEOUT")
	if raw == "" {
		return 10 * time.Second
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(secs) * time.Second
}

// withDefault returns val if non-empty, otherwise defaultVal.
func withDefault(val, defaultVal string) string {
	if val != "" {
		return val
	}
	return defaultVal
}

// envOrDefault returns the environment variable value or the default if not set.
func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
