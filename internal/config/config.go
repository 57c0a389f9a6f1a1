package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreBackendPostgres = "postgres"
	StoreBackendRest     = "postgrest"
	StoreBackendMemory   = "memory"
)

type Config struct {
	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseServiceRoleKey string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string

	// Request store
	StoreBackend string
	DatabaseURL  string
	AutoMigrate  bool

	// Drafts
	RedisURL string
	DraftTTL time.Duration

	// Design classification
	CDNHosts    []string
	CatalogPath string

	// Payment gateway callback
	PaymentWebhookToken string

	// Review console
	ReviewPollInterval time.Duration

	// Server
	Port        string
	Environment string
	BaseURL     string
	LogLevel    string
	MaxUploadMB int64
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabasePublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
		SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket:  getEnv("SUPABASE_STORAGE_BUCKET", "designs"),

		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", StoreBackendPostgres)),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		AutoMigrate:  getEnvBool("AUTO_MIGRATE", true),

		RedisURL: getEnv("REDIS_URL", ""),
		DraftTTL: getEnvDuration("DRAFT_TTL", 24*time.Hour),

		CDNHosts:    getEnvList("DESIGN_CDN_HOSTS", []string{"ik.imagekit.io"}),
		CatalogPath: getEnv("CATALOG_PATH", ""),

		PaymentWebhookToken: getEnv("PAYMENT_WEBHOOK_TOKEN", ""),

		ReviewPollInterval: getEnvDuration("REVIEW_POLL_INTERVAL", 30*time.Second),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		MaxUploadMB: int64(getEnvInt("MAX_UPLOAD_MB", 10)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}

	switch c.StoreBackend {
	case StoreBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s store backend", c.StoreBackend)
		}
	case StoreBackendRest:
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is required for the %s store backend", c.StoreBackend)
		}
		if c.SupabasePublishableKey == "" && c.SupabaseServiceRoleKey == "" {
			return fmt.Errorf("SUPABASE_SERVICE_ROLE_KEY or SUPABASE_PUBLISHABLE_KEY is required for the %s store backend", c.StoreBackend)
		}
	case StoreBackendMemory:
		if c.IsProduction() {
			return fmt.Errorf("the %s store backend is not allowed in production", c.StoreBackend)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.ReviewPollInterval < time.Second {
		return fmt.Errorf("REVIEW_POLL_INTERVAL must be at least 1s")
	}
	if c.DraftTTL <= 0 {
		return fmt.Errorf("DRAFT_TTL must be positive")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// StorageHost is the host of the Supabase project, used to recognise design
// URLs served from its storage.
func (c *Config) StorageHost() string {
	if c.SupabaseURL == "" {
		return ""
	}
	u, err := url.Parse(c.SupabaseURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// UploadsEnabled reports whether design uploads can be stored.
func (c *Config) UploadsEnabled() bool {
	return c.SupabaseURL != "" && (c.SupabaseServiceRoleKey != "" || c.SupabasePublishableKey != "")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
