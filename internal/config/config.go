package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderVertex     = "vertex"

	StorageMinIO  = "minio"
	StorageGCS    = "gcs"
	StorageMemory = "memory"
)

type Config struct {
	Port        string
	AppEnv      string
	LogLevel    string
	SentryDSN   string
	DatabaseURL string
	SessionTTL  time.Duration

	// Model
	LLMProvider        string
	LLMTimeout         time.Duration
	ProposeConcurrency int
	CaptionCacheSize   int
	CaptionCacheTTL    time.Duration

	// OpenRouter
	OpenRouterAPIKey string
	OpenRouterModel  string
	OpenRouterURL    string

	// Vertex AI
	VertexProjectID    string
	VertexRegion       string
	VertexModel        string
	GCPCredentialsFile string

	// Blob storage
	StorageBackend    string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BucketName      string
	S3UseSSL          bool
	GCSBucket         string
	PresignExpiry     time.Duration

	// Upload limits
	MaxUploadSize int64
	MaxStagedSize int64

	NamingPolicyFile string
	NamingPolicy     *NamingPolicy
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		AppEnv:      getEnv("APP_ENV", "production"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
		DatabaseURL: getEnv("DATABASE_URL", ":memory:"),
		SessionTTL:  getEnvDuration("SESSION_TTL", 2*time.Hour),

		LLMProvider:        strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenRouter)),
		LLMTimeout:         getEnvDuration("LLM_TIMEOUT", 45*time.Second),
		ProposeConcurrency: getEnvInt("PROPOSE_CONCURRENCY", 4),
		CaptionCacheSize:   getEnvInt("CAPTION_CACHE_SIZE", 512),
		CaptionCacheTTL:    getEnvDuration("CAPTION_CACHE_TTL", time.Hour),

		OpenRouterAPIKey: getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterModel:  getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
		OpenRouterURL:    getEnv("OPENROUTER_URL", "https://openrouter.ai/api/v1/chat/completions"),

		VertexProjectID:    getEnv("VERTEX_PROJECT_ID", ""),
		VertexRegion:       getEnv("VERTEX_REGION", "us-central1"),
		VertexModel:        getEnv("VERTEX_MODEL", "gemini-1.5-flash"),
		GCPCredentialsFile: getEnv("GCP_CREDENTIALS_FILE", ""),

		StorageBackend:    strings.ToLower(getEnv("STORAGE_BACKEND", StorageMinIO)),
		S3Endpoint:        getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", "minioadmin"),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", "minioadmin"),
		S3BucketName:      getEnv("S3_BUCKET_NAME", "file-renamer"),
		S3UseSSL:          getEnvBool("S3_USE_SSL", false),
		GCSBucket:         getEnv("GCS_BUCKET", ""),
		PresignExpiry:     getEnvDuration("PRESIGN_EXPIRY", 15*time.Minute),

		MaxUploadSize: getEnvInt64("MAX_UPLOAD_SIZE", 32*1024*1024),
		MaxStagedSize: getEnvInt64("MAX_STAGED_SIZE", 500*1024*1024),

		NamingPolicyFile: getEnv("NAMING_POLICY_FILE", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.NamingPolicyFile != "" {
		policy, err := LoadNamingPolicy(cfg.NamingPolicyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load naming policy: %w", err)
		}
		cfg.NamingPolicy = policy
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LLMProvider {
	case ProviderOpenRouter:
		if c.OpenRouterAPIKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY is required")
		}
	case ProviderVertex:
		if c.VertexProjectID == "" {
			return fmt.Errorf("VERTEX_PROJECT_ID is required when LLM_PROVIDER=vertex")
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLMProvider)
	}

	switch c.StorageBackend {
	case StorageMinIO, StorageMemory:
	case StorageGCS:
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required when STORAGE_BACKEND=gcs")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.StorageBackend)
	}

	if c.ProposeConcurrency < 1 {
		return fmt.Errorf("PROPOSE_CONCURRENCY must be at least 1")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		slog.Warn("invalid integer in environment, using default", "key", key, "value", value)
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
		slog.Warn("invalid integer in environment, using default", "key", key, "value", value)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Warn("invalid duration in environment, using default", "key", key, "value", value)
	}
	return defaultValue
}
