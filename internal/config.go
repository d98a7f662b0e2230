package internal

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/thumbnail"
)

// Queue transports for queued thumbnail generation.
const (
	QueueTransportPostgres = "postgres"
	QueueTransportRedis    = "redis"
)

// Path generators sharding media directories.
const (
	PathGeneratorNumeric = "numeric"
	PathGeneratorUUID    = "uuid"
)

// Storage providers for originals and derivatives.
const (
	StorageProviderLocal = "local"
	StorageProviderS3    = "s3"
)

type Config struct {
	Env         string
	Port        int
	LogLevel    string
	DatabaseUrl string

	// Queue Configuration
	QueueTransport string // "postgres" or "redis"
	RedisURL       string
	StreamKey      string
	StreamGroup    string
	StreamConsumer string

	// Storage Configuration
	StorageProvider string // "local" or "s3"

	// Local Storage (development)
	LocalStoragePath string // Base directory for local file storage
	LocalStorageURL  string // Base URL for accessing local files

	// S3-compatible storage (production)
	S3Endpoint        string // Empty for AWS, set for R2 or MinIO
	S3Region          string
	S3Bucket          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PublicURL       string
	S3CacheControl    string
	S3StorageClass    string
	S3PublicObjects   bool

	// Thumbnail Configuration
	FormatsFile               string // YAML format registry; built-in formats when empty
	PathGenerator             string // "numeric" or "uuid", matching the media id scheme
	ThumbnailDefaultExtension string
	ThumbnailDelivery         string // "immediate", "queue", "deferred" or "ondemand"
	OnDemandBaseURL           string
	OnDemandSecret            string
	IconBaseURL               string
	CDNBaseURL                string // Optional; thumbnails are served from storage without it

	// Worker Configuration
	WorkerEnabled      bool
	WorkerConcurrency  int
	WorkerPollInterval time.Duration
	WorkerJobTimeout   time.Duration
	WorkerRetention    time.Duration

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

		// Jobs go through the Postgres jobs table unless Redis is configured
		QueueTransport: getEnv("QUEUE_TRANSPORT", QueueTransportPostgres),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
		StreamKey:      getEnv("STREAM_KEY", "media:thumbnails"),
		StreamGroup:    getEnv("STREAM_GROUP", "thumbnail-workers"),
		StreamConsumer: getEnv("STREAM_CONSUMER", defaultConsumerName()),

		// Storage defaults to local filesystem for development
		StorageProvider:  getEnv("STORAGE_PROVIDER", StorageProviderLocal),
		LocalStoragePath: getEnv("LOCAL_STORAGE_PATH", "./storage"),
		LocalStorageURL:  getEnv("LOCAL_STORAGE_URL", "http://localhost:8080/files"),

		// S3 configuration (production only)
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3Region:          getEnv("S3_REGION", "auto"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3PublicURL:       getEnv("S3_PUBLIC_URL", ""),
		S3CacheControl:    getEnv("S3_CACHE_CONTROL", "max-age=604800"),
		S3StorageClass:    getEnv("S3_STORAGE_CLASS", ""),
		S3PublicObjects:   getEnvBool("S3_PUBLIC_OBJECTS", true),

		// Thumbnail defaults
		FormatsFile:               getEnv("FORMATS_FILE", ""),
		PathGenerator:             getEnv("PATH_GENERATOR", PathGeneratorNumeric),
		ThumbnailDefaultExtension: getEnv("THUMBNAIL_DEFAULT_EXTENSION", "jpg"),
		ThumbnailDelivery:         getEnv("THUMBNAIL_DELIVERY", thumbnail.DeliveryImmediate),
		OnDemandBaseURL:           getEnv("ONDEMAND_BASE_URL", "/media/cache"),
		OnDemandSecret:            getEnv("ONDEMAND_SECRET", ""),
		IconBaseURL:               getEnv("ICON_BASE_URL", "/static/icons"),
		CDNBaseURL:                getEnv("CDN_BASE_URL", ""),

		// Worker defaults
		WorkerEnabled:      getEnvBool("WORKER_ENABLED", true),
		WorkerConcurrency:  getEnvInt("WORKER_CONCURRENCY", 2),
		WorkerPollInterval: getEnvDuration("WORKER_POLL_INTERVAL", 5*time.Second),
		WorkerJobTimeout:   getEnvDuration("WORKER_JOB_TIMEOUT", 5*time.Minute),
		WorkerRetention:    getEnvDuration("WORKER_RETENTION", 7*24*time.Hour),

		// Metrics authentication
		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	// Required
	cfg.DatabaseUrl = os.Getenv("DATABASE_URL")
	if cfg.DatabaseUrl == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) validate() error {
	// Validate queue configuration
	switch cfg.QueueTransport {
	case QueueTransportPostgres:
	case QueueTransportRedis:
		if cfg.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when QUEUE_TRANSPORT is 'redis'")
		}
	default:
		return fmt.Errorf("QUEUE_TRANSPORT must be either 'postgres' or 'redis', got: %s", cfg.QueueTransport)
	}

	// Validate storage configuration
	switch cfg.StorageProvider {
	case StorageProviderLocal:
		if cfg.LocalStoragePath == "" {
			return fmt.Errorf("LOCAL_STORAGE_PATH is required when STORAGE_PROVIDER is 'local'")
		}
	case StorageProviderS3:
		if cfg.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_PROVIDER is 's3'")
		}
		if cfg.S3AccessKeyID == "" {
			return fmt.Errorf("S3_ACCESS_KEY_ID is required when STORAGE_PROVIDER is 's3'")
		}
		if cfg.S3SecretAccessKey == "" {
			return fmt.Errorf("S3_SECRET_ACCESS_KEY is required when STORAGE_PROVIDER is 's3'")
		}
	default:
		return fmt.Errorf("STORAGE_PROVIDER must be either 'local' or 's3', got: %s", cfg.StorageProvider)
	}

	// Validate thumbnail configuration
	switch cfg.ThumbnailDelivery {
	case thumbnail.DeliveryImmediate, thumbnail.DeliveryQueue, thumbnail.DeliveryDeferred:
	case thumbnail.DeliveryOnDemand:
		if cfg.OnDemandBaseURL == "" {
			return fmt.Errorf("ONDEMAND_BASE_URL is required when THUMBNAIL_DELIVERY is 'ondemand'")
		}
		if len(cfg.OnDemandSecret) > 64 {
			return fmt.Errorf("ONDEMAND_SECRET must be at most 64 bytes")
		}
	default:
		return fmt.Errorf("THUMBNAIL_DELIVERY must be one of 'immediate', 'queue', 'deferred' or 'ondemand', got: %s", cfg.ThumbnailDelivery)
	}
	if cfg.PathGenerator != PathGeneratorNumeric && cfg.PathGenerator != PathGeneratorUUID {
		return fmt.Errorf("PATH_GENERATOR must be either 'numeric' or 'uuid', got: %s", cfg.PathGenerator)
	}
	if cfg.ThumbnailDefaultExtension == "" {
		return fmt.Errorf("THUMBNAIL_DEFAULT_EXTENSION cannot be empty")
	}

	if cfg.WorkerConcurrency < 1 {
		return fmt.Errorf("WORKER_CONCURRENCY must be at least 1, got: %d", cfg.WorkerConcurrency)
	}

	return nil
}

// defaultConsumerName names the stream consumer after the host so several
// instances can share a group.
func defaultConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "thumbnail-worker-1"
	}
	return "thumbnail-worker-" + host
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
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
