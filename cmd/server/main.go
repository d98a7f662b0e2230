package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/handler"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/jobs"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/middleware"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/pathgen"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/provider"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/raster"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/repository"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/resizer"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/storage"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/streams"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/thumbnail"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/worker"
)

func run() error {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	// Initialize repository
	repo := repository.New(db)

	// ==========================================================================
	// Storage and resizing
	// ==========================================================================

	fs, metadata, err := newStorage(cfg, logger)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}

	resizers := resizer.NewDefaultRegistry(raster.NewImagingEngine(), metadata)
	defaultResizer, err := resizers.Get(resizer.IDSimple)
	if err != nil {
		return err
	}

	formats := provider.DefaultFormats()
	if cfg.FormatsFile != "" {
		formats, err = provider.LoadFormats(cfg.FormatsFile, resizers)
		if err != nil {
			return fmt.Errorf("format configuration failed: %w", err)
		}
	}
	if formats.DefaultExtension == "" {
		formats.DefaultExtension = cfg.ThumbnailDefaultExtension
	}
	logger.Info("Formats loaded", "count", formats.Registry.Len(), "default_extension", formats.DefaultExtension)

	// ==========================================================================
	// Queue transport
	// ==========================================================================

	var (
		redisClient *redis.Client
		streamCfg   streams.Config
		publisher   thumbnail.Publisher
	)
	switch cfg.QueueTransport {
	case internal.QueueTransportRedis:
		redisClient, err = streams.NewClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis initialization failed: %w", err)
		}
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}

		streamCfg = streams.DefaultConfig()
		streamCfg.StreamKey = cfg.StreamKey
		streamCfg.GroupName = cfg.StreamGroup
		streamCfg.ConsumerName = cfg.StreamConsumer
		publisher = streams.NewPublisher(redisClient, streamCfg)
	default:
		publisher = worker.NewEnqueuer(repo)
	}

	// ==========================================================================
	// Thumbnails and providers
	// ==========================================================================

	format := thumbnail.NewFormatThumbnail(formats.DefaultExtension, resizers, logger)
	immediate := thumbnail.NewImmediate(format, logger)
	work := thumbnail.NewUnitOfWork(immediate, logger)

	thumbnails := thumbnail.NewRegistry()
	thumbnails.Register(thumbnail.DeliveryImmediate, immediate)
	thumbnails.Register(thumbnail.DeliveryQueue, thumbnail.NewQueued(format, thumbnail.DeliveryImmediate, publisher, logger))
	thumbnails.Register(thumbnail.DeliveryDeferred, thumbnail.NewDeferred(immediate, work))
	thumbnails.Register(thumbnail.DeliveryStatic, thumbnail.NewStatic(cfg.IconBaseURL))
	if cfg.ThumbnailDelivery == thumbnail.DeliveryOnDemand {
		onDemand, err := thumbnail.NewOnDemand(cfg.OnDemandBaseURL, cfg.OnDemandSecret)
		if err != nil {
			return err
		}
		thumbnails.Register(thumbnail.DeliveryOnDemand, onDemand)
	}

	imageThumbnail, err := thumbnails.Get(cfg.ThumbnailDelivery)
	if err != nil {
		return err
	}
	staticThumbnail, err := thumbnails.Get(thumbnail.DeliveryStatic)
	if err != nil {
		return err
	}

	var paths pathgen.Generator = pathgen.NewNumericGenerator()
	if cfg.PathGenerator == internal.PathGeneratorUUID {
		paths = pathgen.UUIDGenerator{}
	}

	var cdn provider.CDN
	if cfg.CDNBaseURL != "" {
		cdn = provider.NewServerCDN(cfg.CDNBaseURL)
	}

	imageProvider, err := provider.NewImageProvider(provider.Config{
		Formats:    formats.Registry,
		Filesystem: fs,
		Paths:      paths,
		Thumbnail:  imageThumbnail,
		Resizer:    defaultResizer,
		Resizers:   resizers,
		CDN:        cdn,
	})
	if err != nil {
		return fmt.Errorf("image provider initialization failed: %w", err)
	}
	fileProvider, err := provider.NewFileProvider(provider.Config{
		Formats:    formats.Registry,
		Filesystem: fs,
		Paths:      paths,
		Thumbnail:  staticThumbnail,
		CDN:        cdn,
	})
	if err != nil {
		return fmt.Errorf("file provider initialization failed: %w", err)
	}
	providers := provider.NewPool(imageProvider, fileProvider)
	logger.Info("Providers ready", "providers", providers.Names(), "delivery", cfg.ThumbnailDelivery)

	// ==========================================================================
	// Queue consumer
	// ==========================================================================

	thumbnailJobs := jobs.NewGenerateThumbnailsHandler(repo, providers, thumbnails, logger)

	var (
		queue    handler.PendingCounter
		stopJobs = func() {}
	)
	if cfg.WorkerEnabled {
		switch cfg.QueueTransport {
		case internal.QueueTransportRedis:
			consumer, err := streams.NewConsumer(redisClient, streamCfg, thumbnailJobs, logger)
			if err != nil {
				return fmt.Errorf("stream consumer initialization failed: %w", err)
			}
			if err := consumer.Start(ctx); err != nil {
				return fmt.Errorf("stream consumer start failed: %w", err)
			}
			queue, stopJobs = consumer, consumer.Stop
		default:
			workerCfg := worker.DefaultConfig()
			workerCfg.Concurrency = cfg.WorkerConcurrency
			workerCfg.PollInterval = cfg.WorkerPollInterval
			workerCfg.JobTimeout = cfg.WorkerJobTimeout
			workerCfg.Retention = cfg.WorkerRetention

			w, err := worker.New(db, repo, workerCfg, logger)
			if err != nil {
				return fmt.Errorf("worker initialization failed: %w", err)
			}
			w.Register(thumbnailJobs)
			w.Start(ctx)
			queue, stopJobs = w, w.Stop
		}
	}

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	handler.NewHealthHandler(db, queue, cfg.QueueTransport, logger).RegisterRoutes(mux)

	metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	if !metricsAuth.Enabled() {
		logger.Warn("Metrics endpoint is not protected, set METRICS_USERNAME and METRICS_PASSWORD")
	}
	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))

	// Local storage files, served at the path of LOCAL_STORAGE_URL
	if cfg.StorageProvider == internal.StorageProviderLocal {
		prefix := localFilesPrefix(cfg.LocalStorageURL)
		files := http.FileServer(http.Dir(cfg.LocalStoragePath))
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, files))
		logger.Info("Serving local storage", "path", prefix)
	}

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           middleware.NewRequestLoggingMiddleware(logger).Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	// Run generations deferred to the end of the process
	if n := work.Pending(); n > 0 {
		logger.Info("Flushing deferred thumbnail generations", "count", n)
		if err := work.Flush(shutdownCtx); err != nil {
			logger.Error("Deferred generation failed", "error", err, "dropped", work.Discard())
		}
	}

	stopJobs()
	stop()

	logger.Info("Graceful shutdown complete")
	return nil
}

// newStorage creates the derivative filesystem and the metadata its
// thumbnails are written with.
func newStorage(cfg *internal.Config, logger *slog.Logger) (storage.Storage, resizer.MetadataBuilder, error) {
	if cfg.StorageProvider == internal.StorageProviderS3 {
		fs, err := storage.NewS3Storage(storage.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Bucket:          cfg.S3Bucket,
			PublicURL:       cfg.S3PublicURL,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return fs, resizer.S3Metadata{
			Public:       cfg.S3PublicObjects,
			CacheControl: cfg.S3CacheControl,
			StorageClass: cfg.S3StorageClass,
		}, nil
	}

	fs, err := storage.NewLocalStorage(storage.LocalConfig{
		BasePath: cfg.LocalStoragePath,
		BaseURL:  cfg.LocalStorageURL,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	return fs, resizer.DefaultMetadata{}, nil
}

// localFilesPrefix returns the URL path local files are served under, with
// a trailing slash.
func localFilesPrefix(baseURL string) string {
	path := "/files"
	if u, err := url.Parse(baseURL); err == nil && u.Path != "" {
		path = u.Path
	}
	return strings.TrimSuffix(path, "/") + "/"
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
