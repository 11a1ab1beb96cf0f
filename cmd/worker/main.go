package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	pgRepo "newsatlas/internal/infra/adapter/persistence/postgres"
	"newsatlas/internal/infra/db"
	"newsatlas/internal/infra/extractor"
	"newsatlas/internal/infra/feedreader"
	"newsatlas/internal/infra/geocoder"
	workerPkg "newsatlas/internal/infra/worker"
	"newsatlas/internal/observability/logging"
	"newsatlas/internal/usecase/ingest"
)

// waitForSchema blocks until the feed registry table exists, for
// deployments where migrations run in a separate job.
func waitForSchema(logger *slog.Logger, database *sql.DB) {
	const probe = "SELECT 1 FROM rss_feeds LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := database.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	database := db.Open()
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("ingest_timeout", workerConfig.IngestTimeout),
		slog.Int("feed_parallelism", workerConfig.FeedParallelism),
		slog.Int("health_port", workerConfig.HealthPort))

	if workerConfig.MigrateOnStart {
		if err := db.MigrateUp(database); err != nil {
			logger.Error("migration failed", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("database schema migrated")
	} else {
		waitForSchema(logger, database)
	}

	// Start metrics HTTP server
	startMetricsServer(ctx, logger)

	// Start health check server
	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	svc := setupIngestService(logger, database, workerConfig)

	startCronWorker(logger, svc, workerConfig, workerMetrics, healthServer)
}

// setupIngestService wires the ingestion service with its repositories and
// outbound adapters.
func setupIngestService(logger *slog.Logger, database *sql.DB, cfg *workerPkg.WorkerConfig) *ingest.Service {
	feedRepo := pgRepo.NewFeedRepo(database)
	articleRepo := pgRepo.NewArticleRepo(database)
	locationRepo := pgRepo.NewLocationRepo(database)

	httpClient := createHTTPClient()
	reader := feedreader.New(httpClient)
	geo := geocoder.NewNominatim(httpClient, os.Getenv("GEOCODER_BASE_URL"))

	places := extractor.NewProse()
	logger.Info("place extractor initialized")

	return ingest.NewService(
		feedRepo,
		articleRepo,
		locationRepo,
		reader,
		places,
		geo,
		ingest.Config{FeedParallelism: cfg.FeedParallelism},
	)
}

// createHTTPClient creates an HTTP client with timeouts and connection pooling.
// TLS 1.2+ is enforced for security.
func createHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12, // Enforce TLS 1.2+
			},
		},
	}
}

// startCronWorker starts the cron scheduler and runs the ingest job periodically.
func startCronWorker(logger *slog.Logger, svc *ingest.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics, healthServer *workerPkg.HealthServer) {
	// Load timezone
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runIngestJob(logger, svc, cfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	// Mark as ready after cron is set up
	healthServer.SetReady(true)
	logger.Info("worker marked as ready")

	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))
	select {}
}

// runIngestJob executes a single ingestion job with timeout and error handling.
func runIngestJob(logger *slog.Logger, svc *ingest.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) {
	runLogger, _ := logging.WithRunID(logger)

	startTime := time.Now()
	metrics.RecordJobRun("started")
	runLogger.Info("ingestion started")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.IngestTimeout)
	defer cancel()

	stats, err := svc.IngestAll(ctx, runLogger)
	if err != nil {
		runLogger.Error("ingestion failed", slog.Any("error", err))
		metrics.RecordJobRun("failure")
		metrics.RecordJobDuration(time.Since(startTime).Seconds())
		return
	}

	// Record metrics
	metrics.RecordJobRun("success")
	metrics.RecordJobDuration(time.Since(startTime).Seconds())
	metrics.RecordFeedsProcessed(stats.Feeds)
	metrics.RecordLastSuccess()

	runLogger.Info("ingestion completed",
		slog.Int("feeds", stats.Feeds),
		slog.Int64("feeds_skipped", stats.FeedsSkipped),
		slog.Int64("entries", stats.Entries),
		slog.Int64("articles_created", stats.ArticlesCreated),
		slog.Int64("articles_duplicated", stats.ArticlesDuplicated),
		slog.Int64("locations_created", stats.LocationsCreated),
		slog.Int64("locations_unresolved", stats.LocationsUnresolved),
		slog.Int64("edges_created", stats.EdgesCreated),
		slog.Duration("duration", stats.Duration),
	)
}
