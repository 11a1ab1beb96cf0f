// Package worker provides the operational scaffolding for the ingestion
// worker: environment configuration, Prometheus metrics, and the health
// check server.
package worker

import (
	"fmt"
	"log/slog"
	"time"

	"newsatlas/internal/pkg/config"
)

// WorkerConfig holds the configuration for the ingestion worker.
//
// All fields have validated defaults; loading follows a fail-open
// strategy, so a broken environment variable degrades to the default with
// a warning instead of stopping the worker.
type WorkerConfig struct {
	// CronSchedule is the cron expression for ingestion runs.
	// Format: "minute hour day month weekday". Default: hourly.
	CronSchedule string

	// Timezone is the IANA timezone name used by the scheduler.
	// Default: "UTC".
	Timezone string

	// IngestTimeout is the maximum duration of one ingestion run.
	// Range: 1m-4h. Default: 15 minutes.
	IngestTimeout time.Duration

	// FeedParallelism is the maximum number of feeds processed
	// concurrently. Range: 1-32. Default: 4.
	FeedParallelism int

	// MigrateOnStart controls whether schema migrations run at startup.
	// Default: true.
	MigrateOnStart bool

	// HealthPort is the port for the health check HTTP server.
	// Range: 1024-65535. Default: 9091.
	HealthPort int
}

// DefaultConfig returns a WorkerConfig with production defaults: hourly
// ingestion in UTC, a 15-minute run timeout, four concurrent feeds, and
// the health server on 9091.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:    "0 * * * *",
		Timezone:        "UTC",
		IngestTimeout:   15 * time.Minute,
		FeedParallelism: 4,
		MigrateOnStart:  true,
		HealthPort:      9091,
	}
}

// Validate checks every field and returns an aggregated error when any
// value is out of bounds.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateDuration(c.IngestTimeout, 1*time.Minute, 4*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("ingest timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.FeedParallelism, 1, 32); err != nil {
		errs = append(errs, fmt.Errorf("feed parallelism: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv loads worker configuration from environment variables.
//
// Environment variables:
//   - CRON_SCHEDULE: cron expression (default "0 * * * *")
//   - WORKER_TIMEZONE: IANA timezone (default "UTC")
//   - INGEST_TIMEOUT: duration string, 1m-4h (default "15m")
//   - FEED_PARALLELISM: integer 1-32 (default 4)
//   - MIGRATE_ON_START: boolean (default true)
//   - WORKER_HEALTH_PORT: integer 1024-65535 (default 9091)
//
// The function never returns an error: invalid values fall back to their
// defaults, each fallback is logged and recorded in metrics.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	applyFallback := func(field string, result config.ConfigLoadResult) {
		if !result.FallbackApplied {
			return
		}
		fallbackApplied = true
		metrics.RecordValidationError(field)
		metrics.RecordFallback(field)
		for _, warning := range result.Warnings {
			logger.Warn("configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}

	result := config.LoadEnvWithFallback("CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = result.Value.(string)
	applyFallback("cron_schedule", result)

	result = config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	applyFallback("timezone", result)

	result = config.LoadEnvDuration("INGEST_TIMEOUT", cfg.IngestTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 1*time.Minute, 4*time.Hour)
	})
	cfg.IngestTimeout = result.Value.(time.Duration)
	applyFallback("ingest_timeout", result)

	result = config.LoadEnvInt("FEED_PARALLELISM", cfg.FeedParallelism, func(v int) error {
		return config.ValidateIntRange(v, 1, 32)
	})
	cfg.FeedParallelism = result.Value.(int)
	applyFallback("feed_parallelism", result)

	result = config.LoadEnvBool("MIGRATE_ON_START", cfg.MigrateOnStart)
	cfg.MigrateOnStart = result.Value.(bool)
	applyFallback("migrate_on_start", result)

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	applyFallback("health_port", result)

	metrics.SetFallbackActive(fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}
