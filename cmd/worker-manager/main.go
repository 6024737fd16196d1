// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"campus-assistant-workers/internal/campus/locations"
	"campus-assistant-workers/internal/campus/tracker"
	"campus-assistant-workers/internal/campus/tuition"
	"campus-assistant-workers/internal/common/camunda"
	"campus-assistant-workers/internal/common/config"
	"campus-assistant-workers/internal/common/database"
	"campus-assistant-workers/internal/common/logger"
	"campus-assistant-workers/internal/common/observability"

	// Location Workers (1)
	rl "campus-assistant-workers/internal/workers/location/resolve-location"

	// Tuition Workers (2)
	ct "campus-assistant-workers/internal/workers/tuition/calculate-tuition"
	vtf "campus-assistant-workers/internal/workers/tuition/validate-tuition-form"

	// GPA Workers (3)
	cg "campus-assistant-workers/internal/workers/gpa/calculate-gpa"
	pce "campus-assistant-workers/internal/workers/gpa/prompt-course-entry"
	vgf "campus-assistant-workers/internal/workers/gpa/validate-gpa-form"

	// Menu Workers (1)
	ams "campus-assistant-workers/internal/workers/admission/apply-menu-selection"

	// Infrastructure Workers (1)
	br "campus-assistant-workers/internal/workers/infrastructure/build-reply"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs = observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = camunda.NewClient(cfg.Camunda)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Load Campus Domain Documents ---
	catalog, err := locations.LoadCatalog(cfg.Campus.LocationsPath)
	if err != nil {
		zapLog.Fatal("locations catalog load failed", zap.Error(err))
	}
	resolver := locations.NewResolver(catalog)

	pricing, err := tuition.LoadPricing(cfg.Campus.PricingPath)
	if err != nil {
		zapLog.Fatal("pricing table load failed", zap.Error(err))
	}

	conversations := tracker.New(redis, cfg.Campus.Tracker, log)

	obs.RecordDocumentLoad(ctx, "locations", len(catalog.All()))
	obs.RecordDocumentLoad(ctx, "pricing", len(pricing))

	zapLog.Info("Campus documents loaded",
		zap.String("locationsPath", cfg.Campus.LocationsPath),
		zap.Int("places", len(catalog.All())),
		zap.String("pricingPath", cfg.Campus.PricingPath),
		zap.Int("admissionGroups", len(pricing)),
	)

	// --- START: Register ALL 8 Workers ---

	// --- 1. Location Workers (1) ---
	if config.IsWorkerEnabled(cfg, rl.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, rl.TaskType)
		handler := rl.NewHandler(
			&rl.Config{
				Timeout: config.GetDuration(wcfg.Timeout),
			},
			resolver, conversations, log,
		)
		startWorker(zeebeClient, rl.TaskType, wcfg, handler, zapLog)
	}

	// --- 2. Tuition Workers (2) ---
	if config.IsWorkerEnabled(cfg, vtf.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, vtf.TaskType)
		handler := vtf.NewHandler(
			&vtf.Config{
				Timeout: config.GetDuration(wcfg.Timeout),
			},
			pricing, conversations, log,
		)
		startWorker(zeebeClient, vtf.TaskType, wcfg, handler, zapLog)
	}

	if config.IsWorkerEnabled(cfg, ct.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, ct.TaskType)
		handler := ct.NewHandler(
			&ct.Config{
				Timeout: config.GetDuration(wcfg.Timeout),
			},
			pricing, conversations, pg.DB, log,
		)
		startWorker(zeebeClient, ct.TaskType, wcfg, handler, zapLog)
	}

	// --- 3. GPA Workers (3) ---
	if config.IsWorkerEnabled(cfg, vgf.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, vgf.TaskType)
		handler := vgf.NewHandler(
			&vgf.Config{
				Timeout: config.GetDuration(wcfg.Timeout),
			},
			conversations, log,
		)
		startWorker(zeebeClient, vgf.TaskType, wcfg, handler, zapLog)
	}

	if config.IsWorkerEnabled(cfg, pce.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, pce.TaskType)
		handler := pce.NewHandler(
			&pce.Config{
				Timeout: config.GetDuration(wcfg.Timeout),
			},
			conversations, log,
		)
		startWorker(zeebeClient, pce.TaskType, wcfg, handler, zapLog)
	}

	if config.IsWorkerEnabled(cfg, cg.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, cg.TaskType)
		handler := cg.NewHandler(
			&cg.Config{
				Timeout: config.GetDuration(wcfg.Timeout),
			},
			conversations, log,
		)
		startWorker(zeebeClient, cg.TaskType, wcfg, handler, zapLog)
	}

	// --- 4. Menu Workers (1) ---
	if config.IsWorkerEnabled(cfg, ams.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, ams.TaskType)
		handler := ams.NewHandler(
			&ams.Config{
				Timeout: config.GetDuration(wcfg.Timeout),
			},
			conversations, log,
		)
		startWorker(zeebeClient, ams.TaskType, wcfg, handler, zapLog)
	}

	// --- 5. Infrastructure Workers (1) ---
	if config.IsWorkerEnabled(cfg, br.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, br.TaskType)
		handler := br.NewHandler(
			&br.Config{
				Timeout:      config.GetDuration(wcfg.Timeout),
				RegistryPath: cfg.Replies.RegistryPath,
				CacheTTL:     config.GetDuration(cfg.Replies.CacheTTL),
			},
			log,
		)
		startWorker(zeebeClient, br.TaskType, wcfg, handler, zapLog)
	}

	zapLog.Info("All 8 workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := zeebeClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "unavailable",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	for _, w := range activeWorkers {
		w.Close()
	}

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

var (
	obs           *observability.Observability
	activeWorkers []*camunda.Worker
)

func startWorker(client *camunda.Client, taskType string, wcfg config.WorkerConfig, handler camunda.JobHandler, log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	activeWorkers = append(activeWorkers, camunda.NewWorker(client, taskType, wcfg, handler, log))
	obs.RecordWorkerRegistered(context.Background(), taskType)
}
