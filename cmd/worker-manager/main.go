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

	"car-market-assistant/internal/assistant"
	"car-market-assistant/internal/common/camunda"
	"car-market-assistant/internal/common/config"
	"car-market-assistant/internal/common/database"
	"car-market-assistant/internal/common/logger"
	"car-market-assistant/internal/common/observability"
	"car-market-assistant/internal/ingest"
	"car-market-assistant/internal/session"
	"car-market-assistant/pkg/registry"

	agl "car-market-assistant/internal/workers/car-market/aggregate-listings"
	bcs "car-market-assistant/internal/workers/car-market/build-chart-series"
	clq "car-market-assistant/internal/workers/car-market/classify-question"
	exf "car-market-assistant/internal/workers/car-market/extract-filters"
	lds "car-market-assistant/internal/workers/car-market/load-datasets"
	mpt "car-market-assistant/internal/workers/car-market/merge-price-trend"
	nrs "car-market-assistant/internal/workers/car-market/narrative-synthesis"
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
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)
	zapLog.Info("Starting worker manager...", zap.String("environment", cfg.App.Environment))

	if err := config.ValidateWorkerManager(cfg); err != nil {
		zapLog.Fatal("invalid worker manager config", zap.Error(err))
	}

	obs := observability.New("car-market-workers", log)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	zeebeClient, err := camunda.Connect(ctx, cfg.Camunda, camunda.DefaultRetryConfig, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Optional listing sources ---
	resolver := &ingest.Resolver{
		SQLQuery: cfg.Database.SQL.Query,
		Index:    cfg.Database.Elasticsearch.Index,
		MaxHits:  cfg.Database.Elasticsearch.MaxHits,
	}

	if cfg.Database.SQL.DSN != "" || cfg.Database.Postgres.Host != "" {
		var sqlClient *database.SQLClient
		err = retryWithBackoff(func() error {
			var err error
			sqlClient, err = database.NewSQL(cfg.Database)
			if err != nil {
				return err
			}
			return sqlClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "SQL connection")
		if err != nil {
			zapLog.Fatal("sql source failed after retries", zap.Error(err))
		}
		defer sqlClient.Close()
		resolver.DB = sqlClient.DB
		zapLog.Info("SQL source connected successfully", zap.String("driver", sqlClient.Driver))
	}

	if len(cfg.Database.Elasticsearch.Addresses) > 0 {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		resolver.Search = esClient.Client
		if ok, err := esClient.IndexExists(ctx); err != nil || !ok {
			zapLog.Warn("listings index not available", zap.String("index", esClient.Index), zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Session state ---
	var store session.StateStore
	var redis *database.RedisClient
	if cfg.Database.Redis.Address != "" {
		redis = database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		store = session.NewRedisStateStore(redis.Client, cfg.Assistant.SessionTTLDuration())
		zapLog.Info("Redis connected successfully")
	}
	sessions := session.NewManager(store, log, session.WithTTL(cfg.Assistant.SessionTTLDuration()))
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sessions.RunSweeper(sweepCtx, time.Minute)

	// --- Register car-market workers ---
	stages := assistant.NewStageConfigs(cfg)

	workers := camunda.NewWorkers(zeebeClient, obs, log)

	load := lds.NewHandler(&lds.Config{Timeout: config.GetDuration(config.GetWorkerConfig(cfg, lds.TaskType).Timeout)}, sessions, resolver, log)
	workers.Start(lds.TaskType, config.GetWorkerConfig(cfg, lds.TaskType), load.Handle)

	classify := clq.NewHandler(stages.Classify, log)
	workers.Start(clq.TaskType, config.GetWorkerConfig(cfg, clq.TaskType), classify.Handle)

	extract := exf.NewHandler(stages.Extract, sessions, log)
	workers.Start(exf.TaskType, config.GetWorkerConfig(cfg, exf.TaskType), extract.Handle)

	aggregate := agl.NewHandler(stages.Aggregate, sessions, log)
	workers.Start(agl.TaskType, config.GetWorkerConfig(cfg, agl.TaskType), aggregate.Handle)

	merge := mpt.NewHandler(stages.Merge, sessions, log)
	workers.Start(mpt.TaskType, config.GetWorkerConfig(cfg, mpt.TaskType), merge.Handle)

	narrate := nrs.NewHandler(stages.Narrative, log)
	workers.Start(nrs.TaskType, config.GetWorkerConfig(cfg, nrs.TaskType), narrate.Handle)

	chart := bcs.NewHandler(stages.Chart, log)
	workers.Start(bcs.TaskType, config.GetWorkerConfig(cfg, bcs.TaskType), chart.Handle)

	zapLog.Info("All car-market workers registered", zap.Int("count", workers.Count()))

	if catalog, err := registry.LoadRegistry(cfg.App.Catalog); err != nil {
		zapLog.Warn("activity catalog unavailable", zap.String("path", cfg.App.Catalog), zap.Error(err))
	} else if err := catalog.Check(lds.TaskType, clq.TaskType, exf.TaskType, agl.TaskType, mpt.TaskType, nrs.TaskType, bcs.TaskType); err != nil {
		zapLog.Warn("activity catalog out of date", zap.Error(err))
	}

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			writeStatus(w, http.StatusOK, "healthy")
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			if err := camunda.HealthCheck(r.Context(), zeebeClient, 2*time.Second); err != nil {
				writeStatus(w, http.StatusServiceUnavailable, "not ready")
				return
			}
			if redis != nil {
				pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
				defer cancel()
				if err := redis.Ping(pingCtx); err != nil {
					writeStatus(w, http.StatusServiceUnavailable, "not ready")
					return
				}
			}
			writeStatus(w, http.StatusOK, "ready")
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := http.ListenAndServe(cfg.Server.Address, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	stopSweep()

	zapLog.Info("Shutdown signal received, stopping workers...")

	if err := workers.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
