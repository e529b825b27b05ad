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

	commonaws "content-workers/internal/common/aws"
	"content-workers/internal/common/camunda"
	"content-workers/internal/common/config"
	"content-workers/internal/common/database"
	"content-workers/internal/common/logger"
	"content-workers/internal/common/observability"
	"content-workers/internal/content/classifier"
	"content-workers/internal/content/coherence"
	"content-workers/internal/content/constraints"
	"content-workers/internal/content/orchestrator"
	"content-workers/internal/content/rollout"
	"content-workers/internal/content/tiers"
	"content-workers/internal/credits"
	"content-workers/pkg/registry"

	gc "content-workers/internal/workers/content/generate-content"
	cb "content-workers/internal/workers/credits/credit-balance"
	ct "content-workers/internal/workers/credits/credit-topup"
	lca "content-workers/internal/workers/notifications/low-credit-alert"
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
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		if err != nil {
			return err
		}
		return zeebe.HealthCheck(ctx)
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
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Task registry (informational) ---
	if cfg.App.RegistryPath != "" {
		if reg, err := registry.LoadRegistry(cfg.App.RegistryPath); err != nil {
			zapLog.Warn("activity registry not loaded", zap.Error(err))
		} else {
			zapLog.Info("activity registry loaded",
				zap.String("version", reg.Version),
				zap.Strings("taskTypes", reg.TaskTypes()),
			)
		}
	}

	// --- Build the content pipeline ---
	ledger := credits.NewLedger(pg.DB, redis.Client, log)

	pipeline := orchestrator.New(orchestrator.Options{
		Classifier:  classifier.New(),
		Rollout:     rollout.New(cfg.Content.Rollout.Percentages),
		Specialized: tiers.NewSpecialized(cfg.Providers.Specialized, log),
		Generic:     tiers.NewGeneric(cfg.Providers.Generic, log),
		Template:    tiers.NewTemplate(),
		Coherence: coherence.New(
			cfg.Content.Coherence.PassScore,
			cfg.Content.Coherence.MinCaptionLength,
			cfg.Content.Coherence.SynonymGroups,
		),
		Constraints: constraints.New(
			cfg.Content.Platforms.HashtagLimits,
			cfg.Content.Platforms.DefaultHashtag,
		),
		Ledger:  ledger,
		Credits: cfg.Content.Credits,
		Logger:  log,
	})

	var workers []*camunda.CamundaWorker
	startWorker := func(taskType string, handler camunda.HandlerFunc) {
		wcfg := cfg.Workers[taskType]
		if !wcfg.Enabled {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			return
		}
		w := camunda.NewWorker(
			zeebe.GetClient(),
			taskType,
			wcfg.MaxJobsActive,
			time.Duration(wcfg.Timeout)*time.Millisecond,
			handler,
			obs,
			zapLog,
		)
		workers = append(workers, w)
	}

	// --- Register Workers ---

	if cfg.Workers[gc.TaskType].Enabled {
		handler := gc.NewHandler(
			&gc.Config{
				Timeout:             time.Duration(cfg.Workers[gc.TaskType].Timeout) * time.Millisecond,
				LowBalanceThreshold: cfg.Content.Credits.LowBalanceThreshold,
			},
			pipeline, log,
		)
		startWorker(gc.TaskType, handler.Handle)
	}

	if cfg.Workers[ct.TaskType].Enabled {
		handler := ct.NewHandler(
			&ct.Config{
				Timeout:  time.Duration(cfg.Workers[ct.TaskType].Timeout) * time.Millisecond,
				MaxTopup: 10000,
			},
			ledger, log,
		)
		startWorker(ct.TaskType, handler.Handle)
	}

	if cfg.Workers[cb.TaskType].Enabled {
		handler := cb.NewHandler(
			&cb.Config{
				Timeout: time.Duration(cfg.Workers[cb.TaskType].Timeout) * time.Millisecond,
			},
			ledger, log,
		)
		startWorker(cb.TaskType, handler.Handle)
	}

	if cfg.Workers[lca.TaskType].Enabled {
		var email lca.EmailSender
		var sms lca.SMSSender
		if cfg.Notifications.Email.Enabled {
			sesClient, err := commonaws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
			if err != nil {
				zapLog.Fatal("ses client init failed", zap.Error(err))
			}
			email = sesClient
		}
		if cfg.Notifications.SMS.Enabled {
			snsClient, err := commonaws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
			if err != nil {
				zapLog.Fatal("sns client init failed", zap.Error(err))
			}
			sms = snsClient
		}
		handler := lca.NewHandler(
			&lca.Config{
				Timeout:      time.Duration(cfg.Workers[lca.TaskType].Timeout) * time.Millisecond,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				EmailEnabled: cfg.Notifications.Email.Enabled,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
			},
			email, sms, log,
		)
		startWorker(lca.TaskType, handler.Handle)
	}

	zapLog.Info("All workers registered", zap.Int("count", len(workers)))

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
	for _, w := range workers {
		w.Stop()
	}

	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped")
}
