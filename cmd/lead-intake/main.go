// cmd/lead-intake/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"lead-intake/internal/api"
	"lead-intake/internal/common/config"
	"lead-intake/internal/common/database"
	commonhttp "lead-intake/internal/common/http"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/common/observability"
	"lead-intake/internal/common/ratelimit"
	"lead-intake/internal/submission"
	"lead-intake/internal/wizard"
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

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting lead intake service...",
		zap.String("environment", cfg.App.Environment),
		zap.String("dataDir", cfg.Storage.DataDir),
	)

	if err := run(cfg, zapLog, log); err != nil {
		zapLog.Fatal("lead intake service failed", zap.Error(err))
	}
	zapLog.Info("Lead intake service stopped gracefully")
}

func run(cfg *config.Config, zapLog *zap.Logger, log logger.Logger) error {
	ctx := context.Background()

	obs, err := observability.New(cfg.App.Name, nil)
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	defer obs.Shutdown()

	store, err := submission.NewFileStore(cfg.Storage.DataDir, cfg.Storage.CreateDir)
	if err != nil {
		return err
	}
	if err := store.Writable(); err != nil {
		// Not fatal: the endpoint reports the failure per request and /health turns unavailable.
		zapLog.Warn("data directory is not writable", zap.String("dir", store.Dir()), zap.Error(err))
	}

	// --- Redis, shared by sessions and the rate limiter ---
	var rdb *database.RedisClient
	if cfg.Wizard.SessionStore == config.SessionStoreRedis || cfg.RateLimit.Enabled {
		rdb = database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			return err
		}
		defer rdb.Close()
		zapLog.Info("Redis connected successfully")
	}

	deps, err := connectWorkerDeps(ctx, cfg, zapLog)
	if err != nil {
		return err
	}
	defer deps.Close(zapLog)

	workers, err := buildWorkers(cfg, deps, log)
	if err != nil {
		return err
	}

	svc := submission.NewService(store, log,
		submission.WithWorkers(workers...),
		submission.WithWorkerTimeout(workerTimeout(cfg)),
	)

	// --- Wizard sessions ---
	var submitter wizard.Submitter = svc
	if cfg.Wizard.SubmitURL != "" {
		submitter = wizard.NewHTTPSubmitter(
			commonhttp.NewClient(config.GetDuration(cfg.Wizard.SubmitTimeout)),
			cfg.Wizard.SubmitURL,
		)
	}

	var sessionStore wizard.Store = wizard.NewMemoryStore()
	if cfg.Wizard.SessionStore == config.SessionStoreRedis {
		sessionStore = wizard.NewRedisStore(rdb.Client, time.Duration(cfg.Wizard.SessionTTL)*time.Second)
	}
	sessions := wizard.NewSessions(sessionStore, wizard.NewController(submitter, log), log)

	// --- HTTP ---
	trusted, err := cfg.Server.TrustedProxyPrefixes()
	if err != nil {
		return err
	}
	routerOpts := api.RouterOptions{
		Observability:  obs,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		TrustedProxies: trusted,
	}
	if cfg.RateLimit.Enabled {
		limiter, err := ratelimit.NewFixedWindowLimiter(rdb.Client, "intake:ratelimit",
			cfg.RateLimit.Requests, time.Duration(cfg.RateLimit.Window)*time.Second)
		if err != nil {
			return err
		}
		routerOpts.Limiter = limiter
	}

	handlers := api.NewHandlers(api.HandlersOptions{
		Submissions:  svc,
		Sessions:     sessions,
		Health:       store,
		Logger:       log,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	})

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      api.SetupRoutes(handlers, routerOpts),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	serverErr := make(chan error, 1)
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zapLog.Info("Shutdown signal received, draining requests...", zap.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Waiting for post-submission workers...")
	svc.Wait()
	return nil
}

// workerTimeout is the longest configured worker timeout, used as the dispatcher's outer bound.
func workerTimeout(cfg *config.Config) time.Duration {
	longest := 30 * time.Second
	for _, w := range cfg.Workers {
		if d := config.GetDuration(w.Timeout) * time.Duration(w.MaxRetries+1); d > longest {
			longest = d
		}
	}
	return longest
}
