package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cloo-solutions/templeqa/internal/api/handlers"
	"github.com/cloo-solutions/templeqa/internal/api/middleware"
	"github.com/cloo-solutions/templeqa/internal/config"
	"github.com/cloo-solutions/templeqa/internal/logger"
	"github.com/cloo-solutions/templeqa/internal/server"
	"github.com/cloo-solutions/templeqa/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the templeqa answering API on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides TEMPLEQA_PORT)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, log, shutdown, err := bootstrap()
	if err != nil {
		return err
	}
	defer shutdown()

	if portFlag, _ := cmd.Flags().GetString("port"); portFlag != "" {
		cfg.Port = portFlag
	}
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")

	a, err := newApp(ctx, cfg, log, appOptions{noMigrate: noMigrate})
	if err != nil {
		return err
	}
	defer a.Close()

	limiter, err := middleware.NewRateLimiter(cfg.RateLimitPerMinute)
	if err != nil {
		return fmt.Errorf("failed to create rate limiter: %w", err)
	}

	router := server.NewRouter(server.RouterConfig{
		Logger:        log,
		APIKey:        cfg.APIKey,
		RateLimiter:   limiter,
		AnswerHandler: handlers.NewAnswerHandler(a.dispatcher),
		HealthHandler: handlers.NewHealthHandler(a.corpus, a.chain.Names()),
		StatusHandler: handlers.NewStatusHandler(a.schedule, cfg.Location(), nil),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}

// bootstrap loads config, builds the logger and starts telemetry. The
// returned func flushes both.
func bootstrap() (*config.Config, *zap.Logger, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.Debug)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	// 10% sampling in production, everything in development
	sampleRate := 0.1
	if cfg.SentryEnvironment == "development" {
		sampleRate = 1.0
	}
	flush, err := telemetry.Init(telemetry.Config{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.SentryEnvironment,
		TracesSampleRate: sampleRate,
		Debug:            cfg.Debug,
	}, log)
	if err != nil {
		log.Warn("telemetry init failed, continuing without tracing", zap.Error(err))
		flush = func() {}
	}

	return cfg, log, func() {
		flush()
		logger.Sync(log)
	}, nil
}
