package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/entrepreneur-award/award-api/internal/application/notification"
	"github.com/entrepreneur-award/award-api/internal/config"
	"github.com/entrepreneur-award/award-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/entrepreneur-award/award-api/internal/infrastructure/jwt"
	"github.com/entrepreneur-award/award-api/internal/infrastructure/postgres"
	"github.com/entrepreneur-award/award-api/internal/infrastructure/smtp"
	"github.com/entrepreneur-award/award-api/internal/infrastructure/sns"
	transporthttp "github.com/entrepreneur-award/award-api/internal/transport/http"
	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()
	setupLogger(cfg)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.SentryEnvironment,
		}); err != nil {
			slog.Warn("sentry init failed", "err", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	if err := run(cfg); err != nil {
		slog.Error("server exited", "err", err)
		sentry.Flush(2 * time.Second)
		os.Exit(1)
	}
}

func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var h slog.Handler
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		opts.Level = slog.LevelDebug
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	deps, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	jwtProvider, err := jwtinfra.NewProvider(jwtinfra.Options{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessExpiry:  cfg.JWTAccessExpiry,
		RefreshExpiry: cfg.JWTRefreshExpiry,
	})
	if err != nil {
		return fmt.Errorf("jwt provider: %w", err)
	}
	deps.JWTProvider = jwtProvider

	// SNS is optional; OTPs still go out by email without it.
	var smsSender sns.SMSSender
	if cfg.OTPSMSEnabled {
		if sender, err := sns.NewSender(ctx, cfg); err == nil {
			smsSender = sender
		} else {
			slog.Warn("SNS sender not available", "err", err)
		}
	}
	notifier, err := notification.NewService(smtp.NewMailer(cfg), smsSender)
	if err != nil {
		return err
	}
	deps.Notifier = notifier

	router, stopRouter := transporthttp.NewRouter(cfg, deps)
	defer stopRouter()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

// openStore builds the repositories for cfg.StoreDriver and returns a
// function releasing their connections.
func openStore(ctx context.Context, cfg *config.Config) (*transporthttp.Deps, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDynamo:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("dynamodb client: %w", err)
		}
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		return &transporthttp.Deps{
			UserRepo:       dynamo.NewUserRepo(client, cfg.DynamoTables.Users, cfg.DynamoTables.UserEmails),
			OTPRepo:        dynamo.NewOTPRepo(client, cfg.DynamoTables.OTPs),
			NominationRepo: dynamo.NewNominationRepo(client, cfg.DynamoTables.Nominations),
		}, func() {}, nil

	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return &transporthttp.Deps{
			UserRepo:       postgres.NewUserRepo(pool),
			OTPRepo:        postgres.NewOTPRepo(pool),
			NominationRepo: postgres.NewNominationRepo(pool),
		}, pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}
