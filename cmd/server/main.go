// @title           Invoice Server API
// @version         1.0
// @description     Accounts, password reset by email and GST invoices rendered to PDF.
// @schemes         http https
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
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

	"invoice-server/internal/api"
	"invoice-server/internal/config"
	"invoice-server/internal/database"
	"invoice-server/internal/invoice"
	"invoice-server/internal/jobs"
	"invoice-server/internal/logging"
	"invoice-server/internal/mailer"
	"invoice-server/internal/ratelimit"
	"invoice-server/internal/service"
	"invoice-server/internal/storage"
	"invoice-server/internal/websocket"

	"github.com/jackc/pgx/v5/pgxpool"

	_ "invoice-server/docs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "invoice-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format).With("service", "invoice-server", "env", cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbpool, err := pgxpool.New(ctx, cfg.DB.Source)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	store := database.NewStore(dbpool)
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	logger.Info(ctx, "connected to database")

	if cfg.DB.RunMigrations {
		if err := database.RunMigrations(ctx, dbpool); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logger.Info(ctx, "migrations applied")
	}

	transport := mailer.NewTransport(
		mailer.NewSMTPDialer(mailer.SMTPConfig{
			Host:               cfg.SMTP.Host,
			Username:           cfg.SMTP.Username,
			Password:           cfg.SMTP.Password,
			Timeout:            cfg.SMTP.Timeout,
			InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
		}),
		cfg.SMTP.Port,
		mailer.WithFrom(cfg.SMTP.From),
		mailer.WithLogger(logger.With("component", "mailer")),
	)
	defer transport.Close()

	archive, err := storage.New(ctx, storage.Config{
		Driver:    cfg.Storage.Driver,
		Path:      cfg.Storage.Path,
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	if archive != nil {
		logger.Info(ctx, "invoice pdfs will be archived", "driver", cfg.Storage.Driver)
	}

	wsHub := websocket.NewHub(logger.With("component", "websocket"))
	go wsHub.Run(ctx)

	accounts, err := service.NewAccountService(store, transport, logger.With("component", "accounts"), service.AccountConfig{
		JWTSecret:   cfg.JWT.Secret,
		TokenTTL:    cfg.JWT.TTL,
		FrontendURL: cfg.App.FrontendURL,
	})
	if err != nil {
		return fmt.Errorf("init accounts: %w", err)
	}

	renderer := invoice.NewChromeRenderer(cfg.PDF.ChromePath, cfg.PDF.Timeout)
	invoices := service.NewInvoiceService(store, renderer, archive, wsHub, logger.With("component", "invoices"))

	checks := map[string]api.HealthCheck{
		"database": store.Ping,
	}

	var limiter api.RateLimiter
	if cfg.RateLimit.Enabled {
		rdb := ratelimit.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rdb.Close()
		limiter = ratelimit.NewLimiter(rdb, cfg.RateLimit.Max, cfg.RateLimit.Window)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		logger.Info(ctx, "rate limiting enabled", "max", cfg.RateLimit.Max, "window", cfg.RateLimit.Window)
	}

	scheduler, err := jobs.NewScheduler(logger.With("component", "jobs"))
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	if err := scheduler.RegisterResetTokenPurge(store, cfg.Jobs.PurgeInterval); err != nil {
		return fmt.Errorf("register purge job: %w", err)
	}
	scheduler.Start()

	server := api.NewServer(cfg, api.Deps{
		Accounts: accounts,
		Invoices: invoices,
		Hub:      wsHub,
		Limiter:  limiter,
		Checks:   checks,
		Logger:   logger.With("component", "api"),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server listening", "addr", srv.Addr, "docs", "/swagger/index.html")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "http shutdown", "error", err)
	}
	accounts.Wait()
	if err := scheduler.Stop(); err != nil {
		logger.Error(shutdownCtx, "scheduler shutdown", "error", err)
	}
	return nil
}
