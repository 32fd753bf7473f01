package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	taskcoin "github.com/set-night/taskcoin"
	"github.com/set-night/taskcoin/internal/auth"
	"github.com/set-night/taskcoin/internal/config"
	"github.com/set-night/taskcoin/internal/handler"
	"github.com/set-night/taskcoin/internal/metrics"
	"github.com/set-night/taskcoin/internal/payment"
	"github.com/set-night/taskcoin/internal/repository"
	"github.com/set-night/taskcoin/internal/service"
	"github.com/set-night/taskcoin/internal/telegram"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Telegram ops log
	var ops *telegram.OpsLogger
	if cfg.TelegramLoggingEnabled() {
		b, err := bot.New(cfg.TelegramBotToken)
		if err != nil {
			slog.Warn("telegram ops log disabled", "error", err)
		} else {
			if me, err := b.GetMe(ctx); err == nil {
				slog.Info("telegram ops log enabled", "bot", me.Username, "chat_id", cfg.LogTelegramChatID)
			}
			ops = telegram.NewOpsLogger(b, cfg)
		}
	}

	// Payment processor
	var processor service.PaymentProcessor
	if cfg.StripeSecretKey != "" {
		processor = payment.NewStripeProcessor(cfg.StripeSecretKey, nil)
	} else {
		slog.Warn("STRIPE_SECRET_KEY not set, payment intents are disabled")
	}

	opts := service.Options{
		Policy: service.Policy{
			DefaultCoinWorker:      cfg.DefaultCoinWorker,
			DefaultCoinTaskCreator: cfg.DefaultCoinTaskCreator,
			AllowNegativeBalance:   cfg.AllowNegativeBalance,
			UniqueSubmissions:      cfg.UniqueSubmissions,
		},
		Metrics: m,
	}
	if ops != nil {
		opts.Ops = ops
	}

	// Initialize services
	notifications := service.NewNotificationService(store)
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)

	h := handler.New(handler.Deps{
		Guard:          auth.NewGuard(issuer, store),
		Issuer:         issuer,
		Users:          service.NewUserService(store, opts),
		Tasks:          service.NewTaskService(store, store, opts),
		Submissions:    service.NewSubmissionService(store, store, store, notifications, opts),
		Withdrawals:    service.NewWithdrawalService(store, notifications, opts),
		Notifications:  notifications,
		Payments:       service.NewPaymentService(store, processor, cfg.PaymentCurrency, opts),
		Admin:          service.NewAdminService(store, store),
		Metrics:        m,
		Gatherer:       reg,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           h.Routes(),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting http server", "addr", srv.Addr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			slog.Error("http server failed", "error", err)
			closeStore()
			os.Exit(1)
		}
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown", "error", err)
	}
	ops.Wait()
	slog.Info("server stopped gracefully")
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		slog.Warn("using in-memory store, data is lost on exit")
		return repository.NewMemoryStore(), func() {}, nil
	}

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL, repository.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	// Run migrations
	migrationsFS, err := fs.Sub(taskcoin.MigrationsFS, "migrations")
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("load embedded migrations: %w", err)
	}
	if _, err := repository.MigrateSchema(cfg.DatabaseURL, migrationsFS); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return repository.NewPgStore(pool), pool.Close, nil
}
