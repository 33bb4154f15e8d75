package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/DukeRupert/vitrine/internal"
	"github.com/DukeRupert/vitrine/internal/billing"
	"github.com/DukeRupert/vitrine/internal/cache"
	"github.com/DukeRupert/vitrine/internal/handler"
	"github.com/DukeRupert/vitrine/internal/metrics"
	"github.com/DukeRupert/vitrine/internal/middleware"
	"github.com/DukeRupert/vitrine/internal/repository"
	"github.com/DukeRupert/vitrine/internal/service"
	"github.com/DukeRupert/vitrine/internal/storage"
	"github.com/DukeRupert/vitrine/internal/worker"
	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Env,
		}); err != nil {
			logger.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
			logger.Info("Sentry enabled")
		}
	}

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(ctx, db, logger); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	store := repository.NewStore(db)

	// Redis backs the plan cache and the shared contact rate limit. Both
	// fall back to process-local behavior without it.
	var redisCache *cache.Cache
	if cfg.RedisURL != "" {
		redisCache, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis initialization failed: %w", err)
		}
		defer redisCache.Close()
		logger.Info("Redis connected")
	}

	fileStorage, err := storage.New(storage.Config{
		Provider: cfg.StorageProvider,
		Local: storage.LocalConfig{
			BasePath: cfg.LocalStoragePath,
			BaseURL:  cfg.LocalStorageURL,
		},
		R2: storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}
	logger.Info("Storage ready", "provider", cfg.StorageProvider)

	var billingService billing.Service
	if cfg.BillingEnabled() {
		billingService = billing.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
		logger.Info("Stripe billing enabled")
	} else {
		logger.Warn("Stripe billing disabled: STRIPE_SECRET_KEY or STRIPE_WEBHOOK_SECRET not set")
	}

	// Initialize services
	var planCache service.PlanCache
	if redisCache != nil {
		planCache = redisCache
	}
	planService := service.NewPlanService(store, planCache, cfg.PlanCacheTTL, logger)
	if cfg.BillingEnabled() {
		prices := cfg.StripePriceIDs()
		if len(prices) == 0 {
			logger.Warn("no STRIPE_PRICE_* set, plans cannot be purchased online")
		}
		if err := planService.SetPriceIDs(ctx, prices); err != nil {
			return fmt.Errorf("plan price provisioning failed: %w", err)
		}
	}
	professionalService := service.NewProfessionalService(store, planService, logger)
	quotaService := service.NewQuotaService(store, planService, cfg.Location, logger)
	portfolioService := service.NewPortfolioService(store, planService, fileStorage, service.NewImagingProcessor(), logger)
	reviewService := service.NewReviewService(store, logger)
	rankingService := service.NewRankingService(store, logger)
	notificationService := service.NewNotificationService(store, cfg.NotificationWindow, cfg.NotificationLimit, logger)
	subscriptionService := service.NewSubscriptionService(store, planService, billingService, cfg.BaseURL, logger)

	// Initialize middleware
	isSecure := cfg.Env != "development"
	clientIP, err := middleware.NewClientIPResolver(cfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}
	loggingMw := middleware.NewRequestLoggingMiddleware(logger, clientIP)
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure)
	adminAuth := middleware.NewAdminAuthMiddleware(cfg.AdminUsername, cfg.AdminPassword)
	metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)

	var contactLimiter middleware.Limiter
	if redisCache != nil {
		contactLimiter = middleware.NewSharedRateLimiter(redisCache, "ratelimit:contacts:", cfg.ContactRateLimit, cfg.ContactRateWindow)
	} else {
		contactLimiter = middleware.NewRateLimiter(cfg.ContactRateLimit, cfg.ContactRateWindow, logger)
	}
	contactRateLimit := middleware.NewRateLimitMiddleware(contactLimiter, clientIP, logger)

	if cfg.AdminUsername == "" && cfg.AdminPassword == "" {
		logger.Warn("ADMIN_USERNAME and ADMIN_PASSWORD not set, admin endpoints are disabled")
	}
	if cfg.MetricsUsername == "" && cfg.MetricsPassword == "" {
		logger.Warn("METRICS_USERNAME and METRICS_PASSWORD not set, /metrics is unprotected")
	}

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	handler.NewHealthHandler(db, logger).RegisterRoutes(mux)
	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))

	if cfg.StorageProvider == storage.ProviderLocal {
		files := http.FileServer(http.Dir(cfg.LocalStoragePath))
		mux.Handle("GET /files/", http.StripPrefix("/files/", files))
	}

	handler.NewCatalogHandler(planService, professionalService, rankingService, logger).RegisterRoutes(mux)
	handler.NewProfessionalHandler(professionalService, quotaService, rankingService, subscriptionService, logger).RegisterRoutes(mux)
	handler.NewEngagementHandler(quotaService, reviewService, logger).RegisterRoutes(mux, contactRateLimit.Limit)
	handler.NewNotificationHandler(notificationService, logger).RegisterRoutes(mux)
	handler.NewPortfolioHandler(portfolioService, logger).RegisterRoutes(mux)
	handler.NewAdminHandler(subscriptionService, professionalService, reviewService, logger).RegisterRoutes(mux, adminAuth.Handler)
	handler.NewWebhookHandler(billingService, subscriptionService, logger).RegisterRoutes(mux)

	sentryMw := sentryhttp.New(sentryhttp.Options{Repanic: true})
	root := middleware.Stack(metrics.Middleware, loggingMw.Handler, sentryMw.Handle, securityMw.Handler)(mux)

	// ==========================================================================
	// Background sweep
	// ==========================================================================

	var sweeper *worker.Worker
	if cfg.SweepEnabled {
		sweeper, err = startSweeper(ctx, cfg, subscriptionService, logger)
		if err != nil {
			return err
		}
	}

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	cancel()
	if sweeper != nil {
		sweeper.Stop()
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

// startSweeper runs the lapsed-subscription sweep on an interval.
func startSweeper(ctx context.Context, cfg *internal.Config, subscriptions service.SubscriptionService, logger *slog.Logger) (*worker.Worker, error) {
	workerCfg := worker.DefaultConfig()
	workerCfg.Interval = cfg.SweepInterval
	workerCfg.TaskTimeout = cfg.SweepTimeout

	w, err := worker.New(workerCfg, logger.With("component", "sweeper"))
	if err != nil {
		return nil, fmt.Errorf("sweeper initialization failed: %w", err)
	}
	w.Register(worker.NewSweepTask(subscriptions))
	w.Start(ctx)
	return w, nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
