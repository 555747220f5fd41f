package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	fulfillmentapp "github.com/wms/backend/internal/application/fulfillment"
	"github.com/wms/backend/internal/domain/integration"
	"github.com/wms/backend/internal/infrastructure/cache"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/ecommerce"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/infrastructure/persistence"
	"github.com/wms/backend/internal/infrastructure/scheduler"
	"github.com/wms/backend/internal/infrastructure/telemetry"
	"github.com/wms/backend/internal/interfaces/http/handler"
	"github.com/wms/backend/internal/interfaces/http/middleware"
	"github.com/wms/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting WMS Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry
	providers, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		ServiceName:       cfg.Telemetry.ServiceName,
		Environment:       cfg.App.Env,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
	}, logger.Component(log, "telemetry"))
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	// Order store and its observers
	store := persistence.NewInMemoryOrderStore()

	var promRegistry *telemetry.Registry
	if cfg.Telemetry.PrometheusEnabled {
		promRegistry = telemetry.NewRegistry(store)
	}

	syncMetrics, err := telemetry.NewSyncMetrics(telemetry.SyncMetricsConfig{
		Meter:  providers.Meter(),
		Logger: logger.Component(log, "sync_metrics"),
		Orders: store,
	})
	if err != nil {
		log.Fatal("Failed to create sync metrics", zap.Error(err))
	}

	// Marketplace
	parser := ecommerce.NewShopeeParser()
	adapter := buildShopeeAdapter(ctx, cfg, log)

	var market integration.Marketplace
	if adapter != nil {
		market = adapter
	}
	orderService := fulfillmentapp.NewOrderService(store, market, parser, logger.Component(log, "orders"))

	// Reconciliation scheduler; stays nil without a usable token
	var syncScheduler *scheduler.SyncScheduler
	var syncController handler.SyncController
	switch {
	case !cfg.Sync.Enabled:
		log.Info("Order sync disabled by configuration")
	case adapter == nil || !adapter.HasToken():
		log.Warn("No Shopee access token available, order sync will not run")
	default:
		opts := []fulfillmentapp.SyncServiceOption{
			fulfillmentapp.WithLookback(cfg.Sync.Lookback),
			fulfillmentapp.WithObserver(syncMetrics),
			fulfillmentapp.WithSyncLogger(logger.Component(log, "sync")),
		}
		if promRegistry != nil {
			opts = append(opts, fulfillmentapp.WithObserver(promRegistry))
		}
		syncService := fulfillmentapp.NewSyncService(adapter, parser, store, opts...)

		syncScheduler, err = scheduler.NewSyncScheduler(scheduler.SyncSchedulerConfig{
			Interval:     cfg.Sync.Interval,
			PassTimeout:  cfg.Sync.PassTimeout,
			HistorySize:  cfg.Sync.HistorySize,
			RunOnStartup: cfg.Sync.RunOnStartup,
		}, syncService, logger.Component(log, "scheduler"))
		if err != nil {
			log.Fatal("Failed to create sync scheduler", zap.Error(err))
		}
		if err := syncScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start sync scheduler", zap.Error(err))
		}
		syncController = syncScheduler
	}

	engine := newEngine(cfg, log, promRegistry,
		handler.NewOrderHandler(orderService),
		handler.NewSyncHandler(syncController),
		handler.NewSystemHandler(store, syncController),
	)

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           cfg.App.Addr(),
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if syncScheduler != nil {
		// An in-flight pass completes before Stop returns
		if err := syncScheduler.Stop(shutdownCtx); err != nil {
			log.Error("Sync scheduler did not stop cleanly", zap.Error(err))
		}
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Error("Telemetry shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// buildShopeeAdapter returns nil when credentials are missing so HTTP can start without sync
func buildShopeeAdapter(ctx context.Context, cfg *config.Config, log *zap.Logger) *ecommerce.ShopeeAdapter {
	if !cfg.Shopee.IsConfigured() {
		log.Warn("Shopee credentials not configured, product lookup and sync are unavailable")
		return nil
	}

	tokens, err := cache.NewTokenStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create token store", zap.Error(err))
	}

	shopeeCfg := ecommerce.NewShopeeConfig(cfg.Shopee.PartnerID, cfg.Shopee.PartnerKey, cfg.Shopee.ShopID)
	shopeeCfg.AccessToken = cfg.Shopee.AccessToken
	shopeeCfg.RefreshToken = cfg.Shopee.RefreshToken
	shopeeCfg.IsSandbox = cfg.Shopee.IsSandbox
	shopeeCfg.TimeoutSeconds = cfg.Shopee.TimeoutSeconds
	shopeeCfg.PageSize = cfg.Shopee.PageSize
	shopeeCfg.OrderStatus = cfg.Shopee.OrderStatus
	// Empty lets Validate pick the production or sandbox host
	shopeeCfg.APIBaseURL = cfg.Shopee.APIBaseURL

	adapter, err := ecommerce.NewShopeeAdapter(ctx, shopeeCfg,
		ecommerce.WithShopeeTokenStore(tokens),
		ecommerce.WithShopeeLogger(logger.Component(log, "shopee")),
	)
	if err != nil {
		log.Fatal("Failed to create Shopee adapter", zap.Error(err))
	}
	return adapter
}

// newEngine assembles middleware and routes
func newEngine(
	cfg *config.Config,
	log *zap.Logger,
	promRegistry *telemetry.Registry,
	orderHandler *handler.OrderHandler,
	syncHandler *handler.SyncHandler,
	systemHandler *handler.SystemHandler,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
		_ = engine.SetTrustedProxies(nil)
	}

	// Middleware order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Tracing - Open the request span
	// 4. Logger - Log requests
	// 5. Metrics - Scrape counters per route
	// 6. Security - Add security headers
	// 7. CORS - Handle cross-origin requests
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	tracingConfig := middleware.DefaultTracingConfig()
	if cfg.Telemetry.ServiceName != "" {
		tracingConfig.ServiceName = cfg.Telemetry.ServiceName
	}
	tracingConfig.Enabled = cfg.Telemetry.Enabled
	engine.Use(middleware.Tracing(tracingConfig), middleware.SpanEnricher())
	engine.Use(logger.GinMiddleware(log))
	if promRegistry != nil {
		engine.Use(middleware.Metrics(promRegistry))
	}
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Operational endpoints (outside the API prefix)
	engine.GET("/health", systemHandler.Health)
	if promRegistry != nil {
		engine.GET("/metrics", gin.WrapH(promRegistry.Handler()))
	}

	r := router.NewRouter(engine)
	r.Register(orderHandler.Routes()).
		Register(syncHandler.Routes())

	systemRoutes := router.NewDomainGroup("system", "")
	systemRoutes.GET("/ping", systemHandler.Ping)
	r.Register(systemRoutes)

	r.Setup()
	return engine
}
