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
	catalogapp "github.com/shopflux/storefront/internal/application/catalog"
	identityapp "github.com/shopflux/storefront/internal/application/identity"
	newsletterapp "github.com/shopflux/storefront/internal/application/newsletter"
	orderapp "github.com/shopflux/storefront/internal/application/order"
	reviewapp "github.com/shopflux/storefront/internal/application/review"
	"github.com/shopflux/storefront/internal/application/shopping"
	"github.com/shopflux/storefront/internal/infrastructure/auth"
	"github.com/shopflux/storefront/internal/infrastructure/cache"
	"github.com/shopflux/storefront/internal/infrastructure/config"
	"github.com/shopflux/storefront/internal/infrastructure/logger"
	"github.com/shopflux/storefront/internal/infrastructure/persistence"
	"github.com/shopflux/storefront/internal/infrastructure/storage"
	"github.com/shopflux/storefront/internal/infrastructure/telemetry"
	"github.com/shopflux/storefront/internal/interfaces/http/handler"
	"github.com/shopflux/storefront/internal/interfaces/http/middleware"
	"github.com/shopflux/storefront/internal/interfaces/http/router"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	_ "github.com/shopflux/storefront/docs"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			ShopFlux Storefront API
//	@version		1.0
//	@description	Customer-facing catalog, cart, wishlist and order history API

//	@contact.name	ShopFlux Engineering

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	collector := telemetry.Collector{
		Endpoint:       cfg.Telemetry.CollectorEndpoint,
		Insecure:       cfg.Telemetry.Insecure,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
	}

	// OTEL logs first so the application logger can tee into them
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Collector: collector,
		Enabled:   cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize OTEL logs", zap.Error(err))
	}
	log, err := logger.New(logCfg, logProvider.Core(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting storefront API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.TracingConfig{
		Collector:     collector,
		Enabled:       cfg.Telemetry.Enabled,
		SamplingRatio: cfg.Telemetry.SamplingRatio,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Collector: collector,
		Enabled:   cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		Interval:  cfg.Telemetry.MetricsInterval,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiler.Enabled,
		ServerAddress:     cfg.Profiler.ServerAddress,
		ApplicationName:   cfg.Profiler.ApplicationName,
		BasicAuthUser:     cfg.Profiler.BasicAuthUser,
		BasicAuthPassword: cfg.Profiler.BasicAuthPassword,
		Tags:              map[string]string{"env": cfg.App.Env, "version": version},
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.SQLConfig{
		Level:         logger.GormLevel(cfg.Log.Level),
		SlowThreshold: cfg.Telemetry.DBSlowQueryThresh,
	})
	db, err := persistence.Open(ctx, cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		tracing := telemetry.DBTracing{
			Provider:   tracerProvider.Provider(),
			DBName:     cfg.Database.DBName,
			Slow:       cfg.Telemetry.DBSlowQueryThresh,
			WithValues: cfg.Telemetry.DBLogFullSQL,
		}
		if err := db.Use(tracing.Plugins()...); err != nil {
			log.Warn("Database tracing disabled", zap.Error(err))
		} else {
			log.Info("Database tracing enabled", zap.Bool("query_values", tracing.WithValues))
		}
	}

	var dbMetrics *telemetry.DBMetrics
	if meterProvider.IsEnabled() {
		dbMetrics, err = telemetry.NewDBMetrics(meterProvider.Meter("storefront.db"), cfg.Telemetry.DBSlowQueryThresh, log)
		if err != nil {
			log.Warn("Database metrics disabled", zap.Error(err))
		} else if err := db.Use(telemetry.NewDBMetricsPlugin(dbMetrics)); err != nil {
			log.Warn("Database metrics plugin not registered", zap.Error(err))
		} else if err := dbMetrics.ObservePool(db.Pool()); err != nil {
			log.Warn("Connection pool metrics disabled", zap.Error(err))
		}
	}

	// Redis-backed key stores, falling back to memory outside production
	cacheFactory := cache.NewFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	)
	redisClient, err := cacheFactory.Connect(ctx)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := cacheFactory.Close(); err != nil {
			log.Error("Error closing Redis", zap.Error(err))
		}
	}()
	idempotencyStore, err := cacheFactory.IdempotencyStore(ctx)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	defer idempotencyStore.Close()

	revokedTokens, err := cacheFactory.RevokedTokens(ctx)
	if err != nil {
		log.Fatal("Failed to create token revocation list", zap.Error(err))
	}
	defer revokedTokens.Close()
	jwtService := auth.NewJWTService(cfg.JWT, revokedTokens)

	// Product images
	var images catalogapp.ImageResolver = storage.NewStaticImageResolver(cfg.Storage.PublicBaseURL)
	if cfg.Storage.Enabled() {
		s3Images, err := storage.NewS3Images(ctx, cfg.Storage, log)
		if err != nil {
			log.Fatal("Failed to initialize image storage", zap.Error(err))
		}
		if err := s3Images.CheckBucket(ctx); err != nil {
			log.Warn("Image bucket not reachable, image URLs may fail", zap.Error(err))
		}
		images = s3Images
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	wishlistRepo := persistence.NewGormWishlistRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	subscriptionRepo := persistence.NewGormSubscriptionRepository(db.DB)
	profileRepo := persistence.NewGormProfileRepository(db.DB)

	// Services
	productService := catalogapp.NewProductService(productRepo, images, catalogapp.Settings{
		FeaturedLimit:    cfg.Storefront.FeaturedLimit,
		DefaultPageSize:  cfg.Storefront.DefaultPageSize,
		MaxPageSize:      cfg.Storefront.MaxPageSize,
		PlaceholderImage: cfg.Storefront.PlaceholderImage,
		Currency:         cfg.Storefront.Currency,
	}, log)
	cartService := shopping.NewCartService(cartRepo, productRepo, productService, idempotencyStore, shopping.CartSettings{
		MaxQuantity:    cfg.Storefront.MaxCartQuantity,
		IdempotencyTTL: cfg.Storefront.CartIdempotencyTTL,
		Currency:       cfg.Storefront.Currency,
	}, log)
	wishlistService := shopping.NewWishlistService(wishlistRepo, productRepo, productService, log)
	reviewService := reviewapp.NewReviewService(reviewRepo, productRepo)
	orderService := orderapp.NewOrderService(orderRepo)
	subscriptionService := newsletterapp.NewSubscriptionService(subscriptionRepo, log)
	profileService := identityapp.NewProfileService(profileRepo)

	if meterProvider.IsEnabled() {
		storefrontMetrics, err := telemetry.NewStorefrontMetrics(telemetry.StorefrontMetricsConfig{
			Meter:  meterProvider.Meter("storefront"),
			Logger: log,
		})
		if err != nil {
			log.Warn("Storefront metrics disabled", zap.Error(err))
		} else {
			productService.SetMetrics(storefrontMetrics)
			cartService.SetMetrics(storefrontMetrics)
			subscriptionService.SetMetrics(storefrontMetrics)
		}
	}

	health := handler.NewHealthHandler(cfg.App.Name, version).
		AddCheck("database", db.Ping)
	if redisClient != nil {
		health.AddCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var httpMeter metric.Meter
	if meterProvider.IsEnabled() {
		httpMeter = meterProvider.Meter("http.server")
	}
	engine := router.NewEngine(router.EngineConfig{
		Logger:           log,
		HTTP:             cfg.HTTP,
		ServiceName:      cfg.Telemetry.ServiceName,
		TracingEnabled:   tracerProvider.IsEnabled(),
		Meter:            httpMeter,
		ProfilingEnabled: profiler.IsEnabled(),
	})

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Stop()
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	router.RegisterStorefront(engine, router.Handlers{
		Catalog:    handler.NewCatalogHandler(productService, reviewService),
		Cart:       handler.NewCartHandler(cartService),
		Wishlist:   handler.NewWishlistHandler(wishlistService),
		Orders:     handler.NewOrderHandler(orderService),
		Newsletter: handler.NewNewsletterHandler(subscriptionService),
		Profile:    handler.NewProfileHandler(profileService),
		Auth:       handler.NewAuthHandler(jwtService),
		Health:     health,
	}, router.StorefrontConfig{
		Auth: middleware.AuthConfig{
			Tokens: jwtService,
			Logger: log,
		},
		Swagger: middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		},
		RateLimiter: rateLimiter,
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if dbMetrics != nil {
		dbMetrics.Stop()
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Profiler shutdown failed", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Logger provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
