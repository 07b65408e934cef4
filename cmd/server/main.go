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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shareit-app/service-booking/internal/application"
	"github.com/shareit-app/service-booking/internal/config"
	bookingDomain "github.com/shareit-app/service-booking/internal/domain/booking"
	commentDomain "github.com/shareit-app/service-booking/internal/domain/comment"
	itemDomain "github.com/shareit-app/service-booking/internal/domain/item"
	userDomain "github.com/shareit-app/service-booking/internal/domain/user"
	bookingEvents "github.com/shareit-app/service-booking/internal/events"
	"github.com/shareit-app/service-booking/internal/handler"
	"github.com/shareit-app/service-booking/internal/metrics"
	"github.com/shareit-app/service-booking/internal/repository"
	"github.com/shareit-app/service-booking/internal/repository/memory"
	"github.com/shareit-app/service-booking/pkg/auth"
	"github.com/shareit-app/service-booking/pkg/clock"
	"github.com/shareit-app/service-booking/pkg/database"
	"github.com/shareit-app/service-booking/pkg/health"
	"github.com/shareit-app/service-booking/pkg/logger"
	"github.com/shareit-app/service-booking/pkg/middleware"
)

// gateways bundles the storage implementations selected by STORAGE_DRIVER.
type gateways struct {
	db       *gorm.DB
	bookings bookingDomain.BookingRepository
	items    itemDomain.ItemRepository
	users    userDomain.UserRepository
	comments commentDomain.CommentRepository
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-booking")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
		zap.String("storage", cfg.StorageDriver),
	)

	gw, err := openGateways(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize storage", zap.Error(err))
	}

	// Optional Redis cache in front of item lookups
	if cfg.RedisConfig.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisConfig.Addr,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis unreachable, item cache will fall back to storage", zap.Error(err))
		}
		pingCancel()

		gw.items = repository.NewCachedItemRepository(gw.items, rdb, cfg.RedisConfig.TTL, log)
		log.Info("item cache enabled", zap.String("addr", cfg.RedisConfig.Addr))
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, 15*time.Minute)

	metrics.Register()
	clk := clock.System()

	// Initialize application services
	bookingService := application.NewBookingService(gw.bookings, gw.items, gw.users, clk, metrics.Recorder{}, log)
	itemService := application.NewItemService(gw.items, gw.users, gw.bookings, gw.comments, clk, log)

	// Initialize and start catalog event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.ConsumerEnabled {
		catalogConsumer := bookingEvents.NewCatalogEventConsumer(
			cfg.KafkaConfig.Brokers,
			cfg.KafkaConfig.GroupPrefix+"booking-service",
			cfg.KafkaConfig.CatalogTopic,
			bookingEvents.CatalogProjection{Users: gw.users, Items: gw.items, Comments: gw.comments},
			log,
		)
		defer func() { _ = catalogConsumer.Close() }()

		go func() {
			log.Info("starting catalog event consumer", zap.String("topic", cfg.KafkaConfig.CatalogTopic))
			if err := catalogConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("catalog event consumer error", zap.Error(err))
			}
		}()
	}

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(metrics.Middleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check and metrics routes
	health.NewHandler(gw.db, "service-booking").RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var limited []gin.HandlerFunc
	if cfg.RateLimit.RPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		limited = append(limited, middleware.RateLimitMiddleware(limiter))
	}

	// Register routes
	handler.NewBookingHandler(bookingService, clk).RegisterRoutes(&router.RouterGroup, jwtManager, limited...)
	handler.NewItemHandler(itemService).RegisterRoutes(&router.RouterGroup, jwtManager, limited...)
	handler.NewAdminBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}

func openGateways(cfg *config.ServiceConfig, log *zap.Logger) (*gateways, error) {
	if cfg.StorageDriver == config.StorageMemory {
		store := memory.NewStore()
		log.Warn("using in-memory storage, data is lost on restart")
		return &gateways{
			bookings: store.Bookings(),
			items:    store.Items(),
			users:    store.Users(),
			comments: store.Comments(),
		}, nil
	}

	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.UserModel{},
			&repository.ItemModel{},
			&repository.CommentModel{},
			&repository.BookingModel{},
		); err != nil {
			return nil, fmt.Errorf("failed to run auto-migration: %w", err)
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), cfg.MigrationsDir, log); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &gateways{
		db:       db,
		bookings: repository.NewGormBookingRepository(db),
		items:    repository.NewGormItemRepository(db),
		users:    repository.NewGormUserRepository(db),
		comments: repository.NewGormCommentRepository(db),
	}, nil
}
