package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/rl1809/pos-cart/internal/adapter/handler"
	"github.com/rl1809/pos-cart/internal/adapter/publisher"
	"github.com/rl1809/pos-cart/internal/adapter/storage"
	"github.com/rl1809/pos-cart/internal/config"
	"github.com/rl1809/pos-cart/internal/core/domain"
	"github.com/rl1809/pos-cart/internal/core/service"
	"github.com/rl1809/pos-cart/internal/logging"
	"github.com/rl1809/pos-cart/internal/metrics"
	"github.com/rl1809/pos-cart/internal/port"
)

type cartStore interface {
	port.CartRepository
	port.IdempotencyRepository
}

type eventPublisher interface {
	port.EventPublisher
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize cart store
	var store cartStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: cfg.RedisPoolSize,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
		store = storage.NewRedisAdapter(rdb, cfg.CartTTL)
	} else {
		logger.Info("using in-memory cart store")
		store = storage.NewMemoryAdapter(cfg.CartTTL)
	}

	// Initialize catalog
	var catalogRepo port.CatalogRepository
	if cfg.MySQLDSN != "" {
		if cfg.MySQLMigrate {
			if err := storage.RunMigrations(cfg.MySQLDSN, logger); err != nil {
				return err
			}
		}

		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return fmt.Errorf("open mysql: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping mysql: %w", err)
		}
		defer db.Close()
		logger.Info("connected to mysql")
		catalogRepo = storage.NewMySQLAdapter(db)
	} else {
		logger.Info("using built-in product catalog")
		catalogRepo = storage.NewStaticCatalog(domain.DefaultProducts())
	}

	// Initialize event publisher
	var pub eventPublisher
	if cfg.KafkaEnabled() {
		pub = publisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		logger.Info("publishing cart events to kafka",
			zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	} else {
		pub = publisher.NewLogPublisher(logger)
	}
	defer pub.Close()

	// Initialize services
	registry := prometheus.NewRegistry()
	cartMetrics := metrics.NewCartMetrics(registry)

	catalogService := service.NewCatalogService(catalogRepo)
	if _, err := catalogService.ListProducts(ctx); err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	cartService := service.NewCartService(store, catalogService, cfg.EventQueueSize,
		service.WithIdempotency(store),
		service.WithMutationDelay(cfg.MutationDelay),
		service.WithLogger(logger),
		service.WithMetrics(cartMetrics),
	)

	// Start worker pool
	dispatcher := publisher.NewDispatcher(pub, cfg.EventWorkers, cfg.EventQueueSize/cfg.EventWorkers+1, logger)
	workersDone := make(chan struct{})
	go func() {
		defer close(workersDone)
		dispatcher.Run(cartService.GetEventQueue())
	}()
	logger.Info("started event workers", zap.Int("count", cfg.EventWorkers))

	// Initialize gRPC server
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(handler.UnaryLoggingInterceptor(logger)))
	handler.RegisterCartServiceServer(grpcServer, handler.NewGRPCHandler(cartService, catalogService))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", zap.Error(err))
		}
	}()

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(cartService, catalogService, logger)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.NewRouter(httpHandler, logger, cartMetrics, metrics.Handler(registry)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", zap.Error(err))
	}
	logger.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")

	// Close event queue and wait for workers
	cartService.Close()
	<-workersDone
	logger.Info("workers stopped")

	return nil
}
