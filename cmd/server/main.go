package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/pesio-ai/be-procurement-settlement/internal/client"
	"github.com/pesio-ai/be-procurement-settlement/internal/handler"
	"github.com/pesio-ai/be-procurement-settlement/internal/relay"
	"github.com/pesio-ai/be-procurement-settlement/internal/repository"
	"github.com/pesio-ai/be-procurement-settlement/internal/repository/memory"
	"github.com/pesio-ai/be-procurement-settlement/internal/service"
	"github.com/pesio-ai/be-procurement-settlement/pkg/config"
	"github.com/pesio-ai/be-procurement-settlement/pkg/database"
	"github.com/pesio-ai/be-procurement-settlement/pkg/idempotency"
	"github.com/pesio-ai/be-procurement-settlement/pkg/logger"
	"github.com/pesio-ai/be-procurement-settlement/pkg/metrics"
)

// storage is what the selected driver provides beyond the service stores.
type storage struct {
	stores service.Stores
	outbox relay.Outbox
	ping   func(ctx context.Context) error
	close  func()
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:       os.Getenv("LOG_LEVEL"),
		Environment: cfg.Service.Environment,
		ServiceName: cfg.Service.Name,
		Version:     cfg.Service.Version,
	})

	log.Info().
		Str("service", cfg.Service.Name).
		Str("version", cfg.Service.Version).
		Str("environment", cfg.Service.Environment).
		Str("storage", cfg.Storage.Driver).
		Msg("Starting Procurement Settlement Service")

	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Initialize storage
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer store.close()

	// Initialize notifications
	var natsPublisher client.EventPublisher
	if cfg.NATS.URL != "" {
		natsClient, err := client.NewNATSClient(cfg.NATS.URL, cfg.Service.Name, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to NATS")
		}
		defer natsClient.Close()
		natsPublisher = natsClient
		log.Info().Str("url", cfg.NATS.URL).Msg("NATS connection established")
	} else {
		log.Warn().Msg("NATS_URL not set, order request notifications disabled")
	}
	notifier := client.NewNotificationPublisher(natsPublisher, log.Logger)

	// Initialize idempotency store
	var idem handler.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		idem = idempotency.NewRedisStore(rdb, cfg.Service.Name, cfg.Redis.IdempotencyTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connection established")
	} else {
		log.Warn().Msg("REDIS_ADDR not set, Idempotency-Key headers are ignored")
	}

	// Initialize services
	loc, _ := time.LoadLocation(cfg.Settlement.BudgetTimezone)
	prices := service.NewPriceLookup(store.stores.Products)
	budgetService := service.NewBudgetService(store.stores, service.BudgetOptions{
		MaxAttempts: cfg.Settlement.MaxAttempts,
		Location:    loc,
	}, m, log)
	orderService := service.NewOrderService(store.stores, budgetService, prices, m, log)
	requestService := service.NewOrderRequestService(store.stores, prices, notifier, nil, m, log)

	// Start outbox relay
	if brokers := client.ParseBrokers(cfg.Kafka.Brokers); len(brokers) > 0 {
		publisher := client.NewKafkaPublisher(brokers, cfg.Kafka.Topic)
		defer publisher.Close()
		outboxRelay := relay.New(store.stores.Tx, store.outbox, publisher, cfg.Kafka.RelayInterval, cfg.Kafka.RelayBatch, m, log)
		go outboxRelay.Run(ctx)
		log.Info().Strs("brokers", brokers).Str("topic", cfg.Kafka.Topic).Msg("Outbox relay configured")
	} else {
		log.Warn().Msg("KAFKA_BROKERS not set, order events stay in the outbox")
	}

	// Setup HTTP routes
	if cfg.Service.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		handler.RequestID(),
		handler.Recovery(log),
		handler.AccessLog(log),
		handler.Metrics(m),
	)

	router.GET("/health", func(c *gin.Context) {
		if err := store.ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler(registry)))

	httpHandler := handler.NewHTTPHandler(orderService, budgetService, requestService, idem, log)
	httpHandler.Register(router)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	// Start gRPC server
	grpcServer, healthServer := handler.NewGRPCServer(log.Logger)
	go handler.WatchHealth(ctx, healthServer, store.ping, 10*time.Second, log.Logger)

	grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create gRPC listener")
	}

	go func() {
		log.Info().Int("port", cfg.Server.GRPCPort).Msg("Starting gRPC server")
		if err := grpcServer.Serve(grpcListener); err != nil {
			log.Error().Err(err).Msg("gRPC server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	// Stop gRPC server gracefully
	grpcServer.GracefulStop()

	log.Info().Msg("Server stopped")
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == "memory" {
		store := memory.New()
		seedDemo(store, time.Now())
		log.Warn().Msg("Using in-memory storage seeded with demo data; nothing is persisted")
		return &storage{
			stores: service.Stores{
				Tx:       store,
				Users:    store.Users(),
				Budgets:  store.Budgets(),
				Ledger:   store.Ledger(),
				Products: store.Products(),
				Carts:    store.Carts(),
				Orders:   store.Orders(),
				Requests: store.OrderRequests(),
				Outbox:   store.Outbox(),
			},
			outbox: store.Outbox(),
			ping:   func(context.Context) error { return nil },
			close:  func() {},
		}, nil
	}

	db, err := database.New(ctx, database.Config{
		Host:        cfg.Database.Host,
		Port:        cfg.Database.Port,
		User:        cfg.Database.User,
		Password:    cfg.Database.Password,
		Database:    cfg.Database.Database,
		SSLMode:     cfg.Database.SSLMode,
		MaxConns:    cfg.Database.MaxConns,
		MinConns:    cfg.Database.MinConns,
		MaxConnTime: cfg.Database.MaxConnTime,
		MaxIdleTime: cfg.Database.MaxIdleTime,
		HealthCheck: cfg.Database.HealthCheck,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Msg("Database connection established")

	outbox := repository.NewOutboxRepository(db)
	return &storage{
		stores: service.Stores{
			Tx:       db,
			Users:    repository.NewUserRepository(db),
			Budgets:  repository.NewBudgetRepository(db),
			Ledger:   repository.NewLedgerRepository(db),
			Products: repository.NewProductRepository(db),
			Carts:    repository.NewCartRepository(db),
			Orders:   repository.NewOrderRepository(db),
			Requests: repository.NewOrderRequestRepository(db),
			Outbox:   outbox,
		},
		outbox: outbox,
		ping:   db.Ping,
		close:  db.Close,
	}, nil
}
