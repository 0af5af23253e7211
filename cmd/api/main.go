package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/notification"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/usecase/balance"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/usecase/inbox"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/usecase/moderation"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/usecase/serial"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/usecase/withdrawal"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/database/migration"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/idgen"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/memory"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/notifier"
	timeProvider "github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/config"
)

// storage is the selected persistence backend
type storage struct {
	uow    persistence.UnitOfWork
	db     *database.Manager // nil for the in-memory store
	pinger handler.Pinger
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create logger
	appLogger, err := logger.NewZapLogger(logger.Options{
		Production: cfg.Logger.Format == "json",
		Level:      cfg.Logger.Level,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = appLogger.Flush() }()

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("Service stopped with error", map[string]any{"error": err.Error()})
		_ = appLogger.Flush()
		os.Exit(1)
	}
}

func run(cfg *config.Config, appLogger coreport.Logger) error {
	ctx := context.Background()
	tp := timeProvider.NewRealTimeProvider()
	ids := idgen.NewULIDGenerator(tp)

	policy, err := cfg.Finance.FeePolicy()
	if err != nil {
		return fmt.Errorf("invalid finance configuration: %w", err)
	}

	store, err := openStorage(ctx, cfg, appLogger, tp)
	if err != nil {
		return err
	}
	if store.db != nil {
		defer func() {
			appLogger.Info("Closing database", map[string]any{"pool": store.db.PoolMetrics()})
			if err := store.db.Close(); err != nil {
				appLogger.Warn("Failed to close database", map[string]any{"error": err.Error()})
			}
		}()
	}

	sinks, closers, err := buildSinks(cfg, store.uow, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				appLogger.Warn("Failed to close notification sink", map[string]any{"error": err.Error()})
			}
		}
	}()

	dispatcher := notifier.NewAsyncDispatcher(
		notifier.NewMultiDispatcher(sinks...),
		notifier.AsyncOptions{
			BufferSize:      cfg.Notifications.BufferSize,
			DispatchTimeout: cfg.Notifications.DispatchTimeout,
		},
		tp,
		appLogger,
	)

	// Per-account queues serialize every write
	queues := serial.NewManager(appLogger, cfg.Ledger.QueueSize)

	// Initialize use cases
	ledgerService := ledger.NewService(store.uow, queues, ids, tp, appLogger, cfg.Ledger.PageSize)
	balanceService := balance.NewService(store.uow, ledgerService, tp, appLogger)
	withdrawalProcessor := withdrawal.NewProcessor(store.uow, queues, ledgerService, balanceService, dispatcher, policy, ids, tp, appLogger)
	moderationEngine := moderation.NewEngine(store.uow, queues, ledgerService, dispatcher, policy, ids, tp, appLogger)
	inboxService := inbox.NewService(store.uow)

	if cfg.Storage.SeedDemo {
		bonus, err := entity.ParseMoney(cfg.Storage.DemoBonus)
		if err != nil {
			return fmt.Errorf("invalid demo bonus: %w", err)
		}
		if err := migration.SeedDemoBalances(ctx, ledgerService, migration.DemoUserIDs, bonus, appLogger); err != nil {
			appLogger.Error("Failed to seed demo balances", map[string]any{"error": err.Error()})
		}
	}

	var limiter *middleware.IPRateLimiter
	if cfg.Server.RateLimit.RPS > 0 {
		limiter = middleware.NewIPRateLimiter(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst, tp)
		defer limiter.Stop()
	}

	// Initialize Gin router
	router := gin.New()
	routes.SetupMiddlewares(router, appLogger, tp, limiter)
	routes.SetupRoutes(router, routes.Handlers{
		User:        handler.NewUserHandler(balanceService, cfg.Finance.Currency, appLogger),
		Transaction: handler.NewTransactionHandler(ledgerService, appLogger),
		Withdrawal:  handler.NewWithdrawalHandler(withdrawalProcessor, appLogger),
		Content:     handler.NewContentHandler(moderationEngine, appLogger),
		Inbox:       handler.NewInboxHandler(inboxService, appLogger),
		Health:      handler.NewHealthHandler(store.pinger, appLogger),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Starting server", map[string]any{
			"addr":    server.Addr,
			"env":     cfg.Environment,
			"storage": cfg.Storage.Driver,
			"sinks":   cfg.Notifications.Sinks,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-quit:
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("server failed: %w", err)
		}
	}

	appLogger.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{"error": err.Error()})
	}

	// Drain queued account writes before the notifications they emit
	queues.Shutdown()
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		appLogger.Warn("Pending notifications dropped at shutdown", map[string]any{"error": err.Error()})
	}

	appLogger.Info("Server exited gracefully", nil)
	return runErr
}

// openStorage connects the configured backend, running migrations for postgres when enabled
func openStorage(ctx context.Context, cfg *config.Config, appLogger coreport.Logger, tp coreport.TimeProvider) (*storage, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		appLogger.Warn("Using in-memory storage; balances are lost on restart", nil)
		return &storage{uow: memory.NewUnitOfWork(memory.NewStore(tp, appLogger))}, nil
	}

	dbManager := database.NewManager(database.NewConfig(cfg.Database, cfg.Logger.Level), appLogger, tp)
	if _, err := dbManager.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := migration.NewMigrationManager(dbManager.DB(), appLogger, tp).MigrateAll(ctx); err != nil {
			_ = dbManager.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return &storage{uow: dbManager.UnitOfWork(), db: dbManager, pinger: dbManager}, nil
}

// buildSinks creates the configured notification sinks and the resources to close at shutdown
func buildSinks(cfg *config.Config, uow persistence.UnitOfWork, appLogger coreport.Logger) ([]notification.Dispatcher, []io.Closer, error) {
	var (
		sinks   []notification.Dispatcher
		closers []io.Closer
	)
	nc := cfg.Notifications

	if nc.HasSink(config.SinkLog) {
		sinks = append(sinks, notifier.NewLogDispatcher(appLogger))
	}
	if nc.HasSink(config.SinkInbox) {
		sinks = append(sinks, notifier.NewInboxStore(uow))
	}
	if nc.HasSink(config.SinkRedis) {
		client := notifier.NewRedisClient(notifier.RedisOptions{
			Addr:     nc.Redis.Addr,
			Password: nc.Redis.Password,
			DB:       nc.Redis.DB,
		})
		sinks = append(sinks, notifier.NewRedisPublisher(client, nc.Redis.Channel))
		closers = append(closers, client)
	}
	if nc.HasSink(config.SinkKafka) {
		publisher := notifier.NewKafkaPublisher(notifier.NewKafkaWriter(nc.Kafka.Brokers, nc.Kafka.Topic, appLogger))
		sinks = append(sinks, publisher)
		closers = append(closers, publisher)
	}

	if len(sinks) == 0 {
		return nil, nil, errors.New("no notification sinks configured")
	}
	return sinks, closers, nil
}
