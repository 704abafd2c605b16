package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	inventoryhttp "github.com/Apurer/go-sales-api-server/internal/domains/inventory/adapters/http"
	inventorymemory "github.com/Apurer/go-sales-api-server/internal/domains/inventory/adapters/memory"
	inventorypostgres "github.com/Apurer/go-sales-api-server/internal/domains/inventory/adapters/persistence/postgres"
	inventoryredis "github.com/Apurer/go-sales-api-server/internal/domains/inventory/adapters/redis"
	inventoryapp "github.com/Apurer/go-sales-api-server/internal/domains/inventory/application"
	inventoryports "github.com/Apurer/go-sales-api-server/internal/domains/inventory/ports"
	invoiceshttp "github.com/Apurer/go-sales-api-server/internal/domains/invoices/adapters/http"
	invoicesmemory "github.com/Apurer/go-sales-api-server/internal/domains/invoices/adapters/memory"
	invoicespostgres "github.com/Apurer/go-sales-api-server/internal/domains/invoices/adapters/persistence/postgres"
	invoicesapp "github.com/Apurer/go-sales-api-server/internal/domains/invoices/application"
	invoicesports "github.com/Apurer/go-sales-api-server/internal/domains/invoices/ports"
	saleshttp "github.com/Apurer/go-sales-api-server/internal/domains/sales/adapters/http"
	salesmemory "github.com/Apurer/go-sales-api-server/internal/domains/sales/adapters/memory"
	salesobs "github.com/Apurer/go-sales-api-server/internal/domains/sales/adapters/observability"
	salespostgres "github.com/Apurer/go-sales-api-server/internal/domains/sales/adapters/persistence/postgres"
	salesworkflowadapters "github.com/Apurer/go-sales-api-server/internal/domains/sales/adapters/workflows"
	salesapp "github.com/Apurer/go-sales-api-server/internal/domains/sales/application"
	salesports "github.com/Apurer/go-sales-api-server/internal/domains/sales/ports"
	"github.com/Apurer/go-sales-api-server/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-sales-api-server/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-sales-api-server/internal/platform/postgres"
	"github.com/Apurer/go-sales-api-server/internal/platform/pubsub"
	"github.com/Apurer/go-sales-api-server/internal/platform/redisconn"
	"github.com/Apurer/go-sales-api-server/internal/shared/contracts"
	"github.com/Apurer/go-sales-api-server/internal/shared/outbox"
	outboxmemory "github.com/Apurer/go-sales-api-server/internal/shared/outbox/memory"
	outboxpostgres "github.com/Apurer/go-sales-api-server/internal/shared/outbox/postgres"
)

// Run boots the sales HTTP API with storage, messaging, and workflows wired.
func Run(ctx context.Context) error {
	const serviceName = "sales-api"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	storage, cleanupStorage := buildStorage(ctx, cfg, logger)
	defer cleanupStorage()

	publisher, memoryChannel, cleanupPublisher := buildPublisher(cfg, logger)
	defer cleanupPublisher()

	orchestrator := salesworkflowadapters.NewInlineFulfillment(storage.outbox, publisher, logger)
	var fulfillment salesports.FulfillmentOrchestrator = orchestrator
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal unavailable, dispatching sale events inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		fulfillment = salesworkflowadapters.NewTemporalFulfillment(temporalClient)
		logger.Info("Temporal fulfillment enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	coreSalesService := salesapp.NewService(storage.sales, fulfillment, logger)
	salesService := salesobs.New(
		coreSalesService,
		salesobs.WithLogger(logger),
		salesobs.WithTracer(instruments.Tracer("internal.sales.application")),
		salesobs.WithMeter(instruments.Meter("internal.sales.application")),
	)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	saleshttp.NewSalesAPI(salesService).RegisterRoutes(router)

	// Without brokers the downstream handlers live in this process: the
	// memory channel feeds them and the sweep loop redelivers failures.
	if memoryChannel != nil {
		inventoryService, invoiceService := buildLocalConsumers(ctx, cfg, storage, logger)
		memoryChannel.Subscribe(contracts.TopicInventoryUpdates, inventoryService.HandleMessage)
		memoryChannel.Subscribe(contracts.TopicSaleInvoiceEvents, invoiceService.HandleMessage)
		inventoryhttp.NewInventoryAPI(inventoryService).RegisterRoutes(router)
		invoiceshttp.NewInvoicesAPI(invoiceService).RegisterRoutes(router)
		go drainLoop(ctx, memoryChannel, logger)
		go outbox.NewDispatcher(storage.outbox, publisher, logger, cfg.OutboxBatchSize, cfg.OutboxGrace).
			Run(ctx, cfg.OutboxSweepInterval)
	}

	addr := ":" + cfg.Port
	logger.Info("sales API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("sales API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

type storageSet struct {
	sales     salesports.Repository
	inventory inventoryports.Repository
	invoices  invoicesports.Store
	outbox    outbox.Store
}

func buildStorage(ctx context.Context, cfg Config, logger *slog.Logger) (*storageSet, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory storage")
		return memoryStorage(), func() {}
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return memoryStorage(), func() {}
	}
	if err := migrations.Run(db); err != nil {
		logger.Warn("failed to run migrations, falling back to memory", slog.String("error", err.Error()))
		return memoryStorage(), func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to memory", slog.String("error", err.Error()))
		return memoryStorage(), func() {}
	}
	logger.Info("storage configured with postgres")
	return &storageSet{
		sales:     salespostgres.NewRepository(db),
		inventory: inventorypostgres.NewRepository(db),
		invoices:  invoicespostgres.NewStore(db),
		outbox:    outboxpostgres.NewStore(db),
	}, func() { _ = sqlDB.Close() }
}

func memoryStorage() *storageSet {
	memOutbox := outboxmemory.NewStore()
	return &storageSet{
		sales:     salesmemory.NewRepository(memOutbox),
		inventory: inventorymemory.NewRepository(),
		invoices:  invoicesmemory.NewStore(),
		outbox:    memOutbox,
	}
}

func buildPublisher(cfg Config, logger *slog.Logger) (pubsub.Publisher, *pubsub.MemoryChannel, func()) {
	if len(cfg.KafkaBrokers) > 0 {
		publisher := pubsub.NewKafkaPublisher(cfg.KafkaBrokers)
		logger.Info("publishing sale events to kafka", slog.Any("brokers", cfg.KafkaBrokers))
		return publisher, nil, func() { _ = publisher.Close() }
	}
	logger.Warn("KAFKA_BROKERS not set, delivering sale events in process")
	channel := pubsub.NewMemoryChannel()
	return channel, channel, func() {}
}

func buildLocalConsumers(ctx context.Context, cfg Config, storage *storageSet, logger *slog.Logger) (*inventoryapp.Service, *invoicesapp.Service) {
	var processed inventoryports.ProcessedEventStore = inventorymemory.NewProcessedEvents()
	if cfg.RedisAddr != "" {
		if redisClient, err := redisconn.Connect(ctx, cfg.RedisAddr); err != nil {
			logger.Warn("failed to connect to redis, tracking processed events in memory", slog.String("error", err.Error()))
		} else {
			processed = inventoryredis.NewProcessedEvents(redisClient)
			logger.Info("tracking processed events in redis", slog.String("addr", cfg.RedisAddr))
		}
	}
	return inventoryapp.NewService(storage.inventory, processed, logger), invoicesapp.NewService(storage.invoices, logger)
}

func drainLoop(ctx context.Context, channel *pubsub.MemoryChannel, logger *slog.Logger) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if delivered := channel.Drain(ctx); delivered > 0 {
				logger.Debug("delivered in-process messages", slog.Int("count", delivered))
			}
		}
	}
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.Default()
}
