// Package consumer boots the fan-out handler process: Pub/Sub push endpoints
// plus Kafka reader loops feeding the inventory and invoice services.
package consumer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

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
	"github.com/Apurer/go-sales-api-server/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-sales-api-server/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-sales-api-server/internal/platform/postgres"
	"github.com/Apurer/go-sales-api-server/internal/platform/pubsub"
	"github.com/Apurer/go-sales-api-server/internal/platform/redisconn"
	"github.com/Apurer/go-sales-api-server/internal/shared/contracts"
)

// Run boots the consumer process and blocks until the HTTP server exits.
func Run(ctx context.Context) error {
	const serviceName = "sales-consumer"
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

	inventoryRepo, invoiceStore, cleanupStorage := buildStorage(ctx, logger)
	defer cleanupStorage()

	inventoryService := inventoryapp.NewService(inventoryRepo, buildProcessedEvents(ctx, logger), logger)
	invoiceService := invoicesapp.NewService(invoiceStore, logger)

	brokers := splitBrokers(os.Getenv("KAFKA_BROKERS"))
	if len(brokers) > 0 {
		groupID := envOrDefault("KAFKA_GROUP_ID", "sales-fanout")
		go runReader(ctx, brokers, groupID, contracts.TopicInventoryUpdates, inventoryService.HandleMessage, logger)
		go runReader(ctx, brokers, groupID, contracts.TopicSaleInvoiceEvents, invoiceService.HandleMessage, logger)
	} else {
		logger.Warn("KAFKA_BROKERS not set, serving push endpoints only")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	inventoryhttp.NewInventoryAPI(inventoryService).RegisterRoutes(router)
	invoiceshttp.NewInvoicesAPI(invoiceService).RegisterRoutes(router)

	addr := ":" + envOrDefault("PORT", "8081")
	logger.Info("consumer listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("consumer server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

func runReader(ctx context.Context, brokers []string, groupID, topic string, handle pubsub.HandlerFunc, logger *slog.Logger) {
	reader := pubsub.NewReader(brokers, groupID, topic)
	defer reader.Close()
	logger.Info("consuming topic", slog.String("topic", topic), slog.String("group", groupID))
	if err := pubsub.RunReader(ctx, reader, handle, logger); err != nil {
		logger.Error("reader stopped", slog.String("topic", topic), slog.String("error", err.Error()))
	}
}

func buildStorage(ctx context.Context, logger *slog.Logger) (inventoryports.Repository, invoicesports.Store, func()) {
	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	if dsn == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory storage")
		return inventorymemory.NewRepository(), invoicesmemory.NewStore(), func() {}
	}
	db, err := platformpostgres.Connect(ctx, dsn)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return inventorymemory.NewRepository(), invoicesmemory.NewStore(), func() {}
	}
	if err := migrations.Run(db); err != nil {
		logger.Warn("failed to run migrations, falling back to memory", slog.String("error", err.Error()))
		return inventorymemory.NewRepository(), invoicesmemory.NewStore(), func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to memory", slog.String("error", err.Error()))
		return inventorymemory.NewRepository(), invoicesmemory.NewStore(), func() {}
	}
	logger.Info("consumer storage configured with postgres")
	return inventorypostgres.NewRepository(db), invoicespostgres.NewStore(db), func() { _ = sqlDB.Close() }
}

func buildProcessedEvents(ctx context.Context, logger *slog.Logger) inventoryports.ProcessedEventStore {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		logger.Warn("REDIS_ADDR not set, tracking processed events in memory")
		return inventorymemory.NewProcessedEvents()
	}
	redisClient, err := redisconn.Connect(ctx, addr)
	if err != nil {
		logger.Warn("failed to connect to redis, tracking processed events in memory", slog.String("error", err.Error()))
		return inventorymemory.NewProcessedEvents()
	}
	logger.Info("tracking processed events in redis", slog.String("addr", addr))
	return inventoryredis.NewProcessedEvents(redisClient)
}

func splitBrokers(raw string) []string {
	var brokers []string
	for _, part := range strings.Split(raw, ",") {
		if broker := strings.TrimSpace(part); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
