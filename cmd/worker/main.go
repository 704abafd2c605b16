package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	salesactivities "github.com/Apurer/go-sales-api-server/internal/durable/temporal/activities/sales"
	salesworkflows "github.com/Apurer/go-sales-api-server/internal/durable/temporal/workflows/sales"
	platformobservability "github.com/Apurer/go-sales-api-server/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-sales-api-server/internal/platform/postgres"
	"github.com/Apurer/go-sales-api-server/internal/platform/pubsub"
	outboxpostgres "github.com/Apurer/go-sales-api-server/internal/shared/outbox/postgres"
)

func main() {
	ctx := context.Background()
	const serviceName = "fulfillment-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	// The worker publishes from the shared outbox table, so unlike the API
	// there is no in-memory fallback to run on.
	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	if dsn == "" {
		log.Fatal("POSTGRES_DSN not set; the fulfillment worker needs the shared outbox table")
	}
	db, err := platformpostgres.Connect(ctx, dsn)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to unwrap postgres connection: %v", err)
	}
	defer sqlDB.Close()

	brokers := splitBrokers(os.Getenv("KAFKA_BROKERS"))
	if len(brokers) == 0 {
		log.Fatal("KAFKA_BROKERS not set; the fulfillment worker needs a message channel to publish to")
	}
	publisher := pubsub.NewKafkaPublisher(brokers)
	defer publisher.Close()

	activities := salesactivities.NewActivities(outboxpostgres.NewStore(db), publisher)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, salesworkflows.FulfillmentTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(salesworkflows.FulfillmentWorkflow, workflow.RegisterOptions{Name: salesworkflows.FulfillmentWorkflowName})
	w.RegisterActivityWithOptions(activities.ListPendingSaleEvents, activity.RegisterOptions{Name: salesworkflows.ListPendingSaleEventsActivityName})
	w.RegisterActivityWithOptions(activities.PublishSaleEvent, activity.RegisterOptions{Name: salesworkflows.PublishSaleEventActivityName})

	logger.Info("worker listening", slog.String("taskQueue", salesworkflows.FulfillmentTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
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
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
