package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	platformpostgres "github.com/Apurer/go-sales-api-server/internal/platform/postgres"
	"github.com/Apurer/go-sales-api-server/internal/platform/pubsub"
	"github.com/Apurer/go-sales-api-server/internal/shared/outbox"
	outboxpostgres "github.com/Apurer/go-sales-api-server/internal/shared/outbox/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	if dsn == "" {
		log.Fatal("POSTGRES_DSN not set; cannot sweep the outbox")
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
		log.Fatal("KAFKA_BROKERS not set; cannot publish swept events")
	}
	publisher := pubsub.NewKafkaPublisher(brokers)
	defer publisher.Close()

	dispatcher := outbox.NewDispatcher(
		outboxpostgres.NewStore(db),
		publisher,
		logger,
		intFromEnv("OUTBOX_BATCH_SIZE", 100),
		durationFromEnv("OUTBOX_GRACE_SECONDS", 30*time.Second),
	)
	interval := durationFromEnv("OUTBOX_SWEEP_INTERVAL_SECONDS", 15*time.Second)
	logger.Info("outbox dispatcher running", slog.Duration("interval", interval))
	dispatcher.Run(ctx, interval)
	logger.Info("outbox dispatcher stopped")
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

func intFromEnv(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
