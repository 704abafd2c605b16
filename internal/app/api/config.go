package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"
)

// Config carries environment-driven settings for the sales API process.
type Config struct {
	Port                string
	PostgresDSN         string
	RedisAddr           string
	KafkaBrokers        []string
	TemporalAddress     string
	TemporalNamespace   string
	TemporalDisabled    bool
	OutboxSweepInterval time.Duration
	OutboxBatchSize     int
	OutboxGrace         time.Duration
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:                envDefault("PORT", "8080"),
		PostgresDSN:         strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:           strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		KafkaBrokers:        splitBrokers(os.Getenv("KAFKA_BROKERS")),
		TemporalAddress:     envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:   envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:    isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		OutboxSweepInterval: 15 * time.Second,
		OutboxBatchSize:     100,
		OutboxGrace:         30 * time.Second,
	}
	if raw := strings.TrimSpace(os.Getenv("OUTBOX_SWEEP_INTERVAL_SECONDS")); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("OUTBOX_SWEEP_INTERVAL_SECONDS must be a positive integer")
		}
		cfg.OutboxSweepInterval = time.Duration(seconds) * time.Second
	}
	if raw := strings.TrimSpace(os.Getenv("OUTBOX_BATCH_SIZE")); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			return Config{}, fmt.Errorf("OUTBOX_BATCH_SIZE must be a positive integer")
		}
		cfg.OutboxBatchSize = size
	}
	if raw := strings.TrimSpace(os.Getenv("OUTBOX_GRACE_SECONDS")); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds < 0 {
			return Config{}, fmt.Errorf("OUTBOX_GRACE_SECONDS must be a non-negative integer")
		}
		cfg.OutboxGrace = time.Duration(seconds) * time.Second
	}
	return cfg, nil
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

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
