package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ariefcatur/sparepart-backend/internal/config"
	kafkax "github.com/ariefcatur/sparepart-backend/internal/kafka"
	"github.com/ariefcatur/sparepart-backend/internal/notifier"
	"github.com/ariefcatur/sparepart-backend/internal/orders"
	"github.com/ariefcatur/sparepart-backend/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.ServiceName+"-notifier").Logger()

	if !cfg.EventsEnabled() {
		log.Fatal().Msg("KAFKA_BROKERS kosong, notifier tidak bisa jalan")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notifier.Service{
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-notifier",
	}

	group := getenv("NOTIFIER_GROUP", "notifier-svc")
	workers := mustAtoi(os.Getenv("NOTIFIER_WORKERS"), 4)
	topics := []string{orders.TopicOrderCreated, orders.TopicPaymentCompleted, orders.TopicOrderSettled}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topics, workers)

	go func() {
		log.Info().Str("group", group).Strs("topics", topics).Int("workers", workers).Msg("notifier consumer started")
		if err := cons.Start(ctx, svc.Handle); err != nil {
			log.Error().Err(err).Msg("consumer exit")
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
