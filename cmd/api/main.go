package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ariefcatur/sparepart-backend/internal/catalog"
	"github.com/ariefcatur/sparepart-backend/internal/config"
	"github.com/ariefcatur/sparepart-backend/internal/httpx"
	"github.com/ariefcatur/sparepart-backend/internal/images"
	kafkax "github.com/ariefcatur/sparepart-backend/internal/kafka"
	"github.com/ariefcatur/sparepart-backend/internal/orders"
	"github.com/ariefcatur/sparepart-backend/internal/postgres"
	"github.com/ariefcatur/sparepart-backend/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.ServiceName).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, satu per topic (opsional)
	var pub *orders.Publisher
	var producers []*kafkax.Producer
	if cfg.EventsEnabled() {
		pCreated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024)
		pCompleted := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicPaymentCompleted, 1024)
		pSettled := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderSettled, 1024)
		for _, p := range []*kafkax.Producer{pCreated, pCompleted, pSettled} {
			p.Start(ctx)
			producers = append(producers, p)
		}
		pub = &orders.Publisher{
			Created:   pCreated,
			Completed: pCompleted,
			Settled:   pSettled,
			Service:   cfg.ServiceName,
		}
	}

	// Repos & handlers
	catalogRepo := catalog.NewRepo(db)
	orderRepo := orders.NewRepo(db)
	store := images.NewStore(cfg.UploadDir)

	router := httpx.NewRouter(cfg.ServiceName)
	(&httpx.ProductsHandler{Repo: catalogRepo, Redis: rdb}).Register(router)
	(&httpx.ImagesHandler{Repo: catalogRepo, Store: store}).Register(router)
	(&httpx.OrdersHandler{Repo: orderRepo, Events: pub, Redis: rdb}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	for _, p := range producers {
		p.Close() // tutup inbox -> flush & close writer
	}
	cancel()
	for _, p := range producers {
		p.WaitClosed()
	}
}
