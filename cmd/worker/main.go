package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"

	"github.com/rented/backend/internal/ai"
	"github.com/rented/backend/internal/config"
	"github.com/rented/backend/internal/db"
	"github.com/rented/backend/internal/mq"
	"github.com/rented/backend/internal/repository"
	"github.com/rented/backend/internal/storage"
	"github.com/rented/backend/internal/worker"
)

// The worker process drains document processing jobs published by the API
// when QUEUE_MODE=queue.
func main() {
	cfg := config.Load()
	log := zerolog.New(os.Stderr).With().Timestamp().Str("app", "worker").Logger()

	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	blobs, err := storage.New(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("init upload dir")
	}

	consumer, err := mq.NewJobQueueConsumer(cfg.MQURL, cfg.MQExchange, cfg.MQJobQueue)
	if err != nil {
		log.Fatal().Err(err).Msg("connect rabbitmq")
	}
	defer consumer.Close()

	store := repository.NewStore(database)
	extractor := ai.NewClient(cfg.ExtractorURL, cfg.ExtractorAPIKey, cfg.ExtractorTimeout)
	processor := worker.NewProcessor(store, blobs, extractor, cfg.TextMaxChars, cfg.InputMaxChars, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	jobs := worker.NewJobConsumer(processor, log)
	if err := consumer.Consume(jobs.Handle(ctx)); err != nil {
		log.Fatal().Err(err).Msg("start consumer")
	}
	log.Info().Str("queue", cfg.MQJobQueue).Msg("worker consuming")

	<-ctx.Done()
	log.Info().Msg("worker shutting down")
}
