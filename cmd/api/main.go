package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"

	"github.com/rented/backend/internal/ai"
	"github.com/rented/backend/internal/config"
	"github.com/rented/backend/internal/db"
	httpserver "github.com/rented/backend/internal/http"
	"github.com/rented/backend/internal/mq"
	"github.com/rented/backend/internal/repository"
	"github.com/rented/backend/internal/service"
	"github.com/rented/backend/internal/storage"
	"github.com/rented/backend/internal/token"
	"github.com/rented/backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := zerolog.New(os.Stderr).With().Timestamp().Str("app", "api").Logger()

	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := db.Migrate(database); err != nil {
		log.Fatal().Err(err).Msg("auto migrate")
	}

	blobs, err := storage.New(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("init upload dir")
	}

	publisher, err := mq.NewRabbitPublisher(cfg.MQURL, cfg.MQExchange)
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq unavailable, continuing without events")
	}

	store := repository.NewStore(database)
	authority := token.NewAuthority(cfg.PortalTokenSecret, cfg.PortalTokenTTL)

	extractor := ai.NewClient(cfg.ExtractorURL, cfg.ExtractorAPIKey, cfg.ExtractorTimeout)
	processor := worker.NewProcessor(store, blobs, extractor, cfg.TextMaxChars, cfg.InputMaxChars, log)

	var dispatcher service.Dispatcher
	if cfg.QueueMode == "queue" && publisher != nil {
		dispatcher = worker.NewQueueDispatcher(publisher)
		log.Info().Msg("document jobs go through the queue")
	} else {
		dispatcher = worker.NewInlineDispatcher(processor)
		log.Info().Msg("document jobs run inline")
	}

	authService := service.NewAuthService(store, cfg.SessionTTL, log)
	propertyService := service.NewPropertyService(store, blobs, log)
	documentService := service.NewDocumentService(store, blobs, dispatcher, log)
	workOrderService := service.NewWorkOrderService(store, authority, publisher, log)
	portalService := service.NewPortalService(store, authority, blobs)
	activityService := service.NewActivityService(store)
	importService := service.NewImportService(store, extractor, cfg.TextMaxChars, cfg.InputMaxChars, log)

	apiServer := httpserver.NewServer(
		authService,
		propertyService,
		documentService,
		workOrderService,
		portalService,
		activityService,
		importService,
		blobs,
		httpserver.Options{CookieName: cfg.SessionCookieName, CookieSecure: cfg.CookieSecure},
		log,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:    cfg.HTTPPort,
		Handler: apiServer.Engine,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPPort).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown initiated")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	if publisher != nil {
		_ = publisher.Close()
	}
	log.Info().Msg("bye")
}

func init() {
	if mode := os.Getenv("GIN_MODE"); mode == "" {
		gin.SetMode(gin.ReleaseMode)
	}
}
