package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"yamdb-backend/internal/config"
	"yamdb-backend/pkg/container"
	"yamdb-backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Init(os.Getenv("APP_ENV"))
		log.Fatal().Err(err).Msg("[Config] invalid configuration")
	}
	logger.Init(cfg.App.Environment)

	// The worker shares the API's graph: the delivery handlers update users
	// and re-issue codes through the same services.
	c, err := container.NewContainer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("[Container] failed to initialize")
	}
	defer c.Cleanup()

	handlers := initializeHandlers(c)

	if err := startServices(cfg); err != nil {
		log.Fatal().Err(err).Msg("[Startup] health check failed")
	}

	srv := setupAsynqServer(cfg, handlers)
	scheduler := setupScheduler(cfg)

	waitForShutdown(srv, scheduler)
}

func waitForShutdown(srv *asynqServer, scheduler *asynqScheduler) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("[Shutdown] gracefully stopping")
	scheduler.Shutdown()
	srv.Shutdown()
	log.Info().Msg("[Shutdown] stopped")
}
