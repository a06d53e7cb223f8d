package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"yamdb-backend/internal/config"
	"yamdb-backend/pkg/logger"
)

func main() {
	// .env is for local runs; deployed environments set variables directly.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Init(os.Getenv("APP_ENV"))
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logger.Init(cfg.App.Environment)
	if envErr != nil {
		log.Debug().Msg("no .env file found, using system environment variables")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	Serve(cfg)
}
