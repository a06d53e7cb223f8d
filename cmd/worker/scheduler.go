package main

import (
	"github.com/rs/zerolog/log"

	"yamdb-backend/internal/config"
	"yamdb-backend/internal/infrastructure/queue"
	"yamdb-backend/pkg/container"
)

type asynqScheduler struct {
	*queue.Scheduler
}

func setupScheduler(cfg *config.Config) *asynqScheduler {
	scheduler := queue.NewScheduler(container.RedisConnOpt(cfg.Redis), cfg.Jobs)

	if err := scheduler.RegisterJobs(); err != nil {
		log.Fatal().Err(err).Msg("[Scheduler] failed to register jobs")
	}

	log.Info().Msg("[Scheduler] starting")
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("[Scheduler] failed to start")
	}

	return &asynqScheduler{Scheduler: scheduler}
}

func (s *asynqScheduler) Shutdown() {
	log.Info().Msg("[Scheduler] shutting down")
	s.Scheduler.Shutdown()
	log.Info().Msg("[Scheduler] stopped")
}
