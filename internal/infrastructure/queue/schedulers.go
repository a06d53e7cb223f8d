package queue

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"

	"yamdb-backend/internal/config"
	"yamdb-backend/internal/shared"
	"yamdb-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(redis asynq.RedisConnOpt, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		redis,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

func (s *Scheduler) RegisterJobs() error {
	if err := s.registerReissueFailedCodesJob(); err != nil {
		return err
	}
	return s.registerCleanupExpiredCodesJob()
}

// ================================================
// JOB 1: Re-issue codes whose delivery failed
// ================================================
func (s *Scheduler) registerReissueFailedCodesJob() error {
	payload, err := json.Marshal(shared.ReissueFailedCodesPayload{Limit: s.jobConfig.ReissueBatchLimit})
	if err != nil {
		return err
	}

	_, err = s.scheduler.Register(
		s.jobConfig.ReissueCron,
		asynq.NewTask(shared.TypeReissueFailedCodes, payload),
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register ReissueFailedCodes job", err)
		return err
	}

	logger.Info("Registered ReissueFailedCodes", map[string]interface{}{"cron": s.jobConfig.ReissueCron})
	return nil
}

// ================================================
// JOB 2: Clear expired confirmation codes
// ================================================
func (s *Scheduler) registerCleanupExpiredCodesJob() error {
	payload, err := json.Marshal(shared.CleanupExpiredCodesPayload{})
	if err != nil {
		return err
	}

	_, err = s.scheduler.Register(
		s.jobConfig.CleanupCron,
		asynq.NewTask(shared.TypeCleanupExpiredCodes, payload),
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register CleanupExpiredCodes job", err)
		return err
	}

	logger.Info("Registered CleanupExpiredCodes", map[string]interface{}{"cron": s.jobConfig.CleanupCron})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
