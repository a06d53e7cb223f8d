package job

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"yamdb-backend/internal/shared"
)

// CodeCleaner clears confirmation codes that expired before a cutoff.
type CodeCleaner interface {
	CleanupExpired(ctx context.Context, before time.Time) (int64, error)
}

type CleanupExpiredCodesHandler struct {
	cleaner CodeCleaner
}

func NewCleanupExpiredCodesHandler(cleaner CodeCleaner) *CleanupExpiredCodesHandler {
	return &CleanupExpiredCodesHandler{cleaner: cleaner}
}

func (h *CleanupExpiredCodesHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.CleanupExpiredCodesPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	cutoff := time.Now()
	if !payload.Date.IsZero() {
		cutoff = payload.Date
	}

	cleared, err := h.cleaner.CleanupExpired(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Time("cutoff", cutoff).Msg("failed to clear expired confirmation codes")
		return err
	}

	log.Info().
		Time("cutoff", cutoff).
		Int64("cleared", cleared).
		Msg("expired confirmation codes cleared")
	return nil
}
