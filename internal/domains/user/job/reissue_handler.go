package job

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"yamdb-backend/internal/shared"
)

const defaultReissueLimit = 100

// Reissuer issues fresh codes to users whose last delivery failed.
type Reissuer interface {
	ReissueFailed(ctx context.Context, limit int) (int, error)
}

type ReissueFailedCodesHandler struct {
	reissuer Reissuer
}

func NewReissueFailedCodesHandler(reissuer Reissuer) *ReissueFailedCodesHandler {
	return &ReissueFailedCodesHandler{reissuer: reissuer}
}

func (h *ReissueFailedCodesHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.ReissueFailedCodesPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.Limit <= 0 {
		payload.Limit = defaultReissueLimit
	}

	n, err := h.reissuer.ReissueFailed(ctx, payload.Limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to re-issue confirmation codes")
		return err
	}

	if n > 0 {
		log.Info().Int("reissued", n).Msg("confirmation codes re-issued")
	}
	return nil
}
