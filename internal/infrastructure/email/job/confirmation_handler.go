package job

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"yamdb-backend/internal/infrastructure/email"
	"yamdb-backend/internal/shared"
)

// DeliveryRecorder stores whether the code reached the user.
type DeliveryRecorder interface {
	RecordDelivery(ctx context.Context, userID int64, delivered bool) error
}

type ConfirmationCodeHandler struct {
	emailService email.EmailService
	recorder     DeliveryRecorder
}

func NewConfirmationCodeHandler(emailService email.EmailService, recorder DeliveryRecorder) *ConfirmationCodeHandler {
	return &ConfirmationCodeHandler{emailService: emailService, recorder: recorder}
}

// ProcessTask sends the code. The failure is recorded only once asynq has no
// retries left, so the re-issue job does not race an in-flight retry.
func (h *ConfirmationCodeHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.ConfirmationCodePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal ConfirmationCode payload")
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	err := h.emailService.SendConfirmationCode(ctx, email.ConfirmationCodeData{
		Email:     payload.Email,
		Username:  payload.Username,
		Code:      payload.Code,
		ExpiresAt: payload.ExpiresAt,
	})
	if err != nil {
		if lastAttempt(ctx) {
			h.record(ctx, payload.UserID, false)
		}
		return fmt.Errorf("send confirmation code: %w", err)
	}

	h.record(ctx, payload.UserID, true)
	log.Info().
		Str("username", payload.Username).
		Msg("Confirmation code sent")
	return nil
}

func (h *ConfirmationCodeHandler) record(ctx context.Context, userID int64, delivered bool) {
	if err := h.recorder.RecordDelivery(ctx, userID, delivered); err != nil {
		log.Error().Err(err).
			Int64("user_id", userID).
			Bool("delivered", delivered).
			Msg("Failed to record confirmation delivery")
	}
}

func lastAttempt(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return true
	}
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	if !ok {
		return true
	}
	return retried >= maxRetry
}
