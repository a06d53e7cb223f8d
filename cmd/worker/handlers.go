package main

import (
	"github.com/hibiken/asynq"

	"yamdb-backend/internal/domains/user/job"
	"yamdb-backend/internal/infrastructure/email"
	emailjob "yamdb-backend/internal/infrastructure/email/job"
	"yamdb-backend/internal/shared"
	"yamdb-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	confirmationCode *emailjob.ConfirmationCodeHandler
	reissueFailed    *job.ReissueFailedCodesHandler
	cleanupExpired   *job.CleanupExpiredCodesHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	emailSvc := email.NewSMTPEmailService(c.Config.Email)

	return &HandlerRegistry{
		confirmationCode: emailjob.NewConfirmationCodeHandler(emailSvc, c.AuthService),
		reissueFailed:    job.NewReissueFailedCodesHandler(c.AuthService),
		cleanupExpired:   job.NewCleanupExpiredCodesHandler(c.AuthService),
	}
}

func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeSendConfirmationCode, h.confirmationCode.ProcessTask)
	mux.HandleFunc(shared.TypeReissueFailedCodes, h.reissueFailed.ProcessTask)
	mux.HandleFunc(shared.TypeCleanupExpiredCodes, h.cleanupExpired.ProcessTask)
}
