package shared

import "time"

// Queues, highest priority first.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// Task types.
const (
	TypeSendConfirmationCode = "email:confirmation_code"
	TypeReissueFailedCodes   = "auth:reissue_failed_codes"
	TypeCleanupExpiredCodes  = "auth:cleanup_expired_codes"
)

// ConfirmationCodePayload carries a freshly issued code to the mail worker.
// The plain code lives only in this payload and in the email.
type ConfirmationCodePayload struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ReissueFailedCodesPayload struct {
	Limit int `json:"limit"`
}

type CleanupExpiredCodesPayload struct {
	Date time.Time `json:"date,omitempty"`
}
