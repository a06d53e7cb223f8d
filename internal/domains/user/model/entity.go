package model

import (
	"time"

	"yamdb-backend/internal/access"
)

// DeliveryStatus tracks the confirmation email for the current code.
type DeliveryStatus string

const (
	DeliveryNone    DeliveryStatus = "none"
	DeliveryPending DeliveryStatus = "pending"
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
)

func (s DeliveryStatus) IsValid() bool {
	switch s {
	case DeliveryNone, DeliveryPending, DeliverySent, DeliveryFailed:
		return true
	}
	return false
}

type User struct {
	ID          int64
	Username    string
	Email       string
	FirstName   string
	LastName    string
	Bio         string
	Role        access.Role
	IsSuperuser bool

	// Only the bcrypt hash of the confirmation code is stored.
	ConfirmationCodeHash  *string
	ConfirmationExpiresAt *time.Time
	DeliveryStatus        DeliveryStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Caller is the identity the access layer evaluates for this user.
func (u *User) Caller() *access.Caller {
	return &access.Caller{
		UserID:      u.ID,
		Username:    u.Username,
		Role:        u.Role,
		IsSuperuser: u.IsSuperuser,
	}
}

// HasLiveCode reports whether a confirmation code is outstanding at now.
func (u *User) HasLiveCode(now time.Time) bool {
	return u.ConfirmationCodeHash != nil &&
		u.ConfirmationExpiresAt != nil &&
		now.Before(*u.ConfirmationExpiresAt)
}
