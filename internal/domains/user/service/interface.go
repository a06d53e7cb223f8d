package service

import (
	"context"
	"time"

	"yamdb-backend/internal/access"
	"yamdb-backend/internal/domains/user/model"
	"yamdb-backend/internal/shared"
)

// UserService covers admin account management and the caller's own profile.
type UserService interface {
	List(ctx context.Context, q model.ListQuery) ([]model.UserResponse, int64, error)
	Get(ctx context.Context, username string) (*model.UserResponse, error)
	Create(ctx context.Context, req model.CreateUserRequest) (*model.UserResponse, error)
	Update(ctx context.Context, username string, req model.UpdateUserRequest) (*model.UserResponse, error)
	Delete(ctx context.Context, username string) error

	Me(ctx context.Context, caller *access.Caller) (*model.UserResponse, error)
	UpdateMe(ctx context.Context, caller *access.Caller, req model.UpdateUserRequest) (*model.UserResponse, error)

	// ResolveCaller reloads a token subject so role changes apply immediately.
	ResolveCaller(ctx context.Context, userID int64) (*access.Caller, bool, error)
}

// AuthService runs the signup and code-for-token exchange.
type AuthService interface {
	Signup(ctx context.Context, req model.SignupRequest) (*model.SignupResponse, error)
	Token(ctx context.Context, req model.TokenRequest) (*model.TokenResponse, error)

	// ReissueFailed issues new codes to users whose last delivery failed.
	ReissueFailed(ctx context.Context, limit int) (int, error)
	// RecordDelivery stores the outcome reported by the mail worker.
	RecordDelivery(ctx context.Context, userID int64, delivered bool) error
	CleanupExpired(ctx context.Context, before time.Time) (int64, error)
}

// CodeQueue hands confirmation codes to the mail worker.
type CodeQueue interface {
	EnqueueConfirmationCode(ctx context.Context, payload shared.ConfirmationCodePayload) error
}

// TokenIssuer is satisfied by *jwt.Manager.
type TokenIssuer interface {
	GenerateAccessToken(userID int64, username, role string) (string, error)
}
