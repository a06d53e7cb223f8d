package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"yamdb-backend/internal/domains/user/model"
)

type Repository interface {
	WithTx(tx pgx.Tx) Repository

	List(ctx context.Context, q model.ListQuery) ([]*model.User, int64, error)
	FindByID(ctx context.Context, id int64) (*model.User, bool, error)
	FindByUsername(ctx context.Context, username string) (*model.User, bool, error)

	// LockByUsernameOrEmail returns every row matching either value, locked for update.
	LockByUsernameOrEmail(ctx context.Context, username, email string) ([]*model.User, error)
	LockByUsername(ctx context.Context, username string) (*model.User, bool, error)
	LockByID(ctx context.Context, id int64) (*model.User, bool, error)

	UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)

	Create(ctx context.Context, u *model.User) error
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id int64) error

	// Confirmation codes
	SetConfirmation(ctx context.Context, id int64, hash string, expiresAt time.Time) error
	// ConsumeConfirmation clears the code only if it still has the given hash, so
	// a code is exchanged at most once.
	ConsumeConfirmation(ctx context.Context, id int64, hash string) (bool, error)
	BurnConfirmation(ctx context.Context, id int64) error
	SetDeliveryStatus(ctx context.Context, id int64, status model.DeliveryStatus) error
	ListFailedDeliveries(ctx context.Context, limit int) ([]*model.User, error)
	ClearExpiredConfirmations(ctx context.Context, before time.Time) (int64, error)
}
