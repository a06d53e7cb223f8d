package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"yamdb-backend/internal/domains/review/model"
)

type Repository interface {
	WithTx(tx pgx.Tx) Repository

	// LockTitle takes a share lock on the title so it cannot be deleted before commit.
	LockTitle(ctx context.Context, titleID int64) (bool, error)
	TitleExists(ctx context.Context, titleID int64) (bool, error)

	List(ctx context.Context, q model.ListQuery) ([]*model.Review, int64, error)
	FindByID(ctx context.Context, titleID, id int64) (*model.Review, bool, error)
	FindForUpdate(ctx context.Context, titleID, id int64) (*model.Review, bool, error)
	AuthorHasReviewed(ctx context.Context, titleID, authorID int64) (bool, error)

	Create(ctx context.Context, review *model.Review) error
	Update(ctx context.Context, review *model.Review) error
	Delete(ctx context.Context, id int64) error
}
