package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"yamdb-backend/internal/domains/comment/model"
)

type Repository interface {
	WithTx(tx pgx.Tx) Repository

	// ParentExists reports whether the review exists under the title. With lock set
	// the review row is share-locked until the transaction ends.
	ParentExists(ctx context.Context, parent model.Parent, lock bool) (bool, error)

	List(ctx context.Context, q model.ListQuery) ([]*model.Comment, int64, error)
	FindByID(ctx context.Context, parent model.Parent, id int64) (*model.Comment, bool, error)
	FindForUpdate(ctx context.Context, parent model.Parent, id int64) (*model.Comment, bool, error)

	Create(ctx context.Context, comment *model.Comment) error
	Update(ctx context.Context, comment *model.Comment) error
	Delete(ctx context.Context, id int64) error
}
