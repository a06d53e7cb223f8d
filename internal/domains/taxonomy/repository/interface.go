package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"yamdb-backend/internal/domains/taxonomy/model"
)

// Repository stores the terms of one Kind.
type Repository interface {
	WithTx(tx pgx.Tx) Repository

	List(ctx context.Context, search string, offset, limit int) ([]*model.Term, int64, error)
	FindBySlug(ctx context.Context, slug string) (*model.Term, bool, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, term *model.Term) error
	DeleteBySlug(ctx context.Context, slug string) (bool, error)
}
