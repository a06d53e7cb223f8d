package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"yamdb-backend/internal/domains/title/model"
)

type Repository interface {
	WithTx(tx pgx.Tx) Repository

	// Reads, with the rating computed by the query.
	List(ctx context.Context, q model.ListQuery) ([]*model.Title, int64, error)
	FindByID(ctx context.Context, id int64) (*model.Title, bool, error)

	// Writes. FindRecordForUpdate locks the row until the transaction ends.
	FindRecordForUpdate(ctx context.Context, id int64) (*model.Record, bool, error)
	NameYearTaken(ctx context.Context, name string, year int, excludeID int64) (bool, error)
	ResolveCategory(ctx context.Context, slug string) (int64, bool, error)
	ResolveGenres(ctx context.Context, slugs []string) (map[string]int64, error)
	Create(ctx context.Context, rec *model.Record) error
	Update(ctx context.Context, rec *model.Record) error
	ReplaceGenres(ctx context.Context, titleID int64, genreIDs []int64) error
	Delete(ctx context.Context, id int64) (bool, error)
}
