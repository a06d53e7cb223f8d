package service

import (
	"context"

	"yamdb-backend/internal/domains/title/model"
)

// Service manages titles. Writes are authorized at the route (admin only).
type Service interface {
	List(ctx context.Context, q model.ListQuery) ([]model.TitleResponse, int64, error)
	Get(ctx context.Context, id int64) (*model.TitleResponse, error)
	Create(ctx context.Context, req model.CreateTitleRequest) (*model.TitleResponse, error)
	Update(ctx context.Context, id int64, req model.UpdateTitleRequest) (*model.TitleResponse, error)
	Delete(ctx context.Context, id int64) error
}
