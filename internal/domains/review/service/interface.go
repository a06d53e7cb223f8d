package service

import (
	"context"

	"yamdb-backend/internal/access"
	"yamdb-backend/internal/domains/review/model"
)

// Service manages reviews of a title. Every write is authorized here, since
// update and delete depend on who wrote the review.
type Service interface {
	List(ctx context.Context, q model.ListQuery) ([]model.ReviewResponse, int64, error)
	Get(ctx context.Context, titleID, id int64) (*model.ReviewResponse, error)
	Create(ctx context.Context, caller *access.Caller, titleID int64, req model.CreateReviewRequest) (*model.ReviewResponse, error)
	Update(ctx context.Context, caller *access.Caller, titleID, id int64, req model.UpdateReviewRequest) (*model.ReviewResponse, error)
	Delete(ctx context.Context, caller *access.Caller, titleID, id int64) error
}
