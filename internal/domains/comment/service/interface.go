package service

import (
	"context"

	"yamdb-backend/internal/access"
	"yamdb-backend/internal/domains/comment/model"
)

type Service interface {
	List(ctx context.Context, q model.ListQuery) ([]model.CommentResponse, int64, error)
	Get(ctx context.Context, parent model.Parent, id int64) (*model.CommentResponse, error)
	Create(ctx context.Context, caller *access.Caller, parent model.Parent, req model.CreateCommentRequest) (*model.CommentResponse, error)
	Update(ctx context.Context, caller *access.Caller, parent model.Parent, id int64, req model.UpdateCommentRequest) (*model.CommentResponse, error)
	Delete(ctx context.Context, caller *access.Caller, parent model.Parent, id int64) error
}
