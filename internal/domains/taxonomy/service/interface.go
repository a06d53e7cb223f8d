package service

import (
	"context"

	"yamdb-backend/internal/domains/taxonomy/model"
)

// Service manages one taxonomy. Callers are authorized at the route.
type Service interface {
	Kind() model.Kind
	List(ctx context.Context, q model.ListQuery) (*model.ListResponse, error)
	Create(ctx context.Context, req model.CreateTermRequest) (*model.TermResponse, error)
	Delete(ctx context.Context, slug string) error
}
