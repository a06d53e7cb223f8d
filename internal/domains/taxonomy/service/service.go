package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"yamdb-backend/internal/domains/taxonomy/model"
	"yamdb-backend/internal/domains/taxonomy/repository"
	"yamdb-backend/internal/shared/apperr"
	"yamdb-backend/pkg/cache"
	"yamdb-backend/pkg/database"
)

const listCacheTTL = 10 * time.Minute

type termService struct {
	db    database.TxBeginner
	repo  repository.Repository
	cache cache.Cache
	kind  model.Kind
}

// NewService wires a taxonomy service. cache may be nil.
func NewService(db database.TxBeginner, repo repository.Repository, c cache.Cache, kind model.Kind) Service {
	return &termService{db: db, repo: repo, cache: c, kind: kind}
}

func (s *termService) Kind() model.Kind { return s.kind }

func (s *termService) List(ctx context.Context, q model.ListQuery) (*model.ListResponse, error) {
	key := s.listKey(q)

	if s.cache != nil {
		var cached model.ListResponse
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("taxonomy cache read failed")
		} else if found {
			return &cached, nil
		}
	}

	terms, total, err := s.repo.List(ctx, q.Search, q.Offset(), q.Limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	resp := &model.ListResponse{Items: make([]model.TermResponse, 0, len(terms)), Total: total}
	for _, t := range terms {
		resp.Items = append(resp.Items, model.ToResponse(t))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, resp, listCacheTTL); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("taxonomy cache write failed")
		}
	}
	return resp, nil
}

func (s *termService) Create(ctx context.Context, req model.CreateTermRequest) (*model.TermResponse, error) {
	// Step 1: Validate
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperr.FromValidation(err)
	}

	// Step 2: Pre-check and insert in one transaction; the unique constraint settles races
	term, err := database.WithTransactionResult(ctx, s.db, func(tx pgx.Tx) (*model.Term, error) {
		repo := s.repo.WithTx(tx)

		exists, err := repo.SlugExists(ctx, req.Slug)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, s.kind.ErrDuplicate.WithMessage("%s with slug %q already exists", s.kind.Name, req.Slug)
		}

		term := &model.Term{Name: req.Name, Slug: req.Slug}
		if err := repo.Create(ctx, term); err != nil {
			return nil, err
		}
		return term, nil
	})
	if err != nil {
		return nil, apperr.Classify(err)
	}

	s.invalidate(ctx)

	resp := model.ToResponse(term)
	return &resp, nil
}

func (s *termService) Delete(ctx context.Context, slug string) error {
	err := database.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		deleted, err := s.repo.WithTx(tx).DeleteBySlug(ctx, slug)
		if err != nil {
			return err
		}
		if !deleted {
			return s.kind.ErrNotFound.WithMessage("%s %q not found", s.kind.Name, slug)
		}
		return nil
	})
	if err != nil {
		return apperr.Classify(err)
	}

	s.invalidate(ctx)
	return nil
}

func (s *termService) listKey(q model.ListQuery) string {
	return fmt.Sprintf("taxonomy:%s:list:%d:%d:%s", s.kind.Name, q.Page, q.Limit, q.Search)
}

func (s *termService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	pattern := fmt.Sprintf("taxonomy:%s:*", s.kind.Name)
	if err := s.cache.DeletePattern(ctx, pattern); err != nil {
		log.Warn().Err(err).Str("pattern", pattern).Msg("taxonomy cache invalidation failed")
	}
}
