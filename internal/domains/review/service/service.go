package service

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"yamdb-backend/internal/access"
	"yamdb-backend/internal/domains/review/model"
	"yamdb-backend/internal/domains/review/repository"
	"yamdb-backend/internal/shared/apperr"
	"yamdb-backend/pkg/database"
)

type reviewService struct {
	db         database.TxBeginner
	repo       repository.Repository
	authorizer access.Authorizer
}

func NewReviewService(db database.TxBeginner, repo repository.Repository, authorizer access.Authorizer) Service {
	return &reviewService{db: db, repo: repo, authorizer: authorizer}
}

// =====================================================
// READ
// =====================================================

func (s *reviewService) List(ctx context.Context, q model.ListQuery) ([]model.ReviewResponse, int64, error) {
	exists, err := s.repo.TitleExists(ctx, q.TitleID)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	if !exists {
		return nil, 0, model.ErrTitleNotFound
	}

	reviews, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}

	items := make([]model.ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		items = append(items, model.ToResponse(r))
	}
	return items, total, nil
}

func (s *reviewService) Get(ctx context.Context, titleID, id int64) (*model.ReviewResponse, error) {
	review, found, err := s.repo.FindByID(ctx, titleID, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !found {
		return nil, model.ErrReviewNotFound
	}

	resp := model.ToResponse(review)
	return &resp, nil
}

// =====================================================
// WRITE
// =====================================================

func (s *reviewService) Create(ctx context.Context, caller *access.Caller, titleID int64, req model.CreateReviewRequest) (*model.ReviewResponse, error) {
	// Step 1: Authorize and validate
	if err := s.authorizer.Authorize(caller, access.FamilyReview, access.ActionCreate, nil); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperr.FromValidation(err)
	}

	// Step 2: Title must exist; one review per author
	review, err := database.WithTransactionResult(ctx, s.db, func(tx pgx.Tx) (*model.Review, error) {
		repo := s.repo.WithTx(tx)

		exists, err := repo.LockTitle(ctx, titleID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, model.ErrTitleNotFound
		}

		reviewed, err := repo.AuthorHasReviewed(ctx, titleID, caller.UserID)
		if err != nil {
			return nil, err
		}
		if reviewed {
			return nil, model.DuplicateReview(titleID, caller.Username)
		}

		review := &model.Review{
			TitleID:  titleID,
			AuthorID: caller.UserID,
			Author:   caller.Username,
			Text:     req.Text,
			Score:    *req.Score,
		}
		if err := repo.Create(ctx, review); err != nil {
			return nil, err
		}
		return review, nil
	})
	if err != nil {
		return nil, apperr.Classify(err)
	}

	log.Info().
		Int64("review_id", review.ID).
		Int64("title_id", titleID).
		Str("author", caller.Username).
		Msg("review created")

	resp := model.ToResponse(review)
	return &resp, nil
}

func (s *reviewService) Update(ctx context.Context, caller *access.Caller, titleID, id int64, req model.UpdateReviewRequest) (*model.ReviewResponse, error) {
	// Step 1: Anonymous callers are turned away before the lookup
	if !caller.IsAuthenticated() {
		return nil, access.ErrUnauthenticated
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperr.FromValidation(err)
	}

	// Step 2: Load, check ownership, apply
	review, err := database.WithTransactionResult(ctx, s.db, func(tx pgx.Tx) (*model.Review, error) {
		repo := s.repo.WithTx(tx)

		review, found, err := repo.FindForUpdate(ctx, titleID, id)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, model.ErrReviewNotFound
		}

		if err := s.authorizer.Authorize(caller, access.FamilyReview, access.ActionUpdate, review); err != nil {
			return nil, err
		}

		if req.Text != nil {
			review.Text = *req.Text
		}
		if req.Score != nil {
			review.Score = *req.Score
		}
		if err := repo.Update(ctx, review); err != nil {
			return nil, err
		}
		return review, nil
	})
	if err != nil {
		return nil, apperr.Classify(err)
	}

	resp := model.ToResponse(review)
	return &resp, nil
}

func (s *reviewService) Delete(ctx context.Context, caller *access.Caller, titleID, id int64) error {
	if !caller.IsAuthenticated() {
		return access.ErrUnauthenticated
	}

	err := database.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		repo := s.repo.WithTx(tx)

		review, found, err := repo.FindForUpdate(ctx, titleID, id)
		if err != nil {
			return err
		}
		if !found {
			return model.ErrReviewNotFound
		}

		if err := s.authorizer.Authorize(caller, access.FamilyReview, access.ActionDelete, review); err != nil {
			return err
		}
		return repo.Delete(ctx, review.ID)
	})
	if err != nil {
		return apperr.Classify(err)
	}

	log.Info().
		Int64("review_id", id).
		Int64("title_id", titleID).
		Str("by", caller.Username).
		Msg("review deleted")
	return nil
}
