package service

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"yamdb-backend/internal/access"
	"yamdb-backend/internal/domains/comment/model"
	"yamdb-backend/internal/domains/comment/repository"
	"yamdb-backend/internal/shared/apperr"
	"yamdb-backend/pkg/database"
)

type commentService struct {
	db         database.TxBeginner
	repo       repository.Repository
	authorizer access.Authorizer
}

func NewCommentService(db database.TxBeginner, repo repository.Repository, authorizer access.Authorizer) Service {
	return &commentService{db: db, repo: repo, authorizer: authorizer}
}

func (s *commentService) List(ctx context.Context, q model.ListQuery) ([]model.CommentResponse, int64, error) {
	exists, err := s.repo.ParentExists(ctx, q.Parent, false)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	if !exists {
		return nil, 0, model.ErrReviewNotFound
	}

	comments, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}

	items := make([]model.CommentResponse, 0, len(comments))
	for _, c := range comments {
		items = append(items, model.ToResponse(c))
	}
	return items, total, nil
}

func (s *commentService) Get(ctx context.Context, parent model.Parent, id int64) (*model.CommentResponse, error) {
	comment, found, err := s.repo.FindByID(ctx, parent, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !found {
		return nil, model.ErrCommentNotFound
	}
	resp := model.ToResponse(comment)
	return &resp, nil
}

func (s *commentService) Create(ctx context.Context, caller *access.Caller, parent model.Parent, req model.CreateCommentRequest) (*model.CommentResponse, error) {
	if err := s.authorizer.Authorize(caller, access.FamilyComment, access.ActionCreate, nil); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperr.FromValidation(err)
	}

	comment, err := database.WithTransactionResult(ctx, s.db, func(tx pgx.Tx) (*model.Comment, error) {
		repo := s.repo.WithTx(tx)

		exists, err := repo.ParentExists(ctx, parent, true)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, model.ErrReviewNotFound
		}

		comment := &model.Comment{
			ReviewID: parent.ReviewID,
			AuthorID: caller.UserID,
			Author:   caller.Username,
			Text:     req.Text,
		}
		if err := repo.Create(ctx, comment); err != nil {
			return nil, err
		}
		return comment, nil
	})
	if err != nil {
		return nil, apperr.Classify(err)
	}

	log.Debug().Int64("comment_id", comment.ID).Int64("review_id", parent.ReviewID).Msg("comment created")

	resp := model.ToResponse(comment)
	return &resp, nil
}

func (s *commentService) Update(ctx context.Context, caller *access.Caller, parent model.Parent, id int64, req model.UpdateCommentRequest) (*model.CommentResponse, error) {
	if !caller.IsAuthenticated() {
		return nil, access.ErrUnauthenticated
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperr.FromValidation(err)
	}

	comment, err := database.WithTransactionResult(ctx, s.db, func(tx pgx.Tx) (*model.Comment, error) {
		repo := s.repo.WithTx(tx)

		comment, err := s.loadAuthorized(ctx, repo, caller, parent, id, access.ActionUpdate)
		if err != nil {
			return nil, err
		}
		if req.Text == nil {
			return comment, nil
		}

		comment.Text = *req.Text
		if err := repo.Update(ctx, comment); err != nil {
			return nil, err
		}
		return comment, nil
	})
	if err != nil {
		return nil, apperr.Classify(err)
	}

	resp := model.ToResponse(comment)
	return &resp, nil
}

func (s *commentService) Delete(ctx context.Context, caller *access.Caller, parent model.Parent, id int64) error {
	if !caller.IsAuthenticated() {
		return access.ErrUnauthenticated
	}

	err := database.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		repo := s.repo.WithTx(tx)

		comment, err := s.loadAuthorized(ctx, repo, caller, parent, id, access.ActionDelete)
		if err != nil {
			return err
		}
		return repo.Delete(ctx, comment.ID)
	})
	return apperr.Classify(err)
}

// loadAuthorized locks the comment and checks the caller may act on it.
func (s *commentService) loadAuthorized(
	ctx context.Context,
	repo repository.Repository,
	caller *access.Caller,
	parent model.Parent,
	id int64,
	action access.Action,
) (*model.Comment, error) {
	comment, found, err := repo.FindForUpdate(ctx, parent, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, model.ErrCommentNotFound
	}
	if err := s.authorizer.Authorize(caller, access.FamilyComment, action, comment); err != nil {
		return nil, err
	}
	return comment, nil
}
