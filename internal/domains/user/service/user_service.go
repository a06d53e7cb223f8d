package service

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"yamdb-backend/internal/access"
	"yamdb-backend/internal/domains/user/model"
	"yamdb-backend/internal/domains/user/repository"
	"yamdb-backend/internal/shared/apperr"
	"yamdb-backend/pkg/database"
)

type userService struct {
	db   database.TxBeginner
	repo repository.Repository
}

func NewUserService(db database.TxBeginner, repo repository.Repository) UserService {
	return &userService{db: db, repo: repo}
}

// =====================================================
// ADMIN
// =====================================================

func (s *userService) List(ctx context.Context, q model.ListQuery) ([]model.UserResponse, int64, error) {
	users, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}

	items := make([]model.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, model.ToResponse(u))
	}
	return items, total, nil
}

func (s *userService) Get(ctx context.Context, username string) (*model.UserResponse, error) {
	u, found, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !found {
		return nil, model.ErrUserNotFound
	}
	resp := model.ToResponse(u)
	return &resp, nil
}

func (s *userService) Create(ctx context.Context, req model.CreateUserRequest) (*model.UserResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperr.FromValidation(err)
	}
	role, _ := access.ParseRole(req.Role)

	u, err := database.WithTransactionResult(ctx, s.db, func(tx pgx.Tx) (*model.User, error) {
		repo := s.repo.WithTx(tx)

		if err := checkIdentityFree(ctx, repo, req.Username, req.Email, 0); err != nil {
			return nil, err
		}

		u := &model.User{
			Username:  req.Username,
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Bio:       req.Bio,
			Role:      role,
		}
		if err := repo.Create(ctx, u); err != nil {
			return nil, err
		}
		return u, nil
	})
	if err != nil {
		return nil, apperr.Classify(err)
	}

	log.Info().Str("username", u.Username).Str("role", string(u.Role)).Msg("user created by admin")

	resp := model.ToResponse(u)
	return &resp, nil
}

// Update is the admin edit and may change the role.
func (s *userService) Update(ctx context.Context, username string, req model.UpdateUserRequest) (*model.UserResponse, error) {
	return s.update(ctx, func(repo repository.Repository) (*model.User, bool, error) {
		return repo.LockByUsername(ctx, username)
	}, req)
}

func (s *userService) Delete(ctx context.Context, username string) error {
	err := database.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		repo := s.repo.WithTx(tx)

		u, found, err := repo.LockByUsername(ctx, username)
		if err != nil {
			return err
		}
		if !found {
			return model.ErrUserNotFound
		}
		return repo.Delete(ctx, u.ID)
	})
	return apperr.Classify(err)
}

// =====================================================
// SELF
// =====================================================

func (s *userService) Me(ctx context.Context, caller *access.Caller) (*model.UserResponse, error) {
	if !caller.IsAuthenticated() {
		return nil, access.ErrUnauthenticated
	}
	u, found, err := s.repo.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !found {
		return nil, model.ErrUserNotFound
	}
	resp := model.ToResponse(u)
	return &resp, nil
}

// UpdateMe edits the caller's own profile. A role in the body is accepted and ignored.
func (s *userService) UpdateMe(ctx context.Context, caller *access.Caller, req model.UpdateUserRequest) (*model.UserResponse, error) {
	if !caller.IsAuthenticated() {
		return nil, access.ErrUnauthenticated
	}
	req.Role = nil

	return s.update(ctx, func(repo repository.Repository) (*model.User, bool, error) {
		return repo.LockByID(ctx, caller.UserID)
	}, req)
}

func (s *userService) ResolveCaller(ctx context.Context, userID int64) (*access.Caller, bool, error) {
	u, found, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, false, apperr.Internal(err)
	}
	if !found {
		return nil, false, nil
	}
	return u.Caller(), true, nil
}

// =====================================================
// HELPERS
// =====================================================

func (s *userService) update(
	ctx context.Context,
	load func(repository.Repository) (*model.User, bool, error),
	req model.UpdateUserRequest,
) (*model.UserResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperr.FromValidation(err)
	}

	u, err := database.WithTransactionResult(ctx, s.db, func(tx pgx.Tx) (*model.User, error) {
		repo := s.repo.WithTx(tx)

		u, found, err := load(repo)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, model.ErrUserNotFound
		}

		newUsername, newEmail := "", ""
		if req.Username != nil && *req.Username != u.Username {
			newUsername, u.Username = *req.Username, *req.Username
		}
		if req.Email != nil && *req.Email != u.Email {
			newEmail, u.Email = *req.Email, *req.Email
		}
		if err := checkIdentityFree(ctx, repo, newUsername, newEmail, u.ID); err != nil {
			return nil, err
		}

		if req.FirstName != nil {
			u.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			u.LastName = *req.LastName
		}
		if req.Bio != nil {
			u.Bio = *req.Bio
		}
		if req.Role != nil {
			u.Role, _ = access.ParseRole(*req.Role)
		}

		if err := repo.Update(ctx, u); err != nil {
			return nil, err
		}
		return u, nil
	})
	if err != nil {
		return nil, apperr.Classify(err)
	}

	resp := model.ToResponse(u)
	return &resp, nil
}

// checkIdentityFree pre-checks username and email uniqueness. Empty values are skipped.
func checkIdentityFree(ctx context.Context, repo repository.Repository, username, email string, excludeID int64) error {
	if username != "" {
		taken, err := repo.UsernameTaken(ctx, username, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return model.ErrUsernameTaken
		}
	}
	if email != "" {
		taken, err := repo.EmailTaken(ctx, email, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return model.ErrEmailTaken
		}
	}
	return nil
}
