package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"yamdb-backend/internal/domains/title/model"
	"yamdb-backend/internal/domains/title/repository"
	"yamdb-backend/internal/shared/apperr"
	"yamdb-backend/pkg/database"
)

type titleService struct {
	db   database.TxBeginner
	repo repository.Repository
	now  func() time.Time
}

func NewTitleService(db database.TxBeginner, repo repository.Repository) Service {
	return &titleService{db: db, repo: repo, now: time.Now}
}

// =====================================================
// READ
// =====================================================

func (s *titleService) List(ctx context.Context, q model.ListQuery) ([]model.TitleResponse, int64, error) {
	titles, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}

	items := make([]model.TitleResponse, 0, len(titles))
	for _, t := range titles {
		items = append(items, model.ToResponse(t))
	}
	return items, total, nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*model.TitleResponse, error) {
	title, found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !found {
		return nil, model.ErrTitleNotFound
	}

	resp := model.ToResponse(title)
	return &resp, nil
}

// =====================================================
// WRITE
// =====================================================

func (s *titleService) Create(ctx context.Context, req model.CreateTitleRequest) (*model.TitleResponse, error) {
	// Step 1: Validate
	req.Normalize()
	if err := req.Validate(s.now()); err != nil {
		return nil, apperr.FromValidation(err)
	}

	// Step 2: Resolve references, pre-check uniqueness, insert
	title, err := database.WithTransactionResult(ctx, s.db, func(tx pgx.Tx) (*model.Title, error) {
		repo := s.repo.WithTx(tx)

		rec := &model.Record{Name: req.Name, Year: *req.Year, Description: req.Description}

		categoryID, err := resolveCategory(ctx, repo, req.Category)
		if err != nil {
			return nil, err
		}
		rec.CategoryID = categoryID

		if rec.GenreIDs, err = resolveGenres(ctx, repo, req.Genre); err != nil {
			return nil, err
		}

		if err := checkNameYear(ctx, repo, rec.Name, rec.Year, 0); err != nil {
			return nil, err
		}

		if err := repo.Create(ctx, rec); err != nil {
			return nil, err
		}

		return mustFind(ctx, repo, rec.ID)
	})
	if err != nil {
		return nil, apperr.Classify(err)
	}

	resp := model.ToResponse(title)
	return &resp, nil
}

func (s *titleService) Update(ctx context.Context, id int64, req model.UpdateTitleRequest) (*model.TitleResponse, error) {
	// Step 1: Validate
	req.Normalize()
	if err := req.Validate(s.now()); err != nil {
		return nil, apperr.FromValidation(err)
	}

	// Step 2: Lock, merge, re-check uniqueness, save
	title, err := database.WithTransactionResult(ctx, s.db, func(tx pgx.Tx) (*model.Title, error) {
		repo := s.repo.WithTx(tx)

		rec, found, err := repo.FindRecordForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, model.ErrTitleNotFound
		}

		identityChanged := false
		if req.Name != nil && *req.Name != rec.Name {
			rec.Name, identityChanged = *req.Name, true
		}
		if req.Year != nil && *req.Year != rec.Year {
			rec.Year, identityChanged = *req.Year, true
		}
		if req.Description.Set {
			rec.Description = req.Description.Value
		}
		if req.Category.Set {
			if rec.CategoryID, err = resolveCategory(ctx, repo, req.Category.Value); err != nil {
				return nil, err
			}
		}

		if identityChanged {
			if err := checkNameYear(ctx, repo, rec.Name, rec.Year, rec.ID); err != nil {
				return nil, err
			}
		}

		if err := repo.Update(ctx, rec); err != nil {
			return nil, err
		}

		if req.Genre.Set {
			var slugs []string
			if req.Genre.Value != nil {
				slugs = *req.Genre.Value
			}
			genreIDs, err := resolveGenres(ctx, repo, slugs)
			if err != nil {
				return nil, err
			}
			if err := repo.ReplaceGenres(ctx, rec.ID, genreIDs); err != nil {
				return nil, err
			}
		}

		return mustFind(ctx, repo, rec.ID)
	})
	if err != nil {
		return nil, apperr.Classify(err)
	}

	resp := model.ToResponse(title)
	return &resp, nil
}

func (s *titleService) Delete(ctx context.Context, id int64) error {
	err := database.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		deleted, err := s.repo.WithTx(tx).Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return model.ErrTitleNotFound
		}
		return nil
	})
	return apperr.Classify(err)
}

// =====================================================
// HELPERS
// =====================================================

func resolveCategory(ctx context.Context, repo repository.Repository, slug *string) (*int64, error) {
	if slug == nil || *slug == "" {
		return nil, nil
	}
	id, found, err := repo.ResolveCategory(ctx, *slug)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, model.ErrUnknownCategory.WithMessage("category %q does not exist", *slug)
	}
	return &id, nil
}

func resolveGenres(ctx context.Context, repo repository.Repository, slugs []string) ([]int64, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	found, err := repo.ResolveGenres(ctx, slugs)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(slugs))
	for _, slug := range slugs {
		id, ok := found[slug]
		if !ok {
			return nil, model.ErrUnknownGenre.WithMessage("genre %q does not exist", slug)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func checkNameYear(ctx context.Context, repo repository.Repository, name string, year int, excludeID int64) error {
	taken, err := repo.NameYearTaken(ctx, name, year, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return model.ErrDuplicateTitle.WithMessage("title %q (%d) already exists", name, year)
	}
	return nil
}

func mustFind(ctx context.Context, repo repository.Repository, id int64) (*model.Title, error) {
	title, found, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, model.ErrTitleNotFound
	}
	return title, nil
}
