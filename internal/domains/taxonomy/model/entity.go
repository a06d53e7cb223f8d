package model

import (
	"yamdb-backend/internal/access"
	"yamdb-backend/internal/guard"
	"yamdb-backend/internal/shared/apperr"
)

// Term is a category or a genre: a named, slug-keyed classifier of titles.
type Term struct {
	ID   int64
	Name string
	Slug string
}

// Kind describes one of the two taxonomies. Table is a trusted identifier and
// is interpolated into SQL.
type Kind struct {
	Name           string
	Table          string
	Family         access.Family
	SlugConstraint string
	ErrNotFound    *apperr.Error
	ErrDuplicate   *apperr.Error
}

var (
	Category = Kind{
		Name:           "category",
		Table:          "categories",
		Family:         access.FamilyCategory,
		SlugConstraint: guard.CategorySlug,
		ErrNotFound:    apperr.NotFound("CATEGORY_NOT_FOUND", "category not found"),
		ErrDuplicate:   apperr.Conflict("CATEGORY_SLUG_TAKEN", "a category with this slug already exists"),
	}

	Genre = Kind{
		Name:           "genre",
		Table:          "genres",
		Family:         access.FamilyGenre,
		SlugConstraint: guard.GenreSlug,
		ErrNotFound:    apperr.NotFound("GENRE_NOT_FOUND", "genre not found"),
		ErrDuplicate:   apperr.Conflict("GENRE_SLUG_TAKEN", "a genre with this slug already exists"),
	}
)
