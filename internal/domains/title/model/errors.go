package model

import "yamdb-backend/internal/shared/apperr"

var (
	ErrTitleNotFound     = apperr.NotFound("TITLE_NOT_FOUND", "title not found")
	ErrDuplicateTitle    = apperr.Conflict("TITLE_DUPLICATE", "a title with this name and year already exists")
	ErrUnknownCategory   = apperr.Validation("TITLE_UNKNOWN_CATEGORY", "category does not exist")
	ErrUnknownGenre      = apperr.Validation("TITLE_UNKNOWN_GENRE", "genre does not exist")
	ErrInvalidOrdering   = apperr.Validation("TITLE_INVALID_ORDERING", "ordering must be one of name, year, rating with an optional '-' prefix")
	ErrInvalidYearFilter = apperr.Validation("TITLE_INVALID_YEAR", "year filter must be an integer")
)
