package model

import "yamdb-backend/internal/shared/apperr"

var (
	ErrReviewNotFound  = apperr.NotFound("REVIEW_NOT_FOUND", "review not found")
	ErrTitleNotFound   = apperr.NotFound("TITLE_NOT_FOUND", "title not found")
	ErrDuplicateReview = apperr.Conflict("REVIEW_DUPLICATE", "you have already reviewed this title")
	ErrScoreOutOfRange = apperr.Validation("REVIEW_SCORE_OUT_OF_RANGE", "score must be between 1 and 10")
)

// DuplicateReview names the title and the author in the conflict message.
func DuplicateReview(titleID int64, author string) *apperr.Error {
	return ErrDuplicateReview.WithMessage("user %q has already reviewed title %d", author, titleID)
}
