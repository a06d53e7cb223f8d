package model

import "yamdb-backend/internal/shared/apperr"

var (
	ErrCommentNotFound = apperr.NotFound("COMMENT_NOT_FOUND", "comment not found")
	ErrReviewNotFound  = apperr.NotFound("REVIEW_NOT_FOUND", "review not found")
)
