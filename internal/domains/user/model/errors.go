package model

import "yamdb-backend/internal/shared/apperr"

var (
	ErrUserNotFound   = apperr.NotFound("USER_NOT_FOUND", "user not found")
	ErrUsernameTaken  = apperr.Conflict("USER_USERNAME_TAKEN", "a user with this username already exists")
	ErrEmailTaken     = apperr.Conflict("USER_EMAIL_TAKEN", "a user with this email already exists")
	ErrSignupMismatch = apperr.Validation("AUTH_SIGNUP_MISMATCH", "username or email is already registered to another account")
	ErrInvalidCode    = apperr.Validation("AUTH_INVALID_CODE", "confirmation code is invalid or expired")
	ErrInvalidRole    = apperr.Validation("USER_INVALID_ROLE", "role must be one of user, moderator, admin")
)
