// Package guard turns storage-level uniqueness failures into the same semantic
// conflicts the services report from their pre-checks. The pre-check gives a
// friendly early error; the constraint decides the race.
package guard

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Constraint names declared in the migrations.
const (
	TitleNameYear     = "titles_name_year_key"
	ReviewTitleAuthor = "reviews_title_author_key"
	CategorySlug      = "categories_slug_key"
	GenreSlug         = "genres_slug_key"
	Username          = "users_username_key"
	Email             = "users_email_key"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// Conflicts maps a constraint name onto the error to report in its place.
type Conflicts map[string]error

func pgError(err error, code string) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return pgErr, true
	}
	return nil, false
}

// UniqueViolation reports the violated constraint of a 23505 error.
func UniqueViolation(err error) (string, bool) {
	pgErr, ok := pgError(err, codeUniqueViolation)
	if !ok {
		return "", false
	}
	return pgErr.ConstraintName, true
}

// ForeignKeyViolation reports the violated constraint of a 23503 error, e.g. a review
// inserted for a title deleted in a concurrent transaction.
func ForeignKeyViolation(err error) (string, bool) {
	pgErr, ok := pgError(err, codeForeignKeyViolation)
	if !ok {
		return "", false
	}
	return pgErr.ConstraintName, true
}

// CheckViolation reports the violated constraint of a 23514 error.
func CheckViolation(err error) (string, bool) {
	pgErr, ok := pgError(err, codeCheckViolation)
	if !ok {
		return "", false
	}
	return pgErr.ConstraintName, true
}

// Translate replaces a constraint failure registered in conflicts with its semantic
// error. Any other error, including violations of unregistered constraints, is returned as is.
func Translate(err error, conflicts Conflicts) error {
	if err == nil {
		return nil
	}

	for _, match := range []func(error) (string, bool){UniqueViolation, ForeignKeyViolation, CheckViolation} {
		if constraint, ok := match(err); ok {
			if mapped, found := conflicts[constraint]; found {
				return mapped
			}
			return err
		}
	}
	return err
}
