package guard

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

var errDuplicate = errors.New("duplicate review")

func TestTranslate_UniqueViolation(t *testing.T) {
	raw := fmt.Errorf("insert review: %w", &pgconn.PgError{Code: "23505", ConstraintName: ReviewTitleAuthor})

	got := Translate(raw, Conflicts{ReviewTitleAuthor: errDuplicate})

	assert.ErrorIs(t, got, errDuplicate)
}

func TestTranslate_UnregisteredConstraintPassesThrough(t *testing.T) {
	raw := &pgconn.PgError{Code: "23505", ConstraintName: "something_else"}

	got := Translate(raw, Conflicts{ReviewTitleAuthor: errDuplicate})

	assert.Same(t, raw, got)
}

func TestTranslate_ForeignKey(t *testing.T) {
	errGone := errors.New("title not found")
	raw := &pgconn.PgError{Code: "23503", ConstraintName: "reviews_title_id_fkey"}

	assert.ErrorIs(t, Translate(raw, Conflicts{"reviews_title_id_fkey": errGone}), errGone)
}

func TestTranslate_CheckViolation(t *testing.T) {
	errRange := errors.New("score out of range")
	raw := &pgconn.PgError{Code: "23514", ConstraintName: "reviews_score_check"}

	assert.ErrorIs(t, Translate(raw, Conflicts{"reviews_score_check": errRange}), errRange)
}

func TestTranslate_OtherErrors(t *testing.T) {
	plain := errors.New("connection refused")

	assert.Same(t, plain, Translate(plain, Conflicts{ReviewTitleAuthor: errDuplicate}))
	assert.NoError(t, Translate(nil, nil))
}

func TestUniqueViolation(t *testing.T) {
	name, ok := UniqueViolation(&pgconn.PgError{Code: "23505", ConstraintName: GenreSlug})
	assert.True(t, ok)
	assert.Equal(t, GenreSlug, name)

	_, ok = UniqueViolation(&pgconn.PgError{Code: "23503"})
	assert.False(t, ok)
}
