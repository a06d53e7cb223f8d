package apperr

import (
	"errors"
	"fmt"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesCopies(t *testing.T) {
	sentinel := Conflict("REVIEW_DUPLICATE", "duplicate review")
	derived := sentinel.WithMessage("user %s already reviewed title %d", "bob", 7)

	wrapped := fmt.Errorf("create: %w", derived)

	assert.ErrorIs(t, wrapped, sentinel)
	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.Equal(t, "user bob already reviewed title 7", derived.Message)
	assert.Equal(t, "duplicate review", sentinel.Message)
}

func TestKindOf_Unclassified(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("connection reset")))
}

func TestFromValidation(t *testing.T) {
	errs := validation.Errors{"score": errors.New("must be between 1 and 10")}

	e := FromValidation(errs)

	assert.Equal(t, KindValidation, e.Kind)
	assert.Equal(t, errs, e.Details)
	assert.Nil(t, FromValidation(nil))
}
