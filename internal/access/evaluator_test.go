package access

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yamdb-backend/internal/shared/apperr"
)

func newTestEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	ev, err := NewEvaluator()
	require.NoError(t, err)
	return ev
}

var (
	anonymous = (*Caller)(nil)
	plainUser = &Caller{UserID: 10, Username: "reader", Role: RoleUser}
	moderator = &Caller{UserID: 20, Username: "mod", Role: RoleModerator}
	admin     = &Caller{UserID: 30, Username: "boss", Role: RoleAdmin}
	superuser = &Caller{UserID: 40, Username: "root", Role: RoleUser, IsSuperuser: true}
)

func TestEvaluator_CatalogFamilies(t *testing.T) {
	ev := newTestEvaluator(t)

	for _, family := range []Family{FamilyCategory, FamilyGenre, FamilyTitle} {
		for _, caller := range []*Caller{anonymous, plainUser, moderator, admin} {
			assert.NoError(t, ev.Authorize(caller, family, ActionRead, nil), "%s read by %s", family, caller.Level())
		}

		for _, action := range []Action{ActionCreate, ActionUpdate, ActionDelete} {
			assert.NoError(t, ev.Authorize(admin, family, action, nil))
			assert.NoError(t, ev.Authorize(superuser, family, action, nil))
			assert.ErrorIs(t, ev.Authorize(moderator, family, action, nil), ErrPermissionDenied)
			assert.ErrorIs(t, ev.Authorize(plainUser, family, action, nil), ErrPermissionDenied)
			assert.ErrorIs(t, ev.Authorize(anonymous, family, action, nil), ErrUnauthenticated)
		}
	}
}

func TestEvaluator_UserContent(t *testing.T) {
	ev := newTestEvaluator(t)

	for _, family := range []Family{FamilyReview, FamilyComment} {
		assert.NoError(t, ev.Authorize(anonymous, family, ActionRead, nil))
		assert.ErrorIs(t, ev.Authorize(anonymous, family, ActionCreate, nil), ErrUnauthenticated)
		assert.NoError(t, ev.Authorize(plainUser, family, ActionCreate, nil))

		ownedByUser := authored(plainUser.UserID)
		ownedBySomeoneElse := authored(999)

		for _, action := range []Action{ActionUpdate, ActionDelete} {
			assert.NoError(t, ev.Authorize(plainUser, family, action, ownedByUser))
			assert.ErrorIs(t, ev.Authorize(plainUser, family, action, ownedBySomeoneElse), ErrPermissionDenied)
			assert.ErrorIs(t, ev.Authorize(anonymous, family, action, ownedBySomeoneElse), ErrUnauthenticated)
			assert.NoError(t, ev.Authorize(moderator, family, action, ownedBySomeoneElse))
			assert.NoError(t, ev.Authorize(admin, family, action, ownedBySomeoneElse))
			assert.NoError(t, ev.Authorize(superuser, family, action, ownedBySomeoneElse))
		}
	}
}

// Every non-staff caller is denied edits on content written by somebody else.
func TestEvaluator_NonStaffCannotEditOthersContent(t *testing.T) {
	ev := newTestEvaluator(t)

	callers := []*Caller{anonymous}
	for id := int64(1); id <= 25; id++ {
		callers = append(callers, &Caller{UserID: id, Role: RoleUser})
	}

	for _, caller := range callers {
		for author := int64(1); author <= 25; author++ {
			if caller != nil && caller.UserID == author {
				continue
			}
			for _, family := range []Family{FamilyReview, FamilyComment} {
				for _, action := range []Action{ActionUpdate, ActionDelete} {
					err := ev.Authorize(caller, family, action, authored(author))
					require.Error(t, err)
					kind := apperr.KindOf(err)
					assert.Contains(t, []apperr.Kind{apperr.KindPermissionDenied, apperr.KindUnauthenticated}, kind)
				}
			}
		}
	}
}

func TestEvaluator_Accounts(t *testing.T) {
	ev := newTestEvaluator(t)

	for _, action := range []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete} {
		assert.NoError(t, ev.Authorize(admin, FamilyAccount, action, nil))
		assert.NoError(t, ev.Authorize(superuser, FamilyAccount, action, nil))
		assert.ErrorIs(t, ev.Authorize(moderator, FamilyAccount, action, nil), ErrPermissionDenied)
		assert.ErrorIs(t, ev.Authorize(plainUser, FamilyAccount, action, nil), ErrPermissionDenied)
	}

	assert.NoError(t, ev.Authorize(plainUser, FamilySelf, ActionRead, nil))
	assert.NoError(t, ev.Authorize(plainUser, FamilySelf, ActionUpdate, nil))
	assert.NoError(t, ev.Authorize(plainUser, FamilySelf, ActionUpdate, Account(plainUser.UserID)))
	assert.ErrorIs(t, ev.Authorize(plainUser, FamilySelf, ActionUpdate, Account(1)), ErrPermissionDenied)
	assert.ErrorIs(t, ev.Authorize(plainUser, FamilySelf, ActionDelete, nil), ErrPermissionDenied)
	assert.ErrorIs(t, ev.Authorize(anonymous, FamilySelf, ActionRead, nil), ErrUnauthenticated)
}

func TestActionForMethod(t *testing.T) {
	assert.Equal(t, ActionRead, ActionForMethod(http.MethodGet))
	assert.Equal(t, ActionRead, ActionForMethod(http.MethodHead))
	assert.Equal(t, ActionCreate, ActionForMethod(http.MethodPost))
	assert.Equal(t, ActionUpdate, ActionForMethod(http.MethodPatch))
	assert.Equal(t, ActionUpdate, ActionForMethod(http.MethodPut))
	assert.Equal(t, ActionDelete, ActionForMethod(http.MethodDelete))
	assert.Equal(t, ActionUpdate, ActionForMethod("PROPFIND"))
}

func TestLoadPolicy_RejectsMalformedLines(t *testing.T) {
	ev := newTestEvaluator(t)

	assert.Error(t, loadPolicy(ev.enforcer, "p, admin, title"))
	assert.Error(t, loadPolicy(ev.enforcer, "x, a, b"))
}
