package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"yamdb-backend/internal/access"
	"yamdb-backend/internal/domains/user/model"
	"yamdb-backend/internal/shared/apperr"
	"yamdb-backend/pkg/database/dbtest"
)

func newUserService() (*mockRepo, *dbtest.Beginner, UserService) {
	repo := &mockRepo{}
	db := &dbtest.Beginner{}
	return repo, db, NewUserService(db, repo)
}

func strPtr(s string) *string { return &s }

func TestUpdateMe_IgnoresRole(t *testing.T) {
	repo, _, svc := newUserService()
	ctx := context.Background()
	caller := &access.Caller{UserID: 5, Username: "alice", Role: access.RoleUser}

	repo.On("LockByID", ctx, int64(5)).
		Return(&model.User{ID: 5, Username: "alice", Email: "a@example.com", Role: access.RoleUser}, true, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Role == access.RoleUser && u.Bio == "hello"
	})).Return(nil)

	resp, err := svc.UpdateMe(ctx, caller, model.UpdateUserRequest{Bio: strPtr("hello"), Role: strPtr("admin")})

	require.NoError(t, err)
	assert.Equal(t, "user", resp.Role)
	assert.Equal(t, "hello", resp.Bio)
}

func TestUpdate_AdminChangesRole(t *testing.T) {
	repo, _, svc := newUserService()
	ctx := context.Background()

	repo.On("LockByUsername", ctx, "bob").Return(&model.User{ID: 6, Username: "bob", Role: access.RoleUser}, true, nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)

	resp, err := svc.Update(ctx, "bob", model.UpdateUserRequest{Role: strPtr("moderator")})

	require.NoError(t, err)
	assert.Equal(t, "moderator", resp.Role)
}

func TestUpdate_InvalidRole(t *testing.T) {
	_, db, svc := newUserService()

	_, err := svc.Update(context.Background(), "bob", model.UpdateUserRequest{Role: strPtr("overlord")})

	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Empty(t, db.Txs)
}

func TestUpdate_RenameToTakenUsername(t *testing.T) {
	repo, _, svc := newUserService()
	ctx := context.Background()

	repo.On("LockByUsername", ctx, "bob").Return(&model.User{ID: 6, Username: "bob"}, true, nil)
	repo.On("UsernameTaken", ctx, "carol", int64(6)).Return(true, nil)

	_, err := svc.Update(ctx, "bob", model.UpdateUserRequest{Username: strPtr("carol")})

	assert.ErrorIs(t, err, model.ErrUsernameTaken)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCreate_DefaultsAndDuplicates(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults role to user", func(t *testing.T) {
		repo, _, svc := newUserService()
		repo.On("UsernameTaken", ctx, "dave", int64(0)).Return(false, nil)
		repo.On("EmailTaken", ctx, "d@example.com", int64(0)).Return(false, nil)
		repo.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool { return u.Role == access.RoleUser })).Return(nil)

		resp, err := svc.Create(ctx, model.CreateUserRequest{Username: "dave", Email: "d@example.com"})

		require.NoError(t, err)
		assert.Equal(t, "user", resp.Role)
	})

	t.Run("email taken", func(t *testing.T) {
		repo, _, svc := newUserService()
		repo.On("UsernameTaken", ctx, "dave", int64(0)).Return(false, nil)
		repo.On("EmailTaken", ctx, "d@example.com", int64(0)).Return(true, nil)

		_, err := svc.Create(ctx, model.CreateUserRequest{Username: "dave", Email: "d@example.com"})

		assert.ErrorIs(t, err, model.ErrEmailTaken)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("reserved username", func(t *testing.T) {
		_, _, svc := newUserService()

		_, err := svc.Create(ctx, model.CreateUserRequest{Username: "Me", Email: "d@example.com"})

		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}

func TestResolveCaller(t *testing.T) {
	repo, _, svc := newUserService()
	ctx := context.Background()

	repo.On("FindByID", ctx, int64(1)).Return(&model.User{ID: 1, Username: "root", Role: access.RoleUser, IsSuperuser: true}, true, nil)
	repo.On("FindByID", ctx, int64(2)).Return(nil, false, nil)

	caller, found, err := svc.ResolveCaller(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, caller.IsAdmin())

	_, found, err = svc.ResolveCaller(ctx, 2)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMe_Anonymous(t *testing.T) {
	_, _, svc := newUserService()

	_, err := svc.Me(context.Background(), nil)

	assert.ErrorIs(t, err, access.ErrUnauthenticated)
}

func TestDelete_NotFound(t *testing.T) {
	repo, db, svc := newUserService()
	ctx := context.Background()
	repo.On("LockByUsername", ctx, "ghost").Return(nil, false, nil)

	err := svc.Delete(ctx, "ghost")

	assert.ErrorIs(t, err, model.ErrUserNotFound)
	assert.True(t, db.Last().RolledBack)
}
