package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"yamdb-backend/internal/access"
	"yamdb-backend/internal/domains/review/model"
	"yamdb-backend/internal/domains/review/repository"
	"yamdb-backend/internal/shared/apperr"
	"yamdb-backend/pkg/database/dbtest"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) WithTx(pgx.Tx) repository.Repository { return m }

func (m *mockRepo) LockTitle(ctx context.Context, titleID int64) (bool, error) {
	args := m.Called(ctx, titleID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) TitleExists(ctx context.Context, titleID int64) (bool, error) {
	args := m.Called(ctx, titleID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) List(ctx context.Context, q model.ListQuery) ([]*model.Review, int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]*model.Review), args.Get(1).(int64), args.Error(2)
}

func (m *mockRepo) FindByID(ctx context.Context, titleID, id int64) (*model.Review, bool, error) {
	args := m.Called(ctx, titleID, id)
	r, _ := args.Get(0).(*model.Review)
	return r, args.Bool(1), args.Error(2)
}

func (m *mockRepo) FindForUpdate(ctx context.Context, titleID, id int64) (*model.Review, bool, error) {
	args := m.Called(ctx, titleID, id)
	r, _ := args.Get(0).(*model.Review)
	return r, args.Bool(1), args.Error(2)
}

func (m *mockRepo) AuthorHasReviewed(ctx context.Context, titleID, authorID int64) (bool, error) {
	args := m.Called(ctx, titleID, authorID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) Create(ctx context.Context, review *model.Review) error {
	args := m.Called(ctx, review)
	review.ID = 77
	return args.Error(0)
}

func (m *mockRepo) Update(ctx context.Context, review *model.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

var (
	author    = &access.Caller{UserID: 1, Username: "alice", Role: access.RoleUser}
	stranger  = &access.Caller{UserID: 2, Username: "bob", Role: access.RoleUser}
	moderator = &access.Caller{UserID: 3, Username: "mod", Role: access.RoleModerator}
)

func newService(t *testing.T) (*mockRepo, *dbtest.Beginner, Service) {
	t.Helper()
	ev, err := access.NewEvaluator()
	require.NoError(t, err)

	repo := &mockRepo{}
	db := &dbtest.Beginner{}
	return repo, db, NewReviewService(db, repo, ev)
}

func score(v int) *int { return &v }

func TestCreate_Anonymous(t *testing.T) {
	repo, db, svc := newService(t)

	_, err := svc.Create(context.Background(), nil, 1, model.CreateReviewRequest{Text: "great", Score: score(9)})

	assert.ErrorIs(t, err, access.ErrUnauthenticated)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	assert.Empty(t, db.Txs)
	repo.AssertExpectations(t)
}

func TestCreate_ScoreBounds(t *testing.T) {
	_, db, svc := newService(t)
	ctx := context.Background()

	for _, s := range []int{0, 11, -3} {
		_, err := svc.Create(ctx, author, 1, model.CreateReviewRequest{Text: "meh", Score: score(s)})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "score %d", s)
	}

	_, err := svc.Create(ctx, author, 1, model.CreateReviewRequest{Text: "no score"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Create(ctx, author, 1, model.CreateReviewRequest{Text: "   ", Score: score(5)})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	assert.Empty(t, db.Txs)
}

func TestCreate_TitleMissing(t *testing.T) {
	repo, db, svc := newService(t)
	ctx := context.Background()
	repo.On("LockTitle", ctx, int64(404)).Return(false, nil)

	_, err := svc.Create(ctx, author, 404, model.CreateReviewRequest{Text: "hello", Score: score(5)})

	assert.ErrorIs(t, err, model.ErrTitleNotFound)
	assert.True(t, db.Last().RolledBack)
}

func TestCreate_Success(t *testing.T) {
	repo, db, svc := newService(t)
	ctx := context.Background()

	repo.On("LockTitle", ctx, int64(1)).Return(true, nil)
	repo.On("AuthorHasReviewed", ctx, int64(1), int64(1)).Return(false, nil)
	repo.On("Create", ctx, mock.MatchedBy(func(r *model.Review) bool {
		return r.TitleID == 1 && r.AuthorID == 1 && r.Author == "alice" && r.Score == 8 && r.Text == "good"
	})).Return(nil)

	resp, err := svc.Create(ctx, author, 1, model.CreateReviewRequest{Text: "  good ", Score: score(8)})

	require.NoError(t, err)
	assert.Equal(t, int64(77), resp.ID)
	assert.Equal(t, "alice", resp.Author)
	assert.True(t, db.Last().Committed)
}

func TestCreate_DuplicatePreCheck(t *testing.T) {
	repo, _, svc := newService(t)
	ctx := context.Background()

	repo.On("LockTitle", ctx, int64(1)).Return(true, nil)
	repo.On("AuthorHasReviewed", ctx, int64(1), int64(1)).Return(true, nil)

	_, err := svc.Create(ctx, author, 1, model.CreateReviewRequest{Text: "again", Score: score(3)})

	assert.ErrorIs(t, err, model.ErrDuplicateReview)
	assert.Contains(t, err.Error(), "alice")
	assert.Contains(t, err.Error(), "title 1")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// The loser of a concurrent create passes the pre-check and fails on the constraint;
// it must see the same conflict as a sequential duplicate.
func TestCreate_DuplicateRaceLoser(t *testing.T) {
	repo, db, svc := newService(t)
	ctx := context.Background()

	repo.On("LockTitle", ctx, int64(1)).Return(true, nil)
	repo.On("AuthorHasReviewed", ctx, int64(1), int64(1)).Return(false, nil)
	repo.On("Create", ctx, mock.Anything).Return(model.DuplicateReview(1, "alice"))

	_, err := svc.Create(ctx, author, 1, model.CreateReviewRequest{Text: "race", Score: score(3)})

	assert.ErrorIs(t, err, model.ErrDuplicateReview)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.True(t, db.Last().RolledBack)
}

func TestCreate_StorageFailureIsInternal(t *testing.T) {
	repo, _, svc := newService(t)
	ctx := context.Background()
	repo.On("LockTitle", ctx, int64(1)).Return(false, errors.New("connection reset"))

	_, err := svc.Create(ctx, author, 1, model.CreateReviewRequest{Text: "x", Score: score(3)})

	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestUpdate_OwnershipMatrix(t *testing.T) {
	ctx := context.Background()
	text := "edited"

	tests := []struct {
		name    string
		caller  *access.Caller
		wantErr error
	}{
		{"author", author, nil},
		{"moderator", moderator, nil},
		{"admin", &access.Caller{UserID: 9, Role: access.RoleAdmin}, nil},
		{"superuser", &access.Caller{UserID: 10, Role: access.RoleUser, IsSuperuser: true}, nil},
		{"other user", stranger, access.ErrPermissionDenied},
		{"anonymous", nil, access.ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _, svc := newService(t)
			existing := &model.Review{ID: 5, TitleID: 1, AuthorID: author.UserID, Author: "alice", Text: "orig", Score: 4}
			repo.On("FindForUpdate", ctx, int64(1), int64(5)).Return(existing, true, nil).Maybe()
			repo.On("Update", ctx, mock.Anything).Return(nil).Maybe()

			resp, err := svc.Update(ctx, tt.caller, 1, 5, model.UpdateReviewRequest{Text: &text})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "edited", resp.Text)
			assert.Equal(t, 4, resp.Score)
			assert.Equal(t, "alice", resp.Author)
		})
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, _, svc := newService(t)
	ctx := context.Background()
	repo.On("FindForUpdate", ctx, int64(1), int64(5)).Return(nil, false, nil)

	_, err := svc.Update(ctx, stranger, 1, 5, model.UpdateReviewRequest{Score: score(2)})

	assert.ErrorIs(t, err, model.ErrReviewNotFound)
}

func TestUpdate_ScoreBounds(t *testing.T) {
	repo, db, svc := newService(t)
	ctx := context.Background()

	for _, s := range []int{0, 11, -3} {
		_, err := svc.Update(ctx, author, 1, 5, model.UpdateReviewRequest{Score: score(s)})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "score %d", s)
	}

	assert.Empty(t, db.Txs)
	repo.AssertExpectations(t)
}

func TestDelete_ByModerator(t *testing.T) {
	repo, db, svc := newService(t)
	ctx := context.Background()
	repo.On("FindForUpdate", ctx, int64(1), int64(5)).Return(&model.Review{ID: 5, TitleID: 1, AuthorID: 1}, true, nil)
	repo.On("Delete", ctx, int64(5)).Return(nil)

	require.NoError(t, svc.Delete(ctx, moderator, 1, 5))
	assert.True(t, db.Last().Committed)
}

func TestDelete_ByStrangerDenied(t *testing.T) {
	repo, db, svc := newService(t)
	ctx := context.Background()
	repo.On("FindForUpdate", ctx, int64(1), int64(5)).Return(&model.Review{ID: 5, TitleID: 1, AuthorID: 1}, true, nil)

	err := svc.Delete(ctx, stranger, 1, 5)

	assert.ErrorIs(t, err, access.ErrPermissionDenied)
	assert.True(t, db.Last().RolledBack)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestList_UnknownTitle(t *testing.T) {
	repo, _, svc := newService(t)
	ctx := context.Background()
	repo.On("TitleExists", ctx, int64(3)).Return(false, nil)

	_, _, err := svc.List(ctx, model.ListQuery{TitleID: 3, Page: 1, Limit: 10})

	assert.ErrorIs(t, err, model.ErrTitleNotFound)
}
