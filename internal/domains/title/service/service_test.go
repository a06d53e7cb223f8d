package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"yamdb-backend/internal/domains/title/model"
	"yamdb-backend/internal/domains/title/repository"
	"yamdb-backend/internal/shared/apperr"
	"yamdb-backend/internal/shared/utils"
	"yamdb-backend/pkg/database/dbtest"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) WithTx(pgx.Tx) repository.Repository { return m }

func (m *mockRepo) List(ctx context.Context, q model.ListQuery) ([]*model.Title, int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]*model.Title), args.Get(1).(int64), args.Error(2)
}

func (m *mockRepo) FindByID(ctx context.Context, id int64) (*model.Title, bool, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*model.Title)
	return t, args.Bool(1), args.Error(2)
}

func (m *mockRepo) FindRecordForUpdate(ctx context.Context, id int64) (*model.Record, bool, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*model.Record)
	return r, args.Bool(1), args.Error(2)
}

func (m *mockRepo) NameYearTaken(ctx context.Context, name string, year int, excludeID int64) (bool, error) {
	args := m.Called(ctx, name, year, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) ResolveCategory(ctx context.Context, slug string) (int64, bool, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *mockRepo) ResolveGenres(ctx context.Context, slugs []string) (map[string]int64, error) {
	args := m.Called(ctx, slugs)
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *mockRepo) Create(ctx context.Context, rec *model.Record) error {
	args := m.Called(ctx, rec)
	rec.ID = 100
	return args.Error(0)
}

func (m *mockRepo) Update(ctx context.Context, rec *model.Record) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockRepo) ReplaceGenres(ctx context.Context, titleID int64, genreIDs []int64) error {
	return m.Called(ctx, titleID, genreIDs).Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

var fixedNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newService() (*mockRepo, *dbtest.Beginner, *titleService) {
	repo := &mockRepo{}
	db := &dbtest.Beginner{}
	svc := NewTitleService(db, repo).(*titleService)
	svc.now = func() time.Time { return fixedNow }
	return repo, db, svc
}

func intPtr(v int) *int { return &v }

func TestCreate_YearBoundary(t *testing.T) {
	repo, _, svc := newService()
	ctx := context.Background()

	_, err := svc.Create(ctx, model.CreateTitleRequest{Name: "Next Year", Year: intPtr(fixedNow.Year() + 1)})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	repo.On("NameYearTaken", ctx, "This Year", fixedNow.Year(), int64(0)).Return(false, nil)
	repo.On("Create", ctx, mock.Anything).Return(nil)
	repo.On("FindByID", ctx, int64(100)).Return(&model.Title{ID: 100, Name: "This Year", Year: fixedNow.Year()}, true, nil)

	resp, err := svc.Create(ctx, model.CreateTitleRequest{Name: "This Year", Year: intPtr(fixedNow.Year())})
	require.NoError(t, err)
	assert.Nil(t, resp.Rating)
	assert.Equal(t, []model.TermRef{}, resp.Genre)
}

func TestCreate_ResolvesReferences(t *testing.T) {
	repo, db, svc := newService()
	ctx := context.Background()
	category := "films"

	repo.On("ResolveCategory", ctx, "films").Return(int64(3), true, nil)
	repo.On("ResolveGenres", ctx, []string{"drama", "crime"}).Return(map[string]int64{"drama": 1, "crime": 2}, nil)
	repo.On("NameYearTaken", ctx, "Heat", 1995, int64(0)).Return(false, nil)
	repo.On("Create", ctx, mock.MatchedBy(func(r *model.Record) bool {
		return *r.CategoryID == 3 && assert.ObjectsAreEqual([]int64{1, 2}, r.GenreIDs)
	})).Return(nil)
	repo.On("FindByID", ctx, int64(100)).Return(&model.Title{ID: 100, Name: "Heat"}, true, nil)

	_, err := svc.Create(ctx, model.CreateTitleRequest{
		Name: "Heat", Year: intPtr(1995), Category: &category, Genre: []string{"drama", "crime", "drama"},
	})

	require.NoError(t, err)
	assert.True(t, db.Last().Committed)
	repo.AssertExpectations(t)
}

func TestCreate_UnknownGenre(t *testing.T) {
	repo, db, svc := newService()
	ctx := context.Background()

	repo.On("ResolveGenres", ctx, []string{"drama", "nope"}).Return(map[string]int64{"drama": 1}, nil)

	_, err := svc.Create(ctx, model.CreateTitleRequest{Name: "Heat", Year: intPtr(1995), Genre: []string{"drama", "nope"}})

	assert.ErrorIs(t, err, model.ErrUnknownGenre)
	assert.True(t, db.Last().RolledBack)
}

func TestCreate_DuplicateNameYear(t *testing.T) {
	repo, _, svc := newService()
	ctx := context.Background()

	repo.On("NameYearTaken", ctx, "Heat", 1995, int64(0)).Return(true, nil)

	_, err := svc.Create(ctx, model.CreateTitleRequest{Name: "Heat", Year: intPtr(1995)})

	assert.ErrorIs(t, err, model.ErrDuplicateTitle)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdate_ClearsCategoryAndKeepsIdentity(t *testing.T) {
	repo, _, svc := newService()
	ctx := context.Background()
	three := int64(3)

	repo.On("FindRecordForUpdate", ctx, int64(5)).
		Return(&model.Record{ID: 5, Name: "Heat", Year: 1995, CategoryID: &three}, true, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(r *model.Record) bool {
		return r.CategoryID == nil && r.Name == "Heat"
	})).Return(nil)
	repo.On("FindByID", ctx, int64(5)).Return(&model.Title{ID: 5, Name: "Heat", Year: 1995}, true, nil)

	_, err := svc.Update(ctx, 5, model.UpdateTitleRequest{Category: utils.Optional[string]{Set: true}})

	require.NoError(t, err)
	repo.AssertNotCalled(t, "NameYearTaken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "ReplaceGenres", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_RenameChecksUniquenessExcludingSelf(t *testing.T) {
	repo, _, svc := newService()
	ctx := context.Background()
	name := "Heat 2"

	repo.On("FindRecordForUpdate", ctx, int64(5)).Return(&model.Record{ID: 5, Name: "Heat", Year: 1995}, true, nil)
	repo.On("NameYearTaken", ctx, "Heat 2", 1995, int64(5)).Return(true, nil)

	_, err := svc.Update(ctx, 5, model.UpdateTitleRequest{Name: &name})

	assert.ErrorIs(t, err, model.ErrDuplicateTitle)
}

func TestUpdate_FutureYearRejected(t *testing.T) {
	_, db, svc := newService()

	_, err := svc.Update(context.Background(), 5, model.UpdateTitleRequest{Year: intPtr(fixedNow.Year() + 1)})

	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Empty(t, db.Txs)
}

func TestUpdate_NotFound(t *testing.T) {
	repo, _, svc := newService()
	ctx := context.Background()
	repo.On("FindRecordForUpdate", ctx, int64(9)).Return(nil, false, nil)

	_, err := svc.Update(ctx, 9, model.UpdateTitleRequest{})

	assert.ErrorIs(t, err, model.ErrTitleNotFound)
}

func TestGetAndDelete(t *testing.T) {
	repo, _, svc := newService()
	ctx := context.Background()
	six := 6

	repo.On("FindByID", ctx, int64(1)).Return(&model.Title{ID: 1, Rating: &six}, true, nil)
	repo.On("FindByID", ctx, int64(2)).Return(nil, false, nil)
	repo.On("Delete", ctx, int64(1)).Return(true, nil)
	repo.On("Delete", ctx, int64(2)).Return(false, nil)

	got, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, *got.Rating)

	_, err = svc.Get(ctx, 2)
	assert.ErrorIs(t, err, model.ErrTitleNotFound)

	assert.NoError(t, svc.Delete(ctx, 1))
	assert.ErrorIs(t, svc.Delete(ctx, 2), model.ErrTitleNotFound)
}
