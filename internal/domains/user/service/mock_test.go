package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"yamdb-backend/internal/domains/user/model"
	"yamdb-backend/internal/domains/user/repository"
	"yamdb-backend/internal/shared"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) WithTx(pgx.Tx) repository.Repository { return m }

func (m *mockRepo) List(ctx context.Context, q model.ListQuery) ([]*model.User, int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]*model.User), args.Get(1).(int64), args.Error(2)
}

func (m *mockRepo) findResult(args mock.Arguments) (*model.User, bool, error) {
	u, _ := args.Get(0).(*model.User)
	return u, args.Bool(1), args.Error(2)
}

func (m *mockRepo) FindByID(ctx context.Context, id int64) (*model.User, bool, error) {
	return m.findResult(m.Called(ctx, id))
}

func (m *mockRepo) FindByUsername(ctx context.Context, username string) (*model.User, bool, error) {
	return m.findResult(m.Called(ctx, username))
}

func (m *mockRepo) LockByUsername(ctx context.Context, username string) (*model.User, bool, error) {
	return m.findResult(m.Called(ctx, username))
}

func (m *mockRepo) LockByID(ctx context.Context, id int64) (*model.User, bool, error) {
	return m.findResult(m.Called(ctx, id))
}

func (m *mockRepo) LockByUsernameOrEmail(ctx context.Context, username, email string) ([]*model.User, error) {
	args := m.Called(ctx, username, email)
	users, _ := args.Get(0).([]*model.User)
	return users, args.Error(1)
}

func (m *mockRepo) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	args := m.Called(ctx, username, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) Create(ctx context.Context, u *model.User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil {
		u.ID = 42
	}
	return args.Error(0)
}

func (m *mockRepo) Update(ctx context.Context, u *model.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) SetConfirmation(ctx context.Context, id int64, hash string, expiresAt time.Time) error {
	return m.Called(ctx, id, hash, expiresAt).Error(0)
}

func (m *mockRepo) ConsumeConfirmation(ctx context.Context, id int64, hash string) (bool, error) {
	args := m.Called(ctx, id, hash)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) BurnConfirmation(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) SetDeliveryStatus(ctx context.Context, id int64, status model.DeliveryStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockRepo) ListFailedDeliveries(ctx context.Context, limit int) ([]*model.User, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*model.User), args.Error(1)
}

func (m *mockRepo) ClearExpiredConfirmations(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// fakeQueue records enqueued payloads and fails when err is set.
type fakeQueue struct {
	sent []shared.ConfirmationCodePayload
	err  error
}

func (q *fakeQueue) EnqueueConfirmationCode(_ context.Context, p shared.ConfirmationCodePayload) error {
	if q.err != nil {
		return q.err
	}
	q.sent = append(q.sent, p)
	return nil
}

type fakeTokens struct{}

func (fakeTokens) GenerateAccessToken(userID int64, username, role string) (string, error) {
	return "token-for-" + username + "-" + role, nil
}
