package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"yamdb-backend/internal/access"
	"yamdb-backend/internal/config"
	"yamdb-backend/internal/domains/user/model"
	"yamdb-backend/internal/shared/apperr"
	"yamdb-backend/pkg/cache/cachetest"
	"yamdb-backend/pkg/database/dbtest"
)

var authNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type authFixture struct {
	repo    *mockRepo
	db      *dbtest.Beginner
	queue   *fakeQueue
	limiter *cachetest.Memory
	svc     *authService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		repo:    &mockRepo{},
		db:      &dbtest.Beginner{},
		queue:   &fakeQueue{},
		limiter: cachetest.NewMemory(),
	}
	cfg := config.AuthConfig{ConfirmationCodeTTL: time.Hour, MaxCodeAttempts: 3, AttemptWindow: time.Minute}
	f.svc = NewAuthService(f.db, f.repo, f.queue, f.limiter, fakeTokens{}, cfg).(*authService)
	f.svc.now = func() time.Time { return authNow }
	f.svc.hashCost = bcrypt.MinCost
	return f
}

func withCode(t *testing.T, u *model.User, code string, expiresAt time.Time) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	require.NoError(t, err)
	h := string(hash)
	u.ConfirmationCodeHash = &h
	u.ConfirmationExpiresAt = &expiresAt
	return u
}

func TestSignup_RejectsReservedAndMalformedUsernames(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	for _, username := range []string{"me", "ME", "Me", "bad name", "semi;colon", ""} {
		_, err := f.svc.Signup(ctx, model.SignupRequest{Username: username, Email: "ok@example.com"})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "username %q", username)
	}

	_, err := f.svc.Signup(ctx, model.SignupRequest{Username: "me", Email: "not-an-email"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	assert.Empty(t, f.db.Txs)
}

func TestSignup_NewUser(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	f.repo.On("LockByUsernameOrEmail", ctx, "alice", "alice@example.com").Return([]*model.User{}, nil)
	f.repo.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Username == "alice" && u.Role == access.RoleUser
	})).Return(nil)
	f.repo.On("SetConfirmation", ctx, int64(42), mock.Anything, authNow.Add(time.Hour)).Return(nil)

	resp, err := f.svc.Signup(ctx, model.SignupRequest{Username: "alice", Email: "alice@example.com"})

	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, "alice@example.com", resp.Email)
	require.Len(t, f.queue.sent, 1)

	sent := f.queue.sent[0]
	assert.Equal(t, int64(42), sent.UserID)
	assert.Len(t, sent.Code, codeLength)

	hash := f.repo.Calls[len(f.repo.Calls)-1].Arguments.String(2)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(sent.Code)), "stored hash must match the delivered code")
}

func TestSignup_SamePairReissuesWithoutNewRow(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	existing := &model.User{ID: 7, Username: "alice", Email: "alice@example.com", Role: access.RoleUser}

	f.repo.On("LockByUsernameOrEmail", ctx, "alice", "alice@example.com").Return([]*model.User{existing}, nil)
	f.repo.On("SetConfirmation", ctx, int64(7), mock.Anything, mock.Anything).Return(nil)

	first, err := f.svc.Signup(ctx, model.SignupRequest{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	second, err := f.svc.Signup(ctx, model.SignupRequest{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	require.Len(t, f.queue.sent, 2)
	assert.NotEqual(t, f.queue.sent[0].Code, f.queue.sent[1].Code)
}

func TestSignup_PairMismatch(t *testing.T) {
	tests := []struct {
		name    string
		matches []*model.User
	}{
		{"username belongs to another email", []*model.User{{ID: 1, Username: "alice", Email: "other@example.com"}}},
		{"email belongs to another username", []*model.User{{ID: 2, Username: "bob", Email: "alice@example.com"}}},
		{"both taken separately", []*model.User{
			{ID: 1, Username: "alice", Email: "x@example.com"},
			{ID: 2, Username: "bob", Email: "alice@example.com"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture()
			ctx := context.Background()
			f.repo.On("LockByUsernameOrEmail", ctx, "alice", "alice@example.com").Return(tt.matches, nil)

			_, err := f.svc.Signup(ctx, model.SignupRequest{Username: "alice", Email: "alice@example.com"})

			assert.ErrorIs(t, err, model.ErrSignupMismatch)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Empty(t, f.queue.sent)
		})
	}
}

func TestSignup_RaceLoserRetriesAndReissues(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	winner := &model.User{ID: 9, Username: "alice", Email: "alice@example.com", Role: access.RoleUser}

	f.repo.On("LockByUsernameOrEmail", ctx, "alice", "alice@example.com").Return([]*model.User{}, nil).Once()
	f.repo.On("Create", ctx, mock.Anything).Return(model.ErrUsernameTaken).Once()
	f.repo.On("LockByUsernameOrEmail", ctx, "alice", "alice@example.com").Return([]*model.User{winner}, nil).Once()
	f.repo.On("SetConfirmation", ctx, int64(9), mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.Signup(ctx, model.SignupRequest{Username: "alice", Email: "alice@example.com"})

	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Username)
	require.Len(t, f.db.Txs, 2)
	assert.True(t, f.db.Txs[0].RolledBack)
	assert.True(t, f.db.Txs[1].Committed)
}

func TestSignup_EnqueueFailureIsRecordedNotReturned(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	f.queue.err = errors.New("redis down")

	f.repo.On("LockByUsernameOrEmail", ctx, "alice", "alice@example.com").Return([]*model.User{}, nil)
	f.repo.On("Create", ctx, mock.Anything).Return(nil)
	f.repo.On("SetConfirmation", ctx, int64(42), mock.Anything, mock.Anything).Return(nil)
	f.repo.On("SetDeliveryStatus", ctx, int64(42), model.DeliveryFailed).Return(nil)

	resp, err := f.svc.Signup(ctx, model.SignupRequest{Username: "alice", Email: "alice@example.com"})

	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Username)
	f.repo.AssertCalled(t, "SetDeliveryStatus", ctx, int64(42), model.DeliveryFailed)
}

func TestToken_UnknownUser(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	f.repo.On("FindByUsername", ctx, "ghost").Return(nil, false, nil)

	_, err := f.svc.Token(ctx, model.TokenRequest{Username: "ghost", ConfirmationCode: "ABC"})

	assert.ErrorIs(t, err, model.ErrUserNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestToken_Success(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	u := withCode(t, &model.User{ID: 5, Username: "alice", Role: access.RoleModerator}, "RIGHTCODE2", authNow.Add(time.Minute))

	f.repo.On("FindByUsername", ctx, "alice").Return(u, true, nil)
	f.repo.On("ConsumeConfirmation", ctx, int64(5), *u.ConfirmationCodeHash).Return(true, nil)

	resp, err := f.svc.Token(ctx, model.TokenRequest{Username: "alice", ConfirmationCode: "RIGHTCODE2"})

	require.NoError(t, err)
	assert.Equal(t, "token-for-alice-moderator", resp.Token)
}

func TestToken_CodeIsSingleUse(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	u := withCode(t, &model.User{ID: 5, Username: "alice", Role: access.RoleUser}, "RIGHTCODE2", authNow.Add(time.Minute))

	f.repo.On("FindByUsername", ctx, "alice").Return(u, true, nil)
	f.repo.On("ConsumeConfirmation", ctx, int64(5), *u.ConfirmationCodeHash).Return(false, nil)

	_, err := f.svc.Token(ctx, model.TokenRequest{Username: "alice", ConfirmationCode: "RIGHTCODE2"})

	assert.ErrorIs(t, err, model.ErrInvalidCode)
}

func TestToken_ExpiredOrWrongCode(t *testing.T) {
	ctx := context.Background()

	t.Run("expired", func(t *testing.T) {
		f := newAuthFixture()
		u := withCode(t, &model.User{ID: 5, Username: "alice"}, "RIGHTCODE2", authNow.Add(-time.Second))
		f.repo.On("FindByUsername", ctx, "alice").Return(u, true, nil)

		_, err := f.svc.Token(ctx, model.TokenRequest{Username: "alice", ConfirmationCode: "RIGHTCODE2"})
		assert.ErrorIs(t, err, model.ErrInvalidCode)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("no code issued", func(t *testing.T) {
		f := newAuthFixture()
		f.repo.On("FindByUsername", ctx, "alice").Return(&model.User{ID: 5, Username: "alice"}, true, nil)

		_, err := f.svc.Token(ctx, model.TokenRequest{Username: "alice", ConfirmationCode: "ANYTHING"})
		assert.ErrorIs(t, err, model.ErrInvalidCode)
	})
}

func TestToken_BurnsCodeAfterMaxAttempts(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	u := withCode(t, &model.User{ID: 5, Username: "alice"}, "RIGHTCODE2", authNow.Add(time.Minute))

	f.repo.On("FindByUsername", ctx, "alice").Return(u, true, nil)
	f.repo.On("BurnConfirmation", ctx, int64(5)).Return(nil).Once()

	for i := 0; i < 2; i++ {
		_, err := f.svc.Token(ctx, model.TokenRequest{Username: "alice", ConfirmationCode: "WRONG"})
		assert.ErrorIs(t, err, model.ErrInvalidCode)
	}
	assert.Equal(t, int64(2), f.limiter.Counter(attemptKeyPrefix+"alice"))
	f.repo.AssertNotCalled(t, "BurnConfirmation", mock.Anything, mock.Anything)

	_, err := f.svc.Token(ctx, model.TokenRequest{Username: "alice", ConfirmationCode: "WRONG"})
	assert.ErrorIs(t, err, model.ErrInvalidCode)

	f.repo.AssertCalled(t, "BurnConfirmation", ctx, int64(5))
	assert.Zero(t, f.limiter.Counter(attemptKeyPrefix+"alice"))
}

func TestToken_LimiterOutageDoesNotBlock(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	f.limiter.Err = errors.New("connection refused")
	u := withCode(t, &model.User{ID: 5, Username: "alice", Role: access.RoleUser}, "RIGHTCODE2", authNow.Add(time.Minute))

	f.repo.On("FindByUsername", ctx, "alice").Return(u, true, nil)
	f.repo.On("ConsumeConfirmation", ctx, int64(5), *u.ConfirmationCodeHash).Return(true, nil)

	_, err := f.svc.Token(ctx, model.TokenRequest{Username: "alice", ConfirmationCode: "WRONG"})
	assert.ErrorIs(t, err, model.ErrInvalidCode)

	resp, err := f.svc.Token(ctx, model.TokenRequest{Username: "alice", ConfirmationCode: "RIGHTCODE2"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
}

func TestReissueFailed(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	failed := &model.User{ID: 3, Username: "carol", Email: "c@example.com", DeliveryStatus: model.DeliveryFailed}
	alreadyFixed := &model.User{ID: 4, Username: "dave", Email: "d@example.com", DeliveryStatus: model.DeliverySent}

	f.repo.On("ListFailedDeliveries", ctx, 10).Return([]*model.User{failed, alreadyFixed}, nil)
	f.repo.On("LockByID", ctx, int64(3)).Return(failed, true, nil)
	f.repo.On("LockByID", ctx, int64(4)).Return(alreadyFixed, true, nil)
	f.repo.On("SetConfirmation", ctx, int64(3), mock.Anything, mock.Anything).Return(nil)

	n, err := f.svc.ReissueFailed(ctx, 10)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, f.queue.sent, 1)
	assert.Equal(t, "carol", f.queue.sent[0].Username)
}

func TestRecordDelivery(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	f.repo.On("SetDeliveryStatus", ctx, int64(1), model.DeliverySent).Return(nil)
	f.repo.On("SetDeliveryStatus", ctx, int64(2), model.DeliveryFailed).Return(nil)

	require.NoError(t, f.svc.RecordDelivery(ctx, 1, true))
	require.NoError(t, f.svc.RecordDelivery(ctx, 2, false))
	f.repo.AssertExpectations(t)
}
