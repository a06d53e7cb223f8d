package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"yamdb-backend/internal/access"
	"yamdb-backend/internal/config"
	"yamdb-backend/internal/domains/user/model"
	"yamdb-backend/internal/domains/user/repository"
	"yamdb-backend/internal/shared"
	"yamdb-backend/internal/shared/apperr"
	"yamdb-backend/pkg/cache"
	"yamdb-backend/pkg/database"
)

const attemptKeyPrefix = "auth:token:attempts:"

type authService struct {
	db       database.TxBeginner
	repo     repository.Repository
	queue    CodeQueue
	limiter  cache.Cache
	tokens   TokenIssuer
	cfg      config.AuthConfig
	now      func() time.Time
	hashCost int
}

// NewAuthService wires signup and token exchange. limiter may be nil, in which
// case failed attempts are not counted.
func NewAuthService(
	db database.TxBeginner,
	repo repository.Repository,
	queue CodeQueue,
	limiter cache.Cache,
	tokens TokenIssuer,
	cfg config.AuthConfig,
) AuthService {
	return &authService{
		db:       db,
		repo:     repo,
		queue:    queue,
		limiter:  limiter,
		tokens:   tokens,
		cfg:      cfg,
		now:      time.Now,
		hashCost: bcrypt.DefaultCost,
	}
}

// issued is a code generated inside a transaction, delivered after commit.
type issued struct {
	user      *model.User
	code      string
	expiresAt time.Time
}

// =====================================================
// SIGNUP
// =====================================================

// Signup creates the account or, for a known (username, email) pair, re-issues the
// code. Delivery problems never fail the request; they are recorded on the user
// so the code can be re-issued.
func (s *authService) Signup(ctx context.Context, req model.SignupRequest) (*model.SignupResponse, error) {
	// Step 1: Validate
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperr.FromValidation(err)
	}

	// Step 2: Find or create the pair and store a new code
	var (
		out *issued
		err error
	)
	// A concurrent signup for the same new pair makes our insert lose; the retry
	// then finds the winner's row and re-issues.
	for attempt := 0; attempt < 2; attempt++ {
		out, err = database.WithTransactionResult(ctx, s.db, func(tx pgx.Tx) (*issued, error) {
			return s.signupTx(ctx, s.repo.WithTx(tx), req)
		})
		if !errors.Is(err, model.ErrUsernameTaken) && !errors.Is(err, model.ErrEmailTaken) {
			break
		}
	}
	if errors.Is(err, model.ErrUsernameTaken) || errors.Is(err, model.ErrEmailTaken) {
		err = signupMismatch(req)
	}
	if err != nil {
		return nil, apperr.Classify(err)
	}

	// Step 3: Hand the code to the mail worker
	s.deliver(ctx, out)

	return &model.SignupResponse{Username: out.user.Username, Email: out.user.Email}, nil
}

func (s *authService) signupTx(ctx context.Context, repo repository.Repository, req model.SignupRequest) (*issued, error) {
	matches, err := repo.LockByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, err
	}

	var u *model.User
	switch {
	case len(matches) == 0:
		u = &model.User{Username: req.Username, Email: req.Email, Role: access.RoleUser}
		if err := repo.Create(ctx, u); err != nil {
			return nil, err
		}
	case len(matches) == 1 && matches[0].Username == req.Username && matches[0].Email == req.Email:
		u = matches[0]
	default:
		return nil, signupMismatch(req)
	}

	return s.issue(ctx, repo, u)
}

func (s *authService) issue(ctx context.Context, repo repository.Repository, u *model.User) (*issued, error) {
	code, err := generateCode()
	if err != nil {
		return nil, err
	}
	hash, err := hashCode(code, s.hashCost)
	if err != nil {
		return nil, err
	}

	expiresAt := s.now().Add(s.cfg.ConfirmationCodeTTL)
	if err := repo.SetConfirmation(ctx, u.ID, hash, expiresAt); err != nil {
		return nil, err
	}
	u.ConfirmationCodeHash = &hash
	u.ConfirmationExpiresAt = &expiresAt
	u.DeliveryStatus = model.DeliveryPending

	return &issued{user: u, code: code, expiresAt: expiresAt}, nil
}

// deliver enqueues the email. If that fails the user is marked failed so the
// re-issue job picks them up.
func (s *authService) deliver(ctx context.Context, out *issued) {
	err := s.queue.EnqueueConfirmationCode(ctx, shared.ConfirmationCodePayload{
		UserID:    out.user.ID,
		Username:  out.user.Username,
		Email:     out.user.Email,
		Code:      out.code,
		ExpiresAt: out.expiresAt,
	})
	if err == nil {
		return
	}

	log.Error().Err(err).
		Str("username", out.user.Username).
		Msg("failed to enqueue confirmation code")

	if err := s.repo.SetDeliveryStatus(ctx, out.user.ID, model.DeliveryFailed); err != nil {
		log.Error().Err(err).
			Str("username", out.user.Username).
			Msg("failed to record confirmation delivery failure")
	}
}

func signupMismatch(req model.SignupRequest) error {
	return model.ErrSignupMismatch.WithMessage(
		"username %q or email %q is already registered to another account", req.Username, req.Email)
}

// =====================================================
// TOKEN
// =====================================================

func (s *authService) Token(ctx context.Context, req model.TokenRequest) (*model.TokenResponse, error) {
	// Step 1: Validate
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperr.FromValidation(err)
	}

	// Step 2: Look up the user
	u, found, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !found {
		return nil, model.ErrUserNotFound
	}

	// Step 3: Check the code; count failures
	if !u.HasLiveCode(s.now()) || !codeMatches(*u.ConfirmationCodeHash, req.ConfirmationCode) {
		s.recordFailure(ctx, u)
		return nil, model.ErrInvalidCode
	}

	// Step 4: Consume it; a concurrent exchange of the same code loses here
	consumed, err := s.repo.ConsumeConfirmation(ctx, u.ID, *u.ConfirmationCodeHash)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !consumed {
		return nil, model.ErrInvalidCode
	}
	s.resetFailures(ctx, u.Username)

	token, err := s.tokens.GenerateAccessToken(u.ID, u.Username, string(u.Role))
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("sign access token: %w", err))
	}

	log.Info().Str("username", u.Username).Msg("confirmation code exchanged for token")
	return &model.TokenResponse{Token: token}, nil
}

// recordFailure burns the outstanding code once the attempt budget is spent.
// Limiter errors are logged and otherwise ignored.
func (s *authService) recordFailure(ctx context.Context, u *model.User) {
	if s.limiter == nil || u.ConfirmationCodeHash == nil {
		return
	}
	key := attemptKeyPrefix + u.Username

	n, err := s.limiter.Increment(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("attempt limiter unavailable")
		return
	}
	if n == 1 {
		if err := s.limiter.Expire(ctx, key, s.cfg.AttemptWindow); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to set attempt window")
		}
	}
	if n < int64(s.cfg.MaxCodeAttempts) {
		return
	}

	if err := s.repo.BurnConfirmation(ctx, u.ID); err != nil {
		log.Error().Err(err).Str("username", u.Username).Msg("failed to burn confirmation code")
		return
	}
	s.resetFailures(ctx, u.Username)
	log.Warn().Str("username", u.Username).Int64("attempts", n).Msg("confirmation code burned after repeated failures")
}

func (s *authService) resetFailures(ctx context.Context, username string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Delete(ctx, attemptKeyPrefix+username); err != nil {
		log.Warn().Err(err).Str("username", username).Msg("failed to reset attempt counter")
	}
}

// =====================================================
// DELIVERY
// =====================================================

func (s *authService) ReissueFailed(ctx context.Context, limit int) (int, error) {
	users, err := s.repo.ListFailedDeliveries(ctx, limit)
	if err != nil {
		return 0, err
	}

	reissued := 0
	for _, candidate := range users {
		out, err := database.WithTransactionResult(ctx, s.db, func(tx pgx.Tx) (*issued, error) {
			repo := s.repo.WithTx(tx)

			u, found, err := repo.LockByID(ctx, candidate.ID)
			if err != nil || !found || u.DeliveryStatus != model.DeliveryFailed {
				return nil, err
			}
			return s.issue(ctx, repo, u)
		})
		if err != nil {
			log.Error().Err(err).Int64("user_id", candidate.ID).Msg("failed to re-issue confirmation code")
			continue
		}
		if out == nil {
			continue
		}

		s.deliver(ctx, out)
		reissued++
	}
	return reissued, nil
}

func (s *authService) RecordDelivery(ctx context.Context, userID int64, delivered bool) error {
	status := model.DeliveryFailed
	if delivered {
		status = model.DeliverySent
	}
	return s.repo.SetDeliveryStatus(ctx, userID, status)
}

func (s *authService) CleanupExpired(ctx context.Context, before time.Time) (int64, error) {
	return s.repo.ClearExpiredConfirmations(ctx, before)
}
