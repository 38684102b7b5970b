package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/repository"
	apperrors "github.com/spec-kit/account-service/pkg/util"
)

// Login and forgot-password responses are identical whether or not the
// account exists, so callers cannot probe for registered emails.
const (
	invalidCredentialsMsg = "invalid email or password"
	forgotPasswordMsg     = "if the email exists, a password reset link has been sent"
)

// AuthService coordinates registration, login, token refresh and the
// password-reset lifecycle.
type AuthService struct {
	users      repository.UserRepository
	resets     repository.PasswordResetRepository
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
	resetTTL   time.Duration
}

// AuthDependencies encapsulates collaborator requirements for the service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	PasswordResetRepo repository.PasswordResetRepository
	Dispatcher        events.Dispatcher
	Logger            *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:  deps.UserRepo,
		resets: deps.PasswordResetRepo,
		tokenMgr: auth.NewTokenManager(
			cfg.Auth.AccessTokenSecret,
			cfg.Auth.RefreshTokenSecret,
			cfg.Auth.AccessTokenTTL(),
			cfg.Auth.RefreshTokenTTL(),
		),
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		bcryptCost: cfg.Auth.BcryptCost,
		resetTTL:   cfg.Auth.PasswordResetTTL(),
	}
}

// Register creates a new account and issues its first token pair. The
// welcome email is dispatched without awaiting the outcome.
func (s *AuthService) Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, *domain.TokenPair, error) {
	if !role.Valid() {
		return nil, nil, apperrors.NewValidationError("role must be either admin or user", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, nil, apperrors.NewConflict("user with this email already exists", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, apperrors.NewStorageUnavailable(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, apperrors.NewStorageUnavailable(err)
	}

	pair, err := s.tokenMgr.IssuePair(user)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.EventAccountRegistered, user.ID, events.AccountRegisteredPayload{
		Name:  user.Name,
		Email: user.Email,
	})

	return user, pair, nil
}

// Login authenticates credentials and issues a fresh token pair. An unknown
// email and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized(invalidCredentialsMsg)
		}
		return nil, nil, apperrors.NewStorageUnavailable(err)
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthorized(invalidCredentialsMsg)
	}

	pair, err := s.tokenMgr.IssuePair(user)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}
	return user, pair, nil
}

// Refresh verifies a refresh token and mints a new access token. The
// refresh token itself is not rotated. Any verification failure, and a
// referenced account that no longer exists, yield the same 401.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	claims, err := s.tokenMgr.Verify(refreshToken, domain.TokenKindRefresh)
	if err != nil {
		return "", time.Time{}, apperrors.NewUnauthorized("invalid refresh token")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, apperrors.NewUnauthorized("invalid refresh token")
		}
		return "", time.Time{}, apperrors.NewStorageUnavailable(err)
	}

	access, expiresAt, err := s.tokenMgr.Issue(user, domain.TokenKindAccess)
	if err != nil {
		return "", time.Time{}, apperrors.NewInternalError(err)
	}
	return access, expiresAt, nil
}

// ForgotPassword creates a single-use reset token when the account exists
// and dispatches the reset email. The returned message is the same either
// way, and email failures never change the outcome.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return forgotPasswordMsg, nil
		}
		return "", apperrors.NewStorageUnavailable(err)
	}

	token := &domain.PasswordResetToken{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return "", apperrors.NewStorageUnavailable(err)
	}

	s.publish(ctx, events.EventPasswordResetRequested, user.ID, events.PasswordResetRequestedPayload{
		Email: user.Email,
		Token: token.Token,
	})

	return forgotPasswordMsg, nil
}

// ResetPassword consumes a reset token and updates the account password.
// The hash update and the used_at stamp commit in a single transaction.
// Expiry is checked before used_at, so an expired token reports expiry
// regardless of prior use.
func (s *AuthService) ResetPassword(ctx context.Context, tokenStr, newPassword string) error {
	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewInvalidToken("invalid reset token")
		}
		return apperrors.NewStorageUnavailable(err)
	}

	if token.Expired(time.Now()) {
		return apperrors.NewTokenExpired("reset token has expired")
	}
	if token.Used() {
		return apperrors.NewTokenAlreadyUsed("reset token has already been used")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	if err := s.resets.Consume(ctx, token.ID, token.UserID, hash); err != nil {
		return apperrors.NewStorageUnavailable(err)
	}

	s.publish(ctx, events.EventPasswordResetCompleted, token.UserID, events.PasswordResetCompletedPayload{})
	return nil
}

// Logout acknowledges the request. Tokens stay valid until expiry; there is
// no server-side revocation store.
func (s *AuthService) Logout(_ context.Context, _ string) error {
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, userID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
