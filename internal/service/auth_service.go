package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/recruitment-crm/internal/auth"
	"github.com/spec-kit/recruitment-crm/internal/config"
	"github.com/spec-kit/recruitment-crm/internal/domain"
	"github.com/spec-kit/recruitment-crm/internal/repository"
	"github.com/spec-kit/recruitment-crm/internal/session"
	apperrors "github.com/spec-kit/recruitment-crm/pkg/util/errorutil"
)

const invalidCredentials = "invalid credentials"

// AuthService coordinates login, session validation and password changes.
type AuthService struct {
	store      *repository.Store
	sessions   session.Store
	tokens     *auth.TokenManager
	timeout    time.Duration
	bcryptCost int
	logger     *zap.Logger
	now        func() time.Time
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	Store    *repository.Store
	Sessions session.Store
	Logger   *zap.Logger
	// Clock defaults to the UTC wall clock.
	Clock func() time.Time
}

// LoginResult is returned after a successful login.
type LoginResult struct {
	Token     string
	User      *domain.User
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	clock := deps.Clock
	if clock == nil {
		clock = utcNow
	}
	return &AuthService{
		store:      deps.Store,
		sessions:   deps.Sessions,
		tokens:     auth.NewTokenManager(cfg.JWTSecret),
		timeout:    cfg.SessionTimeout(),
		bcryptCost: cfg.BcryptCost,
		logger:     loggerOrNop(deps.Logger),
		now:        clock,
	}
}

// SessionTimeout returns the idle window after which sessions expire.
func (s *AuthService) SessionTimeout() time.Duration {
	return s.timeout
}

// Login verifies credentials and opens a session. Every failure yields the same
// UNAUTHORIZED error so callers cannot probe which usernames exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = trimmed(username)
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("username and password are required", nil)
	}

	user, err := s.store.Users.GetByUsername(ctx, username)
	if err != nil {
		if repository.IsNotFound(err) {
			s.logger.Warn("login rejected", zap.String("username", username), zap.String("reason", "unknown or inactive user"))
			return nil, apperrors.NewUnauthorized(invalidCredentials)
		}
		return nil, persistenceError(err, "user")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Warn("login rejected", zap.String("username", username), zap.String("reason", "password mismatch"))
		return nil, apperrors.NewUnauthorized(invalidCredentials)
	}

	now := s.now()
	sess := &domain.Session{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		Role:       user.Role,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	token, err := s.tokens.GenerateToken(sess.ID, user.ID, now)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if err := recordActivity(ctx, s.store, user.ID, activityEntry{
		Action:      domain.ActionLogin,
		EntityType:  domain.EntityUser,
		EntityID:    user.ID,
		Description: "user logged in",
	}); err != nil {
		s.logger.Error("record login", zap.Error(err))
	}

	s.logger.Info("user logged in", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return &LoginResult{Token: token, User: user, ExpiresAt: now.Add(s.timeout)}, nil
}

// Authenticate resolves a token into a principal and slides the session window forward.
// The user row is reloaded so role changes and deactivation apply immediately.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Principal, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}

	sess, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("session not found")
		}
		return nil, apperrors.NewInternalError(err)
	}
	if sess.UserID != claims.UserID {
		return nil, apperrors.NewUnauthorized("invalid token")
	}

	now := s.now()
	if sess.Expired(now, s.timeout) {
		_ = s.sessions.Delete(ctx, sess.ID)
		return nil, apperrors.NewUnauthorized("session expired")
	}

	user, err := s.store.Users.GetByID(ctx, sess.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			_ = s.sessions.Delete(ctx, sess.ID)
			return nil, apperrors.NewUnauthorized("account is inactive")
		}
		return nil, persistenceError(err, "user")
	}

	if err := s.sessions.Touch(ctx, sess.ID, now); err != nil && !errors.Is(err, session.ErrNotFound) {
		return nil, apperrors.NewInternalError(err)
	}

	return &domain.Principal{
		UserID:    user.ID,
		Username:  user.Username,
		FullName:  user.FullName,
		Role:      user.Role,
		SessionID: sess.ID,
	}, nil
}

// Logout ends the principal's session.
func (s *AuthService) Logout(ctx context.Context, principal *domain.Principal) error {
	if principal == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := s.sessions.Delete(ctx, principal.SessionID); err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := recordActivity(ctx, s.store, principal.UserID, activityEntry{
		Action:      domain.ActionLogout,
		EntityType:  domain.EntityUser,
		EntityID:    principal.UserID,
		Description: "user logged out",
	}); err != nil {
		s.logger.Error("record logout", zap.Error(err))
	}
	return nil
}

// ChangePassword replaces the caller's password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, principal *domain.Principal, current, next string) error {
	if principal == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	errs := fieldErrors{}
	errs.required("current_password", current)
	errs.password("new_password", next)
	if err := errs.err(); err != nil {
		return err
	}

	user, err := s.store.Users.GetByID(ctx, principal.UserID)
	if err != nil {
		return persistenceError(err, "user")
	}
	if err := auth.ComparePassword(user.PasswordHash, current); err != nil {
		return apperrors.NewValidationError("current password is incorrect",
			map[string]any{"fields": map[string]any{"current_password": "is incorrect"}})
	}

	hash, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	return s.store.WithinTx(ctx, func(tx *repository.Store) error {
		if err := tx.Users.UpdatePassword(ctx, user.ID, hash); err != nil {
			return persistenceError(err, "user")
		}
		return recordActivity(ctx, tx, user.ID, activityEntry{
			Action:      domain.ActionPasswordChange,
			EntityType:  domain.EntityUser,
			EntityID:    user.ID,
			Description: "password changed",
		})
	})
}
