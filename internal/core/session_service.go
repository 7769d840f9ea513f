package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"couple-plans-backend-go/internal/metrics"
	"couple-plans-backend-go/internal/mirror"
	"couple-plans-backend-go/internal/models"
)

var (
	ErrAccountNotAllowed  = errors.New("account is not allowed in this workspace")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSignInUnavailable  = errors.New("password sign-in is not configured")
)

type sessionService struct {
	users    []models.User
	verifier PasswordVerifier // nil disables password sign-in
	revoker  TokenRevoker
	mirror   *mirror.Store
	logger   *zap.Logger
}

// NewSessionService creates a new SessionService over the collaborator allow-list.
func NewSessionService(users []models.User, verifier PasswordVerifier, revoker TokenRevoker, store *mirror.Store, logger *zap.Logger) SessionService {
	return &sessionService{
		users:    users,
		verifier: verifier,
		revoker:  revoker,
		mirror:   store,
		logger:   logger,
	}
}

func (s *sessionService) Lookup(identifier string) (models.User, bool) {
	id := strings.ToLower(strings.TrimSpace(identifier))
	if id == "" {
		return models.User{}, false
	}
	for _, u := range s.users {
		if u.Username == id || strings.EqualFold(u.Email, id) {
			return u, true
		}
	}
	return models.User{}, false
}

func (s *sessionService) byEmail(email string) (models.User, bool) {
	email = strings.TrimSpace(email)
	if email == "" {
		return models.User{}, false
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return models.User{}, false
}

// Login signs a collaborator in with the identity provider.
// Identifiers outside the allow-list are rejected before the provider is contacted.
func (s *sessionService) Login(ctx context.Context, identifier, password string) (*models.LoginResult, error) {
	user, ok := s.Lookup(identifier)
	if !ok {
		metrics.LoginAttemptsTotal.WithLabelValues("not_allowed").Inc()
		s.logger.Warn("Login rejected for unknown identifier", zap.String("identifier", identifier))
		return nil, ErrAccountNotAllowed
	}
	if s.verifier == nil {
		return nil, ErrSignInUnavailable
	}

	signIn, err := s.verifier.VerifyPassword(ctx, user.Email, password)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	// The provider may resolve to an account whose email differs from the allow-listed one.
	if _, allowed := s.byEmail(signIn.Email); !allowed {
		metrics.LoginAttemptsTotal.WithLabelValues("not_allowed").Inc()
		s.revoke(ctx, signIn.UID)
		s.logger.Warn("Signed-in account is not allow-listed", zap.String("uid", signIn.UID), zap.String("email", signIn.Email))
		return nil, ErrAccountNotAllowed
	}

	session := models.Session{
		UID:      signIn.UID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}
	if err := s.mirror.SetSession(ctx, session); err != nil {
		s.logger.Warn("Failed to mirror session", zap.String("uid", session.UID), zap.Error(err))
	}
	metrics.LoginAttemptsTotal.WithLabelValues(metrics.ResultOK).Inc()
	s.logger.Info("User signed in", zap.String("username", user.Username))

	return &models.LoginResult{
		IDToken:      signIn.IDToken,
		RefreshToken: signIn.RefreshToken,
		ExpiresIn:    signIn.ExpiresIn,
		Session:      session,
	}, nil
}

// Authorize resolves the session for a verified token. Tokens issued to accounts
// outside the allow-list are revoked and rejected.
func (s *sessionService) Authorize(ctx context.Context, uid, email string) (*models.Session, error) {
	user, ok := s.byEmail(email)
	if !ok {
		s.revoke(ctx, uid)
		return nil, fmt.Errorf("%w: %s", ErrAccountNotAllowed, email)
	}

	if cached, found := s.mirror.Session(ctx, uid); found && strings.EqualFold(cached.Email, user.Email) && cached.Role == user.Role {
		return cached, nil
	}
	session := &models.Session{UID: uid, Username: user.Username, Email: user.Email, Role: user.Role}
	if err := s.mirror.SetSession(ctx, *session); err != nil {
		s.logger.Warn("Failed to mirror session", zap.String("uid", uid), zap.Error(err))
	}
	return session, nil
}

// Logout revokes the user's refresh tokens and forgets the mirrored session.
func (s *sessionService) Logout(ctx context.Context, uid string) error {
	if s.revoker != nil {
		if err := s.revoker.RevokeRefreshTokens(ctx, uid); err != nil {
			return fmt.Errorf("revoke tokens for %s: %w", uid, err)
		}
	}
	if err := s.mirror.ClearSession(ctx, uid); err != nil {
		s.logger.Warn("Failed to clear mirrored session", zap.String("uid", uid), zap.Error(err))
	}
	s.logger.Info("User signed out", zap.String("uid", uid))
	return nil
}

func (s *sessionService) revoke(ctx context.Context, uid string) {
	if s.revoker == nil || uid == "" {
		return
	}
	if err := s.revoker.RevokeRefreshTokens(ctx, uid); err != nil {
		s.logger.Error("Failed to revoke tokens of disallowed account", zap.String("uid", uid), zap.Error(err))
	}
}
