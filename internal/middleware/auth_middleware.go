package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"couple-plans-backend-go/internal/core"
	"couple-plans-backend-go/internal/models"
)

// Context keys set by VerifyToken.
const (
	ContextUserID    = "userID"
	ContextUserEmail = "userEmail"
	ContextSession   = "session"
)

// ErrorResponse is a local definition for sending standardized error messages.
// It mirrors the one in internal/api/dto_models.go to avoid import cycles.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// TokenVerifier verifies Firebase ID tokens, rejecting those whose refresh tokens
// were revoked (logout, disallowed accounts). *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthMiddleware provides Gin middleware for Firebase token authentication
// restricted to the workspace's collaborators.
type AuthMiddleware struct {
	verifier TokenVerifier
	sessions core.SessionService
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(verifier TokenVerifier, sessions core.SessionService, logger *zap.Logger) *AuthMiddleware {
	if verifier == nil || sessions == nil {
		panic("AuthMiddleware requires a token verifier and a session service")
	}
	return &AuthMiddleware{verifier: verifier, sessions: sessions, logger: logger}
}

// VerifyToken verifies the Firebase ID token from the Authorization header and
// resolves the collaborator session. Browsers' EventSource cannot set headers,
// so an access_token query parameter is accepted when the header is absent.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		idToken, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
			return
		}

		token, err := m.verifier.VerifyIDTokenAndCheckRevoked(c.Request.Context(), idToken)
		if err != nil {
			if auth.IsIDTokenRevoked(err) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Session has ended, sign in again"})
				return
			}
			m.logger.Warn("Error verifying Firebase ID token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		email, _ := token.Claims["email"].(string)
		session, err := m.sessions.Authorize(c.Request.Context(), token.UID, email)
		if err != nil {
			if errors.Is(err, core.ErrAccountNotAllowed) {
				m.logger.Warn("Rejected token of a non allow-listed account", zap.String("uid", token.UID), zap.String("email", email))
				c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "This account is not authorized for this workspace"})
				return
			}
			m.logger.Error("Failed to authorize session", zap.String("uid", token.UID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to authorize session"})
			return
		}

		c.Set(ContextUserID, token.UID)
		c.Set(ContextUserEmail, email)
		c.Set(ContextSession, session)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if t := c.Query("access_token"); t != "" {
			return t, true
		}
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// SessionFromContext returns the session stored by VerifyToken.
func SessionFromContext(c *gin.Context) (*models.Session, bool) {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil, false
	}
	session, ok := v.(*models.Session)
	return session, ok && session != nil
}
