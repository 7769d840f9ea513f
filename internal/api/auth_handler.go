package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"couple-plans-backend-go/internal/core"
	"couple-plans-backend-go/internal/models"
)

// AuthHandler handles sign-in, sign-out and session endpoints.
type AuthHandler struct {
	sessionService core.SessionService
	logger         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(ss core.SessionService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{sessionService: ss, logger: logger}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	result, err := h.sessionService.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrAccountNotAllowed):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "This account is not authorized for this workspace"})
		case errors.Is(err, core.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid username or password"})
		case errors.Is(err, core.ErrSignInUnavailable):
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Password sign-in is not available"})
		default:
			h.logger.Error("Login failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Could not reach the identity provider"})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	if err := h.sessionService.Logout(c.Request.Context(), session.UID); err != nil {
		h.logger.Error("Logout failed", zap.String("uid", session.UID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to sign out"})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Signed out"})
}

// GetSession handles GET /session
func (h *AuthHandler) GetSession(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session)
}
