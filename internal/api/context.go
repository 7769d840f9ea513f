package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"couple-plans-backend-go/internal/core"
	"couple-plans-backend-go/internal/middleware"
	"couple-plans-backend-go/internal/models"
)

// currentSession returns the authenticated session, answering 401 when there is none.
func currentSession(c *gin.Context) (*models.Session, bool) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Session not found in context"})
		return nil, false
	}
	return session, true
}

func actorOf(session *models.Session) core.Actor {
	return core.Actor{Username: session.Username, Email: session.Email}
}
