package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"couple-plans-backend-go/internal/config"
	"couple-plans-backend-go/internal/core"
	"couple-plans-backend-go/internal/mirror"
	"couple-plans-backend-go/internal/models"
	"couple-plans-backend-go/pkg/cache"
)

type fakeTokenVerifier struct {
	tokens  map[string]*auth.Token
	revoker *recordingRevoker
}

func (v *fakeTokenVerifier) VerifyIDTokenAndCheckRevoked(_ context.Context, idToken string) (*auth.Token, error) {
	t, ok := v.tokens[idToken]
	if !ok {
		return nil, errors.New("token is invalid")
	}
	for _, uid := range v.revoker.revoked {
		if uid == t.UID {
			return nil, errors.New("ID token has been revoked")
		}
	}
	return t, nil
}

type recordingRevoker struct{ revoked []string }

func (r *recordingRevoker) RevokeRefreshTokens(_ context.Context, uid string) error {
	r.revoked = append(r.revoked, uid)
	return nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(t *testing.T) (*gin.Engine, *recordingRevoker) {
	r, revoker, _ := newAuthRouterWithSessions(t)
	return r, revoker
}

func newAuthRouterWithSessions(t *testing.T) (*gin.Engine, *recordingRevoker, core.SessionService) {
	t.Helper()
	users := []models.User{{Username: "michel", Email: "michel@couple-plans.local", Role: models.RoleAdmin}}
	revoker := &recordingRevoker{}
	sessions := core.NewSessionService(users, nil, revoker, mirror.New(cache.NewMemoryCache(), nil, nil), zap.NewNop())
	verifier := &fakeTokenVerifier{revoker: revoker, tokens: map[string]*auth.Token{
		"good":  {UID: "uid-m", Claims: map[string]interface{}{"email": "michel@couple-plans.local"}},
		"other": {UID: "uid-x", Claims: map[string]interface{}{"email": "intruder@example.com"}},
	}}
	mw := NewAuthMiddleware(verifier, sessions, zap.NewNop())

	r := gin.New()
	r.GET("/private", mw.VerifyToken(), func(c *gin.Context) {
		session, ok := SessionFromContext(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"username": session.Username, "uid": c.GetString(ContextUserID)})
	})
	return r, revoker, sessions
}

func TestVerifyToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{"missing header", "", "", http.StatusUnauthorized},
		{"malformed header", "Token good", "", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", "", http.StatusUnauthorized},
		{"not allow-listed", "Bearer other", "", http.StatusForbidden},
		{"valid header", "bearer good", "", http.StatusOK},
		{"query fallback", "", "?access_token=good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newAuthRouter(t)
			req := httptest.NewRequest(http.MethodGet, "/private"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestVerifyToken_RevokesDisallowedAccount(t *testing.T) {
	r, revoker := newAuthRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer other")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, []string{"uid-x"}, revoker.revoked)
}

func TestVerifyToken_RejectsTokenAfterLogout(t *testing.T) {
	r, _, sessions := newAuthRouterWithSessions(t)
	get := func() int {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusOK, get())
	require.NoError(t, sessions.Logout(context.Background(), "uid-m"))
	assert.Equal(t, http.StatusUnauthorized, get())
}

func TestVerifyToken_DisallowedAccountStaysLockedOut(t *testing.T) {
	r, _ := newAuthRouter(t)
	for _, want := range []int{http.StatusForbidden, http.StatusUnauthorized} {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer other")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryMiddleware(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal Server Error")
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok?x=1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRedactQuery(t *testing.T) {
	assert.Equal(t, "", redactQuery(""))
	assert.Equal(t, "q=tacos", redactQuery("q=tacos"))
	assert.Equal(t, "q=tacos&access_token=REDACTED", redactQuery("q=tacos&access_token=secret"))
	// Malformed escapes elsewhere in the query must not leak the token.
	assert.Equal(t, "access_token=REDACTED&q=%zz", redactQuery("access_token=SECRET&q=%zz"))
	assert.Equal(t, "access%5Ftoken=REDACTED&access_token=REDACTED", redactQuery("access%5Ftoken=a&access_token=b"))
	assert.Equal(t, "access_token=REDACTED", redactQuery("access_token"))
}

func TestCORSMiddleware_AllowsConfiguredOrigins(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(&config.Config{ClientURL: "https://plans.example.com, http://localhost:5173"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://plans.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://plans.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
