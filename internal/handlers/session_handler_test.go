package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/questfit/questfit-server/internal/mocks"
	"github.com/questfit/questfit-server/internal/models"
	"github.com/questfit/questfit-server/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSessionHandlerTest() (*SessionHandler, *mocks.MockSessionManager, *echo.Echo) {
	sessions := new(mocks.MockSessionManager)
	return NewSessionHandler(sessions), sessions, echo.New()
}

func authedContext(e *echo.Echo, method, target, token string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSessionHandler_Verify(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		h, sessions, e := newSessionHandlerTest()

		sessions.On("VerifySession", mock.Anything, "full-token").
			Return(&models.VerifySessionResponse{SessionID: "full-token", AccountID: 42, IsValid: true}, nil)

		c, rec := authedContext(e, http.MethodGet, "/api/auth/session/verify", "full-token")
		require.NoError(t, h.Verify(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"isValid":true`)
	})

	t.Run("Invalid", func(t *testing.T) {
		h, sessions, e := newSessionHandlerTest()

		sessions.On("VerifySession", mock.Anything, "revoked-token").
			Return(nil, assert.AnError)

		c, _ := authedContext(e, http.MethodGet, "/api/auth/session/verify", "revoked-token")
		err := h.Verify(c)
		require.Error(t, err)
		httpErr, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("MissingAuthorizationHeader", func(t *testing.T) {
		h, sessions, e := newSessionHandlerTest()

		c, _ := authedContext(e, http.MethodGet, "/api/auth/session/verify", "")
		err := h.Verify(c)
		require.Error(t, err)
		httpErr, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
		sessions.AssertNotCalled(t, "VerifySession", mock.Anything, mock.Anything)
	})

	t.Run("MalformedAuthorizationHeader", func(t *testing.T) {
		h, sessions, e := newSessionHandlerTest()

		req := httptest.NewRequest(http.MethodGet, "/api/auth/session/verify", nil)
		req.Header.Set(echo.HeaderAuthorization, "Token abc")
		rec := httptest.NewRecorder()

		err := h.Verify(e.NewContext(req, rec))
		require.Error(t, err)
		httpErr, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
		sessions.AssertNotCalled(t, "VerifySession", mock.Anything, mock.Anything)
	})
}

func TestSessionHandler_Logout(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		h, sessions, e := newSessionHandlerTest()

		sessions.On("SignOut", mock.Anything, "full-token").Return(nil)

		c, rec := authedContext(e, http.MethodPost, "/api/auth/session/logout", "full-token")
		require.NoError(t, h.Logout(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Failure", func(t *testing.T) {
		h, sessions, e := newSessionHandlerTest()

		sessions.On("SignOut", mock.Anything, "full-token").Return(assert.AnError)

		c, _ := authedContext(e, http.MethodPost, "/api/auth/session/logout", "full-token")
		err := h.Logout(c)
		require.Error(t, err)
		httpErr, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusInternalServerError, httpErr.Code)
	})
}

func fullClaims() *service.StageClaims {
	claims := &service.StageClaims{Kind: service.KindFull, AccountID: 42}
	claims.Subject = "firebase-uid-1"
	return claims
}

func TestSessionHandler_GetSessions(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		h, sessions, e := newSessionHandlerTest()

		sessions.On("ListSessions", mock.Anything, int64(42)).
			Return([]*models.Session{{SessionID: "tok-1", AccountID: 42}}, nil)

		c, rec := authedContext(e, http.MethodGet, "/api/auth/session/sessions", "full-token")
		c.Set("user", &jwt.Token{Claims: fullClaims()})

		require.NoError(t, h.GetSessions(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"sessionId":"tok-1"`)
	})

	t.Run("NotAuthenticated", func(t *testing.T) {
		h, sessions, e := newSessionHandlerTest()

		c, _ := authedContext(e, http.MethodGet, "/api/auth/session/sessions", "full-token")

		err := h.GetSessions(c)
		require.Error(t, err)
		httpErr, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
		sessions.AssertNotCalled(t, "ListSessions", mock.Anything, mock.Anything)
	})
}

func TestSessionHandler_LogoutAll(t *testing.T) {

	t.Run("Success", func(t *testing.T) {
		h, sessions, e := newSessionHandlerTest()

		sessions.On("SignOutAccountSessions", mock.Anything, int64(42), "full-token").
			Return(int64(2), nil)

		c, rec := authedContext(e, http.MethodPost, "/api/auth/session/logout-all", "full-token")
		c.Set("user", &jwt.Token{Claims: fullClaims()})

		require.NoError(t, h.LogoutAll(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"devices_logged_out":2`)
	})

	t.Run("NotAuthenticated", func(t *testing.T) {
		h, sessions, e := newSessionHandlerTest()

		c, _ := authedContext(e, http.MethodPost, "/api/auth/session/logout-all", "full-token")

		err := h.LogoutAll(c)
		require.Error(t, err)
		httpErr, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
		sessions.AssertNotCalled(t, "SignOutAccountSessions", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("RejectsNonFullToken", func(t *testing.T) {
		h, sessions, e := newSessionHandlerTest()

		claims := &service.StageClaims{Kind: service.KindPrimary, AccountID: 42}
		c, _ := authedContext(e, http.MethodPost, "/api/auth/session/logout-all", "primary-token")
		c.Set("user", &jwt.Token{Claims: claims})

		err := h.LogoutAll(c)
		require.Error(t, err)
		httpErr, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
		sessions.AssertNotCalled(t, "SignOutAccountSessions", mock.Anything, mock.Anything, mock.Anything)
	})
}
