package handlers

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/questfit/questfit-server/internal/models"
	"github.com/questfit/questfit-server/internal/service"
	"github.com/rs/zerolog/log"
)

// SessionHandler exposes verification and revocation of full sessions.
type SessionHandler struct {
	Sessions service.SessionManager
}

func NewSessionHandler(sessions service.SessionManager) *SessionHandler {
	return &SessionHandler{Sessions: sessions}
}

// Verify checks that the bearer token is a live, unrevoked full session.
func (h *SessionHandler) Verify(c echo.Context) error {
	token, err := bearerToken(c)
	if err != nil {
		return err
	}

	resp, err := h.Sessions.VerifySession(c.Request().Context(), token)
	if err != nil {
		log.Debug().Err(err).Msg("Session verification failed")
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired session token")
	}
	return c.JSON(http.StatusOK, resp)
}

// GetSessions lists the authenticated account's active sessions.
func (h *SessionHandler) GetSessions(c echo.Context) error {
	claims, err := sessionClaims(c)
	if err != nil {
		return err
	}

	sessions, err := h.Sessions.ListSessions(c.Request().Context(), claims.AccountID)
	if err != nil {
		log.Error().Err(err).Int64("accountId", claims.AccountID).Msg("Failed to list sessions")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list sessions")
	}
	return c.JSON(http.StatusOK, models.GetSessionsResponse{Sessions: sessions})
}

// Logout invalidates the caller's session.
func (h *SessionHandler) Logout(c echo.Context) error {
	token, err := bearerToken(c)
	if err != nil {
		return err
	}

	if err := h.Sessions.SignOut(c.Request().Context(), token); err != nil {
		log.Error().Err(err).Msg("Logout failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process logout")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Successfully logged out"})
}

// LogoutAll invalidates every session of the authenticated account except the
// caller's own.
func (h *SessionHandler) LogoutAll(c echo.Context) error {
	claims, err := sessionClaims(c)
	if err != nil {
		return err
	}

	token, err := bearerToken(c)
	if err != nil {
		return err
	}

	deleted, err := h.Sessions.SignOutAccountSessions(c.Request().Context(), claims.AccountID, token)
	if err != nil {
		log.Error().Err(err).Int64("accountId", claims.AccountID).Msg("Logout-all failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to logout other devices")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Successfully logged out other devices.", "devices_logged_out": deleted})
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is missing")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
	}
	return parts[1], nil
}

// sessionClaims pulls the claims stored by the JWT middleware and enforces
// the full-session kind; a primary or second-factor token must never pass.
func sessionClaims(c echo.Context) (*service.StageClaims, error) {
	userContext := c.Get("user")
	token, ok := userContext.(*jwt.Token)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	claims, ok := token.Claims.(*service.StageClaims)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Unexpected claims type in context")
	}
	if claims.Kind != service.KindFull {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "A full session token is required")
	}
	return claims, nil
}
