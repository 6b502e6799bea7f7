package router

import (
	"github.com/labstack/echo/v4"
	"github.com/questfit/questfit-server/internal/handlers"
	"github.com/questfit/questfit-server/internal/middleware"
)

// SetupLinkRoutes wires the account-linking flow.
func SetupLinkRoutes(e *echo.Echo, h *handlers.LinkHandler) {
	link := e.Group("/api/auth/link")

	link.POST("/primary", h.VerifyPrimary)
	link.GET("/resume", h.Resume)
	link.GET("/fitbit/callback", h.FitnessCallback)
	link.GET("/github/callback", h.CodeHostCallback)
}

// SetupSessionRoutes wires session verification and revocation behind the
// full-session JWT guard.
func SetupSessionRoutes(e *echo.Echo, h *handlers.SessionHandler, jwtSecret string) {
	session := e.Group("/api/auth/session", middleware.FullSessionJWT(jwtSecret))

	session.GET("/verify", h.Verify)
	session.GET("/sessions", h.GetSessions)
	session.POST("/logout", h.Logout)
	session.POST("/logout-all", h.LogoutAll)
}
