package middleware

import (
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/questfit/questfit-server/internal/service"
)

// FullSessionJWT guards routes that require a full-session token. It checks
// signature and expiry; handlers still verify the session registry (and the
// token kind) through the session service.
func FullSessionJWT(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(service.StageClaims)
		},
	})
}
