package stub

import (
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTMiddleware authenticates API requests against the bearer tokens that
// TokenIssuer signs. The lookup names the Bearer scheme as a cut prefix so
// the raw token reaches the parser; a plain header lookup would hand the
// parser "Bearer <token>" and reject every request.
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(secret),
		TokenLookup: "header:Authorization:Bearer ",
	})
}
