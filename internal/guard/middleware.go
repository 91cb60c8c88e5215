package guard

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"paygate/internal/model"
)

// UserResolver yields the current session user for a request, or nil.
type UserResolver func(c echo.Context) *model.User

// Middleware gates every matched route through the two-stage check using
// the Routes table. The redirect targets are injected so the package stays
// free of navigation knowledge beyond the decision itself.
func Middleware(resolve UserResolver, loginPath, unauthorizedPath string, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := resolve(c)
			switch Check(user, Required(c.Path())) {
			case RedirectLogin:
				return c.Redirect(http.StatusSeeOther, loginPath)
			case RedirectUnauthorized:
				log.Info("role denied",
					zap.String("path", c.Path()),
					zap.String("role", string(user.Role)))
				return c.Redirect(http.StatusSeeOther, unauthorizedPath)
			}
			return next(c)
		}
	}
}
