package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"paygate/internal/gateway"
	"paygate/internal/model"
	"paygate/internal/session"
)

const (
	managerContextKey = "session_manager"
	sidContextKey     = "session_id"

	sessionCookieMaxAge = 7 * 24 * time.Hour
)

// SessionMiddleware binds every request to its browser session: it reads or
// issues the session cookie, resolves the session manager, and scopes the
// request context so outbound gateway calls carry this session's token.
func SessionMiddleware(registry *session.Registry, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := readOrIssueSID(c, cookieName)

			mgr := registry.Resolve(c.Request().Context(), sid, false)
			c.Set(managerContextKey, mgr)
			c.Set(sidContextKey, sid)

			req := c.Request()
			ctx := gateway.WithSession(req.Context(), mgr.Store(), sid)
			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}

func readOrIssueSID(c echo.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	sid := uuid.New().String()
	c.SetCookie(&http.Cookie{
		Name:     cookieName,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(sessionCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}

// ManagerFromContext returns the request's session manager.
func ManagerFromContext(c echo.Context) *session.Manager {
	mgr, _ := c.Get(managerContextKey).(*session.Manager)
	return mgr
}

// SessionIDFromContext returns the request's session ID.
func SessionIDFromContext(c echo.Context) string {
	sid, _ := c.Get(sidContextKey).(string)
	return sid
}

// CurrentUser returns the request's authenticated user, or nil. This is the
// resolver the route guard consumes.
func CurrentUser(c echo.Context) *model.User {
	mgr := ManagerFromContext(c)
	if mgr == nil {
		return nil
	}
	return mgr.User()
}
