package echo

import (
	"net/http"

	"github.com/confide-dev/confide/domain"
	"github.com/confide-dev/confide/services"
	"github.com/labstack/echo/v4"
)

const (
	currentUserKey    = "confide.current_user"
	currentSessionKey = "confide.current_session"
)

// SessionMiddleware resolves the signed session cookie on every request and,
// when it resolves, stores the bound user and session on the echo context.
// Requests with no cookie, or whose cookie fails to resolve, proceed as
// Anonymous; rejecting them is the job of RequireAuth on protected routes.
func SessionMiddleware(sessions *services.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(services.SessionCookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			user, session, err := sessions.Resolve(c.Request().Context(), cookie.Value)
			if err != nil {
				// Stale or tampered cookie; treat as Anonymous.
				return next(c)
			}

			c.Set(currentUserKey, user)
			c.Set(currentSessionKey, session)
			return next(c)
		}
	}
}

// RequireAuth redirects Anonymous requests to the login form.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if CurrentUser(c) == nil {
			return c.Redirect(http.StatusFound, "/login")
		}
		return next(c)
	}
}

// CurrentUser returns the authenticated user for this request, or nil when
// the request is Anonymous.
func CurrentUser(c echo.Context) *domain.User {
	user, _ := c.Get(currentUserKey).(*domain.User)
	return user
}

// CurrentSession returns the resolved session for this request, or nil.
func CurrentSession(c echo.Context) *domain.Session {
	session, _ := c.Get(currentSessionKey).(*domain.Session)
	return session
}
