package echo

import (
	"context"
	"net/http"
	"time"

	"github.com/confide-dev/confide/domain"
	"github.com/confide-dev/confide/internal/metrics"
	"github.com/confide-dev/confide/services"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	// stateCookieName holds the CSRF state between the consent redirect
	// and the provider callback.
	stateCookieName = "confide_oauth_state"
	stateCookieTTL  = 300 // seconds
)

// HealthChecker reports backing-store reachability for /healthz.
type HealthChecker func(ctx context.Context) error

// WebAPI holds the gateway's HTTP handlers and their dependencies.
type WebAPI struct {
	auth       *services.AuthService
	federation *services.FederationService
	sessions   *services.SessionService
	userRepo   domain.UserRepository
	health     HealthChecker
}

// NewWebAPI initializes the web API.
func NewWebAPI(
	auth *services.AuthService,
	federation *services.FederationService,
	sessions *services.SessionService,
	userRepo domain.UserRepository,
	health HealthChecker,
) *WebAPI {
	return &WebAPI{
		auth:       auth,
		federation: federation,
		sessions:   sessions,
		userRepo:   userRepo,
		health:     health,
	}
}

// RegisterRoutes registers all gateway routes.
func (a *WebAPI) RegisterRoutes(e *echo.Echo) {
	e.Renderer = NewTemplateRenderer()
	e.Use(SessionMiddleware(a.sessions))

	e.GET("/", a.HomeHandler)
	e.GET("/login", a.LoginFormHandler)
	e.POST("/login", a.LoginHandler)
	e.GET("/register", a.RegisterFormHandler)
	e.POST("/register", a.RegisterHandler)
	e.GET("/logout", a.LogoutHandler)

	e.GET("/auth/:provider", a.BeginAuthHandler)
	e.GET("/auth/:provider/secrets", a.AuthCallbackHandler)

	e.GET("/secrets", a.SecretsHandler)
	e.GET("/submit", a.SubmitFormHandler, RequireAuth)
	e.POST("/submit", a.SubmitHandler, RequireAuth)

	e.GET("/healthz", a.HealthzHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// HomeHandler renders the landing page.
func (a *WebAPI) HomeHandler(c echo.Context) error {
	return c.Render(http.StatusOK, "home", nil)
}

// LoginFormHandler renders the login form.
func (a *WebAPI) LoginFormHandler(c echo.Context) error {
	return c.Render(http.StatusOK, "login", nil)
}

// RegisterFormHandler renders the registration form.
func (a *WebAPI) RegisterFormHandler(c echo.Context) error {
	return c.Render(http.StatusOK, "register", nil)
}

// RegisterHandler creates a local account and logs it in. Any failure sends
// the user back to the registration form; no error detail leaks to the page.
func (a *WebAPI) RegisterHandler(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	user, err := a.auth.Register(c.Request().Context(), username, password)
	if err != nil {
		log.Debug().Err(err).Msg("Registration failed")
		return c.Redirect(http.StatusFound, "/register")
	}

	if err := a.establishSession(c, user); err != nil {
		log.Error().Err(err).Str("userID", user.ID).Msg("Failed to establish session after registration")
		return c.Redirect(http.StatusFound, "/login")
	}
	return c.Redirect(http.StatusFound, "/secrets")
}

// LoginHandler verifies a local credential pair and logs the user in.
// Verification always precedes session establishment.
func (a *WebAPI) LoginHandler(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	user, err := a.auth.Login(c.Request().Context(), username, password)
	if err != nil {
		// Uniform outcome for unknown user and wrong password.
		return c.Redirect(http.StatusFound, "/login")
	}

	if err := a.establishSession(c, user); err != nil {
		log.Error().Err(err).Str("userID", user.ID).Msg("Failed to establish session after login")
		return c.Redirect(http.StatusFound, "/login")
	}
	return c.Redirect(http.StatusFound, "/secrets")
}

// BeginAuthHandler starts a federated login: it stores the CSRF state in a
// short-lived HttpOnly cookie and redirects to the provider consent page.
func (a *WebAPI) BeginAuthHandler(c echo.Context) error {
	providerName := c.Param("provider")

	authURL, state, err := a.federation.Begin(providerName)
	if err != nil {
		log.Warn().Err(err).Str("provider", providerName).Msg("Failed to begin federated login")
		return c.Redirect(http.StatusFound, "/login")
	}

	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   stateCookieTTL,
		Secure:   c.Request().TLS != nil,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.Redirect(http.StatusFound, authURL)
}

// AuthCallbackHandler handles the redirect back from the provider. On any
// failure the user lands on /login; on success a session is established and
// the user lands on /secrets.
func (a *WebAPI) AuthCallbackHandler(c echo.Context) error {
	providerName := c.Param("provider")

	stateCookie, err := c.Cookie(stateCookieName)
	if err != nil {
		log.Warn().Str("provider", providerName).Msg("State cookie missing during callback")
		return c.Redirect(http.StatusFound, "/login")
	}
	// One-shot: clear the state cookie as soon as it is read.
	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   c.Request().TLS != nil,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	user, err := a.federation.Callback(
		c.Request().Context(),
		providerName,
		c.QueryParam("state"),
		stateCookie.Value,
		c.QueryParam("code"),
	)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	if err := a.establishSession(c, user); err != nil {
		log.Error().Err(err).Str("userID", user.ID).Msg("Failed to establish session after federated login")
		return c.Redirect(http.StatusFound, "/login")
	}
	return c.Redirect(http.StatusFound, "/secrets")
}

// SecretsHandler renders the public listing of all non-empty secrets. A
// store failure degrades to an empty listing rather than an error page.
func (a *WebAPI) SecretsHandler(c echo.Context) error {
	secrets, err := a.userRepo.ListSecrets(c.Request().Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list secrets; rendering empty listing")
		secrets = nil
	}
	return c.Render(http.StatusOK, "secrets", map[string]any{
		"Secrets":       secrets,
		"Authenticated": CurrentUser(c) != nil,
	})
}

// SubmitFormHandler renders the secret submission form. RequireAuth has
// already turned away Anonymous requests.
func (a *WebAPI) SubmitFormHandler(c echo.Context) error {
	return c.Render(http.StatusOK, "submit", nil)
}

// SubmitHandler overwrites the caller's secret and shows the listing.
func (a *WebAPI) SubmitHandler(c echo.Context) error {
	user := CurrentUser(c)
	secret := c.FormValue("secret")

	if err := a.userRepo.SaveSecret(c.Request().Context(), user.ID, secret); err != nil {
		log.Error().Err(err).Str("userID", user.ID).Msg("Failed to save secret")
		return c.Redirect(http.StatusFound, "/submit")
	}

	metrics.SecretsSubmittedTotal.Inc()
	return c.Redirect(http.StatusFound, "/secrets")
}

// LogoutHandler revokes the current session, clears the cookie and lands on
// the home page. Safe to call in any state.
func (a *WebAPI) LogoutHandler(c echo.Context) error {
	if session := CurrentSession(c); session != nil {
		if err := a.sessions.Revoke(c.Request().Context(), session.ID); err != nil {
			log.Warn().Err(err).Str("sessionID", session.ID).Msg("Failed to revoke session on logout")
		}
	}

	c.SetCookie(&http.Cookie{
		Name:     services.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, "/")
}

// HealthzHandler reports backing-store reachability.
func (a *WebAPI) HealthzHandler(c echo.Context) error {
	if a.health != nil {
		if err := a.health(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// establishSession binds the request's browser to the given user.
func (a *WebAPI) establishSession(c echo.Context, user *domain.User) error {
	_, cookieValue, err := a.sessions.Create(c.Request().Context(), user.ID, services.SessionMeta{
		UserAgent: c.Request().UserAgent(),
		IPAddress: c.RealIP(),
	})
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     services.SessionCookieName,
		Value:    cookieValue,
		Path:     "/",
		MaxAge:   int(a.sessions.TTL() / time.Second),
		Secure:   c.Request().TLS != nil,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
