package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/auth-service/internal/api/middleware"
	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
	"github.com/99minutos/auth-service/internal/pkg/metrics"
)

// sessionCookies starts and ends the cookie-carried session of a request.
type sessionCookies interface {
	Start(c echo.Context, p domain.Principal) error
	End(c echo.Context)
}

type AuthHandler struct {
	authService ports.AuthService
	sessions    sessionCookies
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, sessions sessionCookies, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, log: log}
}

// Register creates a credential and starts a session for it.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Username and password"
// @Success      200   {object}  principalResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.authService.Register(c.Request().Context(), domain.RegistrationRequest{
		Username: req.Username,
		Password: req.Password,
	})
	observe("register", err)
	if err != nil {
		return err
	}

	if err := h.sessions.Start(c, p); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, principalResponse{Username: p.Username})
}

// Login verifies credentials and starts a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Username and password"
// @Success      200   {object}  principalResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.authService.Authenticate(c.Request().Context(), domain.LoginRequest{
		Username: req.Username,
		Password: req.Password,
	})
	observe("login", err)
	if err != nil {
		return err
	}

	if err := h.sessions.Start(c, p); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, principalResponse{Username: p.Username})
}

// Logout clears the session cookie. When the request carried a valid session
// it is also revoked server-side; a revocation failure is logged, not returned.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /logout [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	if sess, ok := middleware.SessionFrom(c); ok {
		err := h.authService.Logout(c.Request().Context(), sess)
		observe("logout", err)
		if err != nil {
			h.log.Warn().Err(err).Str("username", sess.Username).Msg("session revocation on logout failed")
		}
	}

	h.sessions.End(c)
	return c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}

// UpdatePassword rotates the password of the session's user and replaces the
// session cookie.
//
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      updatePasswordRequest  true  "Current and new password"
// @Success      200   {object}  principalResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /update_password [post]
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req updatePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	p, err := h.authService.ChangePassword(ctx, sess.Principal, domain.UpdatePasswordRequest{
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	observe("update_password", err)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid credentials")
	}
	if err != nil {
		return err
	}

	// The per-user watermark has second precision, so the presenting session is
	// revoked by ID as well.
	if err := h.authService.Logout(ctx, sess); err != nil {
		h.log.Warn().Err(err).Str("username", sess.Username).Msg("revoking previous session failed")
	}

	if err := h.sessions.Start(c, p); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, principalResponse{Username: p.Username})
}

// Ping answers pong; kept for clients that poll /ping.
//
// @Summary      Ping
// @Tags         health
// @Produce      plain
// @Success      200  {string}  string  "pong"
// @Router       /ping [get]
func Ping(c echo.Context) error {
	return c.String(http.StatusOK, "pong")
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func observe(operation string, err error) {
	result := "success"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrDuplicateUsername):
		result = "duplicate"
	case errors.Is(err, domain.ErrInvalidCredentials):
		result = "invalid_credentials"
	default:
		result = "error"
	}
	metrics.AuthOperationsTotal.WithLabelValues(operation, result).Inc()
}
