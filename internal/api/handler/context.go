package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-service/internal/api/middleware"
	"github.com/99minutos/auth-service/internal/core/domain"
)

// ctxSession extracts the session injected by Sessions.Require. Its absence
// means the route was mounted without the middleware, which is treated as no
// session at all.
func ctxSession(c echo.Context) (domain.Session, error) {
	sess, ok := middleware.SessionFrom(c)
	if !ok || sess.Username == "" {
		return domain.Session{}, domain.ErrInvalidSession
	}
	return sess, nil
}
