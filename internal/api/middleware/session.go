package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
	"github.com/99minutos/auth-service/internal/pkg/metrics"
)

// SessionContextKey is the echo context key holding the verified domain.Session.
const SessionContextKey = "session"

// CookieOptions describes the session cookie attributes.
type CookieOptions struct {
	Name     string
	Domain   string
	MaxAge   time.Duration
	Secure   bool
	SameSite http.SameSite
}

// Sessions moves session tokens between the cookie and the echo context. The
// codec never sees a request; this is the only place that touches the cookie.
type Sessions struct {
	codec   ports.SessionCodec
	revoker ports.SessionRevoker
	cookie  CookieOptions
	log     zerolog.Logger
}

func NewSessions(codec ports.SessionCodec, revoker ports.SessionRevoker, cookie CookieOptions, log zerolog.Logger) *Sessions {
	if cookie.Name == "" {
		cookie.Name = "auth"
	}
	if cookie.SameSite == 0 {
		cookie.SameSite = http.SameSiteLaxMode
	}
	return &Sessions{codec: codec, revoker: revoker, cookie: cookie, log: log}
}

// Require rejects the request with domain.ErrInvalidSession unless it carries
// a valid, unrevoked session cookie.
func (s *Sessions) Require() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := s.resolve(c)
			if err != nil {
				return err
			}
			c.Set(SessionContextKey, sess)
			return next(c)
		}
	}
}

// Optional attaches the session when one is present and valid, and otherwise
// lets the request through anonymously.
func (s *Sessions) Optional() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := s.resolve(c)
			switch {
			case err == nil:
				c.Set(SessionContextKey, sess)
			case !errors.Is(err, domain.ErrInvalidSession):
				s.log.Warn().Err(err).Msg("session lookup failed, continuing anonymously")
			}
			return next(c)
		}
	}
}

func (s *Sessions) resolve(c echo.Context) (domain.Session, error) {
	ck, err := c.Cookie(s.cookie.Name)
	if err != nil || ck.Value == "" {
		return domain.Session{}, domain.ErrInvalidSession
	}

	sess, err := s.codec.Decode(ck.Value)
	if err != nil {
		metrics.SessionsRejectedTotal.WithLabelValues("invalid").Inc()
		return domain.Session{}, domain.ErrInvalidSession
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(c.Request().Context(), sess)
		if err != nil {
			return domain.Session{}, err
		}
		if revoked {
			metrics.SessionsRejectedTotal.WithLabelValues("revoked").Inc()
			return domain.Session{}, domain.ErrInvalidSession
		}
	}
	return sess, nil
}

// Start issues a token for p and writes it as the session cookie.
func (s *Sessions) Start(c echo.Context, p domain.Principal) error {
	token, err := s.codec.Issue(p)
	if err != nil {
		return err
	}
	c.SetCookie(s.newCookie(token, int(s.cookie.MaxAge.Seconds())))
	metrics.SessionsIssuedTotal.Inc()
	return nil
}

// End instructs the client to discard the session cookie.
func (s *Sessions) End(c echo.Context) {
	ck := s.newCookie("", -1)
	ck.Expires = time.Unix(0, 0)
	c.SetCookie(ck)
}

func (s *Sessions) newCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.cookie.Name,
		Value:    value,
		Path:     "/",
		Domain:   s.cookie.Domain,
		MaxAge:   maxAge,
		Secure:   s.cookie.Secure,
		HttpOnly: true,
		SameSite: s.cookie.SameSite,
	}
}

// SessionFrom returns the session attached by Require or Optional.
func SessionFrom(c echo.Context) (domain.Session, bool) {
	sess, ok := c.Get(SessionContextKey).(domain.Session)
	return sess, ok
}
