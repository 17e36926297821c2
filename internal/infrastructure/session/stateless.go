package session

import (
	"context"
	"time"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// Stateless is the revocation policy of a purely client-held session: nothing
// is ever revoked, so logout only clears the cookie and tokens issued before a
// password change stay valid until they expire.
type Stateless struct{}

func (Stateless) Revoke(context.Context, domain.Session) error { return nil }

func (Stateless) RevokeBefore(context.Context, string, time.Time) error { return nil }

func (Stateless) IsRevoked(context.Context, domain.Session) (bool, error) { return false, nil }
