package ports

import (
	"context"
	"time"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// SessionCodec turns a principal into a signed token and back. Decode returns
// domain.ErrInvalidSession for any token it cannot verify.
type SessionCodec interface {
	Issue(principal domain.Principal) (string, error)
	Decode(token string) (domain.Session, error)
}

// SessionRevoker tracks sessions invalidated before their expiry.
type SessionRevoker interface {
	Revoke(ctx context.Context, session domain.Session) error
	// RevokeBefore invalidates every session of username issued before t.
	RevokeBefore(ctx context.Context, username string, t time.Time) error
	IsRevoked(ctx context.Context, session domain.Session) (bool, error)
}
