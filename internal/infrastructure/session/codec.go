// Package session implements the signed session token formats and the
// stateless revocation policy.
package session

import (
	"fmt"
	"time"

	"github.com/99minutos/auth-service/internal/core/ports"
)

// DefaultMaxAge is how long an issued session stays valid.
const DefaultMaxAge = 24 * time.Hour

// Supported token formats.
const (
	FormatSecureCookie = "securecookie"
	FormatJWT          = "jwt"
)

// Options configures a codec.
type Options struct {
	// Name binds a securecookie token to the cookie it travels in and is
	// used as the JWT issuer.
	Name string
	// SigningKey is the process secret used for HMAC-SHA256.
	SigningKey []byte
	// EncryptionKey optionally AES-encrypts securecookie tokens (16, 24 or 32 bytes).
	EncryptionKey []byte
	MaxAge        time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

func (o *Options) normalise() error {
	if len(o.SigningKey) == 0 {
		return fmt.Errorf("session: empty signing key")
	}
	if o.Name == "" {
		o.Name = "auth"
	}
	if o.MaxAge <= 0 {
		o.MaxAge = DefaultMaxAge
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return nil
}

// NewCodec builds the codec for format.
func NewCodec(format string, opts Options) (ports.SessionCodec, error) {
	switch format {
	case "", FormatSecureCookie:
		return NewSecureCookieCodec(opts)
	case FormatJWT:
		if len(opts.EncryptionKey) > 0 {
			return nil, fmt.Errorf("session: encryption is not supported by the %s format", FormatJWT)
		}
		return NewJWTCodec(opts)
	default:
		return nil, fmt.Errorf("session: unknown token format %q", format)
	}
}
