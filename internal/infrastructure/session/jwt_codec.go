package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/99minutos/auth-service/internal/core/domain"
)

type sessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTCodec encodes sessions as HS256 JWTs.
type JWTCodec struct {
	key    []byte
	issuer string
	maxAge time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

func NewJWTCodec(opts Options) (*JWTCodec, error) {
	if err := opts.normalise(); err != nil {
		return nil, err
	}

	return &JWTCodec{
		key:    opts.SigningKey,
		issuer: opts.Name,
		maxAge: opts.MaxAge,
		now:    opts.Now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithStrictDecoding(),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
			jwt.WithIssuer(opts.Name),
			jwt.WithTimeFunc(opts.Now),
		),
	}, nil
}

func (c *JWTCodec) Issue(principal domain.Principal) (string, error) {
	now := c.now()
	claims := sessionClaims{
		Username: principal.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.maxAge)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return token, nil
}

func (c *JWTCodec) Decode(token string) (domain.Session, error) {
	if err := c.verifySignature(token); err != nil {
		return domain.Session{}, domain.ErrInvalidSession
	}

	var claims sessionClaims
	parsed, err := c.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return c.key, nil
	})
	if err != nil || !parsed.Valid {
		return domain.Session{}, domain.ErrInvalidSession
	}
	if claims.ID == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return domain.Session{}, domain.ErrInvalidSession
	}

	return domain.Session{
		Principal: domain.Principal{Username: claims.Username},
		ID:        claims.ID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// verifySignature checks the HS256 MAC over header.payload before any segment
// is JSON-decoded.
func (c *JWTCodec) verifySignature(token string) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return errors.New("malformed token")
	}
	sig, err := base64.RawURLEncoding.Strict().DecodeString(parts[2])
	if err != nil {
		return err
	}

	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(parts[0] + "." + parts[1]))
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return jwt.ErrTokenSignatureInvalid
	}
	return nil
}
