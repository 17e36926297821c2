package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
)

// dummyPassword is hashed once and verified against whenever a login names an
// unknown user, so both failure paths cost one bcrypt comparison.
const dummyPassword = "dummy-password"

// AuthService implements registration, login, password rotation and logout.
type AuthService struct {
	store   ports.CredentialStore
	hasher  ports.PasswordHasher
	revoker ports.SessionRevoker
	log     zerolog.Logger
	now     func() time.Time

	// dummyHash is computed once at construction; it stays empty only when
	// the hasher failed then.
	dummyHash string
}

// NewAuthService wires the service. A nil revoker keeps sessions purely
// stateless: logout and password changes do not invalidate issued tokens.
// The hasher is called once here, so a pooled hasher needs its pool started.
func NewAuthService(store ports.CredentialStore, hasher ports.PasswordHasher, revoker ports.SessionRevoker, log zerolog.Logger) *AuthService {
	s := &AuthService{
		store:   store,
		hasher:  hasher,
		revoker: revoker,
		log:     log,
		now:     time.Now,
	}

	h, err := hasher.Hash(context.Background(), dummyPassword)
	if err != nil {
		log.Warn().Err(err).Msg("dummy hash unavailable, unknown-user logins will answer faster")
	}
	s.dummyHash = h
	return s
}

// Register stores a new credential. The existence check and the insert are two
// separate calls; a concurrent registration that wins the race surfaces as a
// uniqueness violation from the store, which is also ErrDuplicateUsername.
func (s *AuthService) Register(ctx context.Context, req domain.RegistrationRequest) (domain.Principal, error) {
	_, err := s.store.FindByUsername(ctx, req.Username)
	switch {
	case err == nil:
		return domain.Principal{}, domain.ErrDuplicateUsername
	case !errors.Is(err, domain.ErrCredentialNotFound):
		return domain.Principal{}, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(ctx, req.Password)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("register: %w", err)
	}

	now := s.now().UTC()
	cred := &domain.Credential{
		Username:     req.Username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Insert(ctx, cred); err != nil {
		return domain.Principal{}, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("username", cred.Username).Msg("credential registered")
	return cred.Principal(), nil
}

// Authenticate verifies a login. Unknown usernames and wrong passwords yield
// the same ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, req domain.LoginRequest) (domain.Principal, error) {
	cred, err := s.store.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialNotFound) {
			s.verifyDummy(ctx, req.Password)
			return domain.Principal{}, domain.ErrInvalidCredentials
		}
		return domain.Principal{}, fmt.Errorf("authenticate: %w", err)
	}

	ok, err := s.hasher.Verify(ctx, req.Password, cred.PasswordHash)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("authenticate: %w", err)
	}
	if !ok {
		return domain.Principal{}, domain.ErrInvalidCredentials
	}

	return cred.Principal(), nil
}

// ChangePassword rotates the hash of the session's principal after checking
// the old password against a freshly loaded credential.
func (s *AuthService) ChangePassword(ctx context.Context, current domain.Principal, req domain.UpdatePasswordRequest) (domain.Principal, error) {
	cred, err := s.store.FindByUsername(ctx, current.Username)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialNotFound) {
			return domain.Principal{}, domain.ErrInvalidCredentials
		}
		return domain.Principal{}, fmt.Errorf("change password: %w", err)
	}

	ok, err := s.hasher.Verify(ctx, req.OldPassword, cred.PasswordHash)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("change password: %w", err)
	}
	if !ok {
		return domain.Principal{}, domain.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(ctx, req.NewPassword)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("change password: %w", err)
	}

	if err := s.store.UpdatePasswordHash(ctx, cred.Username, hash); err != nil {
		if errors.Is(err, domain.ErrCredentialNotFound) {
			return domain.Principal{}, domain.ErrInvalidCredentials
		}
		return domain.Principal{}, fmt.Errorf("change password: %w", err)
	}

	if s.revoker != nil {
		// The password is already rotated; a failed watermark only leaves older
		// tokens alive until expiry.
		if err := s.revoker.RevokeBefore(ctx, cred.Username, s.now()); err != nil {
			s.log.Error().Err(err).Str("username", cred.Username).Msg("failed to revoke sessions after password change")
		}
	}

	s.log.Info().Str("username", cred.Username).Msg("password changed")
	return cred.Principal(), nil
}

// Logout invalidates session server-side when a revoker is configured. The
// caller always clears the cookie.
func (s *AuthService) Logout(ctx context.Context, session domain.Session) error {
	if s.revoker == nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, session); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *AuthService) verifyDummy(ctx context.Context, password string) {
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(ctx, password, s.dummyHash)
	}
}
