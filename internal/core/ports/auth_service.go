package ports

import (
	"context"

	"github.com/99minutos/auth-service/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, req domain.RegistrationRequest) (domain.Principal, error)
	Authenticate(ctx context.Context, req domain.LoginRequest) (domain.Principal, error)
	ChangePassword(ctx context.Context, current domain.Principal, req domain.UpdatePasswordRequest) (domain.Principal, error)
	Logout(ctx context.Context, session domain.Session) error
}
