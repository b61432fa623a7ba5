package ports

import (
	"context"
	"time"

	"github.com/tmuthoni/chama_backend/internal/core/domain"
)

// TokenService mints and validates signed, purpose-scoped tokens.
// Decode does not check purpose; callers reject mismatches themselves.
type TokenService interface {
	Issue(userID int64, purpose domain.TokenPurpose, ttl time.Duration, role domain.UserRole) (string, error)
	Decode(token string) (domain.TokenPayload, error)
}

type AuthService interface {
	Register(ctx context.Context, user *domain.User) (*domain.User, error)
	VerifyEmail(ctx context.Context, token string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}
