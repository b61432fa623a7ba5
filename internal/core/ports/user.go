package ports

import (
	"context"

	"github.com/tmuthoni/chama_backend/internal/core/domain"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	// GetUserByEmail returns (nil, nil) when no user matches.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context, role domain.UserRole) ([]*domain.User, error)
	UpdateRole(ctx context.Context, id int64, role domain.UserRole) error
	SetEmailVerified(ctx context.Context, id int64) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	DeleteUser(ctx context.Context, id int64) error
}

type UserService interface {
	AssignRole(ctx context.Context, id int64, role domain.UserRole) (*domain.User, error)
	ListUsers(ctx context.Context, role domain.UserRole) ([]*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) (*domain.User, error)
}
